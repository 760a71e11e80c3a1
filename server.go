package main

import (
	"encoding/binary"
	"errors"
	"log"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/yamux"

	"github.com/icexin/gocraft-quests/proto"
)

type Server struct {
	clientid  int32
	sessions  sync.Map // map[id]*Session
	rpcServer *rpc.Server

	mutex     sync.Mutex
	listeners []net.Listener

	playerCallback func(string, int32)
}

func NewServer() *Server {
	return &Server{
		rpcServer:      rpc.NewServer(),
		playerCallback: func(string, int32) {},
	}
}

// sessionCodec stamps every request with the id of the connection it came
// in on, whatever id the client put in it.
type sessionCodec struct {
	rpc.ServerCodec
	id int32
}

func (c *sessionCodec) ReadRequestBody(body interface{}) error {
	if err := c.ServerCodec.ReadRequestBody(body); err != nil {
		return err
	}
	if req, ok := body.(proto.SessionRequest); ok {
		req.SetSession(c.id)
	}
	return nil
}

func (s *Server) serveRpc(sess *yamux.Session, id int32) {
	conn, err := sess.Accept()
	if err != nil {
		log.Print(err)
		return
	}
	s.rpcServer.ServeCodec(&sessionCodec{
		ServerCodec: jsonrpc.NewServerCodec(conn),
		id:          id,
	})
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	id := atomic.AddInt32(&s.clientid, 1)
	log.Printf("allocated %d for %s", id, conn.RemoteAddr())
	// send id to client, handshake done.
	if err := binary.Write(conn, binary.BigEndian, id); err != nil {
		log.Print(err)
		return
	}

	sess, err := yamux.Server(conn, nil)
	if err != nil {
		log.Print(err)
		return
	}
	defer sess.Close()

	clientConn, err := sess.Open()
	if err != nil {
		log.Print(err)
		return
	}
	session := NewSession(conn, clientConn)
	s.sessions.Store(id, session)
	s.playerCallback("online", id)
	s.serveRpc(sess, id)
	s.sessions.Delete(id)
	s.playerCallback("offline", id)
	session.Close()
	log.Printf("%s(%d) closed connection", conn.RemoteAddr(), id)
}

func (s *Server) RegisterService(name string, service interface{}) error {
	return s.rpcServer.RegisterName(name, service)
}

func (s *Server) Session(id int32) (*Session, bool) {
	v, ok := s.sessions.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

func (s *Server) RangeSession(f func(id int32, sess *Session)) {
	s.sessions.Range(func(k, v interface{}) bool {
		f(k.(int32), v.(*Session))
		return true
	})
}

func (s *Server) SetPlayerCallback(callback func(string, int32)) {
	s.playerCallback = callback
}

// Serve accepts connections on l until l is closed.
func (s *Server) Serve(l net.Listener) error {
	s.mutex.Lock()
	s.listeners = append(s.listeners, l)
	s.mutex.Unlock()
	for {
		conn, err := l.Accept()
		if errors.Is(err, net.ErrClosed) {
			return nil
		}
		if err != nil {
			log.Print(err)
			continue
		}
		go s.handleConn(conn)
	}
}

// Close stops accepting new connections and drops all sessions.
func (s *Server) Close() {
	s.mutex.Lock()
	for _, l := range s.listeners {
		l.Close()
	}
	s.listeners = nil
	s.mutex.Unlock()
	s.RangeSession(func(id int32, sess *Session) {
		sess.Close()
	})
}
