package main

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
)

// Session is the server side of a connected client. The embedded rpc client
// calls services the client registered, such as Chat and Player.
type Session struct {
	masterConn net.Conn
	*rpc.Client
}

func NewSession(masterConn, clientConn net.Conn) *Session {
	return &Session{
		masterConn: masterConn,
		Client:     rpc.NewClientWithCodec(jsonrpc.NewClientCodec(clientConn)),
	}
}

// Push sends a one-way notification, the reply is discarded.
func (s *Session) Push(method string, args interface{}, reply interface{}) {
	s.Client.Go(method, args, reply, nil)
}

func (s *Session) Close() {
	s.Client.Close()
	s.masterConn.Close()
}
