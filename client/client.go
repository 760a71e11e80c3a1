package gocraft

import (
	"encoding/binary"
	"fmt"
	"math"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"

	"github.com/hashicorp/yamux"

	"github.com/icexin/gocraft-quests/proto"
)

const chunkWidth = 32

type Client struct {
	rpcServer *rpc.Server
	conn      net.Conn
	sess      *yamux.Session

	ClientId int32
	*rpc.Client
}

func NewClient() *Client {
	return &Client{
		rpcServer: rpc.NewServer(),
	}
}

func (c *Client) doServer(sess *yamux.Session) {
	serverConn, err := sess.Accept()
	if err != nil {
		return
	}
	c.rpcServer.ServeCodec(jsonrpc.NewServerCodec(serverConn))
}

// Dial connects to addr and starts the session. Services the server pushes
// to must be registered before.
func (c *Client) Dial(addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return err
	}
	if err := c.Start(conn); err != nil {
		conn.Close()
		return err
	}
	return nil
}

func (c *Client) Start(conn net.Conn) error {
	if err := binary.Read(conn, binary.BigEndian, &c.ClientId); err != nil {
		return fmt.Errorf("handshake: %w", err)
	}

	sess, err := yamux.Client(conn, nil)
	if err != nil {
		return err
	}

	go c.doServer(sess)
	clientConn, err := sess.Open()
	if err != nil {
		sess.Close()
		return err
	}
	c.conn = conn
	c.sess = sess
	c.Client = rpc.NewClientWithCodec(jsonrpc.NewClientCodec(clientConn))
	return nil
}

func (c *Client) RegisterService(name string, service interface{}) error {
	return c.rpcServer.RegisterName(name, service)
}

// Login binds this session to the named player and returns its id.
func (c *Client) Login(name string) (string, error) {
	rep := new(proto.LoginResponse)
	err := c.Call("Player.Login", &proto.LoginRequest{Id: c.ClientId, Name: name}, rep)
	return rep.Player, err
}

func (c *Client) RunCommand(name string, args ...string) error {
	req := &proto.RunCommandRequest{
		Id:   c.ClientId,
		Name: name,
		Args: args,
	}
	return c.Call("Command.Run", req, new(proto.RunCommandResponse))
}

// UpdateBlock sets the block at x, y, z to w. Breaking a block is setting
// it to air.
func (c *Client) UpdateBlock(x, y, z, w int) (string, error) {
	req := &proto.UpdateBlockRequest{
		Id: c.ClientId,
		P:  int(math.Floor(float64(x) / chunkWidth)),
		Q:  int(math.Floor(float64(z) / chunkWidth)),
		X:  x,
		Y:  y,
		Z:  z,
		W:  w,
	}
	rep := new(proto.UpdateBlockResponse)
	err := c.Call("Block.UpdateBlock", req, rep)
	return rep.Version, err
}

func (c *Client) Close() {
	if c.Client != nil {
		c.Client.Close()
	}
	if c.sess != nil {
		c.sess.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
