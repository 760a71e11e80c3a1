package main

import (
	"log"
	"sync/atomic"

	"github.com/icexin/gocraft-quests/proto"
	"github.com/icexin/gocraft-quests/quest"
)

// Chat pushes text to connected clients. Every message carries a sequence
// number, clients handle pushes concurrently and use it to restore order.
type Chat struct {
	seq     uint64
	server  *Server
	players *PlayerService
}

func NewChat(server *Server, players *PlayerService) *Chat {
	return &Chat{
		server:  server,
		players: players,
	}
}

// Send implements quest.Messenger. Messages for offline players are dropped.
func (c *Chat) Send(player quest.PlayerID, text string) {
	id, ok := c.players.sessionOf(player)
	if !ok {
		log.Printf("drop message for offline player %s: %s", player, text)
		return
	}
	c.SendSession(id, text)
}

func (c *Chat) SendSession(id int32, text string) {
	sess, ok := c.server.Session(id)
	if !ok {
		return
	}
	req := &proto.ChatMessageRequest{
		Seq:  atomic.AddUint64(&c.seq, 1),
		Text: text,
	}
	sess.Push("Chat.Message", req, new(proto.ChatMessageResponse))
}
