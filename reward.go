package main

import (
	"log"

	"github.com/icexin/gocraft-quests/proto"
	"github.com/icexin/gocraft-quests/quest"
)

// XPRewards implements quest.RewardGrantor on top of the xp ledger and
// notifies the player's client of the new total.
type XPRewards struct {
	store   *Store
	server  *Server
	players *PlayerService
}

func NewXPRewards(store *Store, server *Server, players *PlayerService) *XPRewards {
	return &XPRewards{
		store:   store,
		server:  server,
		players: players,
	}
}

func (r *XPRewards) GrantXP(player quest.PlayerID, amount int) {
	total, err := r.store.AddXP(player, amount)
	if err != nil {
		log.Print(err)
		return
	}
	log.Printf("granted %d xp to %s, total %d", amount, player, total)
	id, ok := r.players.sessionOf(player)
	if !ok {
		return
	}
	sess, ok := r.server.Session(id)
	if !ok {
		return
	}
	req := &proto.UpdateXPRequest{
		Granted: amount,
		Total:   total,
	}
	sess.Push("Player.UpdateXP", req, new(proto.UpdateXPResponse))
}
