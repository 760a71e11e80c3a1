package main

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/icexin/gocraft-quests/proto"
	"github.com/icexin/gocraft-quests/quest"
)

var (
	errUnknownSession = errors.New("unknown session")
	errEmptyName      = errors.New("empty player name")
	errAlreadyOnline  = errors.New("player already online")
)

// BreakListener is told about every block a player removes from the world.
type BreakListener interface {
	OnBlockBreak(player quest.PlayerID, w int)
}

type BlockService struct {
	mutex    sync.Mutex
	server   *Server
	store    *Store
	players  *PlayerService
	listener BreakListener
}

func NewBlockService(s *Server, store *Store, players *PlayerService, listener BreakListener) *BlockService {
	return &BlockService{
		server:   s,
		store:    store,
		players:  players,
		listener: listener,
	}
}

func (s *BlockService) UpdateBlock(req *proto.UpdateBlockRequest, rep *proto.UpdateBlockResponse) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	log.Printf("UpdateBlock: %v (%s)", req, proto.BlockName(req.W))
	pos := Vec3{req.X, req.Y, req.Z}
	prev := s.store.GetBlock(pos)
	version := GenerateChunkVersion()
	if err := s.store.UpdateBlock(pos, req.W); err != nil {
		return err
	}
	if err := s.store.UpdateChunkVersion(Vec3{req.P, 0, req.Q}, version); err != nil {
		return err
	}
	req.Version = version
	rep.Version = version
	s.server.RangeSession(func(id int32, sess *Session) {
		if id == req.Id {
			return
		}
		sess.Push("Block.UpdateBlock", req, new(proto.UpdateBlockResponse))
	})

	if req.W == proto.BlockAir && prev != proto.BlockAir {
		if player, ok := s.players.player(req.Id); ok {
			s.listener.OnBlockBreak(player, prev)
		}
	}
	return nil
}

func (s *BlockService) FetchChunk(req *proto.FetchChunkRequest, rep *proto.FetchChunkResponse) error {
	id := Vec3{req.P, 0, req.Q}
	version := s.store.GetChunkVersion(id)
	rep.Version = version
	if req.Version == version {
		return nil
	}
	return s.store.RangeBlocks(id, func(bid Vec3, w int) {
		rep.Blocks = append(rep.Blocks, [...]int{bid.X, bid.Y, bid.Z, w})
	})
}

type playerInfo struct {
	state    proto.PlayerState
	name     string
	id       quest.PlayerID
	loggedIn bool
}

type PlayerService struct {
	mutex   sync.Mutex
	server  *Server
	players map[int32]*playerInfo
}

func NewPlayerService(server *Server) *PlayerService {
	s := &PlayerService{
		server:  server,
		players: make(map[int32]*playerInfo),
	}
	server.SetPlayerCallback(s.onPlayerCallback)
	return s
}

// Login binds a session to a player. Until then the session may watch the
// world but is not a player.
func (s *PlayerService) Login(req *proto.LoginRequest, rep *proto.LoginResponse) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return errEmptyName
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	info, ok := s.players[req.Id]
	if !ok {
		return errUnknownSession
	}
	id := quest.OfflinePlayerID(name)
	for sid, other := range s.players {
		if sid != req.Id && other.loggedIn && other.id == id {
			return fmt.Errorf("%w: %s", errAlreadyOnline, name)
		}
	}
	info.name = name
	info.id = id
	info.loggedIn = true
	log.Printf("session %d logged in as %s(%s)", req.Id, name, id)
	rep.Player = id.String()
	return nil
}

func (s *PlayerService) UpdateState(req *proto.UpdateStateRequest, rep *proto.UpdateStateResponse) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	info, ok := s.players[req.Id]
	if !ok {
		return nil
	}
	info.state = req.State
	rep.Players = make(map[int32]proto.PlayerState)
	for id, other := range s.players {
		if id == req.Id {
			continue
		}
		rep.Players[id] = other.state
	}
	return nil
}

// player returns the player bound to session id.
func (s *PlayerService) player(id int32) (quest.PlayerID, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	info, ok := s.players[id]
	if !ok || !info.loggedIn {
		return quest.PlayerID{}, false
	}
	return info.id, true
}

// sessionOf returns the session the player is logged in on.
func (s *PlayerService) sessionOf(player quest.PlayerID) (int32, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for id, info := range s.players {
		if info.loggedIn && info.id == player {
			return id, true
		}
	}
	return 0, false
}

func (s *PlayerService) onPlayerCallback(action string, id int32) {
	switch action {
	case "online":
		s.addPlayer(id)
	case "offline":
		s.removePlayer(id)
	}
}

func (s *PlayerService) removePlayer(pid int32) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.players, pid)
	req := &proto.RemovePlayerRequest{
		Id: pid,
	}
	s.server.RangeSession(func(id int32, sess *Session) {
		if id == pid {
			return
		}
		sess.Push("Player.RemovePlayer", req, new(proto.RemovePlayerResponse))
	})
}

func (s *PlayerService) addPlayer(pid int32) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.players[pid] = &playerInfo{}
}

// Command is a chat command such as /quest.
type Command interface {
	Name() string
	Execute(sender quest.Sender, args []string)
}

type CommandService struct {
	players  *PlayerService
	chat     *Chat
	commands map[string]Command
}

func NewCommandService(players *PlayerService, chat *Chat, commands ...Command) *CommandService {
	s := &CommandService{
		players:  players,
		chat:     chat,
		commands: make(map[string]Command),
	}
	for _, c := range commands {
		s.commands[strings.ToLower(c.Name())] = c
	}
	return s
}

func (s *CommandService) Run(req *proto.RunCommandRequest, rep *proto.RunCommandResponse) error {
	cmd, ok := s.commands[strings.ToLower(req.Name)]
	if !ok {
		return fmt.Errorf("unknown command %q", req.Name)
	}
	log.Printf("session %d: /%s %s", req.Id, req.Name, strings.Join(req.Args, " "))
	cmd.Execute(&sessionSender{id: req.Id, players: s.players, chat: s.chat}, req.Args)
	return nil
}

// sessionSender is the command sender for a connected session.
type sessionSender struct {
	id      int32
	players *PlayerService
	chat    *Chat
}

func (s *sessionSender) Player() (quest.PlayerID, bool) {
	return s.players.player(s.id)
}

func (s *sessionSender) SendMessage(text string) {
	s.chat.SendSession(s.id, text)
}
