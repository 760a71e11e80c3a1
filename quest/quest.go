// Package quest tracks the per-player "collect N diamonds" quest.
//
// A Tracker owns the progress of every player on the quest. It is fed by two
// inbound hooks, a /quest command (see Command) and a block break
// notification (Tracker.OnBlockBreak), and talks back to the host through the
// Messenger and RewardGrantor interfaces.
package quest

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/icexin/gocraft-quests/proto"
)

// PlayerID identifies a player. It is assigned by the host.
type PlayerID = uuid.UUID

// OfflinePlayerID derives the id of a player from its login name, the same
// way offline-mode servers do.
func OfflinePlayerID(name string) PlayerID {
	return uuid.NewMD5(uuid.Nil, []byte("OfflinePlayer:"+name))
}

// Messenger delivers chat text to a player.
type Messenger interface {
	Send(player PlayerID, text string)
}

// RewardGrantor gives experience to a player.
type RewardGrantor interface {
	GrantXP(player PlayerID, amount int)
}

const (
	DefaultDiamondsRequired = 10
	DefaultRewardXP         = 100
)

// Config is loaded once at startup and never changed afterwards.
type Config struct {
	DiamondsRequired int
	RewardXP         int
	Qualifying       BlockSet
}

func DefaultConfig() Config {
	return Config{
		DiamondsRequired: DefaultDiamondsRequired,
		RewardXP:         DefaultRewardXP,
		Qualifying:       DiamondOres(),
	}
}

var (
	ErrDiamondsRequired = errors.New("diamondsRequired must be positive")
	ErrRewardXP         = errors.New("rewardXp must not be negative")
	ErrNoQualifying     = errors.New("no qualifying blocks")
)

func (c Config) Validate() error {
	if c.DiamondsRequired <= 0 {
		return fmt.Errorf("%w: %d", ErrDiamondsRequired, c.DiamondsRequired)
	}
	if c.RewardXP < 0 {
		return fmt.Errorf("%w: %d", ErrRewardXP, c.RewardXP)
	}
	if c.Qualifying.Len() == 0 {
		return ErrNoQualifying
	}
	return nil
}

// BlockSet is a closed set of block kinds.
type BlockSet struct {
	kinds map[int]struct{}
}

func NewBlockSet(kinds ...int) BlockSet {
	s := BlockSet{kinds: make(map[int]struct{}, len(kinds))}
	for _, w := range kinds {
		s.kinds[w] = struct{}{}
	}
	return s
}

// DiamondOres is the shallow and the deep variant of diamond ore.
func DiamondOres() BlockSet {
	return NewBlockSet(proto.BlockDiamondOre, proto.BlockDeepslateDiamondOre)
}

func (s BlockSet) Contains(w int) bool {
	_, ok := s.kinds[w]
	return ok
}

func (s BlockSet) Len() int {
	return len(s.kinds)
}
