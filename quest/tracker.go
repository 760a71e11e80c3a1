package quest

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
)

// State is the progress of a single player.
type State struct {
	Active    bool
	Collected int
}

// Entry is a State tagged with its owner, as returned by Snapshot.
type Entry struct {
	Player    PlayerID
	Collected int
	Required  int
}

// Tracker holds the quest state of every player. Players without an entry
// have either never started the quest or have completed it.
//
// The messenger and the reward grantor are called with the tracker locked;
// they must not call back into the tracker.
type Tracker struct {
	cfg     Config
	msg     Messenger
	rewards RewardGrantor

	mutex   sync.Mutex
	players map[PlayerID]*State
}

func NewTracker(cfg Config, msg Messenger, rewards RewardGrantor) *Tracker {
	return &Tracker{
		cfg:     cfg,
		msg:     msg,
		rewards: rewards,
		players: make(map[PlayerID]*State),
	}
}

func (t *Tracker) Config() Config {
	return t.cfg
}

// Start puts the player on the quest. Starting twice only reports progress.
func (t *Tracker) Start(player PlayerID) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if st, ok := t.players[player]; ok {
		t.msg.Send(player, fmt.Sprintf("You are already on the quest! Current progress: %d/%d diamonds.",
			st.Collected, t.cfg.DiamondsRequired))
		return
	}
	t.players[player] = &State{Active: true}
	t.msg.Send(player, fmt.Sprintf("Quest started: Collect %d diamonds!", t.cfg.DiamondsRequired))
}

func (t *Tracker) Status(player PlayerID) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	st, ok := t.players[player]
	if !ok {
		t.msg.Send(player, "You are not currently on a quest. Type '/quest start' to begin.")
		return
	}
	t.msg.Send(player, fmt.Sprintf("Quest status: %d/%d diamonds collected.",
		st.Collected, t.cfg.DiamondsRequired))
}

// OnBlockBreak counts a broken block of kind w towards the player's quest.
// Events from players not on the quest and non-qualifying blocks are ignored.
func (t *Tracker) OnBlockBreak(player PlayerID, w int) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	st, ok := t.players[player]
	if !ok || !t.cfg.Qualifying.Contains(w) {
		return
	}
	st.Collected++
	t.msg.Send(player, fmt.Sprintf("Diamond collected! Progress: %d/%d", st.Collected, t.cfg.DiamondsRequired))
	if st.Collected < t.cfg.DiamondsRequired {
		return
	}

	t.msg.Send(player, fmt.Sprintf("Quest complete! You collected %d diamonds.", t.cfg.DiamondsRequired))
	t.rewards.GrantXP(player, t.cfg.RewardXP)
	t.msg.Send(player, fmt.Sprintf("You received %d XP!", t.cfg.RewardXP))
	delete(t.players, player)
}

// Progress returns a copy of the player's state.
func (t *Tracker) Progress(player PlayerID) (State, bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	st, ok := t.players[player]
	if !ok {
		return State{}, false
	}
	return *st, true
}

// Snapshot lists every player on the quest, ordered by id.
func (t *Tracker) Snapshot() []Entry {
	t.mutex.Lock()
	entries := make([]Entry, 0, len(t.players))
	for id, st := range t.players {
		entries = append(entries, Entry{
			Player:    id,
			Collected: st.Collected,
			Required:  t.cfg.DiamondsRequired,
		})
	}
	t.mutex.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].Player[:], entries[j].Player[:]) < 0
	})
	return entries
}
