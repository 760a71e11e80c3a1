package main

import (
	"net"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gocraft "github.com/icexin/gocraft-quests/client"
	"github.com/icexin/gocraft-quests/proto"
	"github.com/icexin/gocraft-quests/quest"
)

type testWorld struct {
	addr    string
	store   *Store
	tracker *quest.Tracker
	players *PlayerService
}

func newTestWorld(t *testing.T, cfg quest.Config) *testWorld {
	t.Helper()
	store := newTestStore(t)
	server := NewServer()
	players := NewPlayerService(server)
	chat := NewChat(server, players)
	tracker := quest.NewTracker(cfg, chat, NewXPRewards(store, server, players))
	require.NoError(t, server.RegisterService("Block", NewBlockService(server, store, players, tracker)))
	require.NoError(t, server.RegisterService("Player", players))
	require.NoError(t, server.RegisterService("Command", NewCommandService(players, chat, quest.NewCommand(tracker))))

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go server.Serve(l)
	t.Cleanup(server.Close)
	return &testWorld{
		addr:    l.Addr().String(),
		store:   store,
		tracker: tracker,
		players: players,
	}
}

type chatInbox struct {
	ch chan proto.ChatMessageRequest
}

func (c *chatInbox) Message(req *proto.ChatMessageRequest, rep *proto.ChatMessageResponse) error {
	c.ch <- *req
	return nil
}

type playerInbox struct {
	xp chan proto.UpdateXPRequest
}

func (p *playerInbox) UpdateXP(req *proto.UpdateXPRequest, rep *proto.UpdateXPResponse) error {
	p.xp <- *req
	return nil
}

func (p *playerInbox) RemovePlayer(req *proto.RemovePlayerRequest, rep *proto.RemovePlayerResponse) error {
	return nil
}

type blockInbox struct{}

func (blockInbox) UpdateBlock(req *proto.UpdateBlockRequest, rep *proto.UpdateBlockResponse) error {
	return nil
}

type testClient struct {
	*gocraft.Client
	chat   *chatInbox
	player *playerInbox
}

func dialTestClient(t *testing.T, addr string) *testClient {
	t.Helper()
	c := &testClient{
		Client: gocraft.NewClient(),
		chat:   &chatInbox{ch: make(chan proto.ChatMessageRequest, 16)},
		player: &playerInbox{xp: make(chan proto.UpdateXPRequest, 4)},
	}
	require.NoError(t, c.RegisterService("Chat", c.chat))
	require.NoError(t, c.RegisterService("Player", c.player))
	require.NoError(t, c.RegisterService("Block", blockInbox{}))
	require.NoError(t, c.Dial(addr))
	t.Cleanup(c.Close)
	return c
}

// expect waits for n chat messages and returns them in send order.
func (c *testClient) expect(t *testing.T, n int) []string {
	t.Helper()
	var msgs []proto.ChatMessageRequest
	timeout := time.After(5 * time.Second)
	for len(msgs) < n {
		select {
		case m := <-c.chat.ch:
			msgs = append(msgs, m)
		case <-timeout:
			t.Fatalf("got %d of %d messages: %v", len(msgs), n, msgs)
		}
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].Seq < msgs[j].Seq })
	texts := make([]string, len(msgs))
	for i, m := range msgs {
		texts[i] = m.Text
	}
	return texts
}

func (c *testClient) breakBlock(t *testing.T, x, y, z, w int) {
	t.Helper()
	_, err := c.UpdateBlock(x, y, z, w)
	require.NoError(t, err)
	_, err = c.UpdateBlock(x, y, z, proto.BlockAir)
	require.NoError(t, err)
}

func TestQuestOverSession(t *testing.T) {
	world := newTestWorld(t, quest.Config{DiamondsRequired: 2, RewardXP: 30, Qualifying: quest.DiamondOres()})
	c := dialTestClient(t, world.addr)

	require.NoError(t, c.RunCommand("quest", "start"))
	assert.Equal(t, []string{"This command can only be run by a player."}, c.expect(t, 1))

	err := c.RunCommand("spawn")
	assert.ErrorContains(t, err, "unknown command")

	id, err := c.Login("steve")
	require.NoError(t, err)
	steve := quest.OfflinePlayerID("steve")
	assert.Equal(t, steve.String(), id)

	require.NoError(t, c.RunCommand("quest"))
	assert.Equal(t, []string{"Usage: /quest <start|status>"}, c.expect(t, 1))

	require.NoError(t, c.RunCommand("quest", "start"))
	assert.Equal(t, []string{"Quest started: Collect 2 diamonds!"}, c.expect(t, 1))

	c.breakBlock(t, 1, 2, 3, proto.BlockStone)
	c.breakBlock(t, 1, 2, 4, proto.BlockDiamondOre)
	assert.Equal(t, []string{"Diamond collected! Progress: 1/2"}, c.expect(t, 1))
	st, ok := world.tracker.Progress(steve)
	require.True(t, ok)
	assert.Equal(t, 1, st.Collected)

	// breaking air again is not a break
	_, err = c.UpdateBlock(1, 2, 4, proto.BlockAir)
	require.NoError(t, err)

	c.breakBlock(t, -40, 2, 5, proto.BlockDeepslateDiamondOre)
	assert.Equal(t, []string{
		"Diamond collected! Progress: 2/2",
		"Quest complete! You collected 2 diamonds.",
		"You received 30 XP!",
	}, c.expect(t, 3))

	select {
	case xp := <-c.player.xp:
		assert.Equal(t, proto.UpdateXPRequest{Granted: 30, Total: 30}, xp)
	case <-time.After(5 * time.Second):
		t.Fatal("no xp update")
	}
	assert.Equal(t, 30, world.store.XP(steve))
	_, ok = world.tracker.Progress(steve)
	assert.False(t, ok)

	require.NoError(t, c.RunCommand("quest", "status"))
	assert.Equal(t, []string{"You are not currently on a quest. Type '/quest start' to begin."}, c.expect(t, 1))
}

func TestProgressSurvivesReconnect(t *testing.T) {
	world := newTestWorld(t, quest.Config{DiamondsRequired: 5, RewardXP: 10, Qualifying: quest.DiamondOres()})
	steve := quest.OfflinePlayerID("steve")

	c := dialTestClient(t, world.addr)
	_, err := c.Login("steve")
	require.NoError(t, err)

	other := dialTestClient(t, world.addr)
	_, err = other.Login("steve")
	assert.ErrorContains(t, err, "already online")

	require.NoError(t, c.RunCommand("quest", "start"))
	c.expect(t, 1)
	c.breakBlock(t, 0, 0, 0, proto.BlockDiamondOre)
	c.expect(t, 1)

	// someone who is not on the quest mines without effect
	_, err = other.Login("alex")
	require.NoError(t, err)
	other.breakBlock(t, 0, 1, 0, proto.BlockDiamondOre)
	_, ok := world.tracker.Progress(quest.OfflinePlayerID("alex"))
	assert.False(t, ok)

	c.Close()
	require.Eventually(t, func() bool {
		_, online := world.players.sessionOf(steve)
		return !online
	}, 5*time.Second, 10*time.Millisecond)

	c = dialTestClient(t, world.addr)
	_, err = c.Login("steve")
	require.NoError(t, err)
	require.NoError(t, c.RunCommand("quest", "status"))
	assert.Equal(t, []string{"Quest status: 1/5 diamonds collected."}, c.expect(t, 1))
}

func TestForgedSessionIdIgnored(t *testing.T) {
	world := newTestWorld(t, quest.Config{DiamondsRequired: 3, RewardXP: 10, Qualifying: quest.DiamondOres()})
	steve := quest.OfflinePlayerID("steve")

	victim := dialTestClient(t, world.addr)
	_, err := victim.Login("steve")
	require.NoError(t, err)

	intruder := dialTestClient(t, world.addr)
	require.NotEqual(t, victim.ClientId, intruder.ClientId)

	req := &proto.RunCommandRequest{Id: victim.ClientId, Name: "quest", Args: []string{"start"}}
	require.NoError(t, intruder.Call("Command.Run", req, new(proto.RunCommandResponse)))
	assert.Equal(t, []string{"This command can only be run by a player."}, intruder.expect(t, 1))
	_, ok := world.tracker.Progress(steve)
	assert.False(t, ok)

	require.NoError(t, victim.RunCommand("quest", "start"))
	victim.expect(t, 1)

	for _, w := range []int{proto.BlockDiamondOre, proto.BlockAir} {
		breq := &proto.UpdateBlockRequest{Id: victim.ClientId, X: 3, Y: 4, Z: 5, W: w}
		require.NoError(t, intruder.Call("Block.UpdateBlock", breq, new(proto.UpdateBlockResponse)))
	}
	st, ok := world.tracker.Progress(steve)
	require.True(t, ok)
	assert.Equal(t, 0, st.Collected)

	lreq := &proto.LoginRequest{Id: victim.ClientId, Name: "alex"}
	rep := new(proto.LoginResponse)
	require.NoError(t, intruder.Call("Player.Login", lreq, rep))
	assert.Equal(t, quest.OfflinePlayerID("alex").String(), rep.Player)
	id, ok := world.players.player(victim.ClientId)
	require.True(t, ok)
	assert.Equal(t, steve, id)
}
