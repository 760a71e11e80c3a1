package quest

import "strings"

const (
	usageMessage     = "Usage: /quest <start|status>"
	notPlayerMessage = "This command can only be run by a player."
)

// Sender is whoever issued a command. Only senders bound to a player may
// use the quest.
type Sender interface {
	Player() (PlayerID, bool)
	SendMessage(text string)
}

// Command implements /quest.
type Command struct {
	tracker *Tracker
}

func NewCommand(t *Tracker) *Command {
	return &Command{tracker: t}
}

func (c *Command) Name() string {
	return "quest"
}

func (c *Command) Execute(sender Sender, args []string) {
	player, ok := sender.Player()
	if !ok {
		sender.SendMessage(notPlayerMessage)
		return
	}
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "start":
			c.tracker.Start(player)
			return
		case "status":
			c.tracker.Status(player)
			return
		}
	}
	sender.SendMessage(usageMessage)
}
