package proto

// block kinds

const (
	BlockAir                 = 0
	BlockGrass               = 1
	BlockSand                = 2
	BlockStone               = 6
	BlockDirt                = 7
	BlockCobble              = 11
	BlockDiamondOre          = 56
	BlockDeepslate           = 90
	BlockDeepslateDiamondOre = 91
)

var blockNames = map[string]int{
	"air":                   BlockAir,
	"grass":                 BlockGrass,
	"sand":                  BlockSand,
	"stone":                 BlockStone,
	"dirt":                  BlockDirt,
	"cobblestone":           BlockCobble,
	"diamond_ore":           BlockDiamondOre,
	"deepslate":             BlockDeepslate,
	"deepslate_diamond_ore": BlockDeepslateDiamondOre,
}

// BlockByName resolves a block name as used in config files.
func BlockByName(name string) (int, bool) {
	w, ok := blockNames[name]
	return w, ok
}

// BlockName is the inverse of BlockByName. Unknown kinds yield "".
func BlockName(w int) string {
	for name, id := range blockNames {
		if id == w {
			return name
		}
	}
	return ""
}

// SessionRequest is a request sent on behalf of a session. The server
// overwrites the id with the one of the connection the request arrived on.
type SessionRequest interface {
	SetSession(id int32)
}

func (r *UpdateBlockRequest) SetSession(id int32) { r.Id = id }
func (r *LoginRequest) SetSession(id int32)       { r.Id = id }
func (r *UpdateStateRequest) SetSession(id int32) { r.Id = id }
func (r *RunCommandRequest) SetSession(id int32)  { r.Id = id }

// block service

type UpdateBlockRequest struct {
	Id      int32
	P, Q    int
	X, Y, Z int
	W       int
	Version string // used by server
}

type UpdateBlockResponse struct {
	Version string
}

type FetchChunkRequest struct {
	P, Q    int
	Version string
}

type FetchChunkResponse struct {
	Blocks  [][4]int
	Version string
}

// player service

type PlayerState struct {
	X, Y, Z float32
	Rx, Ry  float32
}

type LoginRequest struct {
	Id   int32
	Name string
}

type LoginResponse struct {
	Player string // uuid
}

type UpdateStateRequest struct {
	Id    int32
	State PlayerState
}

type UpdateStateResponse struct {
	Players map[int32]PlayerState
}

type RemovePlayerRequest struct {
	Id int32
}

type RemovePlayerResponse struct {
}

// pushed to the client after an experience grant
type UpdateXPRequest struct {
	Granted int
	Total   int
}

type UpdateXPResponse struct {
}

// command service

type RunCommandRequest struct {
	Id   int32
	Name string
	Args []string
}

type RunCommandResponse struct {
}

// chat, pushed to the client

type ChatMessageRequest struct {
	Seq  uint64
	Text string
}

type ChatMessageResponse struct {
}
