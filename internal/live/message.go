package live

import (
	"github.com/dshills/sceneforge/internal/link"
	"github.com/dshills/sceneforge/internal/scene"
)

// Command operations.
const (
	OpSet        = "set"
	OpConnect    = "connect"
	OpDisconnect = "disconnect"
	OpRemove     = "remove"
	OpAnimate    = "animate"
	OpReverse    = "reverse"
	OpReset      = "reset"
	OpFinish     = "finish"
)

// Command is a client request.
type Command struct {
	Op         string   `json:"op"`
	ID         string   `json:"id,omitempty"`
	Value      *float64 `json:"value,omitempty"`
	Expression string   `json:"expression,omitempty"`
}

// Message types pushed to clients.
const (
	TypeTracker = "tracker"
	TypeRemoved = "removed"
	TypeLedger  = "ledger"
	TypeScene   = "scene"
	TypeReply   = "reply"
)

// TrackerMessage reports a tracker value.
type TrackerMessage struct {
	Type  string  `json:"type"`
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

// RemovedMessage reports a removed tracker.
type RemovedMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// LedgerMessage reports the ledger state.
type LedgerMessage struct {
	Type   string     `json:"type"`
	Active int        `json:"active"`
	Groups [][]string `json:"groups"`
	Labels []string   `json:"labels"`
}

// SceneMessage carries a whole scene document.
type SceneMessage struct {
	Type  string          `json:"type"`
	Scene *scene.Document `json:"scene"`
}

// ReplyMessage answers a command.
type ReplyMessage struct {
	Type string `json:"type"`
	link.Result
}

func reply(r link.Result) ReplyMessage {
	return ReplyMessage{Type: TypeReply, Result: r}
}
