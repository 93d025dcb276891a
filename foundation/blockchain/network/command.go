// Package network implements the wire protocol nodes use to talk to each
// other. Every message is a single line of JSON sent over its own TCP
// connection.
package network

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
)

// ObjectType identifies the kind of value an action is about.
type ObjectType string

// Set of object types.
const (
	ObjectBlock ObjectType = "Block"
	ObjectTx    ObjectType = "Tx"
)

// ActionKind identifies what is being asked of the receiving node.
type ActionKind string

// Set of action kinds.
const (
	KindSyncRequest  ActionKind = "SyncRequest"
	KindSyncResponse ActionKind = "SyncResponse"
	KindBroadcast    ActionKind = "Broadcast"
)

// ActionType is the action of a command. On the wire it is an object with
// a single key, e.g. {"Broadcast":"Tx"}.
type ActionType struct {
	Kind   ActionKind
	Object ObjectType
}

// Set of actions supported by the protocol.
var (
	SyncRequestBlock  = ActionType{Kind: KindSyncRequest, Object: ObjectBlock}
	SyncRequestTx     = ActionType{Kind: KindSyncRequest, Object: ObjectTx}
	SyncResponseBlock = ActionType{Kind: KindSyncResponse, Object: ObjectBlock}
	SyncResponseTx    = ActionType{Kind: KindSyncResponse, Object: ObjectTx}
	BroadcastBlock    = ActionType{Kind: KindBroadcast, Object: ObjectBlock}
	BroadcastTx       = ActionType{Kind: KindBroadcast, Object: ObjectTx}
)

// String implements the Stringer interface.
func (a ActionType) String() string {
	return fmt.Sprintf("%s(%s)", a.Kind, a.Object)
}

// MarshalJSON implements the json.Marshaler interface.
func (a ActionType) MarshalJSON() ([]byte, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}

	return json.Marshal(map[ActionKind]ObjectType{a.Kind: a.Object})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (a *ActionType) UnmarshalJSON(data []byte) error {
	var m map[ActionKind]ObjectType
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	if len(m) != 1 {
		return errors.New("action must have exactly one kind")
	}

	for kind, object := range m {
		at := ActionType{Kind: kind, Object: object}
		if err := at.validate(); err != nil {
			return err
		}
		*a = at
	}

	return nil
}

func (a ActionType) validate() error {
	switch a.Kind {
	case KindSyncRequest, KindSyncResponse, KindBroadcast:
	default:
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}

	switch a.Object {
	case ObjectBlock, ObjectTx:
	default:
		return fmt.Errorf("unknown object type %q", a.Object)
	}

	return nil
}

// =============================================================================

// Command is the envelope for every message sent between nodes.
type Command[T any] struct {
	Action  ActionType `json:"action"`
	Payload T          `json:"payload"`
}

// NewCommand constructs a command for the specified action and payload.
func NewCommand[T any](action ActionType, payload T) Command[T] {
	return Command[T]{
		Action:  action,
		Payload: payload,
	}
}

// SyncRequest asks a peer to send its blocks or transactions to the
// specified peer.
type SyncRequest struct {
	Peer string `json:"peer"`
}

// SyncResponse carries the blocks or transactions asked for by a
// sync request.
type SyncResponse[T any] struct {
	Data []T `json:"data"`
}

// Payload schemas that can be received.
type (
	BlockSync = SyncResponse[database.Block]
	TxSync    = SyncResponse[database.Tx]
)
