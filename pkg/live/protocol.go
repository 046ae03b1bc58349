package live

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/recera/nodegraph/pkg/editor"
	"github.com/recera/nodegraph/pkg/render"
)

// Client message types.
const (
	MsgPointerDown   = "pointerdown"
	MsgPointerMove   = "pointermove"
	MsgPointerUp     = "pointerup"
	MsgPointerCancel = "pointercancel"
	MsgWheel         = "wheel"
	MsgKeyDown       = "keydown"
	MsgResize        = "resize"
	MsgAction        = "action"
)

// Server frame types.
const (
	FrameHello  = "hello"
	FrameScene  = "scene"
	FrameStatus = "status"
	FrameRecipe = "recipe"
	FrameError  = "error"
)

// Actions carried by MsgAction.
const (
	ActionCreateNode       = "createNode"
	ActionConnect          = "connect"
	ActionRemoveNode       = "removeNode"
	ActionRemoveConnection = "removeConnection"
	ActionDeleteSelected   = "deleteSelected"
	ActionSelectAll        = "selectAll"
	ActionClearSelection   = "clearSelection"
	ActionClear            = "clear"
	ActionLoadRecipe       = "loadRecipe"
	ActionSaveRecipe       = "saveRecipe"
	ActionResetLayout      = "resetLayout"
	ActionZoomIn           = "zoomIn"
	ActionZoomOut          = "zoomOut"
	ActionZoomReset        = "zoomReset"
	ActionFitGraph         = "fitGraph"
	ActionFocusNode        = "focusNode"
	ActionSetNickName      = "setNickName"
	ActionSetValue         = "setValue"
	ActionTogglePin        = "togglePin"
	ActionToggleGrid       = "toggleGrid"
	ActionToggleWires      = "toggleWires"
)

var (
	// ErrUnknownMessage is returned for a message type the server does not handle.
	ErrUnknownMessage = errors.New("live: unknown message type")
	// ErrUnknownAction is returned for an action name the server does not handle.
	ErrUnknownAction = errors.New("live: unknown action")
)

// Envelope is the wire form of every client message.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ResizeMessage reports the editor's size in pixels.
type ResizeMessage struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Action is a toolbar or context-menu command. Only the fields the named
// action needs are read.
type Action struct {
	Name string `json:"name"`

	ID      string   `json:"id,omitempty"`
	Address string   `json:"address,omitempty"`
	X       *float64 `json:"x,omitempty"`
	Y       *float64 `json:"y,omitempty"`

	SourceNode   string `json:"sourceNodeId,omitempty"`
	SourceAnchor string `json:"sourceAnchor,omitempty"`
	TargetNode   string `json:"targetNodeId,omitempty"`
	TargetAnchor string `json:"targetAnchor,omitempty"`

	Recipe     string  `json:"recipe,omitempty"`
	ClearFirst bool    `json:"clearFirst,omitempty"`
	NickName   string  `json:"nickName,omitempty"`
	Value      float64 `json:"value,omitempty"`
	Padding    float64 `json:"padding,omitempty"`
}

// Frame is the wire form of every server message.
type Frame struct {
	Type     string         `json:"type"`
	Session  string         `json:"session,omitempty"`
	Scene    *render.Scene  `json:"scene,omitempty"`
	Status   *editor.Status `json:"status,omitempty"`
	Recipe   string         `json:"recipe,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
	Error    string         `json:"error,omitempty"`
	Schema   string         `json:"schema,omitempty"`
}

// DecodeEnvelope parses one client message.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return env, fmt.Errorf("live: decode message: %w", err)
	}
	if env.Type == "" {
		return env, fmt.Errorf("%w: missing type", ErrUnknownMessage)
	}
	return env, nil
}

// Payload decodes the envelope's data into v. A missing payload leaves v
// untouched.
func (e Envelope) Payload(v interface{}) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("live: decode %s payload: %w", e.Type, err)
	}
	return nil
}
