package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/recera/nodegraph/pkg/editor"
	"github.com/recera/nodegraph/pkg/graph"
	"github.com/recera/nodegraph/pkg/interaction"
	"github.com/recera/nodegraph/pkg/recipe"
	"github.com/recera/nodegraph/pkg/scheduler"
)

// Session is one connected editor.
type Session struct {
	ID string

	server *Server
	conn   *websocket.Conn
	log    *zap.Logger

	editor *editor.Session
	loop   *scheduler.Loop

	sendChan  chan []byte
	closeChan chan struct{}
	closeOnce sync.Once

	// warnings from the last recipe load, attached to the next status frame.
	warnings []string
}

func newSession(srv *Server, conn *websocket.Conn) *Session {
	s := &Session{
		ID:        newID(),
		server:    srv,
		conn:      conn,
		sendChan:  make(chan []byte, sendBuffer),
		closeChan: make(chan struct{}),
	}
	s.log = srv.log.With(zap.String("session", s.ID))
	opts := []editor.Option{
		editor.WithLogger(s.log),
		editor.WithLayout(srv.opts.Layout),
		editor.WithLayoutOptions(srv.opts.LayoutOptions),
		editor.WithViewport(srv.opts.Viewport),
	}
	if srv.opts.Geometry != nil {
		opts = append(opts, editor.WithGraphOptions(graph.WithMetrics(*srv.opts.Geometry)))
	}
	s.editor = editor.New(srv.Catalog(), opts...)
	s.loop = scheduler.NewLoop(
		scheduler.WithFrameInterval(srv.opts.FrameInterval),
		scheduler.WithFrame(s.onFrame),
		scheduler.WithRender(s.onRender),
		scheduler.WithErrorHandler(s.onPanic),
		scheduler.WithLogger(s.log),
	)
	return s
}

// Close ends the connection. The read loop notices and cleans up.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.closeChan)
		s.conn.Close()
	})
}

// handleConnection runs the session until the client goes away.
func (s *Session) handleConnection() {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		s.Close()
		<-s.loop.Done()
		s.editor.Close()
		s.log.Info("session closed")
	}()

	go s.writer()
	go func() {
		if err := s.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Error("session loop stopped", zap.Error(err))
			s.Close()
		}
	}()

	s.send(Frame{Type: FrameHello, Session: s.ID})
	s.log.Info("session opened")
	_ = s.loop.Post(func() {
		st := s.editor.Status()
		s.send(Frame{Type: FrameStatus, Status: &st})
		s.loop.MarkDirty()
	})

	s.conn.SetReadDeadline(time.Now().Add(readWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(readWait))
		return nil
	})

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("unexpected close", zap.Error(err))
			} else {
				s.log.Debug("read ended", zap.Error(err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			s.log.Debug("ignoring non-text message", zap.Int("type", messageType))
			continue
		}
		s.dispatch(data)
	}
}

// writer drains the send queue and keeps the connection alive.
func (s *Session) writer() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message := <-s.sendChan:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.log.Debug("failed to write message", zap.Error(err))
				s.Close()
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}

		case <-s.closeChan:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// send queues a frame. It blocks while the queue is full and drops the
// frame once the session is closing.
func (s *Session) send(f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		s.log.Error("failed to encode frame", zap.String("type", f.Type), zap.Error(err))
		return
	}
	select {
	case s.sendChan <- data:
		s.server.metrics.RecordFrame(f.Type)
	case <-s.closeChan:
	}
}

// dispatch decodes a client message on the reader goroutine and runs it on
// the session loop.
func (s *Session) dispatch(data []byte) {
	env, err := DecodeEnvelope(data)
	if err != nil {
		s.server.metrics.RecordMessage("invalid", err)
		s.send(errorFrame(err))
		return
	}
	err = s.loop.Post(func() {
		err := s.handle(env)
		s.server.metrics.RecordMessage(env.Type, err)
		if err != nil {
			s.log.Debug("message failed", zap.String("type", env.Type), zap.Error(err))
			s.send(errorFrame(err))
		}
		st := s.editor.Status()
		s.send(Frame{Type: FrameStatus, Status: &st, Warnings: s.warnings})
		s.warnings = nil
		s.loop.MarkDirty()
	})
	if err != nil {
		s.log.Debug("dropping message", zap.String("type", env.Type), zap.Error(err))
	}
}

func (s *Session) handle(env Envelope) error {
	switch env.Type {
	case MsgPointerDown, MsgPointerMove, MsgPointerUp, MsgPointerCancel:
		var ev interaction.PointerEvent
		if err := env.Payload(&ev); err != nil {
			return err
		}
		switch env.Type {
		case MsgPointerDown:
			s.editor.PointerDown(ev)
		case MsgPointerMove:
			s.editor.PointerMove(ev)
		case MsgPointerUp:
			s.editor.PointerUp(ev)
		default:
			s.editor.PointerCancel(ev)
		}
	case MsgWheel:
		var ev interaction.WheelEvent
		if err := env.Payload(&ev); err != nil {
			return err
		}
		s.editor.Wheel(ev)
	case MsgKeyDown:
		var ev interaction.KeyEvent
		if err := env.Payload(&ev); err != nil {
			return err
		}
		s.editor.KeyDown(ev)
	case MsgResize:
		var m ResizeMessage
		if err := env.Payload(&m); err != nil {
			return err
		}
		s.editor.Resize(m.Width, m.Height)
	case MsgAction:
		var a Action
		if err := env.Payload(&a); err != nil {
			return err
		}
		return s.handleAction(a)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownMessage, env.Type)
	}
	return nil
}

func (s *Session) handleAction(a Action) error {
	ed := s.editor
	switch a.Name {
	case ActionCreateNode:
		var err error
		if a.X != nil && a.Y != nil {
			_, err = ed.CreateNode(a.Address, *a.X, *a.Y)
		} else {
			_, err = ed.CreateNodeAtCenter(a.Address)
		}
		return err
	case ActionConnect:
		_, err := ed.Connect(a.SourceNode, a.SourceAnchor, a.TargetNode, a.TargetAnchor)
		return err
	case ActionRemoveNode:
		ed.RemoveNode(a.ID)
	case ActionRemoveConnection:
		ed.RemoveConnection(a.ID)
	case ActionDeleteSelected:
		ed.DeleteSelected()
	case ActionSelectAll:
		ed.SelectAll()
	case ActionClearSelection:
		ed.ClearSelection()
	case ActionClear:
		ed.Clear()
	case ActionLoadRecipe:
		res, err := ed.LoadRecipe(a.Recipe, a.ClearFirst)
		s.server.metrics.RecordRecipeLoad(err)
		if err != nil {
			return err
		}
		for _, w := range res.Warnings {
			s.warnings = append(s.warnings, w.String())
		}
	case ActionSaveRecipe:
		data, err := ed.SaveRecipe()
		if err != nil {
			return err
		}
		s.send(Frame{Type: FrameRecipe, Recipe: string(data)})
	case ActionResetLayout:
		ed.ResetLayout()
	case ActionZoomIn:
		ed.ZoomIn()
	case ActionZoomOut:
		ed.ZoomOut()
	case ActionZoomReset:
		ed.ZoomReset()
	case ActionFitGraph:
		ed.FitGraph(a.Padding)
	case ActionFocusNode:
		return ed.FocusNode(a.ID)
	case ActionSetNickName:
		return ed.SetNickName(a.ID, a.NickName)
	case ActionSetValue:
		return ed.SetValue(a.ID, a.Value)
	case ActionTogglePin:
		_, err := ed.TogglePin(a.ID)
		return err
	case ActionToggleGrid:
		ed.ToggleGrid()
	case ActionToggleWires:
		ed.ToggleWires()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Name)
	}
	return nil
}

func (s *Session) onFrame() {
	if s.editor.Tick() {
		s.loop.MarkDirty()
	}
}

func (s *Session) onRender() {
	scene := s.editor.Scene()
	s.send(Frame{Type: FrameScene, Scene: &scene})
}

func (s *Session) onPanic(err interface{}) bool {
	s.server.metrics.Panics.Inc()
	s.log.Error("session callback panicked", zap.Any("panic", err))
	return true
}

func errorFrame(err error) Frame {
	f := Frame{Type: FrameError, Error: err.Error()}
	if errors.Is(err, recipe.ErrMalformedRecipe) || errors.Is(err, recipe.ErrEmptyRecipe) {
		f.Schema = recipe.Schema
	}
	return f
}
