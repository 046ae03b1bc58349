package live_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/nodegraph/pkg/catalog"
	"github.com/recera/nodegraph/pkg/catalog/catalogtest"
	"github.com/recera/nodegraph/pkg/layout"
	"github.com/recera/nodegraph/pkg/live"
)

func startServer(t *testing.T) (*live.Server, *httptest.Server) {
	t.Helper()
	srv := live.NewServer(catalogtest.Fixture(), &live.Options{Layout: layout.KindGrid})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Shutdown()
		ts.Close()
	})
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendAction(t *testing.T, conn *websocket.Conn, a live.Action) {
	t.Helper()
	data, err := json.Marshal(a)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(live.Envelope{Type: live.MsgAction, Data: data}))
}

// readUntil returns the first frame of the given type that satisfies match.
func readUntil(t *testing.T, conn *websocket.Conn, kind string, match func(live.Frame) bool) live.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var f live.Frame
		require.NoError(t, conn.ReadJSON(&f))
		if f.Type == kind && (match == nil || match(f)) {
			return f
		}
	}
}

func TestSession_HelloStatusScene(t *testing.T) {
	_, ts := startServer(t)
	conn := dial(t, ts)

	hello := readUntil(t, conn, live.FrameHello, nil)
	assert.NotEmpty(t, hello.Session)

	st := readUntil(t, conn, live.FrameStatus, nil)
	require.NotNil(t, st.Status)
	assert.Equal(t, 0, st.Status.Nodes)

	scene := readUntil(t, conn, live.FrameScene, nil)
	require.NotNil(t, scene.Scene)
	assert.Empty(t, scene.Scene.Nodes)
}

func TestSession_Actions(t *testing.T) {
	_, ts := startServer(t)
	conn := dial(t, ts)
	readUntil(t, conn, live.FrameHello, nil)

	x, y := 10.0, 20.0
	sendAction(t, conn, live.Action{Name: live.ActionCreateNode, Address: "C1", X: &x, Y: &y})
	st := readUntil(t, conn, live.FrameStatus, func(f live.Frame) bool {
		return f.Status.Action == "Added: Const"
	})
	assert.Equal(t, 1, st.Status.Nodes)

	sendAction(t, conn, live.Action{Name: live.ActionCreateNode, Address: "C404"})
	errFrame := readUntil(t, conn, live.FrameError, nil)
	assert.Contains(t, errFrame.Error, "C404")
	assert.Empty(t, errFrame.Schema)

	scene := readUntil(t, conn, live.FrameScene, func(f live.Frame) bool {
		return len(f.Scene.Nodes) == 1
	})
	assert.Equal(t, "C1", scene.Scene.Nodes[0].Address)

	sendAction(t, conn, live.Action{Name: live.ActionSaveRecipe})
	saved := readUntil(t, conn, live.FrameRecipe, nil)
	assert.Contains(t, saved.Recipe, `"type_address": "C1"`)
}

func TestSession_Recipes(t *testing.T) {
	_, ts := startServer(t)
	conn := dial(t, ts)
	readUntil(t, conn, live.FrameHello, nil)

	sendAction(t, conn, live.Action{Name: live.ActionLoadRecipe, Recipe: "{not json"})
	bad := readUntil(t, conn, live.FrameError, nil)
	assert.Contains(t, bad.Error, "invalid JSON recipe")
	assert.Contains(t, bad.Schema, `"nodes_to_create"`)

	const text = `{"nodes_to_create":[{"id":"a","type_address":"C1"},{"id":"b","type_address":"C404"}],"connections":[]}`
	sendAction(t, conn, live.Action{Name: live.ActionLoadRecipe, Recipe: text, ClearFirst: true})
	st := readUntil(t, conn, live.FrameStatus, func(f live.Frame) bool {
		return strings.HasPrefix(f.Status.Action, "Recipe implemented")
	})
	assert.Equal(t, 1, st.Status.Nodes)
	require.Len(t, st.Warnings, 1)
	assert.Contains(t, st.Warnings[0], "C404")
}

func TestSession_InputMessages(t *testing.T) {
	_, ts := startServer(t)
	conn := dial(t, ts)
	readUntil(t, conn, live.FrameHello, nil)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type": live.MsgResize,
		"data": map[string]float64{"width": 1000, "height": 800},
	}))
	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type": live.MsgPointerMove,
		"data": map[string]float64{"x": 600, "y": 400},
	}))
	moved := readUntil(t, conn, live.FrameStatus, func(f live.Frame) bool {
		return f.Status.Pointer.X != 0
	})
	assert.Equal(t, "X: 600, Y: 400", moved.Status.Coords())

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type": live.MsgKeyDown,
		"data": map[string]string{"key": "+"},
	}))
	st := readUntil(t, conn, live.FrameStatus, func(f live.Frame) bool {
		return f.Status.Action == "Zoom in"
	})
	assert.InDelta(t, 1.2, st.Status.Zoom, 1e-9)
	assert.Equal(t, "120%", st.Status.ZoomLabel())
}

func TestSession_RejectsUnknownMessages(t *testing.T) {
	_, ts := startServer(t)
	conn := dial(t, ts)
	readUntil(t, conn, live.FrameHello, nil)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("nope")))
	f := readUntil(t, conn, live.FrameError, nil)
	assert.Contains(t, f.Error, "decode message")

	require.NoError(t, conn.WriteJSON(live.Envelope{Type: "teleport"}))
	f = readUntil(t, conn, live.FrameError, nil)
	assert.Contains(t, f.Error, "unknown message type")

	sendAction(t, conn, live.Action{Name: "explode"})
	f = readUntil(t, conn, live.FrameError, nil)
	assert.Contains(t, f.Error, "unknown action")
}

func TestServer_SessionLifecycle(t *testing.T) {
	srv, ts := startServer(t)
	conn := dial(t, ts)
	hello := readUntil(t, conn, live.FrameHello, nil)

	_, ok := srv.GetSession(hello.Session)
	assert.True(t, ok)
	assert.Equal(t, 1, srv.SessionCount())

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return srv.SessionCount() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestServer_HTTPEndpoints(t *testing.T) {
	srv, ts := startServer(t)

	get := func(path string) (int, string) {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	code, body := get("/api/catalog")
	assert.Equal(t, http.StatusOK, code)
	var tree catalog.Tree
	require.NoError(t, json.Unmarshal([]byte(body), &tree))
	assert.Contains(t, tree["Math"]["Sources"], "C1")

	code, body = get("/api/catalog/C2")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"nickName":"Neg"`)

	code, _ = get("/api/catalog/C404")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = get("/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"status":"ok"`)

	srv.SetCatalog(catalog.New(nil))
	code, body = get("/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "nodegraph_catalog_components 0")
	assert.Contains(t, body, "nodegraph_sessions_active")
}
