package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/entrhq/vanish/pkg/experiment"
	"github.com/entrhq/vanish/pkg/scene"
	"github.com/entrhq/vanish/pkg/logging"
	"github.com/entrhq/vanish/pkg/types"
	"github.com/entrhq/vanish/pkg/variant"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	var logs bytes.Buffer
	logger := logging.NewWriterLogger("server", &logs)
	reg, err := variant.Builtin(logger)
	require.NoError(t, err)
	return New(cfg, reg, logger)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, DefaultConfig())
	w := get(t, s, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, DefaultConfig())
	w := get(t, s, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestListVariants(t *testing.T) {
	s := newTestServer(t, DefaultConfig())

	w := get(t, s, "/v1/variants")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Variants []variantSummary `json:"variants"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Variants, 4)
	assert.Equal(t, "base-case", body.Variants[0].Name)
	assert.Equal(t, "same-space", body.Variants[1].Name)
	assert.Equal(t, 4, body.Variants[1].Objects)

	w = get(t, s, "/v1/variants?match=*-probe")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Variants, 2)

	w = get(t, s, "/v1/variants?match=[")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetVariant(t *testing.T) {
	s := newTestServer(t, DefaultConfig())

	w := get(t, s, "/v1/variants/translucent-probe")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Name     string                 `json:"name"`
		Stages   []experiment.StageSpec `json:"stages"`
		Warnings []string               `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "translucent-probe", body.Name)
	assert.Len(t, body.Stages, 3)
	assert.NotEmpty(t, body.Warnings)

	w = get(t, s, "/v1/variants/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionUnknownVariant(t *testing.T) {
	s := newTestServer(t, DefaultConfig())
	w := get(t, s, "/v1/sessions/ws?variant=nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, s *Server, query string) *wsClient {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/sessions/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(in *types.Input) {
	require.NoError(c.t, c.conn.WriteJSON(in))
}

// readUntil reads commands until one of type want arrives.
func (c *wsClient) readUntil(want types.CommandType) (*types.Command, []*types.Command) {
	c.t.Helper()
	var seen []*types.Command
	for {
		require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var cmd types.Command
		require.NoError(c.t, c.conn.ReadJSON(&cmd))
		seen = append(seen, &cmd)
		if cmd.Type == want {
			return &cmd, seen
		}
	}
}

func TestSessionSocketFlow(t *testing.T) {
	s := newTestServer(t, Config{Seed: 7})
	c := dial(t, s, "?variant=translucent-probe")

	created, _ := c.readUntil(types.CommandTypeSessionCreated)
	assert.NotEmpty(t, created.SessionID)
	tally, _ := c.readUntil(types.CommandTypeShowTally)
	assert.Len(t, tally.Tally, 2)

	pose := experiment.Pose{Position: experiment.Vec3{Y: -1, Z: -2}, Orientation: experiment.IdentityQuat()}
	c.send(types.NewSelectInput(pose))
	req, _ := c.readUntil(types.CommandTypeRequestAnchor)
	require.NotNil(t, req.Pose)
	assert.Equal(t, -2.0, req.Pose.Position.Z)

	c.send(types.NewAnchorCreatedInput("anchor-1", *req.Pose))
	toast, seen := c.readUntil(types.CommandTypeShowToast)
	assert.Equal(t, "Verify that you can see Cube 2 but not Cube 1", toast.Message)

	var placed []string
	for _, cmd := range seen {
		if cmd.Type == types.CommandTypePlaceObject {
			placed = append(placed, cmd.ObjectID)
			if cmd.ObjectID == "cube-2" {
				assert.Equal(t, 0.75, cmd.Object.Material.Opacity)
				assert.InDelta(t, -1.5, cmd.Object.Position.Z, 1e-9)
			}
		}
	}
	assert.Equal(t, []string{"cube-1", "cube-2"}, placed)

	c.send(types.NewTapInput("cube-2", "cube-1"))
	tally, _ = c.readUntil(types.CommandTypeShowTally)
	assert.Equal(t, experiment.TallyEntry{ID: "cube-2", Label: "Cube 2", Count: 1}, tally.Tally[1])

	c.send(types.NewButtonInput(types.InputTypeNext))
	mat, _ := c.readUntil(types.CommandTypeApplyMaterial)
	assert.Equal(t, "cube-1", mat.ObjectID)
}

func TestSessionPicksTapRays(t *testing.T) {
	s := newTestServer(t, Config{Pick: true})
	c := dial(t, s, "?variant=base-case")
	c.readUntil(types.CommandTypeShowTally)

	pose := experiment.Pose{Position: experiment.Vec3{Z: -1}, Orientation: experiment.IdentityQuat()}
	c.send(types.NewSelectInput(pose))
	req, _ := c.readUntil(types.CommandTypeRequestAnchor)
	c.send(types.NewAnchorCreatedInput("anchor-1", *req.Pose))
	c.readUntil(types.CommandTypeShowToast)

	// The ray passes through the transparent cube before reaching Cube 1.
	c.send(types.NewRayTapInput(scene.Ray{Direction: experiment.Vec3{Z: -1}}))
	label, _ := c.readUntil(types.CommandTypeSetLabel)
	assert.Equal(t, "cube-1", label.ObjectID)
	require.NotNil(t, label.Visible)
	assert.True(t, *label.Visible)

	tally, _ := c.readUntil(types.CommandTypeShowTally)
	assert.Equal(t, []experiment.TallyEntry{
		{ID: "cube-t", Label: "Cube T", Count: 0},
		{ID: "cube-1", Label: "Cube 1", Count: 1},
	}, tally.Tally)
}

func TestSessionMalformedInput(t *testing.T) {
	s := newTestServer(t, DefaultConfig())
	c := dial(t, s, "")
	c.readUntil(types.CommandTypeShowTally)

	require.NoError(t, c.conn.WriteMessage(websocket.TextMessage, []byte("{nope")))
	status, _ := c.readUntil(types.CommandTypeShowStatus)
	assert.True(t, status.IsError)
	assert.Contains(t, status.Message, "malformed input")

	c.send(&types.Input{Type: "swipe"})
	status, _ = c.readUntil(types.CommandTypeShowStatus)
	assert.True(t, status.IsError)
	assert.Contains(t, status.Message, "unknown input type")
}

func TestCheckOrigin(t *testing.T) {
	s := newTestServer(t, Config{AllowedOrigins: []string{"https://lab.example"}})

	ok, _ := http.NewRequest(http.MethodGet, "/", nil)
	ok.Header.Set("Origin", "https://lab.example")
	assert.True(t, s.checkOrigin(ok))

	bad, _ := http.NewRequest(http.MethodGet, "/", nil)
	bad.Header.Set("Origin", "https://elsewhere.example")
	assert.False(t, s.checkOrigin(bad))
}
