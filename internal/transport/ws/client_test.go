package ws

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secretwheel/internal/app"
	"secretwheel/internal/config"
	"secretwheel/internal/domain"
)

// wireMessage covers both ServerMessage and domain.WheelEvent frames.
type wireMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// testConn reads newline-batched frames one message at a time.
type testConn struct {
	t       *testing.T
	conn    *websocket.Conn
	pending [][]byte
}

func (c *testConn) write(msgType MessageType, payload interface{}) {
	c.t.Helper()
	msg := map[string]interface{}{"type": msgType}
	if payload != nil {
		msg["payload"] = payload
	}
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

func (c *testConn) next() wireMessage {
	c.t.Helper()
	for len(c.pending) == 0 {
		require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := c.conn.ReadMessage()
		require.NoError(c.t, err)
		c.pending = bytes.Split(data, []byte{'\n'})
	}

	line := c.pending[0]
	c.pending = c.pending[1:]

	var msg wireMessage
	require.NoError(c.t, json.Unmarshal(line, &msg))
	return msg
}

// expect skips messages until one of the given type arrives
func (c *testConn) expect(msgType string) wireMessage {
	c.t.Helper()
	for i := 0; i < 20; i++ {
		msg := c.next()
		if msg.Type == msgType {
			return msg
		}
	}
	c.t.Fatalf("no %s message received", msgType)
	return wireMessage{}
}

func newTestServer(t *testing.T) (*app.WheelHub, *httptest.Server) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := app.NewWheelHub(config.WheelConfig{
		MinRotations:   2,
		MaxRotations:   4,
		SpinDuration:   4 * time.Second,
		Seed:           7,
		MaxSegments:    3,
		MaxLabelLength: 10,
		HistorySize:    5,
		RoomCodeLength: 6,
		StaleTimeout:   time.Hour,
	}, logger)

	server := httptest.NewServer(NewHandler(hub, logger))
	t.Cleanup(func() {
		server.Close()
		hub.Close()
	})

	return hub, server
}

func dial(t *testing.T, server *httptest.Server, roomCode string) *testConn {
	t.Helper()
	return dialAs(t, server, roomCode, "")
}

func dialAs(t *testing.T, server *httptest.Server, roomCode, clientID string) *testConn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?roomCode=" + roomCode + "&clientId=" + clientID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &testConn{t: t, conn: conn}
}

func TestClient_SpinRoundTrip(t *testing.T) {
	hub, server := newTestServer(t)
	session, err := hub.CreateWheel()
	require.NoError(t, err)

	conn := dial(t, server, strings.ToLower(session.GetRoomCode()))

	connected := conn.expect(string(MsgConnected))
	var cp ConnectedPayload
	require.NoError(t, json.Unmarshal(connected.Payload, &cp))
	assert.Equal(t, session.GetRoomCode(), cp.WheelID)
	assert.NotEmpty(t, cp.ClientID)
	assert.Equal(t, domain.SpinIdle, cp.State.SpinState)

	conn.write(MsgAddLabel, AddLabelPayload{Text: "   "})
	conn.write(MsgAddLabel, AddLabelPayload{Text: "  alpha "})
	conn.write(MsgAddLabel, AddLabelPayload{Text: "beta"})

	var added domain.SegmentAddedPayload
	require.NoError(t, json.Unmarshal(conn.expect(string(domain.EventSegmentAdded)).Payload, &added))
	assert.Equal(t, domain.Segment{Index: 0, Label: "alpha"}, added.Segment)
	require.NoError(t, json.Unmarshal(conn.expect(string(domain.EventSegmentAdded)).Payload, &added))
	assert.Equal(t, []domain.Segment{{Index: 0, Label: "alpha"}, {Index: 1, Label: "beta"}}, added.Segments)

	conn.write(MsgSpin, nil)
	var started domain.SpinStartedPayload
	require.NoError(t, json.Unmarshal(conn.expect(string(domain.EventSpinStarted)).Payload, &started))
	assert.Equal(t, 2, started.SegmentCount)
	assert.Equal(t, int64(4000), started.DurationMs)

	conn.write(MsgSpin, nil)
	var rejected domain.SpinRejectedPayload
	require.NoError(t, json.Unmarshal(conn.expect(string(domain.EventSpinRejected)).Payload, &rejected))
	assert.Equal(t, domain.RejectSpinInProgress, rejected.Reason)

	conn.write(MsgSpinComplete, SpinRefPayload{SpinID: started.SpinID})
	var result domain.SpinResult
	require.NoError(t, json.Unmarshal(conn.expect(string(domain.EventSpinResolved)).Payload, &result))

	want := domain.ResolveIndex(started.TargetAngleDegrees, 2)
	assert.Equal(t, started.SpinID, result.SpinID)
	assert.Equal(t, want, result.ResolvedIndex)
	assert.Equal(t, []string{"alpha", "beta"}[want], result.Label)
}

func TestClient_EmptyWheelSpinRejected(t *testing.T) {
	hub, server := newTestServer(t)
	session, err := hub.CreateWheel()
	require.NoError(t, err)

	conn := dial(t, server, session.GetRoomCode())
	conn.expect(string(MsgConnected))

	conn.write(MsgSpin, nil)
	var rejected domain.SpinRejectedPayload
	require.NoError(t, json.Unmarshal(conn.expect(string(domain.EventSpinRejected)).Payload, &rejected))
	assert.Equal(t, domain.RejectEmptySegmentSet, rejected.Reason)
}

func TestClient_ErrorMessages(t *testing.T) {
	hub, server := newTestServer(t)
	session, err := hub.CreateWheel()
	require.NoError(t, err)

	conn := dial(t, server, session.GetRoomCode())
	conn.expect(string(MsgConnected))

	tests := []struct {
		name    string
		msgType MessageType
		payload interface{}
		code    string
	}{
		{name: "unknown type", msgType: "dance", code: ErrCodeInvalidMessage},
		{name: "label too long", msgType: MsgAddLabel, payload: AddLabelPayload{Text: "far too long label"}, code: ErrCodeLabelTooLong},
		{name: "cancel without spin id", msgType: MsgCancelSpin, code: ErrCodeInvalidMessage},
		{name: "cancel while idle", msgType: MsgCancelSpin, payload: SpinRefPayload{SpinID: "x"}, code: ErrCodeNoSpinInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn.write(tt.msgType, tt.payload)

			var ep ErrorPayload
			require.NoError(t, json.Unmarshal(conn.expect(string(MsgError)).Payload, &ep))
			assert.Equal(t, tt.code, ep.Code)
		})
	}

	conn.write(MsgPing, nil)
	conn.expect(string(MsgPong))
}

func TestClient_WheelFull(t *testing.T) {
	hub, server := newTestServer(t)
	session, err := hub.CreateWheel()
	require.NoError(t, err)

	conn := dial(t, server, session.GetRoomCode())
	conn.expect(string(MsgConnected))

	for _, l := range []string{"a", "b", "c", "d"} {
		conn.write(MsgAddLabel, AddLabelPayload{Text: l})
	}

	var ep ErrorPayload
	require.NoError(t, json.Unmarshal(conn.expect(string(MsgError)).Payload, &ep))
	assert.Equal(t, ErrCodeWheelFull, ep.Code)
	assert.Equal(t, 3, session.GetSegmentCount())
}

func TestClient_SameClientIDKeepsNewestConnection(t *testing.T) {
	hub, server := newTestServer(t)
	session, err := hub.CreateWheel()
	require.NoError(t, err)

	const clientID = "11111111-1111-4111-8111-111111111111"

	first := dialAs(t, server, session.GetRoomCode(), clientID)
	var cp ConnectedPayload
	require.NoError(t, json.Unmarshal(first.expect(string(MsgConnected)).Payload, &cp))
	assert.Equal(t, clientID, cp.ClientID)

	second := dialAs(t, server, session.GetRoomCode(), clientID)
	second.expect(string(MsgConnected))

	// The older socket is closed by the server once its ID is taken over
	require.NoError(t, first.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := first.conn.ReadMessage(); err != nil {
			var netErr net.Error
			assert.False(t, errors.As(err, &netErr) && netErr.Timeout(), "first socket was not closed: %v", err)
			break
		}
	}
	first.conn.Close()

	assert.Never(t, func() bool {
		return session.GetClientCount() != 1
	}, 200*time.Millisecond, 10*time.Millisecond)

	second.write(MsgAddLabel, AddLabelPayload{Text: "kept"})
	var added domain.SegmentAddedPayload
	require.NoError(t, json.Unmarshal(second.expect(string(domain.EventSegmentAdded)).Payload, &added))
	assert.Equal(t, "kept", added.Segment.Label)
}

func TestHandler_UnknownRoom(t *testing.T) {
	_, server := newTestServer(t)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?roomCode=NOPE99"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 404, resp.StatusCode)
}
