package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"secretwheel/internal/app"
	"secretwheel/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256
)

// Client is one renderer connected to a wheel over WebSocket
type Client struct {
	conn     *websocket.Conn
	session  *app.WheelSession
	clientID string
	send     chan []byte
	done     chan struct{}
	logger   *slog.Logger
	mu       sync.Mutex
	closed   bool
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, session *app.WheelSession, clientID string, logger *slog.Logger) *Client {
	return &Client{
		conn:     conn,
		session:  session,
		clientID: clientID,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		logger:   logger.With("roomCode", session.GetRoomCode(), "clientID", clientID),
	}
}

// GetClientID returns the ID of this client
func (c *Client) GetClientID() string {
	return c.clientID
}

// Send implements app.ClientConnection interface
func (c *Client) Send(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		// Buffer full, message dropped
		c.logger.Warn("send buffer full, message dropped")
		return nil
	}
}

// Close implements app.ClientConnection interface
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.session.UnregisterClient(c.clientID, c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming message from the client
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid message format")
		return
	}

	switch msg.Type {
	case MsgAddLabel:
		c.handleAddLabel(msg.Payload)
	case MsgSpin:
		c.handleSpin()
	case MsgSpinComplete:
		c.handleSpinComplete(msg.Payload)
	case MsgCancelSpin:
		c.handleCancelSpin(msg.Payload)
	case MsgResetWheel:
		c.handleResetWheel()
	case MsgPing:
		c.sendPong()
	default:
		c.sendError(ErrCodeInvalidMessage, "Unknown message type")
	}
}

// handleAddLabel handles an add_label message
func (c *Client) handleAddLabel(raw json.RawMessage) {
	var payload AddLabelPayload
	if err := decodePayload(raw, &payload); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}

	// Blank labels come back as (nil, nil) and are dropped without a reply
	if _, err := c.session.AddLabel(c.clientID, payload.Text); err != nil {
		c.sendDomainError(err)
	}
}

// handleSpin handles a spin message
func (c *Client) handleSpin() {
	_, err := c.session.StartSpin(c.clientID)
	if err == nil {
		return
	}

	// The session already sent SPIN_REJECTED to this client
	if _, rejected := domain.RejectionReason(err); rejected {
		return
	}
	c.sendDomainError(err)
}

// handleSpinComplete handles a spin_complete message
func (c *Client) handleSpinComplete(raw json.RawMessage) {
	var payload SpinRefPayload
	if err := decodePayload(raw, &payload); err != nil || payload.SpinID == "" {
		c.sendError(ErrCodeInvalidMessage, "Spin ID is required")
		return
	}

	_, err := c.session.CompleteSpin(c.clientID, payload.SpinID)
	if err == nil {
		return
	}

	// Every renderer watching the wheel reports completion; only the first counts
	if errors.Is(err, domain.ErrNoSpinInProgress) || errors.Is(err, domain.ErrStaleSpin) {
		c.logger.Debug("late spin completion ignored", "spinID", payload.SpinID)
		return
	}
	c.sendDomainError(err)
}

// handleCancelSpin handles a cancel_spin message
func (c *Client) handleCancelSpin(raw json.RawMessage) {
	var payload SpinRefPayload
	if err := decodePayload(raw, &payload); err != nil || payload.SpinID == "" {
		c.sendError(ErrCodeInvalidMessage, "Spin ID is required")
		return
	}

	if err := c.session.CancelSpin(c.clientID, payload.SpinID); err != nil {
		c.sendDomainError(err)
	}
}

// handleResetWheel handles a reset_wheel message
func (c *Client) handleResetWheel() {
	if err := c.session.Reset(c.clientID); err != nil {
		c.sendDomainError(err)
	}
}

// sendConnected sends the connected message to the client
func (c *Client) sendConnected() {
	payload := &ConnectedPayload{
		ClientID: c.clientID,
		WheelID:  c.session.GetRoomCode(),
		State:    c.session.GetWheelState(),
	}

	msg := NewServerMessage(MsgConnected, payload)
	c.Send(msg)
}

// sendDomainError maps a domain error to an error message
func (c *Client) sendDomainError(err error) {
	switch {
	case errors.Is(err, domain.ErrWheelFull):
		c.sendError(ErrCodeWheelFull, "The wheel is full")
	case errors.Is(err, domain.ErrLabelTooLong):
		c.sendError(ErrCodeLabelTooLong, "Secret is too long")
	case errors.Is(err, domain.ErrSpinInProgress):
		c.sendError(ErrCodeSpinInProgress, "Wait for the wheel to stop")
	case errors.Is(err, domain.ErrNoSpinInProgress):
		c.sendError(ErrCodeNoSpinInProgress, "The wheel is not spinning")
	case errors.Is(err, domain.ErrStaleSpin):
		c.sendError(ErrCodeStaleSpin, "That spin is over")
	default:
		c.logger.Error("unexpected session error", "error", err)
		c.sendError(ErrCodeInternalError, err.Error())
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(code, message string) {
	payload := &ErrorPayload{
		Code:    code,
		Message: message,
	}

	msg := NewServerMessage(MsgError, payload)
	c.Send(msg)
}

// sendPong sends a pong message in response to ping
func (c *Client) sendPong() {
	msg := NewServerMessage(MsgPong, nil)
	c.Send(msg)
}

// decodePayload unmarshals a message payload; a missing payload decodes as empty
func decodePayload(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}
