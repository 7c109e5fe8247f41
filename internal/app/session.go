package app

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"secretwheel/internal/domain"
)

// ClientConnection represents a connected renderer
type ClientConnection interface {
	Send(message interface{}) error
	GetClientID() string
	Close() error
}

// WheelSession wraps a wheel with concurrency control and client management
type WheelSession struct {
	wheel     *domain.Wheel
	mu        sync.RWMutex
	clients   map[string]ClientConnection // clientID -> client
	clientsMu sync.RWMutex
	logger    *slog.Logger

	// Spin watchdog
	spinTimeout time.Duration
	spinTimer   *time.Timer

	// Event channel for broadcasting
	events chan *domain.WheelEvent
	done   chan struct{}
}

// NewWheelSession creates a new wheel session. A spinTimeout of zero leaves
// unfinished spins in flight until a client completes or cancels them.
func NewWheelSession(wheel *domain.Wheel, spinTimeout time.Duration, logger *slog.Logger) *WheelSession {
	session := &WheelSession{
		wheel:       wheel,
		clients:     make(map[string]ClientConnection),
		logger:      logger.With("roomCode", wheel.ID),
		spinTimeout: spinTimeout,
		events:      make(chan *domain.WheelEvent, 100),
		done:        make(chan struct{}),
	}

	// Start event broadcaster
	go session.eventLoop()

	return session
}

// GetRoomCode returns the room code
func (s *WheelSession) GetRoomCode() string {
	return s.wheel.ID
}

// GetCreatedAt returns when the wheel was created
func (s *WheelSession) GetCreatedAt() time.Time {
	return s.wheel.CreatedAt
}

// GetUpdatedAt returns when the wheel last changed
func (s *WheelSession) GetUpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wheel.UpdatedAt
}

// GetSegmentCount returns the number of segments
func (s *WheelSession) GetSegmentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wheel.Segments.Size()
}

// GetSpinState returns the current spin state
func (s *WheelSession) GetSpinState() domain.SpinState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wheel.Engine.State()
}

// GetWheelState returns the full wheel state
func (s *WheelSession) GetWheelState() *domain.WheelStatePayload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wheel.GetState()
}

// RegisterClient registers a client connection. A connection already
// registered under the same ID is closed and replaced.
func (s *WheelSession) RegisterClient(clientID string, client ClientConnection) {
	s.clientsMu.Lock()
	prev, ok := s.clients[clientID]
	s.clients[clientID] = client
	s.clientsMu.Unlock()

	if ok && prev != client {
		s.logger.Debug("replacing client connection", "clientID", clientID)
		prev.Close()
	}
}

// UnregisterClient removes client if it is still the connection registered
// under clientID. A replaced connection leaves its successor in place.
func (s *WheelSession) UnregisterClient(clientID string, client ClientConnection) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if current, ok := s.clients[clientID]; ok && current == client {
		delete(s.clients, clientID)
	}
}

// GetClient returns the client with the given ID
func (s *WheelSession) GetClient(clientID string) (ClientConnection, bool) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	client, ok := s.clients[clientID]
	return client, ok
}

// GetClientCount returns the number of connected clients
func (s *WheelSession) GetClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// AddLabel appends a secret to the wheel. Blank labels are ignored: the
// returned segment is nil and so is the error.
func (s *WheelSession) AddLabel(clientID, text string) (*domain.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	segment, err := s.wheel.AddLabel(text)
	if errors.Is(err, domain.ErrInvalidLabel) {
		s.logger.Debug("blank label ignored", "clientID", clientID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.queueEvent(domain.NewEvent(domain.EventSegmentAdded, s.wheel.ID, &domain.SegmentAddedPayload{
		Segment:  segment,
		Segments: s.wheel.Segments.Segments(),
	}))

	return &segment, nil
}

// Reset removes every segment from the wheel
func (s *WheelSession) Reset(clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.wheel.Reset(); err != nil {
		return err
	}

	s.logger.Info("wheel reset", "clientID", clientID)
	s.queueEvent(domain.NewEvent(domain.EventWheelReset, s.wheel.ID, s.wheel.GetState()))

	return nil
}

// StartSpin starts a spin and broadcasts the animation directive. A refused
// spin is also reported to the requesting client as SPIN_REJECTED.
func (s *WheelSession) StartSpin(clientID string) (*domain.SpinStartedPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := s.wheel.StartSpin()
	if err != nil {
		if reason, ok := domain.RejectionReason(err); ok && clientID != "" {
			s.queueEvent(domain.NewClientEvent(domain.EventSpinRejected, s.wheel.ID, clientID, &domain.SpinRejectedPayload{
				Reason: reason,
			}))
		}
		return nil, err
	}

	s.logger.Info("spin started",
		"spinID", req.ID,
		"segments", req.SegmentCount,
		"targetAngle", req.TargetAngleDegrees,
	)

	s.armSpinTimer(req.ID)

	directive := req.Directive()
	s.queueEvent(domain.NewEvent(domain.EventSpinStarted, s.wheel.ID, directive))

	return directive, nil
}

// CompleteSpin resolves the spin once a renderer reports the animation done
func (s *WheelSession) CompleteSpin(clientID, spinID string) (*domain.SpinResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.wheel.CompleteSpin(spinID)
	if err != nil {
		return nil, err
	}

	s.stopSpinTimer()

	s.logger.Info("spin resolved",
		"spinID", result.SpinID,
		"index", result.ResolvedIndex,
		"clientID", clientID,
	)

	s.queueEvent(domain.NewEvent(domain.EventSpinResolved, s.wheel.ID, result))

	return result, nil
}

// CancelSpin abandons the spin without a result
func (s *WheelSession) CancelSpin(clientID, spinID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cancelSpinUnlocked(spinID, domain.CancelRequested)
}

// cancelSpinUnlocked cancels the current spin (caller must hold lock)
func (s *WheelSession) cancelSpinUnlocked(spinID, reason string) error {
	req, err := s.wheel.CancelSpin(spinID)
	if err != nil {
		return err
	}

	s.stopSpinTimer()

	s.logger.Info("spin cancelled", "spinID", req.ID, "reason", reason)
	s.queueEvent(domain.NewEvent(domain.EventSpinCancelled, s.wheel.ID, &domain.SpinCancelledPayload{
		SpinID: req.ID,
		Reason: reason,
	}))

	return nil
}

// armSpinTimer schedules the watchdog for a spin (caller must hold lock)
func (s *WheelSession) armSpinTimer(spinID string) {
	s.stopSpinTimer()

	if s.spinTimeout <= 0 {
		return
	}

	s.spinTimer = time.AfterFunc(s.spinTimeout, func() {
		s.expireSpin(spinID)
	})
}

// stopSpinTimer stops the watchdog (caller must hold lock)
func (s *WheelSession) stopSpinTimer() {
	if s.spinTimer != nil {
		s.spinTimer.Stop()
		s.spinTimer = nil
	}
}

// expireSpin cancels a spin no renderer completed in time
func (s *WheelSession) expireSpin(spinID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.done:
		return
	default:
	}

	if err := s.cancelSpinUnlocked(spinID, domain.CancelTimeout); err != nil {
		// Completed or cancelled between the timer firing and taking the lock
		return
	}

	s.logger.Warn("spin timed out without completion", "spinID", spinID, "timeout", s.spinTimeout)
}

// queueEvent adds an event to the broadcast queue
func (s *WheelSession) queueEvent(event *domain.WheelEvent) {
	select {
	case s.events <- event:
	default:
		s.logger.Warn("event queue full, dropping event", "type", event.Type)
	}
}

// eventLoop processes events and broadcasts to clients
func (s *WheelSession) eventLoop() {
	for {
		select {
		case <-s.done:
			return
		case event := <-s.events:
			s.broadcastEvent(event)
		}
	}
}

// broadcastEvent sends an event to appropriate clients
func (s *WheelSession) broadcastEvent(event *domain.WheelEvent) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	// If client-specific, send only to that client
	if event.ClientID != "" {
		if client, ok := s.clients[event.ClientID]; ok {
			if err := client.Send(event); err != nil {
				s.logger.Debug("failed to send to client", "clientID", event.ClientID, "error", err)
			}
		}
		return
	}

	// Broadcast to all clients
	for clientID, client := range s.clients {
		if err := client.Send(event); err != nil {
			s.logger.Debug("failed to send to client", "clientID", clientID, "error", err)
		}
	}
}

// Close shuts down the session
func (s *WheelSession) Close() {
	select {
	case <-s.done:
		return // Already closed
	default:
		close(s.done)
	}

	s.mu.Lock()
	s.stopSpinTimer()
	s.mu.Unlock()

	// Close all client connections
	s.clientsMu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clients = make(map[string]ClientConnection)
	s.clientsMu.Unlock()
}
