package app

import (
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"secretwheel/internal/config"
	"secretwheel/internal/domain"
)

const (
	// DefaultRoomCodeLength is the default length for room codes
	DefaultRoomCodeLength = 6

	// DefaultStaleTimeout is how long an unwatched, unchanged wheel is kept
	DefaultStaleTimeout = 2 * time.Hour

	cleanupInterval = 10 * time.Minute
)

// RoomCodeChars are characters used for room codes (no ambiguous chars)
const RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// WheelHub manages all active wheel sessions
type WheelHub struct {
	sessions       map[string]*WheelSession
	mu             sync.RWMutex
	roomCodeLength int
	settings       domain.WheelSettings
	spinTimeout    time.Duration
	staleTimeout   time.Duration
	seed           uint64
	streams        uint64
	entropy        io.Reader // room code source
	logger         *slog.Logger
	done           chan struct{}
}

// NewWheelHub creates a new wheel hub
func NewWheelHub(cfg config.WheelConfig, logger *slog.Logger) *WheelHub {
	hub := &WheelHub{
		sessions:       make(map[string]*WheelSession),
		roomCodeLength: cfg.RoomCodeLength,
		settings:       cfg.WheelSettings(),
		spinTimeout:    cfg.SpinTimeout,
		staleTimeout:   cfg.StaleTimeout,
		seed:           cfg.Seed,
		entropy:        rand.Reader,
		logger:         logger,
		done:           make(chan struct{}),
	}

	if hub.roomCodeLength <= 0 {
		hub.roomCodeLength = DefaultRoomCodeLength
	}
	if hub.staleTimeout <= 0 {
		hub.staleTimeout = DefaultStaleTimeout
	}

	// Start cleanup goroutine
	go hub.cleanupLoop()

	return hub
}

// CreateWheel creates a new wheel and returns its session
func (h *WheelHub) CreateWheel() (*WheelSession, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Generate unique room code
	var roomCode string
	for attempts := 0; attempts < 10; attempts++ {
		code, err := h.generateRoomCode()
		if err != nil {
			return nil, fmt.Errorf("generate room code: %w", err)
		}
		roomCode = code
		if _, exists := h.sessions[roomCode]; !exists {
			break
		}
	}

	// Check if we found a unique code
	if _, exists := h.sessions[roomCode]; exists {
		return nil, fmt.Errorf("failed to generate unique room code")
	}

	rng, err := h.newRNG()
	if err != nil {
		return nil, fmt.Errorf("create wheel rng: %w", err)
	}

	wheel := domain.NewWheel(roomCode, h.settings, rng)
	session := NewWheelSession(wheel, h.spinTimeout, h.logger)
	h.sessions[roomCode] = session

	h.logger.Info("wheel created", "roomCode", roomCode)

	return session, nil
}

// GetSession returns a wheel session by room code
func (h *WheelHub) GetSession(roomCode string) (*WheelSession, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	session, ok := h.sessions[roomCode]
	if !ok {
		return nil, domain.ErrWheelNotFound
	}

	return session, nil
}

// DeleteSession removes a wheel session
func (h *WheelHub) DeleteSession(roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if session, ok := h.sessions[roomCode]; ok {
		session.Close()
		delete(h.sessions, roomCode)
		h.logger.Info("wheel deleted", "roomCode", roomCode)
	}
}

// GetSessionCount returns the number of active sessions
func (h *WheelHub) GetSessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// GetTotalClientCount returns the number of connected clients across all sessions
func (h *WheelHub) GetTotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, session := range h.sessions {
		total += session.GetClientCount()
	}
	return total
}

// GetSpinningCount returns how many wheels are currently spinning
func (h *WheelHub) GetSpinningCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, session := range h.sessions {
		if session.GetSpinState() == domain.SpinSpinning {
			total++
		}
	}
	return total
}

// Close shuts down the hub and all sessions
func (h *WheelHub) Close() {
	close(h.done)

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, session := range h.sessions {
		session.Close()
	}
	h.sessions = make(map[string]*WheelSession)
}

// newRNG returns the generator for a new wheel (caller must hold lock).
// With a configured seed each wheel gets its own stream of that seed.
func (h *WheelHub) newRNG() (domain.RNG, error) {
	h.streams++

	if h.seed != 0 {
		return NewRNG(h.seed, h.streams), nil
	}

	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return NewRNG(seed, h.streams), nil
}

// generateRoomCode generates a random room code
func (h *WheelHub) generateRoomCode() (string, error) {
	b := make([]byte, h.roomCodeLength)
	if _, err := io.ReadFull(h.entropy, b); err != nil {
		return "", err
	}

	code := make([]byte, h.roomCodeLength)
	for i := range code {
		code[i] = RoomCodeChars[int(b[i])%len(RoomCodeChars)]
	}

	return string(code), nil
}

// cleanupLoop periodically cleans up stale wheels
func (h *WheelHub) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.cleanupStaleWheels(time.Now())
		}
	}
}

// cleanupStaleWheels removes wheels nobody is watching that have not changed recently
func (h *WheelHub) cleanupStaleWheels(now time.Time) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	stale := make([]string, 0)

	for roomCode, session := range h.sessions {
		if session.GetClientCount() == 0 && now.Sub(session.GetUpdatedAt()) > h.staleTimeout {
			stale = append(stale, roomCode)
		}
	}

	for _, roomCode := range stale {
		if session, ok := h.sessions[roomCode]; ok {
			session.Close()
			delete(h.sessions, roomCode)
			h.logger.Info("stale wheel cleaned up", "roomCode", roomCode)
		}
	}

	return len(stale)
}
