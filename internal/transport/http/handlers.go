package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"secretwheel/internal/app"
	"secretwheel/internal/domain"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 4096

// Response is a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateWheelResponse is the response for wheel creation
type CreateWheelResponse struct {
	RoomCode   string `json:"roomCode"`
	InviteLink string `json:"inviteLink"`
}

// GetWheelResponse is the response for getting wheel info
type GetWheelResponse struct {
	RoomCode    string                    `json:"roomCode"`
	ClientCount int                       `json:"clientCount"`
	State       *domain.WheelStatePayload `json:"state"`
}

// WheelExistsResponse is the response for checking if a wheel exists
type WheelExistsResponse struct {
	Exists bool `json:"exists"`
}

// AddLabelRequest is the body of POST /api/wheels/{roomCode}/labels
type AddLabelRequest struct {
	Text string `json:"text"`
}

// AddLabelResponse reports whether a label was stored. Blank labels are not.
type AddLabelResponse struct {
	Added   bool            `json:"added"`
	Segment *domain.Segment `json:"segment,omitempty"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is the response for stats endpoint
type StatsResponse struct {
	ActiveWheels   int `json:"activeWheels"`
	SpinningWheels int `json:"spinningWheels"`
	TotalClients   int `json:"totalClients"`
}

// handleCreateWheel handles POST /api/wheels
func (s *Server) handleCreateWheel(w http.ResponseWriter, r *http.Request) {
	session, err := s.hub.CreateWheel()
	if err != nil {
		s.logger.Error("failed to create wheel", "error", err)
		s.sendError(w, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create wheel")
		return
	}

	// Build invite link
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	inviteLink := scheme + "://" + r.Host + "/wheel/" + session.GetRoomCode()

	s.sendJSON(w, http.StatusCreated, &CreateWheelResponse{
		RoomCode:   session.GetRoomCode(),
		InviteLink: inviteLink,
	})
}

// handleGetWheel handles GET /api/wheels/{roomCode}
func (s *Server) handleGetWheel(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	s.sendSuccess(w, &GetWheelResponse{
		RoomCode:    session.GetRoomCode(),
		ClientCount: session.GetClientCount(),
		State:       session.GetWheelState(),
	})
}

// handleWheelExists handles GET /api/wheels/{roomCode}/exists
func (s *Server) handleWheelExists(w http.ResponseWriter, r *http.Request) {
	_, err := s.hub.GetSession(strings.ToUpper(r.PathValue("roomCode")))

	s.sendSuccess(w, &WheelExistsResponse{
		Exists: err == nil,
	})
}

// handleAddLabel handles POST /api/wheels/{roomCode}/labels
func (s *Server) handleAddLabel(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	var req AddLabelRequest
	if err := decodeBody(r, &req); err != nil {
		s.sendError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be JSON with a text field")
		return
	}

	segment, err := session.AddLabel("", req.Text)
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	s.sendSuccess(w, &AddLabelResponse{
		Added:   segment != nil,
		Segment: segment,
	})
}

// handleResetWheel handles DELETE /api/wheels/{roomCode}/labels
func (s *Server) handleResetWheel(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	if err := session.Reset(""); err != nil {
		s.sendDomainError(w, err)
		return
	}

	s.sendSuccess(w, session.GetWheelState())
}

// handleStartSpin handles POST /api/wheels/{roomCode}/spins
func (s *Server) handleStartSpin(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	directive, err := session.StartSpin("")
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	s.sendJSON(w, http.StatusCreated, directive)
}

// handleCompleteSpin handles POST /api/wheels/{roomCode}/spins/{spinId}/complete
func (s *Server) handleCompleteSpin(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	result, err := session.CompleteSpin("", r.PathValue("spinId"))
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	s.sendSuccess(w, result)
}

// handleCancelSpin handles POST /api/wheels/{roomCode}/spins/{spinId}/cancel
func (s *Server) handleCancelSpin(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	if err := session.CancelSpin("", r.PathValue("spinId")); err != nil {
		s.sendDomainError(w, err)
		return
	}

	s.sendSuccess(w, session.GetWheelState())
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &HealthResponse{
		Status: "ok",
	})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &StatsResponse{
		ActiveWheels:   s.hub.GetSessionCount(),
		SpinningWheels: s.hub.GetSpinningCount(),
		TotalClients:   s.hub.GetTotalClientCount(),
	})
}

// handleStatic serves renderer assets from static/
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, r, "static/"+r.PathValue("file"))
}

// handleSPA serves index.html for every other path so /wheel/{code} links open the renderer
func (s *Server) handleSPA(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.serveFile(w, r, "index.html")
}

// serveFile writes one file from webFS, or 404 when it is missing or a directory
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, name string) {
	file, err := s.webFS.Open(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil || stat.IsDir() {
		http.NotFound(w, r)
		return
	}

	content, ok := file.(io.ReadSeeker)
	if !ok {
		http.NotFound(w, r)
		return
	}

	http.ServeContent(w, r, stat.Name(), stat.ModTime(), content)
}

// lookupSession resolves the {roomCode} path value, writing an error response on failure
func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*app.WheelSession, bool) {
	roomCode := r.PathValue("roomCode")
	if roomCode == "" {
		s.sendError(w, http.StatusBadRequest, "MISSING_ROOM_CODE", "Room code is required")
		return nil, false
	}

	session, err := s.hub.GetSession(strings.ToUpper(roomCode))
	if err != nil {
		s.sendDomainError(w, err)
		return nil, false
	}

	return session, true
}

// sendDomainError maps a domain error to a status code and error code
func (s *Server) sendDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrWheelNotFound):
		s.sendError(w, http.StatusNotFound, "WHEEL_NOT_FOUND", "Wheel not found")
	case errors.Is(err, domain.ErrEmptySegmentSet):
		s.sendError(w, http.StatusConflict, string(domain.RejectEmptySegmentSet), "Add at least one secret before spinning")
	case errors.Is(err, domain.ErrSpinInProgress):
		s.sendError(w, http.StatusConflict, string(domain.RejectSpinInProgress), "The wheel is already spinning")
	case errors.Is(err, domain.ErrNoSpinInProgress):
		s.sendError(w, http.StatusConflict, "NO_SPIN_IN_PROGRESS", "The wheel is not spinning")
	case errors.Is(err, domain.ErrStaleSpin):
		s.sendError(w, http.StatusConflict, "STALE_SPIN", "That spin is over")
	case errors.Is(err, domain.ErrWheelFull):
		s.sendError(w, http.StatusUnprocessableEntity, "WHEEL_FULL", "The wheel is full")
	case errors.Is(err, domain.ErrLabelTooLong):
		s.sendError(w, http.StatusUnprocessableEntity, "LABEL_TOO_LONG", "Secret is too long")
	default:
		s.logger.Error("unexpected error", "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// decodeBody decodes a bounded JSON request body
func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	return dec.Decode(v)
}

// sendSuccess sends a successful JSON response
func (s *Server) sendSuccess(w http.ResponseWriter, data interface{}) {
	s.sendJSON(w, http.StatusOK, data)
}

// sendJSON sends a successful JSON response with the given status
func (s *Server) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error JSON response
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}
