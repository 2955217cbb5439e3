// Package httpadapter exposes the planner service over HTTP: blocking and
// streaming plan endpoints plus usage and health probes.
package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/voyant-travel/voyant-agent/internal/app/admission"
	"github.com/voyant-travel/voyant-agent/internal/app/planner"
	"github.com/voyant-travel/voyant-agent/internal/domain"
	"github.com/voyant-travel/voyant-agent/internal/observability"
)

type Server struct {
	svc *planner.Service
}

func NewServer(svc *planner.Service, allowedOrigins []string) http.Handler {
	s := &Server{svc: svc}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /plan", s.handlePlan)
	mux.HandleFunc("POST /plan/stream", s.handlePlanStream)
	mux.HandleFunc("GET /usage", s.handleUsage)
	mux.HandleFunc("GET /health", s.handleHealth)

	return chainMiddlewares(mux,
		withCORS(allowedOrigins),
		withRequestID,
		withLogging,
	)
}

type planRequest struct {
	Message   string        `json:"message"`
	SessionID string        `json:"session_id,omitempty"`
	History   []turnMessage `json:"history,omitempty"`
}

// turnMessage is the client-supplied transcript entry: plain role + text,
// no tool traffic.
type turnMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type planResponse struct {
	Response            string                 `json:"response"`
	ReasoningSteps      []domain.ReasoningStep `json:"reasoning_steps"`
	FollowUpSuggestions []string               `json:"follow_up_suggestions"`
}

// limitDetail is the body of a 429: which window tripped, a human-readable
// message and when the window resets.
type limitDetail struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	ResetsAt string `json:"resets_at"`
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	in, ok := decodePlanRequest(w, r)
	if !ok {
		return
	}

	out, err := s.svc.PlanTurn(r.Context(), in)
	if err != nil {
		writeTurnError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, planResponse{
		Response:            out.Response,
		ReasoningSteps:      stepsOrEmpty(out.Steps),
		FollowUpSuggestions: suggestionsOrEmpty(out.FollowUpSuggestions),
	})
}

func (s *Server) handlePlanStream(w http.ResponseWriter, r *http.Request) {
	in, ok := decodePlanRequest(w, r)
	if !ok {
		return
	}

	events, err := s.svc.StreamTurn(r.Context(), in)
	if err != nil {
		writeTurnError(w, r, err)
		return
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	for ev := range events {
		if err := sse.Write(ev); err != nil {
			// Client went away; drain so the turn finishes and persists.
			for range events {
			}
			return
		}
	}
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Usage())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodePlanRequest(w http.ResponseWriter, r *http.Request) (planner.TurnInput, bool) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return planner.TurnInput{}, false
	}
	if strings.TrimSpace(req.Message) == "" {
		badRequest(w, "message is required")
		return planner.TurnInput{}, false
	}

	// No session id means a stateless turn; the service skips the store.
	history := make([]domain.Message, 0, len(req.History))
	for _, m := range req.History {
		role := domain.RoleUser
		if m.Role == string(domain.RoleAssistant) {
			role = domain.RoleAssistant
		}
		history = append(history, domain.Message{Role: role, Text: m.Text})
	}

	return planner.TurnInput{
		SessionID: domain.SessionID(req.SessionID),
		Message:   req.Message,
		History:   history,
	}, true
}

func writeTurnError(w http.ResponseWriter, r *http.Request, err error) {
	var denied *admission.DeniedError
	if errors.As(err, &denied) {
		writeJSON(w, http.StatusTooManyRequests, map[string]limitDetail{
			"detail": {
				Type:     string(denied.Scope),
				Message:  denied.Error(),
				ResetsAt: admission.FormatReset(denied.ResetsAt),
			},
		})
		return
	}

	observability.LoggerFromContext(r.Context()).Error("plan turn failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

// stepsOrEmpty keeps the JSON field an array rather than null.
func stepsOrEmpty(steps []domain.ReasoningStep) []domain.ReasoningStep {
	if steps == nil {
		return []domain.ReasoningStep{}
	}
	return steps
}

func suggestionsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}
