// Package planner is the application service behind the /plan endpoints: it
// admits the turn, loads session history, runs the agent loop and persists
// the resulting exchange.
package planner

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/voyant-travel/voyant-agent/internal/app/admission"
	"github.com/voyant-travel/voyant-agent/internal/app/agentflow"
	"github.com/voyant-travel/voyant-agent/internal/domain"
	"github.com/voyant-travel/voyant-agent/internal/observability"
)

const streamBuffer = 16

type Service struct {
	loop       *agentflow.Loop
	store      domain.SessionStore
	admission  *admission.Controller
	sessionTTL time.Duration
	tracer     trace.Tracer

	now func() time.Time
}

func NewService(loop *agentflow.Loop, store domain.SessionStore, ctrl *admission.Controller, sessionTTL time.Duration) *Service {
	return &Service{
		loop:       loop,
		store:      store,
		admission:  ctrl,
		sessionTTL: sessionTTL,
		tracer:     otel.Tracer("planner"),
		now:        time.Now,
	}
}

type TurnInput struct {
	// SessionID selects the stored conversation. Empty means a stateless
	// turn: client history in, nothing persisted.
	SessionID domain.SessionID
	Message   string

	// History is the client-supplied transcript, used when there is no
	// session id or the session has no stored messages yet.
	History []domain.Message
}

type TurnOutput struct {
	Response            string
	Steps               []domain.ReasoningStep
	FollowUpSuggestions []string
}

// PlanTurn runs one full turn and blocks until the answer is composed.
// Admission failures surface as *admission.DeniedError before any model or
// tool work happens.
func (s *Service) PlanTurn(ctx context.Context, in TurnInput) (*TurnOutput, error) {
	ctx, span := s.tracer.Start(ctx, "planner.PlanTurn",
		trace.WithAttributes(attribute.String("session.id", string(in.SessionID))))
	defer span.End()

	log := observability.LoggerFromContext(ctx).With("session_id", in.SessionID)

	if err := s.admission.Admit(); err != nil {
		log.Warn("turn denied", "error", err)
		return nil, err
	}

	history, err := s.history(ctx, in)
	if err != nil {
		log.Error("failed to load session history", "error", err)
		return nil, err
	}

	result, err := s.loop.Run(ctx, in.Message, history, nil)
	if err != nil {
		log.Error("agent loop failed", "error", err)
		return nil, err
	}

	clean, suggestions := ExtractSuggestions(result.Answer)
	if err := s.persistExchange(ctx, in.SessionID, in.Message, result.Answer); err != nil {
		log.Error("failed to persist exchange", "error", err)
		return nil, err
	}

	log.Info("turn completed", "steps", len(result.Steps))
	return &TurnOutput{
		Response:            clean,
		Steps:               result.Steps,
		FollowUpSuggestions: suggestions,
	}, nil
}

// StreamTurn runs one turn and returns its progress event stream. Admission
// and history loading happen synchronously so those failures map to an HTTP
// status instead of an in-stream error event. The channel always ends with
// exactly one terminal event and is then closed.
func (s *Service) StreamTurn(ctx context.Context, in TurnInput) (<-chan domain.StreamEvent, error) {
	ctx, span := s.tracer.Start(ctx, "planner.StreamTurn",
		trace.WithAttributes(attribute.String("session.id", string(in.SessionID))))

	log := observability.LoggerFromContext(ctx).With("session_id", in.SessionID)

	if err := s.admission.Admit(); err != nil {
		span.End()
		log.Warn("turn denied", "error", err)
		return nil, err
	}

	history, err := s.history(ctx, in)
	if err != nil {
		span.End()
		log.Error("failed to load session history", "error", err)
		return nil, err
	}

	em := agentflow.NewEmitter(streamBuffer)

	go func() {
		defer span.End()
		defer em.Close()

		result, err := s.loop.Run(ctx, in.Message, history, em)
		if err != nil {
			log.Error("agent loop failed", "error", err)
			em.Emit(ctx, domain.ErrorEvent(err.Error()))
			return
		}

		clean, suggestions := ExtractSuggestions(result.Answer)
		if err := s.persistExchange(ctx, in.SessionID, in.Message, result.Answer); err != nil {
			// Answer already produced; losing history is not worth failing
			// the stream for.
			log.Error("failed to persist exchange", "error", err)
		}

		em.Emit(ctx, domain.DoneEvent(clean, suggestions))
		log.Info("streamed turn completed", "steps", len(result.Steps))
	}()

	return em.Events(), nil
}

// Usage reports the current admission counters.
func (s *Service) Usage() admission.Usage {
	return s.admission.Usage()
}

// history resolves the transcript for this turn. The store wins for a known
// session; client history only carries stateless turns and brand-new sessions.
func (s *Service) history(ctx context.Context, in TurnInput) ([]domain.Message, error) {
	if in.SessionID == "" {
		return in.History, nil
	}
	stored, err := s.store.History(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return in.History, nil
	}
	return stored, nil
}

// persistExchange appends the user/assistant pair. Stateless turns skip the
// store entirely. The stored assistant text keeps its suggestions tail so
// follow-up turns see what was offered.
func (s *Service) persistExchange(ctx context.Context, id domain.SessionID, userText, answer string) error {
	if id == "" {
		return nil
	}
	now := s.now()
	user := domain.UserMessage(userText)
	user.CreatedAt = now
	assistant := domain.AssistantMessage(answer)
	assistant.CreatedAt = now
	return s.store.Append(ctx, id, []domain.Message{user, assistant}, s.sessionTTL)
}
