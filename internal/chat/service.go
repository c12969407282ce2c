// Package chat implements the remote-first chat resolution flow: a
// user utterance goes to the health assistant agent, and when the
// agent is unavailable or returns an unusable payload, the local
// advisory rule table answers instead. Errors are never surfaced to
// the user on this path.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/medimart/health-companion/internal/advisory"
	"github.com/medimart/health-companion/internal/agent"
	"github.com/medimart/health-companion/internal/observability/metrics"
	"github.com/medimart/health-companion/internal/session"
	"github.com/medimart/health-companion/pkg/logging"
)

// ErrBusy is returned while another remote call is in flight.
var ErrBusy = errors.New("chat: a request is already in flight")

// ErrEmptyMessage is returned for blank input.
var ErrEmptyMessage = errors.New("chat: message is empty")

// activityTitleLimit is how much of the utterance lands in the
// recent-activity log.
const activityTitleLimit = 30

// Invoker is the slice of the agent client this service needs.
type Invoker interface {
	Invoke(ctx context.Context, message, agentID string, opts ...agent.InvokeOption) (agent.InvokeResult, error)
}

// Service resolves user utterances into advisory responses.
type Service struct {
	agents  Invoker
	store   *session.Store
	agentID string
	logger  *logging.Logger
	metrics *metrics.CompanionMetrics
}

// NewService creates a chat service bound to the health assistant agent.
func NewService(agents Invoker, store *session.Store, healthAgentID string, m *metrics.CompanionMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		agents:  agents,
		store:   store,
		agentID: healthAgentID,
		logger:  logger,
		metrics: m,
	}
}

// Send resolves one utterance and appends the exchange to the
// transcript. The returned message is the assistant's turn.
func (s *Service) Send(ctx context.Context, text string) (session.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return session.ChatMessage{}, ErrEmptyMessage
	}
	if !s.store.BeginLoading() {
		return session.ChatMessage{}, ErrBusy
	}
	defer s.store.EndLoading()

	profile := s.store.Profile()
	language := s.store.Language()

	content, data := s.resolve(ctx, text, profile, language)

	userID, assistantID := session.PairIDs()
	now := time.Now().UTC()
	userMsg := session.ChatMessage{
		ID:        userID,
		Role:      session.RoleUser,
		Content:   text,
		Timestamp: now,
	}
	assistantMsg := session.ChatMessage{
		ID:        assistantID,
		Role:      session.RoleAssistant,
		Content:   content,
		Data:      data,
		Timestamp: now,
	}
	s.store.AppendExchange(ctx, userMsg, assistantMsg)
	s.store.RecordActivity(ctx, session.ActivityChat, ActivityTitle(text))

	return assistantMsg, nil
}

// resolve tries the remote agent first and falls back to the local
// rule table on any failure or unusable payload.
func (s *Service) resolve(ctx context.Context, text string, profile advisory.UserProfile, language advisory.Language) (string, *advisory.HealthResponse) {
	result, err := s.agents.Invoke(ctx, ContextMessage(text, profile, language), s.agentID)
	if err != nil {
		s.logger.Warn("health assistant unavailable, using fallback", "error", err)
		return s.fallback(ctx, text, profile, language)
	}
	if result.Unavailable() {
		s.logger.Warn("health assistant returned an error payload, using fallback",
			"agent_error", result.Error,
		)
		return s.fallback(ctx, text, profile, language)
	}

	s.metrics.ObserveResolution(metrics.SourceAgent)
	return advisory.Extract(result.Response)
}

func (s *Service) fallback(ctx context.Context, text string, profile advisory.UserProfile, language advisory.Language) (string, *advisory.HealthResponse) {
	s.metrics.ObserveResolution(metrics.SourceFallback)
	resp := advisory.Fallback(ctx, text, profile, language)
	return resp.Message, &resp
}

// ContextMessage embeds the full profile and language preference into
// the prompt sent to the health assistant.
func ContextMessage(question string, p advisory.UserProfile, lang advisory.Language) string {
	return fmt.Sprintf(
		"User Profile: Name: %s, Age: %s years, Pregnancy Status: %s, Known Allergies: %s, Medical Conditions: %s. %s. User Question: %s",
		p.Name, p.Age, pregnancyStatus(p), orNone(p.Allergies), orNone(p.Conditions), languagePreference(lang), question,
	)
}

func pregnancyStatus(p advisory.UserProfile) string {
	if p.Pregnant() {
		return "Yes, pregnant"
	}
	return "Not pregnant"
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

func languagePreference(lang advisory.Language) string {
	if lang == advisory.LanguageHindi {
		return "Please respond in Hindi and English (bilingual)"
	}
	return "Please respond in English"
}

// ActivityTitle truncates an utterance for the recent-activity log.
func ActivityTitle(text string) string {
	runes := []rune(text)
	if len(runes) > activityTitleLimit {
		runes = runes[:activityTitleLimit]
	}
	return string(runes) + "..."
}
