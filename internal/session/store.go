package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/medimart/health-companion/internal/advisory"
	"github.com/medimart/health-companion/pkg/logging"
)

// Store owns all session state and the persist-on-write side effect.
// Every mutating method writes the affected entity through to the KV
// collaborator immediately; writes are fire-and-forget (logged, never
// retried, never surfaced to the caller).
type Store struct {
	kv     KV
	logger *logging.Logger
	tracer trace.Tracer

	mu       sync.RWMutex
	profile  advisory.UserProfile
	language advisory.Language
	messages []ChatMessage
	activity []ActivityItem

	// Ephemeral UI state, never persisted.
	screen        Screen
	loading       bool
	scanResult    *advisory.ScanResult
	expandedPanel string
}

// NewStore creates a session store backed by the given KV driver.
func NewStore(kv KV, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		kv:     kv,
		logger: logger,
		tracer: otel.Tracer("medimart/session"),
		screen: ScreenLogin,
	}
}

// Load restores profile, language, transcript, and activity log from
// the KV store and derives the initial screen: dashboard when both
// profile and language are present, language selection when only the
// profile is, login otherwise. A corrupt value for one key is logged
// and discarded without affecting the other keys.
func (s *Store) Load(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "session.load")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	profileOK, err := s.loadKey(ctx, KeyProfile, &s.profile)
	if err != nil {
		return err
	}
	languageOK, err := s.loadKey(ctx, KeyLanguage, &s.language)
	if err != nil {
		return err
	}
	if _, err := s.loadKey(ctx, KeyMessages, &s.messages); err != nil {
		return err
	}
	if _, err := s.loadKey(ctx, KeyActivity, &s.activity); err != nil {
		return err
	}

	switch {
	case profileOK && languageOK:
		s.screen = ScreenDashboard
	case profileOK:
		s.screen = ScreenLanguage
	default:
		s.screen = ScreenLogin
	}

	s.logger.Info("session loaded",
		"screen", string(s.screen),
		"messages", len(s.messages),
		"activity", len(s.activity),
	)
	return nil
}

// loadKey reads and decodes one persisted key into v. Returns whether
// a usable value was present. Transport errors abort the load; decode
// errors discard only this key.
func (s *Store) loadKey(ctx context.Context, key string, v any) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("session: load %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.logger.Warn("discarding corrupt persisted value", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

// Profile returns the current user profile.
func (s *Store) Profile() advisory.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// SetProfile replaces the profile. It persists only when the name is
// set, so the all-empty initial profile never reaches the store.
func (s *Store) SetProfile(ctx context.Context, p advisory.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile = p
	if p.Name != "" {
		s.persist(ctx, KeyProfile, p)
	}
}

// Language returns the selected language.
func (s *Store) Language() advisory.Language {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// SetLanguage replaces the language; persisted only when non-empty.
func (s *Store) SetLanguage(ctx context.Context, lang advisory.Language) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.language = lang
	if lang != advisory.LanguageUnset {
		s.persist(ctx, KeyLanguage, lang)
	}
}

// Messages returns a copy of the transcript in insertion order.
func (s *Store) Messages() []ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// AppendMessage appends one message to the transcript and persists it.
func (s *Store) AppendMessage(ctx context.Context, msg ChatMessage) {
	ctx, span := s.tracer.Start(ctx, "session.append_message")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(ctx, msg)
}

// AppendExchange appends a user/assistant pair atomically so readers
// never observe the user turn without its reply.
func (s *Store) AppendExchange(ctx context.Context, userMsg, assistantMsg ChatMessage) {
	ctx, span := s.tracer.Start(ctx, "session.append_exchange")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, userMsg, assistantMsg)
	s.persist(ctx, KeyMessages, s.messages)
}

func (s *Store) appendLocked(ctx context.Context, msg ChatMessage) {
	s.messages = append(s.messages, msg)
	if len(s.messages) > 0 {
		s.persist(ctx, KeyMessages, s.messages)
	}
}

// SeedWelcome inserts the synthetic greeting exactly once: only when
// the chat screen is entered on an empty transcript. The text follows
// the session language (bilingual block for Hindi).
func (s *Store) SeedWelcome(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.messages) > 0 {
		return
	}

	name := s.profile.Name
	var content string
	if s.language == advisory.LanguageHindi {
		content = fmt.Sprintf("नमस्ते %s! मैं आपकी स्वास्थ्य सहायक हूं।\n\n"+
			"Hello %s! I am your health assistant. I can help you with:\n\n"+
			"• Health questions and symptoms\n"+
			"• Medicine information and safety\n"+
			"• Pregnancy-related health guidance\n"+
			"• General wellness advice\n\n"+
			"Please feel free to ask me anything about your health!", name, name)
	} else {
		content = fmt.Sprintf("Hello %s! I am your health assistant. I can help you with:\n\n"+
			"• Health questions and symptoms\n"+
			"• Medicine information and safety\n"+
			"• General wellness advice\n"+
			"• Personalized health recommendations\n\n"+
			"Please feel free to ask me anything about your health!", name)
	}

	s.appendLocked(ctx, ChatMessage{
		ID:        WelcomeMessageID,
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
}

// RecordActivity prepends an activity entry, keeps at most three, and
// persists the log.
func (s *Store) RecordActivity(ctx context.Context, activityType, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := ActivityItem{
		ID:        NextID(),
		Type:      activityType,
		Title:     title,
		Timestamp: time.Now().UTC(),
	}
	s.activity = append([]ActivityItem{item}, s.activity...)
	if len(s.activity) > maxActivityItems {
		s.activity = s.activity[:maxActivityItems]
	}
	if len(s.activity) > 0 {
		s.persist(ctx, KeyActivity, s.activity)
	}
}

// Activity returns a copy of the recent-activity log, newest first.
func (s *Store) Activity() []ActivityItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ActivityItem, len(s.activity))
	copy(out, s.activity)
	return out
}

// Screen returns the active screen.
func (s *Store) Screen() Screen {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.screen
}

// Navigate switches the active screen. Leaving the login screen is
// refused until name, age, and pregnancy status are all set; that is
// the only gate — everything else mirrors the dashboard's free
// movement between language, chat, and scan.
func (s *Store) Navigate(to Screen) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen == ScreenLogin && to != ScreenLogin && !s.profile.Complete() {
		return fmt.Errorf("session: profile incomplete, cannot leave login")
	}
	switch to {
	case ScreenLogin, ScreenLanguage, ScreenDashboard, ScreenChat, ScreenScan:
		s.screen = to
		return nil
	default:
		return fmt.Errorf("session: unknown screen %q", to)
	}
}

// Loading reports whether a remote call is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// BeginLoading sets the loading flag; it reports false when a call is
// already in flight, preventing overlapping submissions.
func (s *Store) BeginLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loading {
		return false
	}
	s.loading = true
	return true
}

// EndLoading clears the loading flag.
func (s *Store) EndLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}

// ScanResult returns the current scan result, or nil.
func (s *Store) ScanResult() *advisory.ScanResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.scanResult == nil {
		return nil
	}
	out := *s.scanResult
	return &out
}

// SetScanResult replaces the live scan result.
func (s *Store) SetScanResult(result *advisory.ScanResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scanResult = result
}

// ClearScanResult drops the live scan result when a new scan begins.
func (s *Store) ClearScanResult() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scanResult = nil
}

// TogglePanel expands the named dashboard panel, or collapses it when
// it is already the expanded one.
func (s *Store) TogglePanel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.expandedPanel == name {
		s.expandedPanel = ""
		return
	}
	s.expandedPanel = name
}

// ExpandedPanel returns the currently expanded dashboard panel, if any.
func (s *Store) ExpandedPanel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expandedPanel
}

// persist writes one entity through to the KV store. Failures are
// logged and otherwise ignored; there is no retry.
func (s *Store) persist(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to encode session state", "key", key, "error", err)
		return
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		s.logger.Error("failed to persist session state", "key", key, "error", err)
	}
}

// NextID returns a millisecond-timestamp identifier. IDs created later
// always sort lexically after earlier ones within the same session.
func NextID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// PairIDs returns identifiers for a user/assistant exchange created at
// the same instant, with the reply ordered after the prompt.
func PairIDs() (string, string) {
	now := time.Now().UnixMilli()
	return strconv.FormatInt(now, 10), strconv.FormatInt(now+1, 10)
}
