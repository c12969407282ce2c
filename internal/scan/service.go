// Package scan implements the medicine-scan cascade: stage the image
// with the upload collaborator, have the scanner agent extract the
// medicine, then ask the health assistant whether it is safe for this
// user. Unlike the chat path there is no local fallback — a failure
// after upload is logged and the flow stops quietly.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/medimart/health-companion/internal/advisory"
	"github.com/medimart/health-companion/internal/agent"
	"github.com/medimart/health-companion/internal/observability/metrics"
	"github.com/medimart/health-companion/internal/session"
	"github.com/medimart/health-companion/pkg/logging"
)

// ErrBusy is returned while another remote call is in flight.
var ErrBusy = errors.New("scan: a request is already in flight")

// scanPrompt is the fixed extraction prompt sent to the scanner agent.
const scanPrompt = "Please analyze this medicine image and extract the following information: " +
	"medicine name, generic name, category, uses, pregnancy warnings, side effects, " +
	"and contraindications. Provide detailed and accurate information."

// unidentifiedFallbackMessage is used when the scanner reply carries no
// explanatory message of its own.
const unidentifiedFallbackMessage = "Could not extract medicine information from the image. Please try with a clearer image."

// defaultNavigateDelay is how long the scan screen lingers on the
// result card before switching to chat.
const defaultNavigateDelay = time.Second

// AgentClient is the slice of the agent client this service needs.
type AgentClient interface {
	Invoke(ctx context.Context, message, agentID string, opts ...agent.InvokeOption) (agent.InvokeResult, error)
	Upload(ctx context.Context, filename string, r io.Reader) (agent.UploadResult, error)
}

// Service runs the scan flow against the session store.
type Service struct {
	agents        AgentClient
	store         *session.Store
	scannerID     string
	healthID      string
	navigateDelay time.Duration
	logger        *logging.Logger
	metrics       *metrics.CompanionMetrics
}

// NewService creates a scan service bound to the scanner and health
// assistant agents.
func NewService(agents AgentClient, store *session.Store, scannerAgentID, healthAgentID string, m *metrics.CompanionMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		agents:        agents,
		store:         store,
		scannerID:     scannerAgentID,
		healthID:      healthAgentID,
		navigateDelay: defaultNavigateDelay,
		logger:        logger,
		metrics:       m,
	}
}

// SetNavigateDelay overrides the post-scan screen switch delay.
func (s *Service) SetNavigateDelay(d time.Duration) {
	s.navigateDelay = d
}

// Scan runs the full cascade for one image. Failures after the busy
// check are logged, counted, and swallowed: the only user-visible
// failure is the "Unable to identify" placeholder result.
func (s *Service) Scan(ctx context.Context, filename string, image io.Reader) error {
	if !s.store.BeginLoading() {
		return ErrBusy
	}
	defer s.store.EndLoading()

	s.store.ClearScanResult()

	upload, err := s.agents.Upload(ctx, filename, image)
	if err != nil {
		s.logger.Error("scan upload failed", "file", filename, "error", err)
		s.metrics.ObserveScan(metrics.ScanUploadFailed)
		return nil
	}
	if !upload.Success || len(upload.AssetIDs) == 0 {
		s.logger.Error("scan upload rejected", "file", filename, "message", upload.Message)
		s.metrics.ObserveScan(metrics.ScanUploadFailed)
		return nil
	}

	result, err := s.agents.Invoke(ctx, scanPrompt, s.scannerID, agent.WithAssets(upload.AssetIDs))
	if err != nil {
		s.logger.Error("medicine scanner call failed", "error", err)
		s.metrics.ObserveScan(metrics.ScanAgentFailed)
		return nil
	}
	if result.Unavailable() {
		s.logger.Error("medicine scanner returned an error payload", "agent_error", result.Error)
		s.metrics.ObserveScan(metrics.ScanAgentFailed)
		return nil
	}

	medicine, ok := advisory.ExtractScan(result.Response)
	if !ok || medicine.MedicineName == "" {
		s.store.SetScanResult(unidentifiedResult(result.Response))
		s.metrics.ObserveScan(metrics.ScanUnidentified)
		return nil
	}

	s.store.SetScanResult(&medicine)
	s.metrics.ObserveScan(metrics.ScanIdentified)
	s.assessMedicine(ctx, medicine)
	return nil
}

// assessMedicine cascades the identified medicine into the health
// assistant. A failed assessment is dropped without a transcript entry.
func (s *Service) assessMedicine(ctx context.Context, medicine advisory.ScanResult) {
	profile := s.store.Profile()
	language := s.store.Language()

	result, err := s.agents.Invoke(ctx, healthCheckMessage(medicine, profile, language), s.healthID)
	if err != nil {
		s.logger.Error("post-scan health assessment failed", "medicine", medicine.MedicineName, "error", err)
		return
	}
	if result.Unavailable() {
		s.logger.Error("post-scan health assessment returned an error payload",
			"medicine", medicine.MedicineName,
			"agent_error", result.Error,
		)
		return
	}

	content, data := advisory.ExtractScanAdvice(result.Response)

	userID, assistantID := session.PairIDs()
	now := time.Now().UTC()
	s.store.AppendExchange(ctx,
		session.ChatMessage{
			ID:        userID,
			Role:      session.RoleUser,
			Content:   "Scanned medicine: " + medicine.MedicineName,
			Timestamp: now,
		},
		session.ChatMessage{
			ID:        assistantID,
			Role:      session.RoleAssistant,
			Content:   content,
			Data:      data,
			Timestamp: now,
		},
	)
	s.store.RecordActivity(ctx, session.ActivityScan, medicine.MedicineName)

	// Let the result card show briefly before moving to chat.
	time.AfterFunc(s.navigateDelay, func() {
		if err := s.store.Navigate(session.ScreenChat); err != nil {
			s.logger.Warn("post-scan navigation refused", "error", err)
		}
	})
}

// healthCheckMessage embeds the profile and the scanned medicine into
// the safety question for the health assistant.
func healthCheckMessage(medicine advisory.ScanResult, p advisory.UserProfile, lang advisory.Language) string {
	generic := medicine.GenericName
	if generic == "" {
		generic = "generic name not available"
	}
	warning := ""
	if medicine.PregnancyWarning != "" {
		warning = "Pregnancy Warning: " + medicine.PregnancyWarning
	}
	pregnancy := "Not pregnant"
	if p.Pregnant() {
		pregnancy = "Yes, pregnant"
	}
	allergies := p.Allergies
	if allergies == "" {
		allergies = "None"
	}
	conditions := p.Conditions
	if conditions == "" {
		conditions = "None"
	}
	languagePref := "Please respond in English"
	if lang == advisory.LanguageHindi {
		languagePref = "Please respond in Hindi and English (bilingual)"
	}
	return fmt.Sprintf(
		"User Profile: Name: %s, Age: %s years, Pregnancy Status: %s, Allergies: %s, Medical Conditions: %s. %s. "+
			"I scanned this medicine: %s (%s). %s Is this medicine safe for me to take? "+
			"Please provide personalized guidance based on my profile.",
		p.Name, p.Age, pregnancy, allergies, conditions, languagePref,
		medicine.MedicineName, generic, warning,
	)
}

// unidentifiedResult builds the placeholder card shown when the
// scanner could not name the medicine.
func unidentifiedResult(p *agent.Payload) *advisory.ScanResult {
	msg := unidentifiedFallbackMessage
	if p != nil && p.Message != "" {
		msg = p.Message
	}
	return &advisory.ScanResult{
		MedicineName: "Unable to identify",
		Uses:         []string{msg},
		DosageNote:   "Please try scanning again with a clearer image.",
	}
}
