// Package handlers exposes the session, chat, scan, and dashboard
// operations over JSON HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/medimart/health-companion/internal/advisory"
	"github.com/medimart/health-companion/internal/chat"
	"github.com/medimart/health-companion/internal/dashboard"
	"github.com/medimart/health-companion/internal/scan"
	"github.com/medimart/health-companion/internal/session"
	"github.com/medimart/health-companion/pkg/logging"
)

// maxUploadBytes caps scan image uploads.
const maxUploadBytes = 10 << 20

// CompanionHandler handles HTTP requests for the health companion.
type CompanionHandler struct {
	store  *session.Store
	chat   *chat.Service
	scan   *scan.Service
	tips   *dashboard.TipRotator
	logger *logging.Logger
}

// NewCompanionHandler creates a new companion handler.
func NewCompanionHandler(store *session.Store, chatSvc *chat.Service, scanSvc *scan.Service, tips *dashboard.TipRotator, logger *logging.Logger) *CompanionHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &CompanionHandler{
		store:  store,
		chat:   chatSvc,
		scan:   scanSvc,
		tips:   tips,
		logger: logger,
	}
}

// HealthCheck handles GET /health requests.
func (h *CompanionHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SessionResponse is the response for GET /session.
type SessionResponse struct {
	Profile       advisory.UserProfile   `json:"profile"`
	Language      advisory.Language      `json:"language"`
	Screen        session.Screen         `json:"screen"`
	Loading       bool                   `json:"loading"`
	Activity      []session.ActivityItem `json:"activity"`
	ScanResult    *advisory.ScanResult   `json:"scan_result,omitempty"`
	ExpandedPanel string                 `json:"expanded_panel,omitempty"`
}

// GetSession handles GET /session requests.
func (h *CompanionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SessionResponse{
		Profile:       h.store.Profile(),
		Language:      h.store.Language(),
		Screen:        h.store.Screen(),
		Loading:       h.store.Loading(),
		Activity:      h.store.Activity(),
		ScanResult:    h.store.ScanResult(),
		ExpandedPanel: h.store.ExpandedPanel(),
	})
}

// UpdateProfile handles PUT /session/profile requests.
func (h *CompanionHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var profile advisory.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		h.logger.Error("failed to decode profile", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if profile.IsPregnant != "yes" && profile.IsPregnant != "no" && profile.IsPregnant != "" {
		http.Error(w, "isPregnant must be yes, no, or empty", http.StatusBadRequest)
		return
	}

	h.store.SetProfile(r.Context(), profile)
	writeJSON(w, http.StatusOK, map[string]bool{"complete": profile.Complete()})
}

type languageRequest struct {
	Language advisory.Language `json:"language"`
}

// UpdateLanguage handles PUT /session/language requests.
func (h *CompanionHandler) UpdateLanguage(w http.ResponseWriter, r *http.Request) {
	var req languageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Language != advisory.LanguageHindi && req.Language != advisory.LanguageEnglish {
		http.Error(w, "language must be hindi or english", http.StatusBadRequest)
		return
	}

	h.store.SetLanguage(r.Context(), req.Language)
	w.WriteHeader(http.StatusNoContent)
}

type navigateRequest struct {
	Screen session.Screen `json:"screen"`
}

// Navigate handles POST /session/navigate requests. Entering the chat
// screen seeds the welcome message on an empty transcript.
func (h *CompanionHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.store.Navigate(req.Screen); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if req.Screen == session.ScreenChat {
		h.store.SeedWelcome(r.Context())
	}
	writeJSON(w, http.StatusOK, map[string]session.Screen{"screen": h.store.Screen()})
}

type togglePanelRequest struct {
	Panel string `json:"panel"`
}

// TogglePanel handles POST /session/panel requests.
func (h *CompanionHandler) TogglePanel(w http.ResponseWriter, r *http.Request) {
	var req togglePanelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.store.TogglePanel(req.Panel)
	writeJSON(w, http.StatusOK, map[string]string{"expanded_panel": h.store.ExpandedPanel()})
}

// MessagesResponse is the response for GET /chat/messages.
type MessagesResponse struct {
	Messages []session.ChatMessage `json:"messages"`
	Count    int                   `json:"count"`
}

// ListMessages handles GET /chat/messages requests.
func (h *CompanionHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	msgs := h.store.Messages()
	writeJSON(w, http.StatusOK, MessagesResponse{Messages: msgs, Count: len(msgs)})
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

// SendMessage handles POST /chat/messages requests.
func (h *CompanionHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	reply, err := h.chat.Send(r.Context(), req.Text)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	case errors.Is(err, chat.ErrBusy):
		http.Error(w, "another request is in flight", http.StatusConflict)
		return
	case err != nil:
		h.logger.Error("chat send failed", "error", err)
		http.Error(w, "failed to process message", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

// ScanMedicine handles POST /scan requests with a multipart image.
func (h *CompanionHandler) ScanMedicine(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid multipart body", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	err = h.scan.Scan(r.Context(), header.Filename, file)
	if errors.Is(err, scan.ErrBusy) {
		http.Error(w, "another request is in flight", http.StatusConflict)
		return
	}
	if err != nil {
		h.logger.Error("scan failed", "error", err)
		http.Error(w, "failed to process scan", http.StatusInternalServerError)
		return
	}

	h.GetScanResult(w, r)
}

// ScanResultResponse is the response for GET /scan/result.
type ScanResultResponse struct {
	Result *advisory.ScanResult `json:"result"`
}

// GetScanResult handles GET /scan/result requests.
func (h *CompanionHandler) GetScanResult(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ScanResultResponse{Result: h.store.ScanResult()})
}

// DashboardResponse is the response for GET /dashboard.
type DashboardResponse struct {
	Greeting     string                 `json:"greeting"`
	Tip          string                 `json:"tip"`
	QuickReplies []string               `json:"quick_replies"`
	Activity     []session.ActivityItem `json:"activity"`
}

// GetDashboard handles GET /dashboard requests.
func (h *CompanionHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	profile := h.store.Profile()
	writeJSON(w, http.StatusOK, DashboardResponse{
		Greeting:     "Hello, " + profile.Name + "!",
		Tip:          h.tips.Current(),
		QuickReplies: dashboard.QuickReplies(profile),
		Activity:     h.store.Activity(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
