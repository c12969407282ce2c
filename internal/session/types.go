package session

import (
	"time"

	"github.com/medimart/health-companion/internal/advisory"
)

// Screen identifies which of the five UI surfaces is active.
type Screen string

const (
	ScreenLogin     Screen = "login"
	ScreenLanguage  Screen = "language"
	ScreenDashboard Screen = "dashboard"
	ScreenChat      Screen = "chat"
	ScreenScan      Screen = "scan"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// WelcomeMessageID marks the synthetic greeting seeded on first chat entry.
const WelcomeMessageID = "welcome"

// ChatMessage is one turn in the transcript. Messages are append-only
// and immutable once appended; insertion order is canonical. IDs are
// millisecond timestamps, so they sort lexically by creation time.
type ChatMessage struct {
	ID        string                   `json:"id"`
	Role      string                   `json:"role"`
	Content   string                   `json:"content"`
	Data      *advisory.HealthResponse `json:"data,omitempty"`
	Timestamp time.Time                `json:"timestamp"`
}

// Activity types.
const (
	ActivityScan = "scan"
	ActivityChat = "chat"
)

// maxActivityItems caps the recent-activity log.
const maxActivityItems = 3

// ActivityItem is one entry in the dashboard's recent-activity log.
type ActivityItem struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}
