// Package dashboard carries the small amount of dashboard logic that
// is not presentation: the rotating health tip and the pregnancy-aware
// quick replies.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/medimart/health-companion/internal/advisory"
)

// DefaultRotationInterval is how often the dashboard tip advances.
const DefaultRotationInterval = 5 * time.Second

var healthTips = []string{
	"Stay hydrated - drink at least 8 glasses of water daily",
	"Take prescribed medications on time",
	"Regular check-ups are important for your health",
	"Maintain a balanced diet with fruits and vegetables",
	"Get adequate sleep - 7-8 hours recommended",
}

// TipRotator cycles through the fixed tip list on a timer.
type TipRotator struct {
	interval time.Duration

	mu    sync.Mutex
	index int
	stop  chan struct{}
}

// NewTipRotator creates a rotator; a non-positive interval uses the default.
func NewTipRotator(interval time.Duration) *TipRotator {
	if interval <= 0 {
		interval = DefaultRotationInterval
	}
	return &TipRotator{interval: interval}
}

// Start begins rotation until Stop is called or ctx is done.
// Calling Start twice is a no-op.
func (t *TipRotator) Start(ctx context.Context) {
	t.mu.Lock()
	if t.stop != nil {
		t.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	t.stop = stop
	t.mu.Unlock()

	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.Advance()
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts rotation. Safe to call more than once.
func (t *TipRotator) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

// Advance moves to the next tip, wrapping at the end of the list.
func (t *TipRotator) Advance() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.index = (t.index + 1) % len(healthTips)
}

// Current returns the tip being shown.
func (t *TipRotator) Current() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return healthTips[t.index]
}

// QuickReplies returns the canned prompts offered above the chat
// input, keyed on pregnancy status.
func QuickReplies(p advisory.UserProfile) []string {
	if p.Pregnant() {
		return []string{
			"I have a headache. What should I do?",
			"Which medicines are safe during pregnancy?",
			"I have morning sickness. Any remedies?",
			"What foods should I avoid?",
		}
	}
	return []string{
		"I have a fever. What should I do?",
		"How can I improve my sleep?",
		"What are healthy eating tips?",
		"I have a stomach ache. Help?",
	}
}
