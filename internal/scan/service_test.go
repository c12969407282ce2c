package scan

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medimart/health-companion/internal/advisory"
	"github.com/medimart/health-companion/internal/agent"
	"github.com/medimart/health-companion/internal/session"
)

const (
	scannerID = "scanner-agent"
	healthID  = "health-agent"
)

type fakeAgents struct {
	uploadResult agent.UploadResult
	uploadErr    error

	scanResult  agent.InvokeResult
	scanErr     error
	scanOpts    int
	scanMessage string

	healthResult  agent.InvokeResult
	healthErr     error
	healthMessage string
}

func (f *fakeAgents) Upload(_ context.Context, _ string, r io.Reader) (agent.UploadResult, error) {
	_, _ = io.Copy(io.Discard, r)
	return f.uploadResult, f.uploadErr
}

func (f *fakeAgents) Invoke(_ context.Context, message, agentID string, opts ...agent.InvokeOption) (agent.InvokeResult, error) {
	switch agentID {
	case scannerID:
		f.scanMessage = message
		f.scanOpts = len(opts)
		return f.scanResult, f.scanErr
	case healthID:
		f.healthMessage = message
		return f.healthResult, f.healthErr
	}
	return agent.InvokeResult{}, errors.New("unknown agent " + agentID)
}

func newTestStore(t *testing.T) *session.Store {
	t.Helper()
	store := session.NewStore(session.NewMemoryKV(), nil)
	require.NoError(t, store.Load(context.Background()))
	store.SetProfile(context.Background(), advisory.UserProfile{Name: "Asha", Age: "28", IsPregnant: "yes"})
	store.SetLanguage(context.Background(), advisory.LanguageHindi)
	return store
}

func identifiedAgents() *fakeAgents {
	return &fakeAgents{
		uploadResult: agent.UploadResult{Success: true, AssetIDs: []string{"asset-1"}},
		scanResult: agent.InvokeResult{
			Success: true,
			Response: &agent.Payload{
				Result: json.RawMessage(`{"medicine_name":"Paracetamol","generic_name":"Acetaminophen","pregnancy_warning":"Consult your doctor first."}`),
			},
		},
		healthResult: agent.InvokeResult{
			Success: true,
			Response: &agent.Payload{
				Result: json.RawMessage(`{"message":"Generally safe at normal doses.","risk_level":"LOW"}`),
			},
		},
	}
}

func TestScanFullCascade(t *testing.T) {
	agents := identifiedAgents()
	store := newTestStore(t)
	svc := NewService(agents, store, scannerID, healthID, nil, nil)
	svc.SetNavigateDelay(time.Millisecond)

	require.NoError(t, store.Navigate(session.ScreenScan))
	require.NoError(t, svc.Scan(context.Background(), "label.jpg", strings.NewReader("image-bytes")))

	result := store.ScanResult()
	require.NotNil(t, result)
	assert.Equal(t, "Paracetamol", result.MedicineName)

	assert.Equal(t, 1, agents.scanOpts, "scanner invocation should carry the uploaded assets")

	msgs := store.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Scanned medicine: Paracetamol", msgs[0].Content)
	assert.Equal(t, "Generally safe at normal doses.", msgs[1].Content)
	require.NotNil(t, msgs[1].Data)
	assert.Equal(t, advisory.RiskLow, msgs[1].Data.RiskLevel)

	activity := store.Activity()
	require.Len(t, activity, 1)
	assert.Equal(t, session.ActivityScan, activity[0].Type)
	assert.Equal(t, "Paracetamol", activity[0].Title)

	// The screen switches to chat after the short delay.
	assert.Eventually(t, func() bool {
		return store.Screen() == session.ScreenChat
	}, time.Second, 5*time.Millisecond)

	assert.False(t, store.Loading())
}

func TestScanHealthCheckMessage(t *testing.T) {
	agents := identifiedAgents()
	store := newTestStore(t)
	svc := NewService(agents, store, scannerID, healthID, nil, nil)
	svc.SetNavigateDelay(time.Millisecond)

	require.NoError(t, svc.Scan(context.Background(), "label.jpg", strings.NewReader("x")))

	msg := agents.healthMessage
	assert.Contains(t, msg, "Name: Asha")
	assert.Contains(t, msg, "Pregnancy Status: Yes, pregnant")
	assert.Contains(t, msg, "Allergies: None")
	assert.Contains(t, msg, "Please respond in Hindi and English (bilingual)")
	assert.Contains(t, msg, "I scanned this medicine: Paracetamol (Acetaminophen).")
	assert.Contains(t, msg, "Pregnancy Warning: Consult your doctor first.")
	assert.Contains(t, msg, "Is this medicine safe for me to take?")
}

func TestScanUploadFailureIsSilent(t *testing.T) {
	tests := []struct {
		name   string
		agents *fakeAgents
	}{
		{"transport error", &fakeAgents{uploadErr: errors.New("connection refused")}},
		{"rejected upload", &fakeAgents{uploadResult: agent.UploadResult{Success: false, Message: "too large"}}},
		{"no asset ids", &fakeAgents{uploadResult: agent.UploadResult{Success: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			svc := NewService(tt.agents, store, scannerID, healthID, nil, nil)

			require.NoError(t, svc.Scan(context.Background(), "label.jpg", strings.NewReader("x")))

			assert.Nil(t, store.ScanResult())
			assert.Empty(t, store.Messages())
			assert.Empty(t, store.Activity())
			assert.False(t, store.Loading())
		})
	}
}

func TestScanUnidentifiedMedicine(t *testing.T) {
	agents := identifiedAgents()
	agents.scanResult = agent.InvokeResult{
		Success:  true,
		Response: &agent.Payload{Message: "The label is too blurry to read."},
	}
	store := newTestStore(t)
	svc := NewService(agents, store, scannerID, healthID, nil, nil)

	require.NoError(t, svc.Scan(context.Background(), "label.jpg", strings.NewReader("x")))

	result := store.ScanResult()
	require.NotNil(t, result)
	assert.Equal(t, "Unable to identify", result.MedicineName)
	require.Len(t, result.Uses, 1)
	assert.Equal(t, "The label is too blurry to read.", result.Uses[0])
	assert.Equal(t, "Please try scanning again with a clearer image.", result.DosageNote)

	// No health assessment follows an unidentified scan.
	assert.Empty(t, store.Messages())
	assert.Empty(t, agents.healthMessage)
}

func TestScanUnidentifiedWithoutAgentMessage(t *testing.T) {
	agents := identifiedAgents()
	agents.scanResult = agent.InvokeResult{Success: true, Response: &agent.Payload{}}
	store := newTestStore(t)
	svc := NewService(agents, store, scannerID, healthID, nil, nil)

	require.NoError(t, svc.Scan(context.Background(), "label.jpg", strings.NewReader("x")))

	result := store.ScanResult()
	require.NotNil(t, result)
	require.Len(t, result.Uses, 1)
	assert.Equal(t, unidentifiedFallbackMessage, result.Uses[0])
}

func TestScanAssessmentFailureDropsQuietly(t *testing.T) {
	agents := identifiedAgents()
	agents.healthErr = errors.New("agent timeout")
	store := newTestStore(t)
	svc := NewService(agents, store, scannerID, healthID, nil, nil)

	require.NoError(t, svc.Scan(context.Background(), "label.jpg", strings.NewReader("x")))

	// The scan result stands but no transcript entry is written.
	require.NotNil(t, store.ScanResult())
	assert.Equal(t, "Paracetamol", store.ScanResult().MedicineName)
	assert.Empty(t, store.Messages())
	assert.Empty(t, store.Activity())
}

func TestScanRefusesOverlappingCalls(t *testing.T) {
	store := newTestStore(t)
	svc := NewService(identifiedAgents(), store, scannerID, healthID, nil, nil)

	require.True(t, store.BeginLoading())
	err := svc.Scan(context.Background(), "label.jpg", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrBusy)
	store.EndLoading()
}

func TestScanClearsPreviousResult(t *testing.T) {
	agents := identifiedAgents()
	agents.uploadErr = errors.New("connection refused")
	store := newTestStore(t)
	store.SetScanResult(&advisory.ScanResult{MedicineName: "Old"})
	svc := NewService(agents, store, scannerID, healthID, nil, nil)

	require.NoError(t, svc.Scan(context.Background(), "label.jpg", strings.NewReader("x")))
	assert.Nil(t, store.ScanResult())
}
