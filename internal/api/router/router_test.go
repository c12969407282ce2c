package router

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medimart/health-companion/internal/agent"
	"github.com/medimart/health-companion/internal/chat"
	"github.com/medimart/health-companion/internal/dashboard"
	"github.com/medimart/health-companion/internal/http/handlers"
	"github.com/medimart/health-companion/internal/scan"
	"github.com/medimart/health-companion/internal/session"
	"github.com/medimart/health-companion/internal/webchat"
)

type stubAgents struct{}

func (stubAgents) Invoke(context.Context, string, string, ...agent.InvokeOption) (agent.InvokeResult, error) {
	return agent.InvokeResult{Success: true, Response: &agent.Payload{Message: "ok"}}, nil
}

func (stubAgents) Upload(context.Context, string, io.Reader) (agent.UploadResult, error) {
	return agent.UploadResult{Success: true, AssetIDs: []string{"a"}}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := session.NewStore(session.NewMemoryKV(), nil)
	require.NoError(t, store.Load(context.Background()))

	agents := stubAgents{}
	chatSvc := chat.NewService(agents, store, "health", nil, nil)
	scanSvc := scan.NewService(agents, store, "scanner", "health", nil, nil)
	tips := dashboard.NewTipRotator(time.Hour)

	return New(&Config{
		Companion:          handlers.NewCompanionHandler(store, chatSvc, scanSvc, tips, nil),
		Webchat:            webchat.NewHandler(chatSvc, store, nil),
		MetricsHandler:     http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }),
		CORSAllowedOrigins: []string{"https://app.example.com"},
	})
}

func TestRoutes(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/session/", http.StatusOK},
		{http.MethodGet, "/chat/messages", http.StatusOK},
		{http.MethodGet, "/scan/result", http.StatusOK},
		{http.MethodGet, "/dashboard", http.StatusOK},
		{http.MethodGet, "/unknown", http.StatusNotFound},
		{http.MethodDelete, "/dashboard", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCORSHeadersApplied(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example.com")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
