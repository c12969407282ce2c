package webchat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/medimart/health-companion/internal/advisory"
	"github.com/medimart/health-companion/internal/session"
)

type fakeChat struct {
	reply session.ChatMessage
	err   error
}

func (f *fakeChat) Send(_ context.Context, text string) (session.ChatMessage, error) {
	if f.err != nil {
		return session.ChatMessage{}, f.err
	}
	reply := f.reply
	if reply.Content == "" {
		reply.Content = "echo: " + text
	}
	return reply, nil
}

func dialTestServer(t *testing.T, h *Handler) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chat/ws"
	conn, err := websocket.Dial(wsURL, "", srv.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func receive(t *testing.T, conn *websocket.Conn) OutboundMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg OutboundMessage
	require.NoError(t, websocket.JSON.Receive(conn, &msg))
	return msg
}

func newWebchatStore(t *testing.T) *session.Store {
	t.Helper()
	store := session.NewStore(session.NewMemoryKV(), nil)
	require.NoError(t, store.Load(context.Background()))
	store.SetProfile(context.Background(), advisory.UserProfile{Name: "Asha", Age: "28", IsPregnant: "yes"})
	store.SetLanguage(context.Background(), advisory.LanguageEnglish)
	return store
}

func TestConnectSendsSessionAndHistory(t *testing.T) {
	store := newWebchatStore(t)
	h := NewHandler(&fakeChat{}, store, nil)
	conn := dialTestServer(t, h)

	first := receive(t, conn)
	assert.Equal(t, "session", first.Type)
	assert.NotEmpty(t, first.SessionID)

	// The welcome message is seeded on connect and replayed as history.
	history := receive(t, conn)
	require.Equal(t, "history", history.Type)
	require.Len(t, history.Messages, 1)
	assert.Equal(t, session.WelcomeMessageID, history.Messages[0].ID)
	assert.Equal(t, session.RoleAssistant, history.Messages[0].Role)
	assert.Contains(t, history.Messages[0].Text, "Hello Asha!")
}

func TestMessageRoundTrip(t *testing.T) {
	store := newWebchatStore(t)
	h := NewHandler(&fakeChat{}, store, nil)
	conn := dialTestServer(t, h)

	receive(t, conn) // session
	receive(t, conn) // history

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "message", Text: "hello"}))

	typing := receive(t, conn)
	assert.Equal(t, "typing", typing.Type)

	reply := receive(t, conn)
	assert.Equal(t, "message", reply.Type)
	assert.Equal(t, "echo: hello", reply.Text)
}

func TestPingPong(t *testing.T) {
	store := newWebchatStore(t)
	h := NewHandler(&fakeChat{}, store, nil)
	conn := dialTestServer(t, h)

	receive(t, conn) // session
	receive(t, conn) // history

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "ping"}))
	pong := receive(t, conn)
	assert.Equal(t, "pong", pong.Type)
}

func TestBlankMessagesAreIgnored(t *testing.T) {
	store := newWebchatStore(t)
	h := NewHandler(&fakeChat{}, store, nil)
	conn := dialTestServer(t, h)

	receive(t, conn) // session
	receive(t, conn) // history

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "message", Text: "   "}))
	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "ping"}))

	// The blank message produced nothing; the next frame is the pong.
	next := receive(t, conn)
	assert.Equal(t, "pong", next.Type)
}
