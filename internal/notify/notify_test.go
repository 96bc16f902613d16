package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	name   string
	err    error
	titles []string
}

func (r *recordingSender) Send(_ context.Context, title, _ string) error {
	r.titles = append(r.titles, title)
	return r.err
}

func (r *recordingSender) Name() string { return r.name }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifierFiltersEvents(t *testing.T) {
	s := &recordingSender{name: "rec"}
	n := NewNotifier([]Sender{s}, []string{"landing_success", " landing_crash "}, discardLogger())

	require.NoError(t, n.Notify(context.Background(), "landing_success", "ok", "m"))
	require.NoError(t, n.Notify(context.Background(), "landing_crash", "crash", "m"))
	require.NoError(t, n.Notify(context.Background(), "landing_aborted", "skipped", "m"))

	assert.Equal(t, []string{"ok", "crash"}, s.titles)
}

func TestNotifierEmptyFilterAllowsAll(t *testing.T) {
	s := &recordingSender{name: "rec"}
	n := NewNotifier([]Sender{s}, nil, discardLogger())
	require.NoError(t, n.Notify(context.Background(), "anything", "t", "m"))
	assert.Len(t, s.titles, 1)
}

func TestNotifierJoinsSenderFailures(t *testing.T) {
	boom := errors.New("boom")
	bad := &recordingSender{name: "bad", err: boom}
	good := &recordingSender{name: "good"}
	n := NewNotifier([]Sender{bad, good}, nil, discardLogger())

	err := n.Notify(context.Background(), "landing_success", "t", "m")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "1 sender(s) failed")
	assert.Len(t, good.titles, 1, "remaining senders still receive the message")
}

func TestSenders(t *testing.T) {
	assert.Empty(t, Senders("", "", ""))
	assert.Empty(t, Senders("token", "", ""))

	got := Senders("token", "chat", "https://discord.example/webhook")
	require.Len(t, got, 2)
	assert.Equal(t, "telegram", got[0].Name())
	assert.Equal(t, "discord", got[1].Name())

	assert.False(t, NewNotifier(nil, nil, discardLogger()).Enabled())
	assert.True(t, NewNotifier(got, nil, discardLogger()).Enabled())
}

func TestTelegramSend(t *testing.T) {
	var gotPath string
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewTelegramSender("tok", "42")
	s.apiBase = srv.URL

	require.NoError(t, s.Send(context.Background(), "Confirmed landing: BTC-USD", "profit_display +$18.50"))
	assert.Equal(t, "/bottok/sendMessage", gotPath)
	assert.Equal(t, "42", payload["chat_id"])
	assert.Equal(t, "*Confirmed landing: BTC-USD*\nprofit\\_display +$18.50", payload["text"])
}

func TestTelegramSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewTelegramSender("tok", "42")
	s.apiBase = srv.URL
	err := s.Send(context.Background(), "t", "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestDiscordSendTruncates(t *testing.T) {
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := NewDiscordSender(srv.URL)
	require.NoError(t, s.Send(context.Background(), "Crash landing: ETH-USD", strings.Repeat("x", 3000)))
	assert.Equal(t, discordContentLimit, len([]rune(payload["content"])))
	assert.True(t, strings.HasPrefix(payload["content"], "**Crash landing: ETH-USD**\n"))
}
