package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlackMailbox(t *testing.T) {
	assert := assert.New(t)

	var got SlackWebhookBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(http.MethodPost, r.Method)
		assert.Equal("application/json", r.Header.Get("Content-Type"))
		assert.NoError(json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	mb := SlackMailbox{WebhookURL: srv.URL}
	assert.NoError(mb.Notify(context.Background(), escalationSubject, "https://example.com/roo"))
	assert.Contains(got.Text, escalationSubject)
	assert.Contains(got.Text, "https://example.com/roo")
}

func TestSlackMailboxError(t *testing.T) {
	assert := assert.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("invalid_token"))
	}))
	defer srv.Close()

	mb := SlackMailbox{WebhookURL: srv.URL}
	assert.Error(mb.Notify(context.Background(), "subject", "body"))
}
