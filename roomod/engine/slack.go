package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/switcharoohelper/roohelper/util"
)

// Moderation mailbox backed by a slack "incoming webhook".
//
// The webhook must already be configured in the slack workspace.
type SlackMailbox struct {
	WebhookURL string
	// if nil, util.ActionHTTPClient is used. Notifications are never retried
	Client *http.Client
}

var _ ModerationMailbox = (*SlackMailbox)(nil)

type SlackWebhookBody struct {
	Text string `json:"text"`
}

func (m *SlackMailbox) Notify(ctx context.Context, subject, body string) error {
	msg := fmt.Sprintf("⚠️ %s ⚠️\n%s\n", subject, body)
	return m.sendSlackMsg(ctx, msg)
}

func (m *SlackMailbox) sendSlackMsg(ctx context.Context, msg string) error {
	body, err := json.Marshal(SlackWebhookBody{Text: msg})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.WebhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")
	client := m.Client
	if client == nil {
		client = util.ActionHTTPClient()
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	buf := new(bytes.Buffer)
	buf.ReadFrom(resp.Body)
	if resp.StatusCode != 200 || buf.String() != "ok" {
		return fmt.Errorf("failed slack webhook POST request. status=%d", resp.StatusCode)
	}
	return nil
}
