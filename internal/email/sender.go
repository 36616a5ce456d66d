package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Sender delivers one composed email. Implementations return an error for
// any failure the dispatcher should retry.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Resend delivers through a Resend-compatible HTTP endpoint.
type Resend struct {
	Endpoint string
	APIKey   string
	From     string
	hc       *http.Client
}

func NewResend(endpoint, apiKey, from string) *Resend {
	return &Resend{
		Endpoint: endpoint,
		APIKey:   apiKey,
		From:     from,
		hc:       &http.Client{Timeout: 20 * time.Second},
	}
}

func (r *Resend) Send(ctx context.Context, to, subject, body string) error {
	payload, _ := json.Marshal(map[string]any{
		"from":    r.From,
		"to":      []string{to},
		"subject": subject,
		"text":    body,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint,
		bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.APIKey)

	res, err := r.hc.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return fmt.Errorf("send status %d", res.StatusCode)
	}
	return nil
}
