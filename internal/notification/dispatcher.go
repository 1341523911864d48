package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPDispatcher posts events as JSON to <baseURL>/notify.
type HTTPDispatcher struct {
	baseURL string
	token   func() (string, error)
	client  *http.Client
}

// NewHTTPDispatcher builds a dispatcher. token is called per request so the service token can be refreshed.
func NewHTTPDispatcher(baseURL string, timeout time.Duration, token func() (string, error)) *HTTPDispatcher {
	return &HTTPDispatcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

func (d *HTTPDispatcher) Notify(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/notify", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if d.token != nil {
		token, err := d.token()
		if err != nil {
			return fmt.Errorf("service token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify %s: unexpected status %d", event.UserID, resp.StatusCode)
	}

	return nil
}
