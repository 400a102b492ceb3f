// Package client talks to the EduCompanion API on behalf of the CLI,
// carrying the saved session cookie between invocations.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/crucial707/educompanion/cmd/cli/config"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("API error (%d): %s", e.Status, e.Message)
	if len(e.Fields) == 0 {
		return msg
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return msg + " [" + strings.Join(parts, "; ") + "]"
}

// Client sends JSON requests and keeps cookies in the session file.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New() *Client {
	return &Client{
		BaseURL: strings.TrimRight(config.APIURL(), "/"),
		HTTP:    &http.Client{Timeout: 90 * time.Second},
	}
}

// Do sends payload (if any) to path and decodes the response into out (if
// any). Cookies set or expired by the server are saved.
func (c *Client) Do(method, path string, payload, out any) error {
	sess, err := config.LoadSession()
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for name, value := range sess.Cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	changed := false
	for _, ck := range resp.Cookies() {
		old, had := sess.Cookies[ck.Name]
		if ck.MaxAge < 0 || ck.Value == "" {
			if had {
				delete(sess.Cookies, ck.Name)
				changed = true
			}
			continue
		}
		if !had || old != ck.Value {
			sess.Cookies[ck.Name] = ck.Value
			changed = true
		}
	}
	if changed {
		if err := config.SaveSession(sess); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		var msg struct {
			Message string            `json:"message"`
			Fields  map[string]string `json:"fields"`
		}
		if json.Unmarshal(raw, &msg) == nil && msg.Message != "" {
			apiErr.Message, apiErr.Fields = msg.Message, msg.Fields
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
