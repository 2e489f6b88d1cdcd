package coachapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"coachtui/config"
)

// Options configures a Client. Zero values mean: no rate limit, no timeout,
// no explicit user id.
type Options struct {
	UserID            string
	RequestsPerSecond float64
	Timeout           time.Duration
	HTTPClient        *http.Client
}

// Client talks to the single coaching endpoint. Every action goes to the same
// URL, selected by an "action" query or body field.
type Client struct {
	baseURL string
	userID  string
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(baseURL string, opts Options) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &Client{
		baseURL: baseURL,
		userID:  opts.UserID,
		http:    httpClient,
		limiter: limiter,
	}, nil
}

// Chat sends a text message and returns the coach's reply.
func (c *Client) Chat(ctx context.Context, coachID, message string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"action":   "chat",
		"coach_id": coachID,
		"message":  message,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	data, err := c.do(req)
	if err != nil {
		return "", err
	}
	return requireField(data, "chat", "reply")
}

// TranscribeAudio uploads a recording and returns its transcript. Every
// failure is wrapped in TranscriptionError.
func (c *Client) TranscribeAudio(ctx context.Context, coachID, filename string, audio []byte) (string, error) {
	text, err := c.transcribe(ctx, coachID, filename, audio)
	if err != nil {
		return "", &TranscriptionError{Err: err}
	}
	return text, nil
}

func (c *Client) transcribe(ctx context.Context, coachID, filename string, audio []byte) (string, error) {
	if filename == "" {
		filename = "blob"
	}
	req, err := c.multipartRequest(ctx, map[string]string{
		"action":   "transcribe_audio",
		"coach_id": coachID,
	}, "audio", filename, "", audio)
	if err != nil {
		return "", err
	}

	data, err := c.do(req)
	if err != nil {
		return "", err
	}
	return requireField(data, "transcribe_audio", "text")
}

// Vision uploads a JPEG with optional text and returns the coach's reply.
func (c *Client) Vision(ctx context.Context, coachID, text string, jpeg []byte) (string, error) {
	req, err := c.multipartRequest(ctx, map[string]string{
		"action":   "vision",
		"coach_id": coachID,
		"text":     text,
	}, "image", "image.jpg", "image/jpeg", jpeg)
	if err != nil {
		return "", err
	}

	data, err := c.do(req)
	if err != nil {
		return "", err
	}
	return requireField(data, "vision", "reply")
}

// ListCoaches fetches the full coach directory.
func (c *Client) ListCoaches(ctx context.Context) ([]Coach, error) {
	req, err := c.getRequest(ctx, "list_coaches", nil)
	if err != nil {
		return nil, err
	}

	data, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to load coaches: %w", err)
	}

	parsed := gjson.ParseBytes(data)
	if !parsed.IsArray() {
		return nil, &InvalidResponseError{Action: "list_coaches", Reason: "expected an array"}
	}

	coaches := make([]Coach, 0, len(parsed.Array()))
	for _, r := range parsed.Array() {
		coaches = append(coaches, parseCoach(r))
	}
	return coaches, nil
}

// ChatHistory loads stored messages for every coach, or only coachID when set.
func (c *Client) ChatHistory(ctx context.Context, coachID string) ([]HistoryRecord, error) {
	params := url.Values{}
	if c.userID != "" {
		params.Set("user_id", c.userID)
	}
	if coachID != "" {
		params.Set("coach_id", coachID)
	}

	req, err := c.getRequest(ctx, "chat_history", params)
	if err != nil {
		return nil, err
	}

	data, err := c.do(req)
	if err != nil {
		if strings.Contains(err.Error(), "No user logged in") {
			return nil, fmt.Errorf("%w: %s", ErrNotLoggedIn, err.Error())
		}
		return nil, err
	}

	parsed := gjson.ParseBytes(data)
	if !parsed.IsArray() {
		return nil, &InvalidResponseError{Action: "chat_history", Reason: "expected an array"}
	}

	records := make([]HistoryRecord, 0, len(parsed.Array()))
	for _, r := range parsed.Array() {
		records = append(records, parseHistoryRecord(r))
	}
	return records, nil
}

// DeleteChatHistory removes stored messages for coachID, or all when empty.
// An empty success body is accepted.
func (c *Client) DeleteChatHistory(ctx context.Context, coachID string) error {
	params := url.Values{"action": {"delete_chat_history"}}
	if coachID != "" {
		params.Set("coach_id", coachID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build delete request: %w", err)
	}

	_, err = c.do(req)
	return err
}

func (c *Client) getRequest(ctx context.Context, action string, params url.Values) (*http.Request, error) {
	q := url.Values{"action": {action}}
	for k, v := range params {
		q[k] = v
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", action, err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) multipartRequest(ctx context.Context, fields map[string]string, fileField, filename, contentType string, payload []byte) (*http.Request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, k := range []string{"action", "coach_id", "text"} {
		if v, ok := fields[k]; ok {
			if err := w.WriteField(k, v); err != nil {
				return nil, fmt.Errorf("failed to write field %s: %w", k, err)
			}
		}
	}

	if contentType == "" {
		contentType = http.DetectContentType(payload)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s part: %w", fileField, err)
	}
	if _, err := part.Write(payload); err != nil {
		return nil, fmt.Errorf("failed to write %s part: %w", fileField, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", fields["action"], err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req, nil
}

// do sends req and returns the body of a successful response. Non-2xx and
// bodies carrying an "error" field become NetworkError.
func (c *Client) do(req *http.Request) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, &NetworkError{Message: fmt.Sprintf("request not sent: %v", err), Err: err}
		}
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[API] %s %s", req.Method, req.URL.RawQuery)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read response: %v", err), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		if e := gjson.GetBytes(data, "error"); gjson.ValidBytes(data) && e.Exists() && e.String() != "" {
			msg = e.String()
		}
		if msg == "" {
			msg = fmt.Sprintf("Server returned %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		if config.DebugLog != nil {
			config.DebugLog.Printf("[API] status %d: %s", resp.StatusCode, msg)
		}
		return nil, &NetworkError{StatusCode: resp.StatusCode, Message: msg}
	}

	if gjson.ValidBytes(data) {
		if e := gjson.GetBytes(data, "error"); e.Exists() && e.Type != gjson.Null && e.String() != "" {
			return nil, &NetworkError{StatusCode: resp.StatusCode, Message: e.String()}
		}
	}

	return data, nil
}

func requireField(data []byte, action, field string) (string, error) {
	if !gjson.ValidBytes(data) {
		return "", &InvalidResponseError{Action: action, Reason: "malformed JSON"}
	}
	v := gjson.GetBytes(data, field)
	if !v.Exists() || v.String() == "" {
		return "", &InvalidResponseError{Action: action, Reason: fmt.Sprintf("missing %q", field)}
	}
	return v.String(), nil
}
