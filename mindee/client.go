package mindee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.mindee.net"
	productPath    = "/v1/products/mindee/international_id/v2"

	defaultTimeout = 60 * time.Second
	initialDelay   = 2 * time.Second
	pollInterval   = 1500 * time.Millisecond
)

// Client reads identity documents through the Mindee International ID
// product. Parsing is asynchronous on their side: the document is enqueued,
// then the job is polled until it completes, bounded by the configured
// timeout.
type Client struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	httpc   *http.Client
	log     *slog.Logger

	initialDelay time.Duration
	pollInterval time.Duration
}

type Option func(*Client)

// WithBaseURL points the client at a different API host.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func New(apiKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		timeout:      timeout,
		httpc:        &http.Client{},
		log:          slog.Default(),
		initialDelay: initialDelay,
		pollInterval: pollInterval,
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Extract submits the file at path and blocks until the parse completes or
// the timeout elapses. The returned Fields are never partially nil: any
// attribute the service did not recognize is an empty string.
func (c *Client) Extract(ctx context.Context, path string) (Fields, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	jobID, err := c.enqueue(ctx, path)
	if err != nil {
		return Fields{}, err
	}

	body, err := c.waitForResult(ctx, jobID)
	if err != nil {
		return Fields{}, err
	}
	return c.parse(body), nil
}

// API response envelope. Field access is defensive throughout: anything the
// service omits decodes to nil and reads back as an empty string.
type apiResponse struct {
	Job *struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"job"`
	Document *struct {
		Inference struct {
			Prediction prediction `json:"prediction"`
		} `json:"inference"`
	} `json:"document"`
}

type prediction struct {
	GivenNames     []field `json:"given_names"`
	Surnames       []field `json:"surnames"`
	DocumentNumber *field  `json:"document_number"`
	BirthDate      *field  `json:"birth_date"`
	Sex            *field  `json:"sex"`
	Nationality    *field  `json:"nationality"`
	PersonalNumber *field  `json:"personal_number"`
}

type field struct {
	Value *string `json:"value"`
}

// orEmpty is the defensive accessor: a missing field or null value reads as
// the empty string.
func (f *field) orEmpty() string {
	if f == nil || f.Value == nil {
		return ""
	}
	return strings.TrimSpace(*f.Value)
}

func joinValues(fields []field) string {
	parts := make([]string, 0, len(fields))
	for i := range fields {
		if v := fields[i].orEmpty(); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

func (c *Client) enqueue(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("document", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+productPath+"/predict_async", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("enqueue document: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("enqueue document: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("enqueue document: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("enqueue document: decode response: %w", err)
	}
	if parsed.Job == nil || parsed.Job.ID == "" {
		return "", fmt.Errorf("enqueue document: no job id in response")
	}
	return parsed.Job.ID, nil
}

// waitForResult polls the job queue until the parsed document is available.
// The raw body of the final response is returned so the caller can fall back
// to scraping its text when the structured fields are empty.
func (c *Client) waitForResult(ctx context.Context, jobID string) ([]byte, error) {
	if err := sleepCtx(ctx, c.initialDelay); err != nil {
		return nil, fmt.Errorf("extraction timed out: %w", err)
	}
	for {
		body, parsed, err := c.pollOnce(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if parsed.Document != nil {
			return body, nil
		}
		if parsed.Job != nil && parsed.Job.Status == "failed" {
			return nil, fmt.Errorf("extraction job failed: %s", parsed.Job.Error.Message)
		}
		if err := sleepCtx(ctx, c.pollInterval); err != nil {
			return nil, fmt.Errorf("extraction timed out: %w", err)
		}
	}
}

func (c *Client) pollOnce(ctx context.Context, jobID string) ([]byte, apiResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+productPath+"/documents/queue/"+jobID, nil)
	if err != nil {
		return nil, apiResponse{}, err
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, apiResponse{}, fmt.Errorf("poll job %s: %w", jobID, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apiResponse{}, fmt.Errorf("poll job %s: %w", jobID, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, apiResponse{}, fmt.Errorf("poll job %s: status %d: %s", jobID, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apiResponse{}, fmt.Errorf("poll job %s: decode response: %w", jobID, err)
	}
	return body, parsed, nil
}

// parse reads the seven fields from the structured prediction. When all of
// them come back empty it falls back to scraping the response's text dump;
// the structured tier can legitimately return a populated-but-empty document
// while the textual rendering still holds data.
func (c *Client) parse(body []byte) Fields {
	var resp apiResponse
	_ = json.Unmarshal(body, &resp)

	var pred prediction
	if resp.Document != nil {
		pred = resp.Document.Inference.Prediction
	}
	f := Fields{
		Name:           joinValues(pred.GivenNames),
		Surname:        joinValues(pred.Surnames),
		IDNumber:       pred.DocumentNumber.orEmpty(),
		BirthDate:      pred.BirthDate.orEmpty(),
		Sex:            pred.Sex.orEmpty(),
		Nationality:    pred.Nationality.orEmpty(),
		PersonalNumber: pred.PersonalNumber.orEmpty(),
	}
	if f.Empty() {
		c.log.Warn("structured extraction returned no fields, scraping text dump")
		f = ScrapeText(textDump(body))
	}
	return f
}

// textDump renders the response as plain text: every string value in the
// payload, one per line. The label patterns of the fallback scrape run over
// this rendering, so labeled data survives even when it sits in a part of
// the schema the structured decode does not map.
func textDump(body []byte) string {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body)
	}
	var b strings.Builder
	collectStrings(v, &b)
	return b.String()
}

func collectStrings(v interface{}, b *strings.Builder) {
	switch t := v.(type) {
	case string:
		b.WriteString(t)
		b.WriteByte('\n')
	case []interface{}:
		for _, e := range t {
			collectStrings(e, b)
		}
	case map[string]interface{}:
		for _, e := range t {
			collectStrings(e, b)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
