package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/recordgraph/recordgraph/internal/config"
	"go.uber.org/zap"
)

// AirtableClient is the HTTP client for the Airtable REST API (v0).
type AirtableClient struct {
	BaseURL    string
	BaseID     string
	Token      string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewAirtableClient creates a new AirtableClient
func NewAirtableClient(cfg *config.Config, log *zap.Logger) *AirtableClient {
	timeout := time.Duration(cfg.Airtable.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AirtableClient{
		BaseURL: strings.TrimRight(cfg.Airtable.BaseURL, "/"),
		BaseID:  cfg.Airtable.BaseID,
		Token:   cfg.Airtable.Token,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		Logger: log,
	}
}

// AirtableRecord is a record as the API returns it.
type AirtableRecord struct {
	ID          string         `json:"id"`
	CreatedTime string         `json:"createdTime,omitempty"`
	Fields      map[string]any `json:"fields"`
}

type listResponse struct {
	Records []AirtableRecord `json:"records"`
	Offset  string           `json:"offset"`
}

type writeRequest struct {
	Fields map[string]any `json:"fields"`
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("airtable: status %d %s: %s", e.Status, e.Type, e.Message)
	}
	return fmt.Sprintf("airtable: status %d %s", e.Status, e.Type)
}

// parseAPIError reads both error shapes the API uses:
// {"error":"NOT_FOUND"} and {"error":{"type":"...","message":"..."}}.
func parseAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status}
	var env struct {
		Error any `json:"error"`
	}
	if err := sonic.Unmarshal(body, &env); err != nil {
		return e
	}
	switch v := env.Error.(type) {
	case string:
		e.Type = v
	case map[string]any:
		e.Type, _ = v["type"].(string)
		e.Message, _ = v["message"].(string)
	}
	return e
}

// GetRecord fetches one record of table by id.
func (c *AirtableClient) GetRecord(ctx context.Context, table, id string) (*AirtableRecord, error) {
	var rec AirtableRecord
	if err := c.do(ctx, http.MethodGet, table+"/"+url.PathEscape(id), nil, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRecords returns every record of table matching formula, following pagination.
// An empty formula lists the whole table.
func (c *AirtableClient) ListRecords(ctx context.Context, table, formula string) ([]AirtableRecord, error) {
	var out []AirtableRecord
	params := url.Values{}
	if formula != "" {
		params.Set("filterByFormula", formula)
	}
	for {
		var page listResponse
		if err := c.do(ctx, http.MethodGet, table, params, nil, &page); err != nil {
			return nil, err
		}
		out = append(out, page.Records...)
		if page.Offset == "" {
			return out, nil
		}
		params.Set("offset", page.Offset)
	}
}

// CreateRecord inserts a record into table.
func (c *AirtableClient) CreateRecord(ctx context.Context, table string, fields map[string]any) (*AirtableRecord, error) {
	var rec AirtableRecord
	if err := c.do(ctx, http.MethodPost, table, nil, writeRequest{Fields: fields}, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateRecord patches the given fields of one record. Other fields are left untouched.
func (c *AirtableClient) UpdateRecord(ctx context.Context, table, id string, fields map[string]any) (*AirtableRecord, error) {
	var rec AirtableRecord
	if err := c.do(ctx, http.MethodPatch, table+"/"+url.PathEscape(id), nil, writeRequest{Fields: fields}, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *AirtableClient) do(ctx context.Context, method, path string, params url.Values, in, out any) error {
	fullURL := fmt.Sprintf("%s/%s/%s", c.BaseURL, url.PathEscape(c.BaseID), path)
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	var body io.Reader
	if in != nil {
		raw, err := sonic.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.Token)
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := parseAPIError(resp.StatusCode, respBody)
		c.Logger.Warn("airtable request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("type", apiErr.Type))
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
