package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/recordgraph/recordgraph/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *AirtableClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := &config.Config{Airtable: config.AirtableCfg{BaseURL: srv.URL + "/v0/", BaseID: "appBase", Token: "pat123"}}
	return NewAirtableClient(cfg, zap.NewNop())
}

func TestAirtableClient_GetRecord(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/appBase/Tasks/rec1", r.URL.Path)
		assert.Equal(t, "Bearer pat123", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":"rec1","createdTime":"2024-01-01T00:00:00.000Z","fields":{"Task Name":"Launch"}}`))
	})

	rec, err := c.GetRecord(context.Background(), "Tasks", "rec1")
	require.NoError(t, err)
	assert.Equal(t, "rec1", rec.ID)
	assert.Equal(t, "Launch", rec.Fields["Task Name"])
}

func TestAirtableClient_ListRecordsFollowsOffset(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "{User Name}='Ada'", r.URL.Query().Get("filterByFormula"))
		if r.URL.Query().Get("offset") == "" {
			_, _ = w.Write([]byte(`{"records":[{"id":"rec1","fields":{}}],"offset":"itr1"}`))
			return
		}
		assert.Equal(t, "itr1", r.URL.Query().Get("offset"))
		_, _ = w.Write([]byte(`{"records":[{"id":"rec2","fields":{}}]}`))
	})

	recs, err := c.ListRecords(context.Background(), "Users", "{User Name}='Ada'")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "rec2", recs[1].ID)
	assert.Equal(t, 2, calls)
}

func TestAirtableClient_WritesSendFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body struct {
			Fields map[string]any `json:"fields"`
		}
		require.NoError(t, sonic.Unmarshal(raw, &body))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "/v0/appBase/Accounts", r.URL.Path)
			assert.Equal(t, "Acme", body.Fields["Account Name"])
			_, _ = w.Write([]byte(`{"id":"recNew","fields":{"Account Name":"Acme"}}`))
		case http.MethodPatch:
			assert.Equal(t, "/v0/appBase/Accounts/recNew", r.URL.Path)
			assert.Nil(t, body.Fields["Account Type"])
			_, _ = w.Write([]byte(`{"id":"recNew","fields":{"Account Name":"Acme"}}`))
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	})

	rec, err := c.CreateRecord(context.Background(), "Accounts", map[string]any{"Account Name": "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "recNew", rec.ID)

	_, err = c.UpdateRecord(context.Background(), "Accounts", "recNew", map[string]any{"Account Type": nil})
	require.NoError(t, err)
}

func TestAirtableClient_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType string
		wantMsg  string
	}{
		{"string error", http.StatusNotFound, `{"error":"NOT_FOUND"}`, "NOT_FOUND", ""},
		{"object error", http.StatusUnprocessableEntity, `{"error":{"type":"ROW_DOES_NOT_EXIST","message":"Record ID recX does not exist"}}`, "ROW_DOES_NOT_EXIST", "Record ID recX does not exist"},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.GetRecord(context.Background(), "Tasks", "recX")
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantType, apiErr.Type)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestAirtableClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewAirtableClient(&config.Config{Airtable: config.AirtableCfg{BaseURL: srv.URL, BaseID: "app"}}, zap.NewNop())

	_, err := c.GetRecord(context.Background(), "Tasks", "rec1")
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
