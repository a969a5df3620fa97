package gemini

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bloodwork-sync/internal/llm"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func geminiReply(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"parts": []map[string]any{{"text": text}},
			},
		}},
	})
	return string(b)
}

func TestExtractRecord_ParsesReply(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(geminiReply(`{"NOMBRE":"Juan","APELLIDOS":"Garcia","HEMOGLOBINA":"13,2"}`)))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "gemini-2.5-flash"}, discard())
	rec, raw, err := c.ExtractRecord(context.Background(), llm.ExtractRequest{
		PDF:      []byte("%PDF-1.4 fake"),
		Filename: "report.pdf",
	})
	require.NoError(t, err)

	assert.Equal(t, "/models/gemini-2.5-flash:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.NotEmpty(t, raw)

	require.NotNil(t, rec.Nombre)
	assert.Equal(t, "Juan", *rec.Nombre)
	require.NotNil(t, rec.Hemoglobina)
	assert.Equal(t, 13.2, *rec.Hemoglobina)

	// request carries the inline PDF and the structured-output schema
	contents := gotBody["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	require.Len(t, parts, 2)
	inline := parts[1].(map[string]any)["inline_data"].(map[string]any)
	assert.Equal(t, "application/pdf", inline["mime_type"])
	gen := gotBody["generationConfig"].(map[string]any)
	assert.Equal(t, "application/json", gen["response_mime_type"])
	assert.Contains(t, gen, "response_json_schema")
}

func TestExtractRecord_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"API key not valid"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "bad", BaseURL: srv.URL}, discard())
	_, _, err := c.ExtractRecord(context.Background(), llm.ExtractRequest{PDF: []byte("x"), Filename: "a.pdf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini status 400")
}

func TestExtractRecord_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, discard())
	_, _, err := c.ExtractRecord(context.Background(), llm.ExtractRequest{PDF: []byte("x"), Filename: "a.pdf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestExtractRecord_InvalidRecordJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(geminiReply(`{"VIH":7}`)))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, discard())
	_, raw, err := c.ExtractRecord(context.Background(), llm.ExtractRequest{PDF: []byte("x"), Filename: "a.pdf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record validation failed")
	// the raw content comes back for diagnostics even on failure
	assert.JSONEq(t, `{"VIH":7}`, string(raw))
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{APIKey: "k"}, nil)
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta", c.cfg.BaseURL)
	assert.Equal(t, "gemini-2.5-flash", c.cfg.Model)
	assert.NotZero(t, c.cfg.Timeout)
}
