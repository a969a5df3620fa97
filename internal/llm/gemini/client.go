package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/bloodwork-sync/internal/llm"
	"github.com/joseph-ayodele/bloodwork-sync/internal/record"
)

// ExtractRecord implements llm.RecordExtractor by sending the PDF inline to
// the Gemini generateContent endpoint with a JSON response schema, then
// sanitizing and validating the reply against the record schema locally.
func (c *Client) ExtractRecord(ctx context.Context, req llm.ExtractRequest) (*record.Record, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"filename", req.Filename,
		"pdf_bytes", len(req.PDF),
	)

	schema := record.BuildRecordJSONSchema()
	body := map[string]any{
		"system_instruction": map[string]any{
			"parts": []map[string]any{{"text": systemInstructions()}},
		},
		"contents": []map[string]any{{
			"role": "user",
			"parts": []map[string]any{
				{"text": userPrompt(req.Filename)},
				{"inline_data": map[string]any{
					"mime_type": "application/pdf",
					"data":      base64.StdEncoding.EncodeToString(req.PDF),
				}},
			},
		}},
		"generationConfig": map[string]any{
			"temperature":          c.cfg.Temperature,
			"response_mime_type":   "application/json",
			"response_json_schema": schema,
		},
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model)
	raw, httpErr := c.post(ctx, endpoint, body)
	if httpErr != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, nil, httpErr
	}

	var gc struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &gc); err != nil {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, fmt.Errorf("decode gemini response: %w", err)
	}
	if len(gc.Candidates) == 0 || len(gc.Candidates[0].Content.Parts) == 0 {
		c.log.Error("llm.extract.no_candidates",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, fmt.Errorf("no candidates in gemini response")
	}

	var sb strings.Builder
	for _, p := range gc.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	rawContent := []byte(strings.TrimSpace(sb.String()))

	rec, dropped, err := record.ParseRecord(rawContent)
	if err != nil {
		c.log.Error("llm.extract.record_invalid",
			"req_id", rid, "error", err, "content", string(rawContent),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, rawContent, fmt.Errorf("record validation failed: %w", err)
	}
	if len(dropped) > 0 {
		c.log.Warn("llm.extract.sanitized", "req_id", rid, "dropped", dropped)
	}

	nombre, apellidos := rec.PatientName()
	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"nombre", nombre,
		"apellidos", apellidos,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, rawContent, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini http error: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.log.Warn("gemini response body close error", "error", err)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read gemini response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gemini status %d: %s", resp.StatusCode, buf.String())
	}
	return buf.Bytes(), nil
}
