package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"celluiq/config"
	"celluiq/providers"
)

// maxDocumentBytes begrenzt den Download des Befunds.
const maxDocumentBytes = 20 << 20

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"response_mime_type"`
	Temperature      float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Extractor liest Blutwerte über die Gemini generateContent API aus.
type Extractor struct {
	Config *config.Config
	Logger *zap.Logger
	client *http.Client
}

// NewExtractor erstellt einen neuen Gemini-Extractor.
func NewExtractor(cfg *config.Config, logger *zap.Logger) *Extractor {
	return &Extractor{
		Config: cfg,
		Logger: logger,
		client: &http.Client{Timeout: cfg.GeminiTimeout},
	}
}

func (e *Extractor) Name() string {
	return "gemini"
}

// Extract lädt das Dokument, schickt es inline an Gemini und parst die JSON-Antwort.
func (e *Extractor) Extract(ctx context.Context, req providers.ExtractionRequest) (*providers.ExtractionResult, error) {
	log := e.Logger.With(zap.String("provider", e.Name()))

	data, mimeType, err := e.download(ctx, req.FileURL)
	if err != nil {
		return nil, fmt.Errorf("download document: %w", err)
	}
	if req.ContentType != "" {
		mimeType = req.ContentType
	}
	log.Debug("Dokument geladen", zap.Int("bytes", len(data)), zap.String("mime_type", mimeType))

	body := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: buildPrompt(req.JSONSchema)},
				{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(data)}},
			},
		}},
		GenerationConfig: generationConfig{ResponseMimeType: "application/json"},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.Config.GeminiBaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", e.Config.GeminiAPIKey)

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", stripURL(err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var gr generateResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini response contains no candidates")
	}

	text := cleanLLMResponse(gr.Candidates[0].Content.Parts[0].Text)
	var out providers.ExtractionOutput
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("decode extraction output: %w", err)
	}

	status := providers.StatusSuccess
	if len(out.Markers) == 0 {
		status = "empty"
	}
	log.Info("Extraktion abgeschlossen", zap.Int("markers", len(out.Markers)))
	return &providers.ExtractionResult{Status: status, Output: out, Raw: json.RawMessage(text)}, nil
}

func (e *Extractor) download(ctx context.Context, fileURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, "", stripURL(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, "", err
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return data, mimeType, nil
}

func buildPrompt(schema json.RawMessage) string {
	var b strings.Builder
	b.WriteString("You are a medical laboratory assistant. Extract every blood marker from the attached lab report.\n")
	b.WriteString("For each marker return the name exactly as printed, the numeric value, the unit and the printed reference range if present.\n")
	b.WriteString("Use a dot as decimal separator. Return the test date as YYYY-MM-DD if the report shows one.\n")
	b.WriteString("Respond ONLY with JSON matching this schema:\n")
	b.Write(schema)
	return b.String()
}

// stripURL entfernt die URL aus Transportfehlern. Die Meldung landet in blood_work.error_message
// und darf keine signierten Links enthalten.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

// cleanLLMResponse strips markdown fences and anything around the outermost JSON object.
func cleanLLMResponse(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
