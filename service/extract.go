package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/LACSistemas/EscriturasNew-sub000/config"
)

// GeminiService pulls structured fields out of OCR text through the Gemini
// generateContent REST API. The field spec describes, in Portuguese, which
// fields the model should return as a flat JSON object.
type GeminiService struct {
	config     *config.GeminiConfig
	httpClient *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewGeminiService(cfg *config.GeminiConfig) *GeminiService {
	return &GeminiService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ExtractFields asks the model for the fields named in spec and returns them
// as a flat string map. Fields the model could not find come back empty.
func (s *GeminiService) ExtractFields(ctx context.Context, text, spec string) (map[string]string, error) {
	prompt := fmt.Sprintf(
		"Extraia os seguintes campos do texto do documento abaixo.\n"+
			"Responda APENAS com um objeto JSON plano, sem explicações.\n"+
			"Campos:\n%s\n\nTexto do documento:\n%s",
		spec, text,
	)

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		s.config.Endpoint, s.config.Model, s.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini API status %d: %s", resp.StatusCode, string(body))
	}

	var result geminiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w, body: %s", err, string(body))
	}
	if result.Error != nil {
		return nil, fmt.Errorf("gemini API error: %s", result.Error.Message)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini API returned no candidates")
	}

	raw := stripJSONFences(result.Candidates[0].Content.Parts[0].Text)
	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse extracted fields: %w, content: %s", err, raw)
	}

	fields := make(map[string]string, len(parsed))
	for key, value := range parsed {
		switch v := value.(type) {
		case string:
			fields[key] = v
		case nil:
			fields[key] = ""
		default:
			fields[key] = fmt.Sprintf("%v", v)
		}
	}
	return fields, nil
}

// stripJSONFences removes a surrounding markdown code fence the model often
// wraps its JSON in.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
