package service

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

	"github.com/LACSistemas/EscriturasNew-sub000/config"
)

// VisionService extracts raw text from uploaded documents through the Google
// Vision REST API. Images go through images:annotate, PDFs through
// files:annotate with only the first page requested.
type VisionService struct {
	config     *config.VisionConfig
	httpClient *http.Client
}

type visionFeature struct {
	Type string `json:"type"`
}

type visionImage struct {
	Content string `json:"content"`
}

type visionImageEntry struct {
	Image    visionImage     `json:"image"`
	Features []visionFeature `json:"features"`
}

type visionImageRequest struct {
	Requests []visionImageEntry `json:"requests"`
}

type visionInputConfig struct {
	Content  string `json:"content"`
	MimeType string `json:"mimeType"`
}

type visionFileEntry struct {
	InputConfig visionInputConfig `json:"inputConfig"`
	Features    []visionFeature   `json:"features"`
	Pages       []int             `json:"pages"`
}

type visionFileRequest struct {
	Requests []visionFileEntry `json:"requests"`
}

type visionError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type visionAnnotation struct {
	FullTextAnnotation struct {
		Text string `json:"text"`
	} `json:"fullTextAnnotation"`
	Error *visionError `json:"error,omitempty"`
}

type visionImageResponse struct {
	Responses []visionAnnotation `json:"responses"`
}

type visionFileResponse struct {
	Responses []struct {
		Responses []visionAnnotation `json:"responses"`
		Error     *visionError       `json:"error,omitempty"`
	} `json:"responses"`
}

func NewVisionService(cfg *config.VisionConfig) *VisionService {
	return &VisionService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ExtractText runs OCR over one uploaded document and returns the detected
// text. An empty result is an error so callers never store blank documents.
func (s *VisionService) ExtractText(ctx context.Context, data []byte, filename string) (string, error) {
	if isPDF(data, filename) {
		return s.extractPDF(ctx, data)
	}
	return s.extractImage(ctx, data)
}

func isPDF(data []byte, filename string) bool {
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return true
	}
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

func (s *VisionService) extractImage(ctx context.Context, data []byte) (string, error) {
	reqBody := visionImageRequest{
		Requests: []visionImageEntry{{
			Image:    visionImage{Content: base64.StdEncoding.EncodeToString(data)},
			Features: []visionFeature{{Type: "DOCUMENT_TEXT_DETECTION"}},
		}},
	}

	body, err := s.post(ctx, "/v1/images:annotate", reqBody)
	if err != nil {
		return "", err
	}

	var result visionImageResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w, body: %s", err, string(body))
	}
	if len(result.Responses) == 0 {
		return "", fmt.Errorf("vision API returned no responses")
	}
	annotation := result.Responses[0]
	if annotation.Error != nil {
		return "", fmt.Errorf("vision API error: %s", annotation.Error.Message)
	}
	text := annotation.FullTextAnnotation.Text
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text detected in document")
	}
	return text, nil
}

func (s *VisionService) extractPDF(ctx context.Context, data []byte) (string, error) {
	reqBody := visionFileRequest{
		Requests: []visionFileEntry{{
			InputConfig: visionInputConfig{
				Content:  base64.StdEncoding.EncodeToString(data),
				MimeType: "application/pdf",
			},
			Features: []visionFeature{{Type: "DOCUMENT_TEXT_DETECTION"}},
			Pages:    []int{1},
		}},
	}

	body, err := s.post(ctx, "/v1/files:annotate", reqBody)
	if err != nil {
		return "", err
	}

	var result visionFileResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w, body: %s", err, string(body))
	}
	if len(result.Responses) == 0 {
		return "", fmt.Errorf("vision API returned no responses")
	}
	fileResp := result.Responses[0]
	if fileResp.Error != nil {
		return "", fmt.Errorf("vision API error: %s", fileResp.Error.Message)
	}
	if len(fileResp.Responses) == 0 {
		return "", fmt.Errorf("vision API returned no page responses")
	}
	page := fileResp.Responses[0]
	if page.Error != nil {
		return "", fmt.Errorf("vision API error: %s", page.Error.Message)
	}
	text := page.FullTextAnnotation.Text
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text detected in document")
	}
	return text, nil
}

func (s *VisionService) post(ctx context.Context, path string, reqBody any) ([]byte, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s%s?key=%s", s.config.Endpoint, path, s.config.APIKey)
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
		return nil, fmt.Errorf("vision API status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
