package openai

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

	"lipseyocr/internal/config"
	"lipseyocr/internal/domain"
	"lipseyocr/internal/parser"
	"lipseyocr/internal/port"
)

const (
	apiURL = "https://api.openai.com/v1/chat/completions"
)

// Parser implements port.ReceiptParser using the OpenAI Chat Completions API
// with vision input. One synchronous call per request, deterministic sampling,
// no retries.
type Parser struct {
	apiKey   string
	model    string
	catchAll string
	endpoint string
	client   *http.Client
}

// NewParser creates an OpenAI-based receipt parser from the parser and prompt configs.
func NewParser(cfg *config.ParserConfig, prompt *config.PromptConfig) *Parser {
	return newParser(cfg, prompt, apiURL)
}

// NewParserWithEndpoint creates a parser pointing at a custom API endpoint (for testing).
func NewParserWithEndpoint(cfg *config.ParserConfig, prompt *config.PromptConfig, endpoint string) *Parser {
	return newParser(cfg, prompt, endpoint)
}

func newParser(cfg *config.ParserConfig, prompt *config.PromptConfig, endpoint string) *Parser {
	model := cfg.DefaultModel
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	catchAll := ""
	if prompt != nil {
		catchAll = prompt.CatchAllLabel
	}
	if catchAll == "" {
		catchAll = "Ineligible"
	}
	return &Parser{
		apiKey:   cfg.APIKey,
		model:    model,
		catchAll: catchAll,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *Parser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	prompt := parser.BuildExtractionPrompt(p.catchAll)

	reqBody := map[string]interface{}{
		"model":       p.model,
		"temperature": 0,
		"messages": []map[string]interface{}{
			{
				"role":    "system",
				"content": parser.BuildSystemPrompt(),
			},
			{
				"role":    "user",
				"content": buildContentBlocks(input.Pages, prompt),
			},
		},
		"response_format": map[string]interface{}{
			"type": "json_object",
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrUpstreamFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: openai API status %d: %s", domain.ErrUpstreamFailure, resp.StatusCode, truncate(string(respBody), 500))
	}

	return parseResponse(respBody, p.model, prompt)
}

// buildContentBlocks assembles the user message content: the extraction prompt
// followed by one data-URI image block per rendered page, in page order.
func buildContentBlocks(pages [][]byte, prompt string) []map[string]interface{} {
	blocks := []map[string]interface{}{
		{
			"type": "text",
			"text": prompt,
		},
	}
	for _, page := range pages {
		dataURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(page)
		blocks = append(blocks, map[string]interface{}{
			"type": "image_url",
			"image_url": map[string]interface{}{
				"url": dataURI,
			},
		})
	}
	return blocks
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model, prompt string) (*port.ParseOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: unmarshaling response envelope: %v", domain.ErrUpstreamFailure, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response from API: no choices", domain.ErrUpstreamFailure)
	}
	if resp.Choices[0].FinishReason == "length" {
		return nil, fmt.Errorf("%w: output truncated (finish_reason: length)", domain.ErrMalformedModelOutput)
	}

	text := stripCodeFences(resp.Choices[0].Message.Content)

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v (raw: %s)", domain.ErrMalformedModelOutput, err, truncate(text, 500))
	}

	return &port.ParseOutput{
		Document:   doc,
		ModelUsed:  model,
		PromptUsed: prompt,
	}, nil
}

// stripCodeFences tolerates a model that wraps its JSON in markdown fences
// despite the json_object response format.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
