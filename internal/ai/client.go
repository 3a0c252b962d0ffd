// Package ai talks to the recipe-generation and image-identification
// service behind an OpenAI-compatible completion endpoint.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ecodispensa/dispensa/internal/model"
)

// Config holds AI service configuration from environment variables.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Client calls the completion endpoint. It performs a single attempt per
// request; throttling policy lives in Chef, not here.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates an AI client with the given configuration.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete sends one prompt and returns the raw reply text.
func (c *Client) complete(ctx context.Context, content any) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.cfg.Model,
		Messages: []chatMessage{{Role: "user", Content: content}},
	})
	if err != nil {
		return "", &Error{Kind: KindBadResponse, Msg: "marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: KindUnavailable, Msg: "create request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{Kind: KindUnavailable, Msg: "chef service request", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Kind: KindUnavailable, Msg: "read response", Err: err}
	}

	if resp.StatusCode == http.StatusTooManyRequests ||
		strings.Contains(strings.ToLower(string(data)), "too many") {
		return "", &Error{Kind: KindThrottled, Msg: fmt.Sprintf("chef service throttled (status %d)", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &Error{Kind: KindUnavailable, Msg: fmt.Sprintf("chef service returned %d", resp.StatusCode)}
	}

	var cr chatResponse
	if err := json.Unmarshal(data, &cr); err != nil {
		return "", &Error{Kind: KindBadResponse, Msg: "decode response", Err: err}
	}
	if len(cr.Choices) == 0 {
		return "", nil
	}
	return cr.Choices[0].Message.Content, nil
}

// SuggestRecipes asks for anti-waste recipes based on the current
// pantry inventory. Malformed or empty service output yields an empty
// slice, which callers present as "no recipes found".
func (c *Client) SuggestRecipes(ctx context.Context, items []model.PantryItem) ([]model.Recipe, error) {
	if len(items) == 0 {
		return nil, nil
	}

	text, err := c.complete(ctx, suggestPrompt(items))
	if err != nil {
		return nil, err
	}
	return parseRecipes(text), nil
}

// SearchRecipe asks for a recipe matching a free-text dish idea,
// compared against the pantry inventory.
func (c *Client) SearchRecipe(ctx context.Context, idea string, items []model.PantryItem) ([]model.Recipe, error) {
	text, err := c.complete(ctx, searchPrompt(idea, items))
	if err != nil {
		return nil, err
	}
	return parseRecipes(text), nil
}

// IdentifyItem analyzes a product photo and returns a partial pantry
// item, or nil when the image is not a recognizable food product.
func (c *Client) IdentifyItem(ctx context.Context, imageBase64 string) (*model.PantryItemDraft, error) {
	// Strip a data-URL prefix if the caller sent one.
	if i := strings.IndexByte(imageBase64, ','); i >= 0 {
		imageBase64 = imageBase64[i+1:]
	}

	content := []map[string]any{
		{
			"type": "image_url",
			"image_url": map[string]string{
				"url": "data:image/jpeg;base64," + imageBase64,
			},
		},
		{"type": "text", "text": identifyPrompt()},
	}

	text, err := c.complete(ctx, content)
	if err != nil {
		return nil, err
	}

	text = stripCodeFence(text)
	if text == "" || text == "null" {
		return nil, nil
	}

	var draft model.PantryItemDraft
	if err := json.Unmarshal([]byte(text), &draft); err != nil {
		return nil, nil
	}
	if draft.Name == "" {
		return nil, nil
	}
	return &draft, nil
}

// parseRecipes decodes the service's JSON array reply. Anything
// unusable is treated as "no recipes".
func parseRecipes(text string) []model.Recipe {
	text = stripCodeFence(text)
	if text == "" {
		return nil
	}

	var recipes []model.Recipe
	if err := json.Unmarshal([]byte(text), &recipes); err != nil {
		return nil
	}
	return recipes
}

// stripCodeFence removes a surrounding markdown code fence, which some
// models add around JSON replies.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
