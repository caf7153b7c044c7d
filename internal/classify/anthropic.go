// Anthropic messages-API backend for threat classification. The model is
// asked for strict JSON; anything else is treated as a classification
// failure and the caller falls back to the keyword engine.
package classify

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/argussky/argus/internal/category"
	"github.com/argussky/argus/internal/threat"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com"
	anthropicMessagesPath   = "/v1/messages"
	anthropicVersion        = "2023-06-01"
)

// AnthropicConfig holds settings for the Anthropic classification backend.
type AnthropicConfig struct {
	APIKeyEnv string        `yaml:"api_key_env"`
	BaseURL   string        `yaml:"base_url"`
	Model     string        `yaml:"model"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

// DefaultAnthropicConfig returns sensible defaults.
func DefaultAnthropicConfig() AnthropicConfig {
	return AnthropicConfig{
		APIKeyEnv: "ANTHROPIC_API_KEY",
		BaseURL:   anthropicDefaultBaseURL,
		Model:     "claude-sonnet-4-20250514",
		MaxTokens: 1024,
		Timeout:   30 * time.Second,
		CacheTTL:  1 * time.Hour,
	}
}

// AnthropicBackend implements AIBackend against the Anthropic messages API.
type AnthropicBackend struct {
	config     AnthropicConfig
	httpClient *http.Client
	cache      *resultCache
}

// NewAnthropicBackend creates a backend. It fails when the API key env var
// is unset so the cascade can skip straight to the keyword engine.
func NewAnthropicBackend(config AnthropicConfig) (*AnthropicBackend, error) {
	if os.Getenv(config.APIKeyEnv) == "" {
		return nil, fmt.Errorf("anthropic API key not found in env var: %s", config.APIKeyEnv)
	}
	if config.BaseURL == "" {
		config.BaseURL = anthropicDefaultBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultAnthropicConfig().Model
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 1024
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = 1 * time.Hour
	}

	return &AnthropicBackend{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		cache: newResultCache(config.CacheTTL),
	}, nil
}

// Name returns the backend identifier.
func (b *AnthropicBackend) Name() string {
	return "anthropic"
}

const systemPrompt = `You are an airport security threat analyst. Evaluate the given information for threats to airport security.

Classify into exactly one of these categories:
- TERROR: terror attacks and explosive devices
- CYBER: cyber attacks and information security
- SMUGGLING: smuggling, narcotics, illegal entry
- DRONE: unauthorized drones and airspace intrusion
- INSIDER: insider threats
- GEOPOLITICAL: geopolitical and military threats

Respond with JSON only, no other text, in this exact shape:
{
  "isThreat": true,
  "category": "TERROR|CYBER|SMUGGLING|DRONE|INSIDER|GEOPOLITICAL",
  "severity": 0-100,
  "confidence": 0.0-1.0,
  "summary": "two to three sentence threat summary",
  "keywords": ["related keywords"],
  "recommendation": "recommended response"
}`

// messagesRequest is the Anthropic messages API request body.
type messagesRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system"`
	Messages  []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the subset of the response we consume.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// analysisPayload is the strict JSON shape requested from the model.
type analysisPayload struct {
	IsThreat       *bool    `json:"isThreat"`
	Category       string   `json:"category"`
	Severity       *float64 `json:"severity"`
	Confidence     *float64 `json:"confidence"`
	Summary        string   `json:"summary"`
	Keywords       []string `json:"keywords"`
	Recommendation string   `json:"recommendation"`
}

// Classify sends the text to the model and parses the structured verdict.
// Any transport, status, or parse failure returns an error; the cascade
// treats all of them as a signal to degrade to the keyword engine.
func (b *AnthropicBackend) Classify(ctx context.Context, content, source string) (*threat.Classification, error) {
	key := cacheKey(content, source)
	if cached, ok := b.cache.get(key); ok {
		return cached, nil
	}

	userPrompt := fmt.Sprintf("Analyze the following and respond with JSON:\n\nSource: %s\nContent: %s", source, content)

	body, err := json.Marshal(messagesRequest{
		Model:     b.config.Model,
		MaxTokens: b.config.MaxTokens,
		System:    systemPrompt,
		Messages:  []chatMessage{{Role: "user", Content: userPrompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimSuffix(b.config.BaseURL, "/") + anthropicMessagesPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", os.Getenv(b.config.APIKeyEnv))
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("anthropic returned %d: %s", resp.StatusCode, string(respBody))
	}

	var msg messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return nil, fmt.Errorf("decoding anthropic response: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" || block.Type == "" {
			text = block.Text
			break
		}
	}

	result, err := parseAnalysis(text)
	if err != nil {
		return nil, err
	}

	b.cache.set(key, result)
	return result, nil
}

var jsonFenceRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// parseAnalysis extracts and validates the JSON verdict from the model
// output. Fenced blocks and surrounding prose are tolerated; missing or
// out-of-range fields are clamped or rejected.
func parseAnalysis(text string) (*threat.Classification, error) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return nil, fmt.Errorf("empty model response")
	}

	if m := jsonFenceRe.FindStringSubmatch(raw); m != nil {
		raw = m[1]
	} else if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("parsing model verdict: %w", err)
	}

	result := &threat.Classification{
		Summary:        payload.Summary,
		Keywords:       payload.Keywords,
		Recommendation: payload.Recommendation,
		Method:         threat.MethodAI,
	}

	if payload.IsThreat != nil {
		result.IsThreat = *payload.IsThreat
	}
	// An unknown category is left empty here; the cascade substitutes the
	// keyword winner.
	if id := category.ID(strings.ToUpper(strings.TrimSpace(payload.Category))); category.Valid(id) {
		result.Category = id
	}
	if payload.Severity != nil {
		result.Severity = threat.ClampSeverity(int(*payload.Severity + 0.5))
	}
	if payload.Confidence != nil {
		result.Confidence = threat.ClampConfidence(*payload.Confidence)
	}

	return result, nil
}

func cacheKey(content, source string) string {
	sum := sha256.Sum256([]byte(source + "\x00" + content))
	return hex.EncodeToString(sum[:])
}

// resultCache is a thread-safe TTL cache for model verdicts, so repeated
// runs over overlapping collector output do not re-spend API calls.
type resultCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	result    *threat.Classification
	expiresAt time.Time
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
	}
}

func (c *resultCache) get(key string) (*threat.Classification, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	clone := *entry.result
	return &clone, true
}

func (c *resultCache) set(key string, result *threat.Classification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Opportunistic cleanup keeps the map bounded without a background
	// goroutine.
	if len(c.entries) > 512 {
		now := time.Now()
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
	}

	clone := *result
	c.entries[key] = &cacheEntry{
		result:    &clone,
		expiresAt: time.Now().Add(c.ttl),
	}
}
