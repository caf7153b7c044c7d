package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/argussky/argus/internal/category"
	"github.com/argussky/argus/internal/threat"
)

const newsAPIDefaultBaseURL = "https://newsapi.org/v2"

// airportTerms scopes news queries to the airport context.
var airportTerms = []string{
	"Incheon Airport", "ICN", "airport", "aviation", "airline",
}

// NewsAPIConfig holds settings for the NewsAPI collector.
type NewsAPIConfig struct {
	APIKeyEnv string        `yaml:"api_key_env"`
	BaseURL   string        `yaml:"base_url"`
	PageSize  int           `yaml:"page_size"`
	Timeout   time.Duration `yaml:"timeout"`
}

// NewsAPICollector queries the NewsAPI everything endpoint once per threat
// category, combining category keywords with airport terms.
type NewsAPICollector struct {
	config     NewsAPIConfig
	httpClient *http.Client
}

// NewNewsAPICollector creates the collector. It fails when the API key env
// var is unset so the source can be skipped at wiring time.
func NewNewsAPICollector(config NewsAPIConfig) (*NewsAPICollector, error) {
	if os.Getenv(config.APIKeyEnv) == "" {
		return nil, fmt.Errorf("newsapi key not found in env var: %s", config.APIKeyEnv)
	}
	if config.BaseURL == "" {
		config.BaseURL = newsAPIDefaultBaseURL
	}
	if config.PageSize <= 0 {
		config.PageSize = 10
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	return &NewsAPICollector{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

// Name returns the source identifier.
func (c *NewsAPICollector) Name() string {
	return "newsapi"
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Content     string    `json:"content"`
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// Collect runs one query per category. A failing query skips that category
// rather than aborting the whole source.
func (c *NewsAPICollector) Collect(ctx context.Context) ([]threat.CandidateItem, error) {
	var (
		items   []threat.CandidateItem
		lastErr error
	)

	for _, info := range category.All() {
		select {
		case <-ctx.Done():
			return items, ctx.Err()
		default:
		}

		resp, err := c.query(ctx, info)
		if err != nil {
			lastErr = err
			continue
		}

		for _, article := range resp.Articles {
			content := article.Description
			if content == "" {
				content = article.Content
			}
			sourceName := article.Source.Name
			if sourceName == "" {
				sourceName = "Unknown News"
			}
			items = append(items, threat.CandidateItem{
				Title:        article.Title,
				Content:      content,
				Source:       "newsapi",
				SourceType:   "news",
				SourceName:   sourceName,
				URL:          article.URL,
				PublishedAt:  article.PublishedAt,
				CategoryHint: info.ID,
			})
		}
	}

	if len(items) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return items, nil
}

func (c *NewsAPICollector) query(ctx context.Context, info category.Info) (*newsAPIResponse, error) {
	keywords := info.Keywords
	if len(keywords) > 3 {
		keywords = keywords[:3]
	}
	q := fmt.Sprintf("(%s) AND (%s)",
		strings.Join(keywords, " OR "),
		strings.Join(airportTerms, " OR "))

	params := url.Values{
		"q":        {q},
		"language": {"en"},
		"sortBy":   {"publishedAt"},
		"pageSize": {fmt.Sprintf("%d", c.config.PageSize)},
		"apiKey":   {os.Getenv(c.config.APIKeyEnv)},
	}

	endpoint := strings.TrimSuffix(c.config.BaseURL, "/") + "/everything?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsapi returned %d for %s", resp.StatusCode, info.ID)
	}

	var parsed newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding newsapi response: %w", err)
	}
	return &parsed, nil
}
