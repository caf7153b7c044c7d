package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/argussky/argus/internal/threat"
)

const gdeltDefaultBaseURL = "https://api.gdeltproject.org/api/v2"

// gdeltSeenDateLayout matches GDELT's compact article timestamp.
const gdeltSeenDateLayout = "20060102T150405Z"

// gdeltQueries are the fixed airport-security searches run each collection.
var gdeltQueries = []string{
	"airport security threat",
	"airport terrorism",
	"aviation cyber attack",
	"airport smuggling",
	"drone airport",
}

// GDELTConfig holds settings for the GDELT collector. GDELT needs no key.
type GDELTConfig struct {
	BaseURL    string        `yaml:"base_url"`
	MaxRecords int           `yaml:"max_records"`
	Timeout    time.Duration `yaml:"timeout"`
}

// GDELTCollector queries the GDELT document API for global event articles.
type GDELTCollector struct {
	config     GDELTConfig
	httpClient *http.Client
	now        func() time.Time
}

// NewGDELTCollector creates the collector.
func NewGDELTCollector(config GDELTConfig) *GDELTCollector {
	if config.BaseURL == "" {
		config.BaseURL = gdeltDefaultBaseURL
	}
	if config.MaxRecords <= 0 {
		config.MaxRecords = 10
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	return &GDELTCollector{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		now:        time.Now,
	}
}

// Name returns the source identifier.
func (c *GDELTCollector) Name() string {
	return "gdelt"
}

type gdeltResponse struct {
	Articles []struct {
		Title    string `json:"title"`
		URL      string `json:"url"`
		Domain   string `json:"domain"`
		SeenDate string `json:"seendate"`
	} `json:"articles"`
}

// Collect runs the fixed query set. Items carry no category hint; the
// classifier decides.
func (c *GDELTCollector) Collect(ctx context.Context) ([]threat.CandidateItem, error) {
	var (
		items   []threat.CandidateItem
		lastErr error
	)

	for _, query := range gdeltQueries {
		select {
		case <-ctx.Done():
			return items, ctx.Err()
		default:
		}

		resp, err := c.query(ctx, query)
		if err != nil {
			lastErr = err
			continue
		}

		for _, article := range resp.Articles {
			publishedAt := c.now()
			if ts, err := time.Parse(gdeltSeenDateLayout, article.SeenDate); err == nil {
				publishedAt = ts
			}

			sourceName := article.Domain
			if sourceName == "" {
				sourceName = "GDELT"
			}

			items = append(items, threat.CandidateItem{
				Title:       article.Title,
				Source:      "gdelt",
				SourceType:  "global_events",
				SourceName:  sourceName,
				URL:         article.URL,
				PublishedAt: publishedAt,
			})
		}
	}

	if len(items) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return items, nil
}

func (c *GDELTCollector) query(ctx context.Context, query string) (*gdeltResponse, error) {
	params := url.Values{
		"query":      {query},
		"mode":       {"artlist"},
		"format":     {"json"},
		"maxrecords": {fmt.Sprintf("%d", c.config.MaxRecords)},
	}

	endpoint := strings.TrimSuffix(c.config.BaseURL, "/") + "/doc/doc?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gdelt request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gdelt returned %d for %q", resp.StatusCode, query)
	}

	var parsed gdeltResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding gdelt response: %w", err)
	}
	return &parsed, nil
}
