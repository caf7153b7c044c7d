package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/argussky/argus/internal/category"
	"github.com/argussky/argus/internal/threat"
)

const abuseIPDBDefaultBaseURL = "https://api.abuseipdb.com/api/v2"

// abuseIPDBMaxItems bounds how many blacklist entries feed one run.
const abuseIPDBMaxItems = 10

// AbuseIPDBConfig holds settings for the AbuseIPDB collector.
type AbuseIPDBConfig struct {
	APIKeyEnv string        `yaml:"api_key_env"`
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
}

// AbuseIPDBCollector pulls the current blacklist and turns the top entries
// into cyber-category candidate items.
type AbuseIPDBCollector struct {
	config     AbuseIPDBConfig
	httpClient *http.Client
	now        func() time.Time
}

// NewAbuseIPDBCollector creates the collector. It fails when the API key
// env var is unset so the source can be skipped at wiring time.
func NewAbuseIPDBCollector(config AbuseIPDBConfig) (*AbuseIPDBCollector, error) {
	if os.Getenv(config.APIKeyEnv) == "" {
		return nil, fmt.Errorf("abuseipdb key not found in env var: %s", config.APIKeyEnv)
	}
	if config.BaseURL == "" {
		config.BaseURL = abuseIPDBDefaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	return &AbuseIPDBCollector{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		now:        time.Now,
	}, nil
}

// Name returns the source identifier.
func (c *AbuseIPDBCollector) Name() string {
	return "abuseipdb"
}

type abuseIPDBResponse struct {
	Data []struct {
		IPAddress            string    `json:"ipAddress"`
		AbuseConfidenceScore int       `json:"abuseConfidenceScore"`
		TotalReports         int       `json:"totalReports"`
		LastReportedAt       time.Time `json:"lastReportedAt"`
	} `json:"data"`
}

// Collect fetches the blacklist once per run.
func (c *AbuseIPDBCollector) Collect(ctx context.Context) ([]threat.CandidateItem, error) {
	endpoint := strings.TrimSuffix(c.config.BaseURL, "/") + "/blacklist"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Key", os.Getenv(c.config.APIKeyEnv))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("abuseipdb request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("abuseipdb returned %d", resp.StatusCode)
	}

	var parsed abuseIPDBResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding abuseipdb response: %w", err)
	}

	entries := parsed.Data
	if len(entries) > abuseIPDBMaxItems {
		entries = entries[:abuseIPDBMaxItems]
	}

	items := make([]threat.CandidateItem, 0, len(entries))
	for _, entry := range entries {
		publishedAt := entry.LastReportedAt
		if publishedAt.IsZero() {
			publishedAt = c.now()
		}
		items = append(items, threat.CandidateItem{
			Title:        fmt.Sprintf("Malicious IP Detected: %s", entry.IPAddress),
			Content:      fmt.Sprintf("Abuse confidence: %d%%. Total reports: %d", entry.AbuseConfidenceScore, entry.TotalReports),
			Source:       "abuseipdb",
			SourceType:   "cyber_intel",
			SourceName:   "AbuseIPDB",
			URL:          fmt.Sprintf("https://www.abuseipdb.com/check/%s", entry.IPAddress),
			PublishedAt:  publishedAt,
			CategoryHint: category.Cyber,
		})
	}
	return items, nil
}
