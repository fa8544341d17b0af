package utils

import (
	"os"
	"strconv"
	"strings"
)

type ServerConfig struct {
	HTTPAddr        string
	SyncAddr        string
	NotifyAddr      string
	ChatHistorySize int
}

func LoadServerConfig() ServerConfig {
	return ServerConfig{
		HTTPAddr:        envOr("TOURNEYHUB_HTTP_ADDR", ":8080"),
		SyncAddr:        envOr("TOURNEYHUB_SYNC_ADDR", ":7070"),
		NotifyAddr:      envOr("TOURNEYHUB_NOTIFY_ADDR", ":9091"),
		ChatHistorySize: envIntOr("TOURNEYHUB_CHAT_HISTORY", 50),
	}
}

type ScraperConfig struct {
	// KingsClubURL is the base URL of the poker club JSON feed. It defaults
	// to the local mirror-server so a dev run never hits the live site.
	KingsClubURL string

	// VenuePages maps a venue name to the URL of its HTML schedule page.
	// Env format: "King's Resort=https://example.com/schedule;Aria=https://..."
	VenuePages map[string]string

	// RequestsPerSecond caps outbound fetches per source.
	RequestsPerSecond float64
}

func LoadScraperConfig() ScraperConfig {
	return ScraperConfig{
		KingsClubURL:      envOr("TOURNEYHUB_KINGSCLUB_URL", "http://localhost:9000"),
		VenuePages:        parsePages(os.Getenv("TOURNEYHUB_VENUE_PAGES")),
		RequestsPerSecond: envFloatOr("TOURNEYHUB_SCRAPE_RPS", 2),
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envFloatOr(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return def
	}
	return f
}

// parsePages parses "Name=URL;Name=URL" pairs. Malformed entries are skipped.
func parsePages(raw string) map[string]string {
	pages := make(map[string]string)
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, url, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		url = strings.TrimSpace(url)
		if !ok || name == "" || url == "" {
			continue
		}
		pages[name] = url
	}
	return pages
}
