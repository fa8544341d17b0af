package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"tourneyhub/pkg/models"
)

// KingsClubSource reads the Kings Club schedule API. The local mirror
// server serves the same shape, so the scraper runs offline against it.
//
// Expected response format:
//
//	GET {BaseURL}/tournaments
//	[
//	  {
//	    "slug": "wsop-event-8-day-1a",
//	    "title": "WSOP Event #8 Day 1A",
//	    "venue": "King's Resort",
//	    "series": "WSOP Europe",
//	    "buyin": "€400",
//	    "starts_at": "2026-09-01T18:00:00Z",
//	    "event_number": 8,
//	    "day": 1,
//	    "flight": "A",
//	    "final_day": false,
//	    "main_event": false
//	  },
//	  ...
//	]
type KingsClubSource struct {
	BaseURL string
	Client  *http.Client
	limiter *rate.Limiter
}

func NewKingsClubSource(baseURL string, rps float64) *KingsClubSource {
	if rps <= 0 {
		rps = 2
	}
	return &KingsClubSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 12 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (s *KingsClubSource) Name() string { return "kingsclub" }

type kingsClubEntry struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Venue       string `json:"venue"`
	Series      string `json:"series"`
	BuyIn       string `json:"buyin"`
	StartsAt    string `json:"starts_at"`
	EventNumber int    `json:"event_number"`
	Day         int    `json:"day"`
	Flight      string `json:"flight"`
	FinalDay    bool   `json:"final_day"`
	MainEvent   bool   `json:"main_event"`
}

func (s *KingsClubSource) FetchAll(ctx context.Context) ([]models.GameCanonical, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/tournaments", nil)
	if err != nil {
		return nil, fmt.Errorf("kingsclub: build request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kingsclub: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("kingsclub: status %d: %s", resp.StatusCode, string(body))
	}

	var raw []kingsClubEntry
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("kingsclub: decode: %w", err)
	}

	out := make([]models.GameCanonical, 0, len(raw))
	for _, r := range raw {
		if r.Slug == "" || r.Title == "" || r.Venue == "" {
			continue
		}

		out = append(out, models.GameCanonical{
			Name:              strings.TrimSpace(r.Title),
			VenueName:         strings.TrimSpace(r.Venue),
			BuyIn:             parseMoney(r.BuyIn),
			GameStartDateTime: r.StartsAt,
			EventNumber:       r.EventNumber,
			DayNumber:         r.Day,
			FlightLetter:      strings.ToUpper(strings.TrimSpace(r.Flight)),
			FinalDay:          r.FinalDay,
			IsMainEvent:       r.MainEvent,
			SeriesName:        strings.TrimSpace(r.Series),
			SourceIDs:         map[string]string{"kingsclub": r.Slug},
		})
	}
	return out, nil
}

var moneyRe = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// parseMoney pulls the first numeric amount out of a display string like
// "€400", "$1,100" or "550 CZK". Unparseable input comes back as 0.
func parseMoney(s string) float64 {
	m := moneyRe.FindString(s)
	if m == "" {
		return 0
	}
	m = strings.ReplaceAll(m, ",", "")
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return f
}
