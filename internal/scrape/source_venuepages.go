package scrape

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"tourneyhub/pkg/models"
)

// VenuePage is one venue schedule page to scrape.
type VenuePage struct {
	VenueName string
	URL       string
}

// VenuePagesSource scrapes venue websites that publish their upcoming
// tournaments as a plain HTML table.
//
// Expected page shape:
//
//	<table class="schedule">
//	  <tr><th>Tournament</th><th>Date</th><th>Time</th><th>Buy-in</th></tr>
//	  <tr><td>WSOP Event #8 Day 1B</td><td>2026-09-02</td><td>18:00</td><td>€400</td></tr>
//	</table>
//
// Rows without a parseable date are skipped; a schedule row without a
// date cannot be deduplicated against other sources.
type VenuePagesSource struct {
	Pages  []VenuePage
	Client *http.Client
}

func NewVenuePagesSource(pages ...VenuePage) *VenuePagesSource {
	return &VenuePagesSource{
		Pages:  pages,
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *VenuePagesSource) Name() string { return "venuepages" }

func (s *VenuePagesSource) FetchAll(ctx context.Context) ([]models.GameCanonical, error) {
	var all []models.GameCanonical
	var firstErr error

	for _, page := range s.Pages {
		games, err := s.fetchPage(ctx, page)
		if err != nil {
			// Keep scraping the remaining venues; report the first failure.
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		all = append(all, games...)
	}

	if len(all) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return all, nil
}

func (s *VenuePagesSource) fetchPage(ctx context.Context, page VenuePage) ([]models.GameCanonical, error) {
	doc, err := s.fetchDocument(ctx, page.URL)
	if err != nil {
		return nil, err
	}

	var games []models.GameCanonical
	doc.Find("table.schedule tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return // header or malformed row
		}

		name := strings.TrimSpace(cells.Eq(0).Text())
		date := strings.TrimSpace(cells.Eq(1).Text())
		clock := strings.TrimSpace(cells.Eq(2).Text())
		buyIn := strings.TrimSpace(cells.Eq(3).Text())

		if name == "" {
			return
		}
		start, ok := combineStart(date, clock)
		if !ok {
			return
		}

		games = append(games, models.GameCanonical{
			Name:              name,
			VenueName:         page.VenueName,
			BuyIn:             parseMoney(buyIn),
			GameStartDateTime: start,
			SourceIDs:         map[string]string{"venuepages": name + "@" + date},
		})
	})
	return games, nil
}

// fetchDocument gets a page and parses it, retrying once after a short
// delay the way venue sites with flaky hosting demand.
func (s *VenuePagesSource) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := s.get(ctx, url)
	if err != nil {
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		resp, err = s.get(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("venuepages: fetch %s: %w", url, err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("venuepages: status %d for %s", resp.StatusCode, url)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("venuepages: parse %s: %w", url, err)
	}
	return doc, nil
}

func (s *VenuePagesSource) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return s.Client.Do(req)
}

// combineStart joins a date cell and a time cell into RFC 3339. A missing
// time defaults to the evening cards-in-the-air slot most venues use.
func combineStart(date, clock string) (string, bool) {
	if date == "" {
		return "", false
	}
	if clock == "" {
		clock = "18:00"
	}
	t, err := time.Parse("2006-01-02 15:04", date+" "+clock)
	if err != nil {
		return "", false
	}
	return t.UTC().Format(time.RFC3339), true
}
