package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"tourneyhub/pkg/models"
)

const defaultBaseURL = "http://localhost:8080"

type gameListResponse struct {
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
	Items  []models.Game `json:"items"`
}

func main() {
	global := flag.NewFlagSet("tourneyhub", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}

	client := &http.Client{Timeout: 15 * time.Second}

	switch cmd {
	case "games":
		handleGames(ctx, client, *baseURL, sub, args[2:])
	case "review":
		handleReview(ctx, client, *baseURL, sub, args[2:])
	case "venues":
		handleVenues(ctx, client, *baseURL, sub, args[2:])
	case "series":
		handleSeries(ctx, client, *baseURL, sub, args[2:])
	case "recurring":
		handleRecurring(ctx, client, *baseURL, sub, args[2:])
	case "notes":
		handleNotes(ctx, client, *baseURL, sub, args[2:])
	case "sync":
		handleSync(*baseURL, sub, args[2:])
	case "chat":
		handleChat(*baseURL, sub, args[2:])
	case "export":
		handleExport(ctx, client, *baseURL, sub, args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleGames(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "search":
		fs := flag.NewFlagSet("games search", flag.ExitOnError)
		query := fs.String("q", "", "keyword in name/series")
		venueID := fs.String("venue", "", "venue id filter")
		status := fs.String("status", "", "review status filter")
		from := fs.String("from", "", "start datetime lower bound (RFC3339)")
		to := fs.String("to", "", "start datetime upper bound (RFC3339)")
		limit := fs.Int("limit", 20, "page size")
		offset := fs.Int("offset", 0, "offset")
		_ = fs.Parse(args)

		u, err := url.Parse(baseURL + "/games")
		if err != nil {
			log.Fatalf("invalid base url: %v", err)
		}
		qv := u.Query()
		if *query != "" {
			qv.Set("q", *query)
		}
		if *venueID != "" {
			qv.Set("venue_id", *venueID)
		}
		if *status != "" {
			qv.Set("review_status", *status)
		}
		if *from != "" {
			qv.Set("from", *from)
		}
		if *to != "" {
			qv.Set("to", *to)
		}
		qv.Set("limit", fmt.Sprintf("%d", *limit))
		qv.Set("offset", fmt.Sprintf("%d", *offset))
		u.RawQuery = qv.Encode()

		var resp gameListResponse
		if err := doJSON(ctx, client, http.MethodGet, u.String(), nil, &resp); err != nil {
			log.Fatalf("search failed: %v", err)
		}
		printJSON(resp)
	case "show":
		fs := flag.NewFlagSet("games show", flag.ExitOnError)
		id := fs.String("id", "", "game id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("game id is required")
		}

		var resp models.Game
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/games/"+url.PathEscape(*id), nil, &resp); err != nil {
			log.Fatalf("show failed: %v", err)
		}
		printJSON(resp)
	case "consolidations":
		fs := flag.NewFlagSet("games consolidations", flag.ExitOnError)
		id := fs.String("id", "", "game id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("game id is required")
		}

		var resp []models.GameConsolidation
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/games/"+url.PathEscape(*id)+"/consolidations", nil, &resp); err != nil {
			log.Fatalf("consolidations failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: tourneyhub games <search|show|consolidations>")
	}
}

func handleReview(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "pending":
		fs := flag.NewFlagSet("review pending", flag.ExitOnError)
		venueID := fs.String("venue", "", "venue id filter")
		limit := fs.Int("limit", 20, "page size")
		offset := fs.Int("offset", 0, "offset")
		_ = fs.Parse(args)

		u, err := url.Parse(baseURL + "/review/pending")
		if err != nil {
			log.Fatalf("invalid base url: %v", err)
		}
		qv := u.Query()
		if *venueID != "" {
			qv.Set("venue_id", *venueID)
		}
		qv.Set("limit", fmt.Sprintf("%d", *limit))
		qv.Set("offset", fmt.Sprintf("%d", *offset))
		u.RawQuery = qv.Encode()

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, u.String(), nil, &resp); err != nil {
			log.Fatalf("pending failed: %v", err)
		}
		printJSON(resp)
	case "preview":
		fs := flag.NewFlagSet("review preview", flag.ExitOnError)
		id := fs.String("id", "", "game id")
		siblings := fs.Bool("siblings", false, "include matched sibling details")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("game id is required")
		}

		endpoint := baseURL + "/games/" + url.PathEscape(*id) + "/preview"
		if *siblings {
			endpoint += "?include_siblings=true"
		}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, endpoint, nil, &resp); err != nil {
			log.Fatalf("preview failed: %v", err)
		}
		printJSON(resp)
	case "approve":
		fs := flag.NewFlagSet("review approve", flag.ExitOnError)
		id := fs.String("id", "", "game id")
		applyDetected := fs.Bool("apply-detected", true, "fill empty fields from the name pattern")
		consolidate := fs.Bool("consolidate", true, "attach to the resolved multi-day parent")
		parentID := fs.String("parent", "", "override parent game id")
		decidedBy := fs.String("by", "reviewer", "who decided")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("game id is required")
		}

		payload := map[string]any{
			"apply_detected":       *applyDetected,
			"accept_consolidation": *consolidate,
			"override_parent_id":   *parentID,
			"decided_by":           *decidedBy,
		}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/games/"+url.PathEscape(*id)+"/approve", payload, &resp); err != nil {
			log.Fatalf("approve failed: %v", err)
		}
		printJSON(resp)
	case "dismiss":
		fs := flag.NewFlagSet("review dismiss", flag.ExitOnError)
		id := fs.String("id", "", "game id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("game id is required")
		}

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/games/"+url.PathEscape(*id)+"/dismiss", nil, &resp); err != nil {
			log.Fatalf("dismiss failed: %v", err)
		}
		printJSON(resp)
	case "recurring":
		fs := flag.NewFlagSet("review recurring", flag.ExitOnError)
		id := fs.String("id", "", "game id")
		assign := fs.String("assign", "", "recurring game id to confirm")
		reject := fs.Bool("reject", false, "reject the current proposal")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("game id is required")
		}

		if *assign == "" && !*reject {
			var resp map[string]any
			if err := doJSON(ctx, client, http.MethodGet, baseURL+"/games/"+url.PathEscape(*id)+"/recurring-preview", nil, &resp); err != nil {
				log.Fatalf("recurring preview failed: %v", err)
			}
			printJSON(resp)
			return
		}

		action := "confirm"
		if *reject {
			action = "reject"
		}
		payload := map[string]any{
			"recurring_game_id": *assign,
			"action":            action,
		}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/games/"+url.PathEscape(*id)+"/assign-recurring", payload, &resp); err != nil {
			log.Fatalf("assign recurring failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: tourneyhub review <pending|preview|approve|dismiss|recurring>")
	}
}

func handleVenues(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "list":
		fs := flag.NewFlagSet("venues list", flag.ExitOnError)
		query := fs.String("q", "", "name filter")
		limit := fs.Int("limit", 20, "page size")
		offset := fs.Int("offset", 0, "offset")
		_ = fs.Parse(args)

		u, err := url.Parse(baseURL + "/venues")
		if err != nil {
			log.Fatalf("invalid base url: %v", err)
		}
		qv := u.Query()
		if *query != "" {
			qv.Set("q", *query)
		}
		qv.Set("limit", fmt.Sprintf("%d", *limit))
		qv.Set("offset", fmt.Sprintf("%d", *offset))
		u.RawQuery = qv.Encode()

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, u.String(), nil, &resp); err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printJSON(resp)
	case "add":
		fs := flag.NewFlagSet("venues add", flag.ExitOnError)
		name := fs.String("name", "", "venue name")
		city := fs.String("city", "", "city")
		region := fs.String("region", "", "region")
		tz := fs.String("tz", "", "IANA timezone")
		_ = fs.Parse(args)
		if *name == "" {
			log.Fatal("venue name is required")
		}

		payload := map[string]any{
			"name":     *name,
			"city":     *city,
			"region":   *region,
			"timezone": *tz,
		}
		var resp models.Venue
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/venues", payload, &resp); err != nil {
			log.Fatalf("add failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: tourneyhub venues <list|add>")
	}
}

func handleSeries(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "list":
		fs := flag.NewFlagSet("series list", flag.ExitOnError)
		venueID := fs.String("venue", "", "venue id filter")
		limit := fs.Int("limit", 20, "page size")
		offset := fs.Int("offset", 0, "offset")
		_ = fs.Parse(args)

		u, err := url.Parse(baseURL + "/series")
		if err != nil {
			log.Fatalf("invalid base url: %v", err)
		}
		qv := u.Query()
		if *venueID != "" {
			qv.Set("venue_id", *venueID)
		}
		qv.Set("limit", fmt.Sprintf("%d", *limit))
		qv.Set("offset", fmt.Sprintf("%d", *offset))
		u.RawQuery = qv.Encode()

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, u.String(), nil, &resp); err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printJSON(resp)
	case "add":
		fs := flag.NewFlagSet("series add", flag.ExitOnError)
		name := fs.String("name", "", "series name")
		venueID := fs.String("venue", "", "venue id")
		startsOn := fs.String("starts", "", "start date (YYYY-MM-DD)")
		endsOn := fs.String("ends", "", "end date (YYYY-MM-DD)")
		_ = fs.Parse(args)
		if *name == "" {
			log.Fatal("series name is required")
		}

		payload := map[string]any{
			"name":      *name,
			"venue_id":  *venueID,
			"starts_on": *startsOn,
			"ends_on":   *endsOn,
		}
		var resp models.TournamentSeries
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/series", payload, &resp); err != nil {
			log.Fatalf("add failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: tourneyhub series <list|add>")
	}
}

func handleRecurring(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "list":
		fs := flag.NewFlagSet("recurring list", flag.ExitOnError)
		venueID := fs.String("venue", "", "venue id filter")
		limit := fs.Int("limit", 20, "page size")
		offset := fs.Int("offset", 0, "offset")
		_ = fs.Parse(args)

		u, err := url.Parse(baseURL + "/recurring")
		if err != nil {
			log.Fatalf("invalid base url: %v", err)
		}
		qv := u.Query()
		if *venueID != "" {
			qv.Set("venue_id", *venueID)
		}
		qv.Set("limit", fmt.Sprintf("%d", *limit))
		qv.Set("offset", fmt.Sprintf("%d", *offset))
		u.RawQuery = qv.Encode()

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, u.String(), nil, &resp); err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printJSON(resp)
	case "add":
		fs := flag.NewFlagSet("recurring add", flag.ExitOnError)
		name := fs.String("name", "", "game name")
		venueID := fs.String("venue", "", "venue id")
		weekday := fs.Int("weekday", 0, "weekday, 0 = Sunday")
		start := fs.String("start", "", "start time, e.g. 19:00")
		buyIn := fs.Float64("buyin", 0, "buy-in amount")
		_ = fs.Parse(args)
		if *name == "" || *venueID == "" {
			log.Fatal("name and venue are required")
		}

		payload := map[string]any{
			"name":       *name,
			"venue_id":   *venueID,
			"weekday":    *weekday,
			"start_time": *start,
			"buy_in":     *buyIn,
			"active":     true,
		}
		var resp models.RecurringGame
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/recurring", payload, &resp); err != nil {
			log.Fatalf("add failed: %v", err)
		}
		printJSON(resp)
	case "instances":
		fs := flag.NewFlagSet("recurring instances", flag.ExitOnError)
		id := fs.String("id", "", "recurring game id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("recurring game id is required")
		}

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/recurring/"+url.PathEscape(*id)+"/instances", nil, &resp); err != nil {
			log.Fatalf("instances failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: tourneyhub recurring <list|add|instances>")
	}
}

func handleNotes(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "add":
		fs := flag.NewFlagSet("notes add", flag.ExitOnError)
		gameID := fs.String("game-id", "", "game id")
		author := fs.String("author", "reviewer", "note author")
		text := fs.String("text", "", "note text")
		_ = fs.Parse(args)
		if *gameID == "" || *text == "" {
			log.Fatal("game-id and text are required")
		}

		payload := map[string]any{
			"game_id": *gameID,
			"author":  *author,
			"text":    *text,
		}
		var resp models.GameNote
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/notes", payload, &resp); err != nil {
			log.Fatalf("add failed: %v", err)
		}
		printJSON(resp)
	case "list":
		fs := flag.NewFlagSet("notes list", flag.ExitOnError)
		gameID := fs.String("game-id", "", "game id")
		_ = fs.Parse(args)
		if *gameID == "" {
			log.Fatal("game-id is required")
		}

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/games/"+url.PathEscape(*gameID)+"/notes", nil, &resp); err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: tourneyhub notes <add|list>")
	}
}

func handleSync(baseURL, sub string, args []string) {
	switch sub {
	case "listen":
		fs := flag.NewFlagSet("sync listen", flag.ExitOnError)
		addr := fs.String("addr", "127.0.0.1:7070", "TCP sync server address")
		pretty := fs.Bool("pretty", true, "pretty print JSON events")
		_ = fs.Parse(args)
		for {
			if err := runSyncTCP(*addr, *pretty); err != nil {
				log.Printf("[sync] disconnected: %v", err)
			}
			time.Sleep(1 * time.Second)
		}
	case "watch":
		fs := flag.NewFlagSet("sync watch", flag.ExitOnError)
		wsURL := fs.String("ws", "", "WebSocket URL (defaults to /ws on API host)")
		_ = fs.Parse(args)

		endpoint := *wsURL
		if endpoint == "" {
			var err error
			endpoint, err = websocketURL(baseURL, "/ws", nil)
			if err != nil {
				log.Fatalf("ws url: %v", err)
			}
		}
		if err := runWebSocket(endpoint); err != nil {
			log.Fatalf("watch failed: %v", err)
		}
	default:
		log.Fatal("usage: tourneyhub sync <listen|watch>")
	}
}

func handleChat(baseURL, sub string, args []string) {
	switch sub {
	case "join":
		fs := flag.NewFlagSet("chat join", flag.ExitOnError)
		room := fs.String("room", "", "room name (venue id by convention)")
		name := fs.String("name", "floor", "display name")
		_ = fs.Parse(args)
		if *room == "" {
			log.Fatal("room is required")
		}

		endpoint, err := websocketURL(baseURL, "/chat/ws", url.Values{
			"room": {*room},
			"user": {*name},
		})
		if err != nil {
			log.Fatalf("ws url: %v", err)
		}
		if err := runChat(endpoint, *name); err != nil {
			log.Fatalf("chat join failed: %v", err)
		}
	default:
		log.Fatal("usage: tourneyhub chat join")
	}
}

func handleExport(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "json":
		fs := flag.NewFlagSet("export json", flag.ExitOnError)
		out := fs.String("out", "data/games.json", "output JSON path")
		limit := fs.Int("limit", 200, "max games to export")
		status := fs.String("status", "", "review status filter")
		_ = fs.Parse(args)

		items, err := fetchGames(ctx, client, baseURL, *limit, *status)
		if err != nil {
			log.Fatalf("export json failed: %v", err)
		}
		if err := writeJSON(*out, items); err != nil {
			log.Fatalf("write json failed: %v", err)
		}
		log.Printf("✅ exported %d games to %s", len(items), *out)
	case "csv":
		fs := flag.NewFlagSet("export csv", flag.ExitOnError)
		out := fs.String("out", "data/games.csv", "output CSV path")
		limit := fs.Int("limit", 200, "max games to export")
		status := fs.String("status", "", "review status filter")
		_ = fs.Parse(args)

		items, err := fetchGames(ctx, client, baseURL, *limit, *status)
		if err != nil {
			log.Fatalf("export csv failed: %v", err)
		}
		if err := writeCSV(*out, items); err != nil {
			log.Fatalf("write csv failed: %v", err)
		}
		log.Printf("✅ exported %d games to %s", len(items), *out)
	default:
		log.Fatal("usage: tourneyhub export <json|csv>")
	}
}

func runSyncTCP(addr string, pretty bool) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	log.Printf("[sync] connected to %s", addr)
	reader := bufio.NewScanner(conn)
	for reader.Scan() {
		line := reader.Bytes()
		if !pretty {
			fmt.Println(string(line))
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(line, &obj); err != nil {
			fmt.Println(string(line))
			continue
		}
		b, _ := json.MarshalIndent(obj, "", "  ")
		fmt.Println(string(b))
	}
	if err := reader.Err(); err != nil {
		return err
	}
	return os.ErrClosed
}

func runWebSocket(wsURL string) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Printf("[sync] connected to %s", wsURL)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		fmt.Println(string(msg))
	}
}

func runChat(wsURL, name string) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Printf("[chat] connected to %s as %s", wsURL, name)

	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			fmt.Println(string(msg))
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		payload, _ := json.Marshal(map[string]string{"text": text, "user": name})
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func fetchGames(ctx context.Context, client *http.Client, baseURL string, limit int, status string) ([]models.Game, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be > 0")
	}

	var out []models.Game
	offset := 0
	for len(out) < limit {
		pageSize := 50
		if remaining := limit - len(out); remaining < pageSize {
			pageSize = remaining
		}
		u, err := url.Parse(baseURL + "/games")
		if err != nil {
			return nil, err
		}
		qv := u.Query()
		if status != "" {
			qv.Set("review_status", status)
		}
		qv.Set("limit", fmt.Sprintf("%d", pageSize))
		qv.Set("offset", fmt.Sprintf("%d", offset))
		u.RawQuery = qv.Encode()

		var resp gameListResponse
		if err := doJSON(ctx, client, http.MethodGet, u.String(), nil, &resp); err != nil {
			return nil, err
		}
		if len(resp.Items) == 0 {
			break
		}
		out = append(out, resp.Items...)
		offset += len(resp.Items)
		if offset >= resp.Total {
			break
		}
	}

	return out, nil
}

func writeJSON(path string, items []models.Game) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func writeCSV(path string, items []models.Game) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{
		"id", "name", "venue_id", "buy_in", "game_start_datetime", "event_number",
		"day_number", "flight_letter", "final_day", "is_main_event", "series_name", "review_status",
	}); err != nil {
		return err
	}
	for _, item := range items {
		if err := writer.Write([]string{
			item.ID,
			item.Name,
			item.VenueID,
			fmt.Sprintf("%g", item.BuyIn),
			item.GameStartDateTime,
			fmt.Sprintf("%d", item.EventNumber),
			fmt.Sprintf("%d", item.DayNumber),
			item.FlightLetter,
			fmt.Sprintf("%t", item.FinalDay),
			fmt.Sprintf("%t", item.IsMainEvent),
			item.SeriesName,
			item.ReviewStatus,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func doJSON(ctx context.Context, client *http.Client, method, endpoint string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s", method, endpoint, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return err
	}
	return nil
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func websocketURL(baseURL, path string, query url.Values) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	out := &url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}
	if query != nil {
		out.RawQuery = query.Encode()
	}
	return out.String(), nil
}

func printUsage() {
	fmt.Println("tourneyhub <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  games search|show|consolidations")
	fmt.Println("  review pending|preview|approve|dismiss|recurring")
	fmt.Println("  venues list|add")
	fmt.Println("  series list|add")
	fmt.Println("  recurring list|add|instances")
	fmt.Println("  notes add|list")
	fmt.Println("  sync listen|watch")
	fmt.Println("  chat join")
	fmt.Println("  export json|csv")
}
