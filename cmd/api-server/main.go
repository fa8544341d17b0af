package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"tourneyhub/internal/chat"
	"tourneyhub/internal/games"
	"tourneyhub/internal/notes"
	"tourneyhub/internal/notify"
	"tourneyhub/internal/recurring"
	"tourneyhub/internal/review"
	"tourneyhub/internal/series"
	synchub "tourneyhub/internal/sync"
	"tourneyhub/internal/venues"
	"tourneyhub/pkg/database"
	"tourneyhub/pkg/utils"
)

func main() {
	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	srvCfg := utils.LoadServerConfig()

	router := gin.Default()

	// Optional: avoid “trusted all proxies” warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	// Start TCP sync first (so you notice binding errors early)
	hub := synchub.NewHub()
	router.GET("/ws", synchub.WSHandler(hub))
	tcpSrv := synchub.NewServer(srvCfg.SyncAddr, hub)

	// UDP notifier for registered floor displays
	registry := notify.NewRegistry()
	notifier := notify.NewServer(srvCfg.NotifyAddr, registry, log.New(os.Stderr, "[notify] ", log.LstdFlags))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	router.GET("/debug", func(c *gin.Context) {
		stats := hub.Stats()
		c.JSON(http.StatusOK, gin.H{
			"db":          dbCfg.Path,
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
			"displays":    len(registry.Snapshot()),
		})
	})

	// Records
	gamesRepo := games.NewRepo(db)
	gamesHandler := games.NewHandler(gamesRepo)
	gamesHandler.RegisterRoutes(router.Group("/games"))

	venuesRepo := venues.NewRepo(db)
	venuesHandler := venues.NewHandler(venuesRepo)
	venuesHandler.RegisterRoutes(router.Group("/venues"))

	seriesRepo := series.NewRepo(db)
	seriesHandler := series.NewHandler(seriesRepo)
	seriesHandler.RegisterRoutes(router.Group("/series"))

	recurringRepo := recurring.NewRepo(db)
	recurringHandler := recurring.NewHandler(recurringRepo, gamesRepo)
	recurringHandler.RegisterRoutes(router.Group("/recurring"))

	// Review workflow: pending queue, previews, approve/dismiss
	consRepo := review.NewRepo(db)
	reviewSvc := review.NewService(gamesRepo, recurringRepo, consRepo, hub, notifier)
	reviewHandler := review.NewHandler(reviewSvc)
	reviewHandler.RegisterRoutes(&router.RouterGroup)

	notesRepo := notes.NewRepo(db)
	notesHandler := notes.NewHandler(notesRepo)
	notesHandler.RegisterRoutes(&router.RouterGroup)

	// Floor chat, one room per venue by convention
	chatHub := chat.NewHub(srvCfg.ChatHistorySize)
	router.GET("/chat/ws", chat.WSHandler(chatHub))
	router.GET("/chat/history", chat.HistoryHandler(chatHub))

	httpSrv := &http.Server{
		Addr:    srvCfg.HTTPAddr,
		Handler: router,
	}

	errCh := make(chan error, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := notifier.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("HTTP API server listening on %s", srvCfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if err := tcpSrv.Close(); err != nil {
		log.Printf("tcp shutdown error: %v", err)
	}
	if err := notifier.Close(); err != nil {
		log.Printf("notify shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("servers stopped")
}
