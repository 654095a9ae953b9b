package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/alex20020702/internship-nest-chat/internal/auth"
	"github.com/alex20020702/internship-nest-chat/internal/config"
	"github.com/alex20020702/internship-nest-chat/internal/data"
	"github.com/alex20020702/internship-nest-chat/internal/db"
	"github.com/alex20020702/internship-nest-chat/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.Debug {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Initialize database
	dbClient, err := db.New(ctx, cfg.MongoURI, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to DB")
	}
	defer func() {
		_ = dbClient.Close(ctx)
	}()

	// Ensure indexes exist
	if err := dbClient.CreateIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	// Create stores
	usersStore := data.NewUsersStore(dbClient.UsersCollection())
	roomsStore := data.NewRoomsStore(dbClient.RoomsCollection(), usersStore)
	msgsStore := data.NewMessagesStore(dbClient.MessagesCollection(), usersStore)
	tokensStore := data.NewRefreshTokensStore(dbClient.RefreshTokensCollection())

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.AccessTokenTTL)

	// Rate limiter for the credential endpoints (small burst so a couple
	// of quick retries still pass)
	limiterStore := middleware.NewLimiterStore(cfg.RateLimitRPM, 3, 1*time.Minute)
	defer limiterStore.Stop()

	srv := newServer(usersStore, roomsStore, msgsStore, tokensStore, jwtMgr, cfg, log)
	router := newRouter(srv, limiterStore)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server exit")
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
