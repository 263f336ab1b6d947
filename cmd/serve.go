package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"chatdesk/api/database"
	"chatdesk/api/gateway"
	"chatdesk/api/notify"
	"chatdesk/api/server"
	"chatdesk/api/session"
	"chatdesk/api/store"
	"chatdesk/api/utils"
)

func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbClient, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbClient.Close()

	if cfg.AutoMigrate {
		if err := migrateUp(ctx, dbClient); err != nil {
			return err
		}
	}

	gw, err := gateway.NewClient(gateway.Config{
		BaseURL: cfg.ModelGatewayURL,
		APIKey:  cfg.ModelGatewayAPIKey,
		Model:   cfg.ChatModel,
		Timeout: cfg.GatewayTimeout,
	})
	if err != nil {
		return err
	}

	deps := server.Deps{
		Stores:          store.NewStores(dbClient.DB),
		Gateway:         gw,
		Notifier:        notify.LogNotifier{},
		Tokens:          utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		FrontendOrigin:  cfg.FrontendOrigin,
		PublicBaseURL:   cfg.PublicBaseURL,
		WidgetScriptURL: cfg.WidgetScriptURL,
		SecureCookies:   cfg.GinMode == gin.ReleaseMode,
	}

	if cfg.ClickHouseEnabled() {
		chClient, err := database.NewClickHouseDB(ctx, database.ClickHouseConfig{
			Host:       cfg.ClickHouseHost,
			NativePort: cfg.ClickHouseNativePort,
			Database:   cfg.ClickHouseDBName,
			Username:   cfg.ClickHouseUsername,
			Password:   cfg.ClickHousePassword,
		})
		if err != nil {
			return err
		}
		defer chClient.Close()

		eventStore := store.NewEventStore(chClient.Conn)
		if err := eventStore.EnsureSchema(ctx); err != nil {
			return err
		}
		deps.Events = eventStore
		deps.EventStats = eventStore
	} else {
		log.Warn().Msg("CLICKHOUSE_HOST not set, widget event analytics disabled")
	}

	broker := session.NewBroker(16)
	deps.Broker = broker
	deps.Publisher = broker
	if cfg.RedisURL != "" {
		rdb, err := database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()

		relay := session.NewRedisRelay(rdb, session.DefaultChannel, broker)
		deps.Publisher = relay
		go func() {
			if err := relay.Run(ctx); err != nil {
				log.Error().Err(err).Msg("Session event relay stopped")
			}
		}()
	}

	router, err := server.NewRouter(deps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("model", gw.Model()).Msg("API server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}

	log.Info().Msg("Server exiting")
	return nil
}

func migrateUp(ctx context.Context, dbClient *database.DBClient) error {
	mg, err := database.NewMigrator(ctx, dbClient.DB)
	if err != nil {
		return err
	}
	defer func() {
		if err := mg.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing migrator")
		}
	}()
	return mg.Up()
}
