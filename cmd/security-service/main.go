// Command security-service serves subject credentials, power and arm state
// to control panels.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "control_panel/docs"
	"control_panel/internal/config"
	"control_panel/internal/handlers"
	"control_panel/internal/logger"
	"control_panel/internal/repository"
	"control_panel/internal/repository/db"
	"control_panel/internal/server"
	"control_panel/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// @title                       Control Panel Security API
// @version                     1.0
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cmd := &cobra.Command{
		Use:          "security-service",
		Short:        "Serve subject credentials, power and arm state to control panels",
		Args:         cobra.ExactArgs(0),
		SilenceUsage: true,
		RunE:         run,
	}
	cmd.PersistentFlags().String("config", "", "path to config file (default configs/config.yml)")
	cmd.Flags().String("port", "", "listen port (overrides http.port)")
	cmd.Flags().String("db", "", "sqlite file (overrides db.path)")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFlags(cmd.Flags(), map[string]string{
		"http.port": "port",
		"db.path":   "db",
	})
	if err != nil {
		return err
	}
	if err := cfg.ValidateSecurityService(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	log := logger.Get(cfg.Log.Level)
	if cfg.Log.Level != logger.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	// open DB
	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("init sqlite %s: %w", cfg.DB.Path, err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, service.AuthConfig{
		SigningKey: cfg.Auth.SigningKey,
		TokenTTL:   cfg.Auth.TokenTTL,
	}, log)
	apiHandler := handlers.NewHandler(services, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &server.Server{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("security service listening", "port", cfg.HTTP.Port, "db", cfg.DB.Path)
		return srv.Run(cfg.HTTP.Port, apiHandler.InitRoutes(), httpOptions(cfg))
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Infow("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Errorw("security service stopped with error", "err", err)
		return err
	}
	return nil
}

func httpOptions(cfg *config.Config) server.Options {
	return server.Options{
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}
}
