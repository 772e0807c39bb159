// Command control-panel hosts the configured keypad panels and exposes them
// over HTTP and a websocket feedback stream.
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
	"control_panel/internal/feedback"
	"control_panel/internal/handlers"
	"control_panel/internal/keypad"
	"control_panel/internal/logger"
	"control_panel/internal/panel"
	"control_panel/internal/securityclient"
	"control_panel/internal/server"
	"control_panel/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cmd := &cobra.Command{
		Use:          "control-panel",
		Short:        "Host keypad panels over HTTP and a websocket feedback stream",
		Args:         cobra.ExactArgs(0),
		SilenceUsage: true,
		RunE:         run,
	}
	cmd.PersistentFlags().String("config", "", "path to config file (default configs/config.yml)")
	cmd.Flags().String("port", "", "listen port (overrides panel.port)")
	cmd.Flags().String("serial", "", "serial keypad device for the first panel (overrides keypad.serial_port)")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFlags(cmd.Flags(), map[string]string{
		"panel.port":         "port",
		"keypad.serial_port": "serial",
	})
	if err != nil {
		return err
	}
	if err := cfg.ValidatePanels(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	log := logger.Get(cfg.Log.Level)
	if cfg.Log.Level != logger.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	security := securityclient.New(securityclient.Config{
		BaseURL:  cfg.Security.BaseURL,
		Username: cfg.Security.Username,
		Password: cfg.Security.Password,
		Timeout:  cfg.Security.Timeout,
	}, log)

	publishers := []feedback.Publisher{feedback.NewLogPublisher(log)}
	if addr := cfg.Feedback.Redis.Addr; addr != "" {
		rc, err := feedback.NewRedisClient(ctx, addr, cfg.Feedback.Redis.Password, cfg.Feedback.Redis.DB)
		if err != nil {
			return fmt.Errorf("connect redis %s: %w", addr, err)
		}
		defer func() { _ = rc.Close() }()
		publishers = append(publishers,
			feedback.NewRedisPublisher(rc, cfg.Feedback.Redis.Channel, cfg.Feedback.Redis.KeyPrefix, log))
		log.Infow("redis feedback enabled", "addr", addr, "channel", cfg.Feedback.Redis.Channel)
	}
	hub := feedback.NewHub(log, publishers...)
	defer hub.Close()

	specs := make([]service.PanelSpec, 0, len(cfg.Panel.Panels))
	for _, p := range cfg.Panel.Panels {
		specs = append(specs, service.PanelSpec{ID: p.ID, SubjectID: p.SubjectID})
	}
	panels, err := service.NewPanelService(specs, cfg.Panel.CodeLength, security, hub, log)
	if err != nil {
		return fmt.Errorf("build panels: %w", err)
	}

	// Operator tokens come from the security service; only verification happens here.
	tokens := service.NewAuthService(nil, service.AuthConfig{SigningKey: cfg.Auth.SigningKey})
	apiHandler := handlers.NewHandler(&service.Service{Authorization: tokens, Panels: panels}, log)
	srv := &server.Server{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("control panel listening", "port", cfg.Panel.Port, "panels", len(specs))
		return srv.Run(cfg.Panel.Port, apiHandler.InitPanelRoutes(), server.Options{
			ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
			WriteTimeout:      cfg.HTTP.WriteTimeout,
			IdleTimeout:       cfg.HTTP.IdleTimeout,
		})
	})
	g.Go(func() error {
		panels.RunHeartbeat(gctx, cfg.Panel.Heartbeat)
		return nil
	})
	if port := cfg.Keypad.SerialPort; port != "" {
		// The serial keypad drives the first configured panel.
		target := panelTarget{panels: panels, id: specs[0].ID}
		g.Go(func() error {
			return runSerialKeypad(gctx, port, cfg.Keypad.Baud, target, log)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Infow("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		log.Errorw("control panel stopped with error", "err", err)
		return err
	}
	return nil
}

func runSerialKeypad(ctx context.Context, port string, baud int, t keypad.Target, log *logger.Logger) error {
	rc, err := keypad.OpenSerial(port, baud)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		_ = rc.Close()
	}()
	log.Infow("serial keypad attached", "port", port, "baud", baud)
	if err := keypad.Pump(ctx, keypad.NewReader(rc), t); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// panelTarget feeds keypad input into one hosted panel.
type panelTarget struct {
	panels *service.PanelService
	id     string
}

func (t panelTarget) Press(ctx context.Context, key panel.Key) {
	_, _ = t.panels.Press(ctx, t.id, key)
}

func (t panelTarget) Submit(ctx context.Context) {
	_, _ = t.panels.Submit(ctx, t.id)
}

// Unlock refuses: the panel's own keypad never releases its lockout.
func (t panelTarget) Unlock() bool { return false }
