package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Himess/delreg/internal/api"
	"github.com/Himess/delreg/internal/audit"
	"github.com/Himess/delreg/internal/config"
	"github.com/Himess/delreg/internal/core"
	"github.com/Himess/delreg/internal/directory"
	"github.com/Himess/delreg/internal/engine"
	"github.com/Himess/delreg/internal/registry"
	"github.com/Himess/delreg/internal/service"
	"github.com/Himess/delreg/internal/store"
	"github.com/Himess/delreg/internal/tasks"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the delreg server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		log.Info().Msg("Initializing delegation store...")
		delegationStore, closeStore, err := buildStore(cfg.Store)
		if err != nil {
			return fmt.Errorf("building delegation store: %w", err)
		}
		defer closeStore()

		log.Info().Msg("Initializing owner directory...")
		ownerDirectory, err := directory.Build(cfg.Directory)
		if err != nil {
			return fmt.Errorf("building owner directory: %w", err)
		}

		guards := engine.New(cfg.Guards)

		auditor, err := audit.Build(cfg.Audit)
		if err != nil {
			return fmt.Errorf("building auditor: %w", err)
		}
		defer func() {
			if err := auditor.Close(); err != nil {
				log.Warn().Err(err).Msg("closing auditor")
			}
		}()

		clock := core.SystemClock{}

		reg := registry.New(delegationStore, ownerDirectory, clock, registry.Options{
			UnitLength:  cfg.Registry.UnitLength,
			MaxDuration: cfg.Registry.MaxDuration,
		}, core.EventSinkFunc(func(event core.Event) {
			log.Info().
				Str("action", string(event.Action)).
				Str("owner", string(event.Key.Owner)).
				Str("delegate", string(event.Key.Delegate)).
				Str("scope", string(event.Key.Scope)).
				Time("expires_at", event.ExpiresAt).
				Str("correlation_id", event.CorrelationID).
				Msg("delegation event")
		}))

		delegations := service.NewDelegationService(reg, guards, auditor, delegationStore, clock)

		taskManager := tasks.NewManager()
		sweep := tasks.NewSweepTask(delegationStore, clock, cfg.Sweep.Interval)
		taskManager.Register(sweep.Name, sweep.Interval, sweep.Handler)

		srv := api.NewServer(delegations, taskManager, auditor)

		server := &http.Server{
			Addr:    addr,
			Handler: srv.Routes([]byte(cfg.Admin.SigningKey)),
		}

		go func() {
			log.Info().Msgf("Starting server on %s...", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("Server crashed")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info().Msg("Server exited")
		return nil
	},
}

func buildStore(cfg config.StoreConfig) (core.DelegationStore, func(), error) {
	switch cfg.Type {
	case "", "memory":
		return store.NewInMemoryDelegationStore(), func() {}, nil
	case "sqlite":
		s, err := store.NewSQLiteDelegationStore(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				log.Warn().Err(err).Msg("closing delegation store")
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store type '%s'", cfg.Type)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "address to listen on")
	serveCmd.Flags().StringVarP(&cfgFile, "config", "f", "delreg.yaml", "Server configuration file")
}
