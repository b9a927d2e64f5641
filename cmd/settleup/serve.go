package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/config"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/server"
	"github.com/mmynk/settleup/internal/storage/sqlite"
)

func serveCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Connect API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return runServer(cmd, cfg)
		},
	}

	cmd.Flags().Int("port", 8080, "port to listen on")
	cmd.Flags().String("db", "./data/settleup.db", "SQLite database path")
	_ = v.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	_ = v.BindPFlag("database.path", cmd.Flags().Lookup("db"))
	return cmd
}

func runServer(cmd *cobra.Command, cfg *config.Config) error {
	logger := slog.Default()

	jwtManager, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("auth.jwt_secret (or SETTLEUP_AUTH_JWT_SECRET) must be set: %w", err)
	}

	reducerCfg, err := cfg.ReducerConfig()
	if err != nil {
		return err
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.Database.Path)

	handler := server.NewHandler(server.Options{
		Store:          store,
		JWT:            jwtManager,
		Reducer:        calculator.NewReducer(reducerCfg),
		Metrics:        metrics.New(),
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	logger.Info("Settlement policy", "residual_policy", reducerCfg.Policy, "tolerance", reducerCfg.Tolerance)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	return server.Run(cmd.Context(), addr, handler, cfg.Server.ShutdownGrace, logger)
}
