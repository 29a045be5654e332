// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package command provides the root and sub-commands for the exweb
// vehicle inspection project. Commands are organized using the cobra
// library. The root command starts the web server itself while the
// "db" sub-command can be used for the database initialization.
//
//	./exweb [-c /path/of/config.yaml] [-a :8080]   # start web server
//	./exweb db init-dev [-c /path/of/config.yaml]
//	./exweb db init-prod [-c /path/of/config.yaml]
//
// A .env file in the working directory is loaded before the config
// file, so DATABASE_URL, REDIS_ADDR, and CONFIG_FILE may be set there.
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/momeni/expertise/pkg/adapter/config"
	"github.com/momeni/expertise/pkg/adapter/restful/gin/routes"
	"github.com/momeni/expertise/pkg/core/log"
	"github.com/momeni/expertise/pkg/core/repo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds the graceful shutdown of the web server.
const ShutdownTimeout = 30 * time.Second

var (
	cfgPath    string
	listenAddr string
)

var rootCmd = &cobra.Command{
	Use:   "exweb",
	Short: "A vehicle inspection (expertise) checklist web service",
	Long: `A vehicle inspection (expertise) checklist web service which
records yes/no answers of a fixed questions catalog, with descriptions
and photo URLs of the "yes" answers, and pre-fills the next inspection
form of a vehicle with its most recent answers.
Retried create requests are detected by their Idempotency-Key header
and replayed from an in-memory or Redis backed store.`,
	RunE: startWebServer,
	Args: cobra.NoArgs,
}

// loadConfig loads the configuration file and installs the logger
// which is described by it.
func loadConfig() (*config.Config, error) {
	c, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	if err = c.Logging.Setup(os.Stderr); err != nil {
		return nil, fmt.Errorf("setting up logger: %w", err)
	}
	return c, nil
}

func startWebServer(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()
	c, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := c.ConnectionPool(ctx, repo.NormalRole)
	if err != nil {
		return fmt.Errorf("creating DB pool: %w", err)
	}
	defer p.Close()
	m, err := c.Metrics.NewMetrics()
	if err != nil {
		return fmt.Errorf("creating metrics: %w", err)
	}
	e := c.Gin.NewEngine(m)
	closeIdem, err := routes.Register(ctx, e, p, c, m)
	if err != nil {
		return fmt.Errorf("registering routes: %w", err)
	}
	defer func() {
		if err := closeIdem(); err != nil {
			log.Warn(ctx, "closing idempotency store", log.Err("err", err))
		}
	}()

	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "web server is listening", slog.String("addr", listenAddr))
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("running web server: %w", err)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(ctx, "shutting down the web server")
		sctx, cancel := context.WithTimeout(
			context.Background(), ShutdownTimeout,
		)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("shutting down web server: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// Execute runs the rootCmd which in turn parses CLI arguments and
// flags and runs the most specific cobra command. Errors are printed
// and reported by a non-zero exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadDotEnv, fixConfigPath)
	rootCmd.PersistentFlags().StringVarP(
		&cfgPath, "config", "c", "", "config file path",
	)
	rootCmd.Flags().StringVarP(
		&listenAddr, "addr", "a", ":8080", "web server listen address",
	)
}

// loadDotEnv loads the .env file, if any. Variables which are set
// already are not overridden.
func loadDotEnv() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "ignoring .env file: %v\n", err)
	}
}

// fixConfigPath ensures that cfgPath is set respectively by either the
// CLI args, the CONFIG_FILE environment variable, or its default value.
func fixConfigPath() {
	if cfgPath != "" {
		return
	}
	var found bool
	if cfgPath, found = os.LookupEnv("CONFIG_FILE"); !found {
		// the default path should usually be in the /etc directory
		cfgPath = "configs/sample-config.yaml"
	}
}
