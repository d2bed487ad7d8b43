package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-print"
	"github.com/spf13/pflag"

	"github.com/goliatone/go-todo-auth/config"
	"github.com/goliatone/go-todo-auth/logger"
	"github.com/goliatone/go-todo-auth/persistence"
	"github.com/goliatone/go-todo-auth/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile string
		envFile    string
		addr       string
		dumpConfig bool
	)

	flags := pflag.NewFlagSet("todo-server", pflag.ContinueOnError)
	flags.StringVarP(&configFile, "config", "c", "", "path to a config file")
	flags.StringVar(&envFile, "env-file", "", "path to a .env file")
	flags.StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	flags.BoolVar(&dumpConfig, "dump-config", false, "print the resolved config and exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	opts := []config.Option{
		config.WithConfigFile(configFile),
		config.WithEnvFile(envFile),
	}
	if addr != "" {
		opts = append(opts, config.WithOverride("server.addr", addr))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return err
	}

	if dumpConfig {
		redacted := *cfg
		redacted.Auth.JWTSecret = "********"
		fmt.Println(print.MaybeHighlightJSON(redacted))
		return nil
	}

	log := logger.New(os.Stdout, cfg.Logger.Level, cfg.Logger.Format)

	ctx := context.Background()
	db, err := persistence.Open(ctx, cfg.Database, log.Named("db"))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := persistence.Migrate(ctx, db, cfg.Database.Driver); err != nil {
		return err
	}

	srv, err := server.New(db, cfg, log)
	if err != nil {
		return err
	}

	if cfg.Seed.Enabled {
		if err := srv.Seed(ctx); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Listen(cfg.Server.Addr)
	}()

	select {
	case err := <-errc:
		return err
	case sig := <-WaitExitSignal():
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func WaitExitSignal() <-chan os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return ch
}
