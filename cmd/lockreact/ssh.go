package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"lockreact/internal/config"
	"lockreact/internal/game"
	"lockreact/internal/sshplay"
)

var (
	sshAddr    string
	sshHostKey string
)

func newSSHCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ssh",
		Short: "Serve the terminal game over SSH",
		Args:  cobra.NoArgs,
		RunE:  runSSHCmd,
	}
	defaults := config.Default()
	cmd.Flags().StringVar(&sshAddr, "addr", defaults.SSH.Addr, "SSH listen address")
	cmd.Flags().StringVar(&sshHostKey, "host-key", defaults.SSH.HostKey, "host key path, generated when missing")
	return cmd
}

func runSSHCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyStringFlag(cmd, "addr", &cfg.SSH.Addr, sshAddr)
	applyStringFlag(cmd, "host-key", &cfg.SSH.HostKey, sshHostKey)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := setupLogging(cfg, nil); err != nil {
		return err
	}

	store := game.NewStore(nil, cfg.HTTP.TickInterval)
	srv, err := sshplay.New(cfg.SSH.Addr, cfg.SSH.HostKey, store)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("received shutdown signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ssh shutdown failed: %w", err)
	}
	log.Info().Msg("ssh server stopped")
	return nil
}
