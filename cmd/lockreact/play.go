package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"lockreact/internal/game"
	"lockreact/internal/tui"
)

var playLogFile string

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in this terminal",
		Args:  cobra.NoArgs,
		RunE:  runPlayCmd,
	}
	cmd.Flags().StringVar(&playLogFile, "log-file", "", "write logs here while playing (default: discard)")
	return cmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyStringFlag(cmd, "log-file", &cfg.Log.File, playLogFile)

	// The alternate screen owns the terminal, so logs never go to stderr here.
	var out io.Writer = io.Discard
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		out = f
		cfg.Log.Pretty = false
	}
	if err := setupLogging(cfg, out); err != nil {
		return err
	}

	sess := game.NewSession()
	defer sess.Close()
	log.Info().Str("session_id", sess.ID).Msg("terminal session started")

	program := tea.NewProgram(tui.NewModel(sess), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
