// Package tui implements the terminal dashboard and the interactive
// config editor.
package tui

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/ipc"
)

func requireTerminal() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	return nil
}

// Run starts the dashboard, blocking until the user quits.
func Run(configPath string) error {
	if err := requireTerminal(); err != nil {
		return err
	}
	p := tea.NewProgram(newModel(configPath, ipc.NewClient()), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// ErrAborted is returned when the user cancels the config form.
var ErrAborted = errors.New("aborted")

// RunInit asks for the basic settings and writes a new config to path.
// An existing file is only replaced when overwrite is set.
func RunInit(path string, overwrite bool) (*config.Config, error) {
	if err := requireTerminal(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err == nil && !overwrite {
		return nil, fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.DefaultConfig()
	fields := fieldsFromConfig(cfg)
	width := 60
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = min(max(w-4, 40), 80)
	}
	if err := settingsForm(&fields, width).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, ErrAborted
		}
		return nil, err
	}
	fields.apply(cfg)

	if err := cfg.SaveTo(path); err != nil {
		return nil, err
	}
	return cfg, nil
}
