package app

import (
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kagemura/tankobon/pkg/app/screens"
	"github.com/kagemura/tankobon/pkg/config"
	"github.com/kagemura/tankobon/pkg/data"
	"github.com/kagemura/tankobon/pkg/services"
	"github.com/kagemura/tankobon/pkg/storage"
)

type App struct {
}

func NewApp() *App {
	return &App{}
}

func (a *App) Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := data.InitDuckDB(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := data.NewRepository(db)
	store := storage.NewMediaStore(cfg.MediaRoot)

	// Stage logs written to stderr would tear the alt screen, so they
	// are discarded while the TUI owns the terminal.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	processor := services.NewProcessor(repo, store, cfg, logger)
	defer processor.Close()

	model := screens.NewRootScreen(repo, store, processor, cfg)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}
