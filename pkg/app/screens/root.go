package screens

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kagemura/tankobon/pkg/app/styles"
	"github.com/kagemura/tankobon/pkg/config"
	"github.com/kagemura/tankobon/pkg/data"
	"github.com/kagemura/tankobon/pkg/services"
	"github.com/kagemura/tankobon/pkg/storage"
)

type screenType int

const (
	libraryView screenType = iota
	importView
	detailsView
)

type RootScreen struct {
	repo      *data.Repository
	store     *storage.MediaStore
	processor *services.Processor
	cfg       config.Config

	currentView screenType
	library     *LibraryScreen
	importer    *ImportScreen
	details     *DetailsScreen

	width  int
	height int
}

func NewRootScreen(repo *data.Repository, store *storage.MediaStore, processor *services.Processor, cfg config.Config) *RootScreen {
	library := NewLibraryScreen(repo, store)
	importer := NewImportScreen(repo, processor)

	return &RootScreen{
		repo:        repo,
		store:       store,
		processor:   processor,
		cfg:         cfg,
		currentView: libraryView,
		library:     library,
		importer:    importer,
	}
}

func (r *RootScreen) Init() tea.Cmd {
	return r.library.Init()
}

func (r *RootScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return r, tea.Quit
		case "tab":
			// Cycle through views
			if r.currentView == detailsView {
				// Can't tab away from details, use esc
				break
			}
			r.currentView = (r.currentView + 1) % 2
			if r.currentView == importView {
				cmd = r.importer.Init()
			} else {
				cmd = r.library.Init()
			}
			return r, cmd
		}

	case SwitchScreenMsg:
		// Handle screen switching from sub-screens
		switch msg.Screen {
		case "library":
			r.currentView = libraryView
			cmd = r.library.Init()
		case "import":
			r.currentView = importView
			cmd = r.importer.Init()
		case "details":
			if mangaID, ok := msg.Data.(string); ok {
				r.details = NewDetailsScreen(r.repo, r.cfg, mangaID)
				r.currentView = detailsView
				cmd = r.details.Init()
			}
		}
		return r, cmd
	}

	// Forward message to active screen
	switch r.currentView {
	case libraryView:
		newModel, newCmd := r.library.Update(msg)
		r.library = newModel.(*LibraryScreen)
		return r, newCmd
	case importView:
		newModel, newCmd := r.importer.Update(msg)
		r.importer = newModel.(*ImportScreen)
		return r, newCmd
	case detailsView:
		if r.details != nil {
			newModel, newCmd := r.details.Update(msg)
			r.details = newModel.(*DetailsScreen)
			return r, newCmd
		}
	}

	return r, cmd
}

func (r *RootScreen) View() string {
	// Render tabs
	tabs := r.renderTabs()

	// Render active screen
	var content string
	switch r.currentView {
	case libraryView:
		content = r.library.View()
	case importView:
		content = r.importer.View()
	case detailsView:
		if r.details != nil {
			content = r.details.View()
		}
	}

	return fmt.Sprintf("%s\n\n%s", tabs, content)
}

func (r *RootScreen) renderTabs() string {
	if r.currentView == detailsView {
		// Don't show tabs in details view
		return ""
	}

	libraryTab := "Library"
	importTab := "Import"

	if r.currentView == libraryView {
		libraryTab = styles.ActiveTabStyle.Render(libraryTab)
		importTab = styles.InactiveTabStyle.Render(importTab)
	} else {
		libraryTab = styles.InactiveTabStyle.Render(libraryTab)
		importTab = styles.ActiveTabStyle.Render(importTab)
	}

	tabs := lipgloss.JoinHorizontal(lipgloss.Top, libraryTab, importTab)
	return tabs
}
