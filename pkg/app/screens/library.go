package screens

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kagemura/tankobon/pkg/app/components"
	"github.com/kagemura/tankobon/pkg/app/styles"
	"github.com/kagemura/tankobon/pkg/data"
	"github.com/kagemura/tankobon/pkg/storage"
)

type LibraryScreen struct {
	repo      *data.Repository
	store     *storage.MediaStore
	mangaList *components.MangaList
	width     int
	height    int
	err       error
}

func NewLibraryScreen(repo *data.Repository, store *storage.MediaStore) *LibraryScreen {
	return &LibraryScreen{
		repo:      repo,
		store:     store,
		mangaList: components.NewMangaList(),
	}
}

func (s *LibraryScreen) Init() tea.Cmd {
	return s.loadLibrary
}

func (s *LibraryScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.mangaList.Width = msg.Width - 4
		s.mangaList.Height = msg.Height - 10

	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return s, tea.Quit
		case "up", "k":
			s.mangaList.Prev()
		case "down", "j":
			s.mangaList.Next()
		case "r":
			return s, s.loadLibrary
		case "d":
			// Delete selected manga, media files included
			selected := s.mangaList.Selected()
			if selected != nil {
				return s, s.deleteManga(selected.Manga.ID)
			}
		case "enter":
			// Return selected manga to switch to details view
			selected := s.mangaList.Selected()
			if selected != nil {
				return s, func() tea.Msg {
					return SwitchScreenMsg{Screen: "details", Data: selected.Manga.ID}
				}
			}
		}

	case libraryLoadedMsg:
		s.mangaList.SetItems(msg.items)
		s.err = msg.err

	case mangaDeletedMsg:
		if msg.err != nil {
			s.err = msg.err
		}
		return s, s.loadLibrary
	}

	return s, nil
}

func (s *LibraryScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render("📚 Manga Library")

	var errorMsg string
	if s.err != nil {
		errorMsg = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
		errorMsg += "\n\n"
	}

	listView := s.mangaList.View()

	help := styles.HelpStyle.Render(
		"↑/k: up • ↓/j: down • enter: details • d: delete • r: refresh • tab: switch view • q: quit",
	)

	content := fmt.Sprintf("%s\n\n%s%s\n%s", header, errorMsg, listView, help)

	return content
}

// Messages
type libraryLoadedMsg struct {
	items []components.MangaListItem
	err   error
}

type mangaDeletedMsg struct {
	err error
}

// Commands
func (s *LibraryScreen) loadLibrary() tea.Msg {
	mangas, err := s.repo.ListMangas()
	if err != nil {
		return libraryLoadedMsg{err: err}
	}

	items := make([]components.MangaListItem, len(mangas))
	for i := range mangas {
		_, total, processed, _ := s.repo.GetMangaWithVolumeCount(mangas[i].ID)
		items[i] = components.MangaListItem{
			Manga:          &mangas[i],
			VolumeCount:    total,
			ProcessedCount: processed,
		}
	}

	return libraryLoadedMsg{items: items}
}

func (s *LibraryScreen) deleteManga(mangaID string) tea.Cmd {
	return func() tea.Msg {
		volumes, err := s.repo.ListVolumes(mangaID)
		if err != nil {
			return mangaDeletedMsg{err: err}
		}
		for _, volume := range volumes {
			if err := s.store.RemoveVolume(volume.ID); err != nil {
				return mangaDeletedMsg{err: err}
			}
		}

		err = s.repo.DeleteManga(mangaID)
		return mangaDeletedMsg{err: err}
	}
}
