package screens

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kagemura/tankobon/pkg/app/styles"
	"github.com/kagemura/tankobon/pkg/config"
	"github.com/kagemura/tankobon/pkg/data"
	"github.com/kagemura/tankobon/pkg/integrations"
)

type volumeRow struct {
	Volume    data.Volume
	PageCount int
}

type DetailsScreen struct {
	repo           *data.Repository
	cfg            config.Config
	mangaID        string
	manga          *data.Manga
	volumes        []volumeRow
	selectedVolume int
	exported       string
	width          int
	height         int
	err            error
}

func NewDetailsScreen(repo *data.Repository, cfg config.Config, mangaID string) *DetailsScreen {
	return &DetailsScreen{
		repo:    repo,
		cfg:     cfg,
		mangaID: mangaID,
	}
}

func (s *DetailsScreen) Init() tea.Cmd {
	return s.loadDetails
}

func (s *DetailsScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return s, tea.Quit
		case "up", "k":
			if s.selectedVolume > 0 {
				s.selectedVolume--
			}
		case "down", "j":
			if s.selectedVolume < len(s.volumes)-1 {
				s.selectedVolume++
			}
		case "r":
			return s, s.loadDetails
		case "e":
			// Export the selected volume as an EPub
			if s.selectedVolume < len(s.volumes) {
				return s, s.exportVolume(s.volumes[s.selectedVolume].Volume.ID)
			}
		case "esc", "backspace":
			// Go back to library
			return s, func() tea.Msg {
				return SwitchScreenMsg{Screen: "library", Data: nil}
			}
		}

	case detailsLoadedMsg:
		s.manga = msg.manga
		s.volumes = msg.volumes
		s.err = msg.err
		if s.selectedVolume >= len(s.volumes) {
			s.selectedVolume = 0
		}

	case epubExportedMsg:
		s.err = msg.err
		s.exported = msg.path
	}

	return s, nil
}

func (s *DetailsScreen) View() string {
	if s.width == 0 || s.manga == nil {
		return "Loading..."
	}

	header := styles.TitleStyle.Render(fmt.Sprintf("📖 %s", s.manga.Title))

	var errorMsg string
	if s.err != nil {
		errorMsg = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
		errorMsg += "\n\n"
	}

	// Manga info section
	info := s.renderMangaInfo()

	// Volumes list
	volumesList := s.renderVolumesList()

	var exportedMsg string
	if s.exported != "" {
		exportedMsg = styles.StatusProcessed.Render(fmt.Sprintf("📖 Exported: %s", s.exported))
	}

	help := styles.HelpStyle.Render(
		"↑/k ↓/j: navigate • e: export EPUB • r: refresh • esc: back • q: quit",
	)

	content := fmt.Sprintf("%s\n\n%s%s\n%s\n%s\n%s",
		header,
		errorMsg,
		info,
		volumesList,
		exportedMsg,
		help,
	)

	return content
}

func (s *DetailsScreen) renderMangaInfo() string {
	status := styles.StatusStyle(s.manga.Status).Render(s.manga.Status)
	if s.manga.Status == "" {
		status = styles.MutedStyle.Render("Ready")
	}

	desc := s.manga.Description
	if len(desc) > 200 {
		desc = desc[:197] + "..."
	}

	info := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.TextStyle.Render(desc),
		"",
		status,
		"",
	)

	return styles.CardStyle.Width(s.width - 4).Render(info)
}

func (s *DetailsScreen) renderVolumesList() string {
	if len(s.volumes) == 0 {
		return styles.MutedStyle.Render("No volumes yet. Add one with 'tankobon add'.")
	}

	var b strings.Builder
	b.WriteString(styles.SubtitleStyle.Render(fmt.Sprintf("Volumes (%d total):", len(s.volumes))))
	b.WriteString("\n\n")

	// Show a window of 10 volumes around the selection
	start := 0
	end := len(s.volumes)
	if end > 10 {
		start = s.selectedVolume - 5
		if start < 0 {
			start = 0
		}
		end = start + 10
		if end > len(s.volumes) {
			end = len(s.volumes)
			start = end - 10
			if start < 0 {
				start = 0
			}
		}
	}

	for i := start; i < end; i++ {
		row := s.volumes[i]
		volumeText := fmt.Sprintf("Vol. %d", row.Volume.Number)
		if row.Volume.Title != "" {
			volumeText = fmt.Sprintf("%s: %s", volumeText, row.Volume.Title)
		}

		statusIcon := "○"
		statusColor := styles.MutedStyle
		if row.Volume.Processed {
			statusIcon = "●"
			statusColor = styles.StatusProcessed
			volumeText = fmt.Sprintf("%s (%d pages)", volumeText, row.PageCount)
		} else if row.Volume.SourceFile != "" {
			volumeText = fmt.Sprintf("%s (%s)", volumeText, filepath.Base(row.Volume.SourceFile))
		}

		line := fmt.Sprintf("%s %s", statusIcon, volumeText)

		if i == s.selectedVolume {
			line = styles.SelectedStyle.Render(line)
		} else {
			line = statusColor.Render(line)
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(s.volumes) > 10 {
		b.WriteString("\n")
		b.WriteString(styles.MutedStyle.Render(
			fmt.Sprintf("Showing %d-%d of %d volumes", start+1, end, len(s.volumes)),
		))
	}

	return b.String()
}

// Messages
type detailsLoadedMsg struct {
	manga   *data.Manga
	volumes []volumeRow
	err     error
}

type epubExportedMsg struct {
	path string
	err  error
}

// Commands
func (s *DetailsScreen) loadDetails() tea.Msg {
	manga, err := s.repo.GetManga(s.mangaID)
	if err != nil {
		return detailsLoadedMsg{err: err}
	}
	if manga == nil {
		return detailsLoadedMsg{err: fmt.Errorf("manga not found")}
	}

	vols, err := s.repo.ListVolumes(s.mangaID)
	if err != nil {
		return detailsLoadedMsg{manga: manga, err: err}
	}

	volumes := make([]volumeRow, len(vols))
	for i, vol := range vols {
		row := volumeRow{Volume: vol}
		chapters, err := s.repo.ListChapters(vol.ID)
		if err != nil {
			return detailsLoadedMsg{manga: manga, err: err}
		}
		for _, chapter := range chapters {
			row.PageCount += chapter.PageCount
		}
		volumes[i] = row
	}

	return detailsLoadedMsg{manga: manga, volumes: volumes}
}

func (s *DetailsScreen) exportVolume(volumeID string) tea.Cmd {
	return func() tea.Msg {
		book, err := integrations.LoadVolumeBook(s.repo, volumeID)
		if err != nil {
			return epubExportedMsg{err: err}
		}

		path, err := integrations.ExportVolume(book, s.cfg.MediaRoot, integrations.ExportOptions{
			Format:      integrations.FormatEPUB,
			OutputDir:   ".",
			RightToLeft: true,
		})
		return epubExportedMsg{path: path, err: err}
	}
}
