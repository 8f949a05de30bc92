package screens

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kagemura/tankobon/pkg/app/components"
	"github.com/kagemura/tankobon/pkg/app/styles"
	"github.com/kagemura/tankobon/pkg/data"
	"github.com/kagemura/tankobon/pkg/services"
)

type importVolume struct {
	Volume     data.Volume
	MangaTitle string
}

type ImportScreen struct {
	repo      *data.Repository
	processor *services.Processor
	input     textinput.Model
	volumes   []importVolume
	selected  int
	importing bool
	tracker   *components.ProgressTracker
	result    *services.Result
	width     int
	height    int
	err       error
}

func NewImportScreen(repo *data.Repository, processor *services.Processor) *ImportScreen {
	ti := textinput.New()
	ti.Placeholder = "/path/to/volume.cbz"
	ti.CharLimit = 512
	ti.Width = 60

	return &ImportScreen{
		repo:      repo,
		processor: processor,
		input:     ti,
		volumes:   []importVolume{},
		selected:  0,
		tracker:   components.NewProgressTracker(80),
	}
}

func (s *ImportScreen) Init() tea.Cmd {
	return tea.Batch(s.loadVolumes, s.listenForProgress)
}

func (s *ImportScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.tracker = components.NewProgressTracker(msg.Width - 4)

	case tea.KeyMsg:
		// While an import runs, keys are ignored
		if s.importing {
			return s, nil
		}

		switch msg.String() {
		case "q":
			if !s.input.Focused() {
				return s, tea.Quit
			}

		case "enter":
			if s.input.Focused() {
				path := strings.TrimSpace(s.input.Value())
				vol := s.selectedVolume()
				if vol != nil && path != "" {
					s.importing = true
					s.result = nil
					s.err = nil
					return s, s.startImport(vol.Volume.ID, path)
				}
			} else if len(s.volumes) > 0 {
				// Choose the volume and move focus to the path input
				vol := s.volumes[s.selected]
				if vol.Volume.SourceFile != "" {
					s.input.SetValue(vol.Volume.SourceFile)
				}
				s.input.Focus()
				return s, textinput.Blink
			}

		case "esc":
			if s.input.Focused() {
				s.input.Blur()
			}

		case "up", "k":
			if !s.input.Focused() && len(s.volumes) > 0 {
				s.selected--
				if s.selected < 0 {
					s.selected = len(s.volumes) - 1
				}
			}

		case "down", "j":
			if !s.input.Focused() && len(s.volumes) > 0 {
				s.selected++
				if s.selected >= len(s.volumes) {
					s.selected = 0
				}
			}

		case "r":
			if !s.input.Focused() {
				return s, s.loadVolumes
			}
		}

	case volumesLoadedMsg:
		s.volumes = msg.volumes
		s.err = msg.err
		if s.selected >= len(s.volumes) {
			s.selected = 0
		}

	case services.ProcessProgress:
		s.tracker.Update(msg)
		return s, s.listenForProgress

	case importFinishedMsg:
		s.importing = false
		s.result = &msg.result
		s.tracker.Clear()
		s.input.Blur()
		return s, s.loadVolumes
	}

	// Update text input
	if s.input.Focused() {
		s.input, cmd = s.input.Update(msg)
	}

	return s, cmd
}

func (s *ImportScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render("📥 Import Archive")

	var errorMsg string
	if s.err != nil {
		errorMsg = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
		errorMsg += "\n\n"
	}

	volumesView := s.renderVolumes()

	inputStyle := styles.InputStyle
	if s.input.Focused() {
		inputStyle = styles.FocusedInputStyle
	}
	inputView := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.SubtitleStyle.Render("Archive path:"),
		inputStyle.Render(s.input.View()),
	)

	var statusView string
	if s.importing {
		statusView = s.tracker.View()
		if statusView == "" {
			statusView = styles.StatusProcessing.Render("Importing...")
		}
	} else if s.result != nil {
		if s.result.Success {
			statusView = styles.StatusProcessed.Render(fmt.Sprintf("✅ %s", s.result.Message))
		} else {
			statusView = styles.StatusError.Render(fmt.Sprintf("❌ %s", s.result.Message))
		}
	}

	var help string
	switch {
	case s.importing:
		help = styles.HelpStyle.Render("importing, please wait...")
	case s.input.Focused():
		help = styles.HelpStyle.Render("enter: start import • esc: back to volumes")
	default:
		help = styles.HelpStyle.Render(
			"↑/k ↓/j: navigate • enter: choose volume • r: refresh • tab: switch view • q: quit",
		)
	}

	content := fmt.Sprintf("%s\n\n%s%s\n\n%s\n\n%s\n%s",
		header,
		errorMsg,
		volumesView,
		inputView,
		statusView,
		help,
	)

	return content
}

func (s *ImportScreen) renderVolumes() string {
	if len(s.volumes) == 0 {
		return styles.MutedStyle.Render("No volumes in library. Add one with 'tankobon add'.")
	}

	var b strings.Builder
	b.WriteString(styles.SubtitleStyle.Render(fmt.Sprintf("Volumes (%d total):", len(s.volumes))))
	b.WriteString("\n\n")

	// Show a window of 10 volumes around the selection
	start := 0
	end := len(s.volumes)
	if end > 10 {
		start = s.selected - 5
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
		vol := s.volumes[i]
		text := fmt.Sprintf("%s Vol. %d", vol.MangaTitle, vol.Volume.Number)
		if vol.Volume.Title != "" {
			text = fmt.Sprintf("%s: %s", text, vol.Volume.Title)
		}

		statusIcon := "○"
		statusColor := styles.MutedStyle
		if vol.Volume.Processed {
			statusIcon = "●"
			statusColor = styles.StatusProcessed
		}

		line := fmt.Sprintf("%s %s", statusIcon, text)

		if i == s.selected {
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
type volumesLoadedMsg struct {
	volumes []importVolume
	err     error
}

type importFinishedMsg struct {
	result services.Result
}

// Define shared message for screen switching
type SwitchScreenMsg struct {
	Screen string
	Data   interface{}
}

// Commands
func (s *ImportScreen) loadVolumes() tea.Msg {
	mangas, err := s.repo.ListMangas()
	if err != nil {
		return volumesLoadedMsg{err: err}
	}

	var volumes []importVolume
	for _, manga := range mangas {
		vols, err := s.repo.ListVolumes(manga.ID)
		if err != nil {
			return volumesLoadedMsg{err: err}
		}
		for _, vol := range vols {
			volumes = append(volumes, importVolume{Volume: vol, MangaTitle: manga.Title})
		}
	}

	return volumesLoadedMsg{volumes: volumes}
}

func (s *ImportScreen) startImport(volumeID, path string) tea.Cmd {
	return func() tea.Msg {
		result := s.processor.ProcessVolume(volumeID, path)
		return importFinishedMsg{result: result}
	}
}

func (s *ImportScreen) listenForProgress() tea.Msg {
	return <-s.processor.GetProgressChannel()
}

func (s *ImportScreen) selectedVolume() *importVolume {
	if len(s.volumes) == 0 || s.selected >= len(s.volumes) {
		return nil
	}
	return &s.volumes[s.selected]
}
