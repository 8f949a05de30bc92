package components

import (
	"fmt"
	"strings"

	"github.com/kagemura/tankobon/pkg/app/styles"
	"github.com/kagemura/tankobon/pkg/services"
)

type ProgressTracker struct {
	ingests map[string]*services.ProcessProgress
	width   int
}

func NewProgressTracker(width int) *ProgressTracker {
	return &ProgressTracker{
		ingests: make(map[string]*services.ProcessProgress),
		width:   width,
	}
}

func (p *ProgressTracker) Update(progress services.ProcessProgress) {
	if progress.Stage == "complete" {
		// Remove finished ingests
		delete(p.ingests, progress.VolumeID)
	} else {
		prog := progress // Copy
		p.ingests[progress.VolumeID] = &prog
	}
}

func (p *ProgressTracker) Clear() {
	p.ingests = make(map[string]*services.ProcessProgress)
}

func (p *ProgressTracker) HasActive() bool {
	return len(p.ingests) > 0
}

func (p *ProgressTracker) View() string {
	if len(p.ingests) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Active Imports"))
	b.WriteString("\n\n")

	for _, progress := range p.ingests {
		b.WriteString(styles.TextStyle.Render(fmt.Sprintf("Volume %s", progress.VolumeID)))
		b.WriteString("\n")

		// Status and progress
		statusText := progress.Stage
		if progress.Total > 0 {
			percentage := float64(progress.Current) / float64(progress.Total) * 100
			statusText = fmt.Sprintf("%s (%d/%d pages - %.0f%%)",
				progress.Stage, progress.Current, progress.Total, percentage)

			// Progress bar
			bar := renderProgressBar(progress.Current, progress.Total, p.width-4)
			b.WriteString(bar)
			b.WriteString("\n")
		} else if progress.Current > 0 {
			// Extraction streams entries, so the total is unknown
			statusText = fmt.Sprintf("%s (%d pages)", progress.Stage, progress.Current)
		}

		statusStyle := styles.StatusStyle(progress.Stage)
		b.WriteString(statusStyle.Render(statusText))
		b.WriteString("\n")

		if progress.Err != nil {
			errMsg := styles.StatusError.Render(fmt.Sprintf("Error: %s", progress.Err))
			b.WriteString(errMsg)
			b.WriteString("\n")
		}

		b.WriteString("\n")
	}

	return b.String()
}

func renderProgressBar(current, total, width int) string {
	if total == 0 {
		return ""
	}

	filled := int(float64(current) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return styles.ProgressBarStyle.Render(bar)
}

// SimpleProgress renders a simple progress bar
func SimpleProgress(current, total, width int) string {
	return renderProgressBar(current, total, width)
}
