package integrations

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Converter turns an exported EPUB into a device-native container.
type Converter struct {
	device Device
}

func NewConverter(device Device) *Converter {
	return &Converter{device: device}
}

// Convert produces the requested format next to the EPUB and returns
// the output path. EPUB requests are a no-op.
func (c *Converter) Convert(epubPath string, format ExportFormat, rightToLeft bool) (string, error) {
	if format == FormatEPUB || format == "" {
		return epubPath, nil
	}

	outputPath := strings.TrimSuffix(epubPath, filepath.Ext(epubPath)) + "." + string(format)

	// Calibre's ebook-convert handles every format we offer
	if err := c.convertWithCalibre(epubPath, outputPath, rightToLeft); err == nil {
		return outputPath, nil
	}

	// kindlegen is deprecated but still common for MOBI
	if format == FormatMOBI {
		if err := c.convertWithKindlegen(epubPath, outputPath); err == nil {
			return outputPath, nil
		}
	}

	return epubPath, fmt.Errorf("no conversion tool available (tried ebook-convert, kindlegen); install Calibre or use EPUB format")
}

// convertWithCalibre uses Calibre's ebook-convert tool
func (c *Converter) convertWithCalibre(input, output string, rightToLeft bool) error {
	if _, err := exec.LookPath("ebook-convert"); err != nil {
		return fmt.Errorf("ebook-convert not found: %w", err)
	}

	args := []string{
		input,
		output,
		"--output-profile", "kindle",
		"--no-inline-toc",
	}

	// Right-to-left for manga
	if rightToLeft {
		args = append(args, "--page-progression-direction", "rtl")
	}

	cmd := exec.Command("ebook-convert", args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ebook-convert failed: %w", err)
	}

	return nil
}

// convertWithKindlegen uses Amazon's kindlegen tool
func (c *Converter) convertWithKindlegen(input, output string) error {
	if _, err := exec.LookPath("kindlegen"); err != nil {
		return fmt.Errorf("kindlegen not found: %w", err)
	}

	cmd := exec.Command("kindlegen", input, "-o", filepath.Base(output))
	cmd.Dir = filepath.Dir(input)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("kindlegen failed: %w", err)
	}

	// kindlegen writes next to its input
	generatedPath := strings.TrimSuffix(input, filepath.Ext(input)) + ".mobi"
	if generatedPath != output {
		if err := os.Rename(generatedPath, output); err != nil {
			return fmt.Errorf("failed to move output: %w", err)
		}
	}

	return nil
}
