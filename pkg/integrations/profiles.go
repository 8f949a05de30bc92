package integrations

// Device describes an e-reader panel and its rendering quirks.
type Device struct {
	Name        string
	Model       string
	Width       int  // Screen width in pixels
	Height      int  // Screen height in pixels
	DPI         int  // Dots per inch
	Grayscale   bool // Whether device supports only grayscale
	Orientation string // "portrait" or "both"
}

// Predefined device profiles based on actual hardware
var DeviceProfiles = map[string]Device{
	"kindle-basic": {
		Name:        "Kindle Basic (10th gen)",
		Model:       "KB",
		Width:       758,
		Height:      1024,
		DPI:         167,
		Grayscale:   true,
		Orientation: "portrait",
	},
	"kindle-paperwhite": {
		Name:        "Kindle Paperwhite 1/2",
		Model:       "KPW",
		Width:       758,
		Height:      1024,
		DPI:         212,
		Grayscale:   true,
		Orientation: "portrait",
	},
	"kindle-paperwhite3": {
		Name:        "Kindle Paperwhite 3/4",
		Model:       "KPW3",
		Width:       1072,
		Height:      1448,
		DPI:         300,
		Grayscale:   true,
		Orientation: "portrait",
	},
	"kindle-oasis3": {
		Name:        "Kindle Oasis 3",
		Model:       "KO3",
		Width:       1264,
		Height:      1680,
		DPI:         300,
		Grayscale:   true,
		Orientation: "both",
	},
	"kindle-scribe": {
		Name:        "Kindle Scribe",
		Model:       "KS",
		Width:       1860,
		Height:      2480,
		DPI:         300,
		Grayscale:   true,
		Orientation: "both",
	},
	"kobo-clara": {
		Name:        "Kobo Clara HD",
		Model:       "KCHD",
		Width:       1072,
		Height:      1448,
		DPI:         300,
		Grayscale:   true,
		Orientation: "portrait",
	},
	"kobo-libra2": {
		Name:        "Kobo Libra 2",
		Model:       "KL2",
		Width:       1264,
		Height:      1680,
		DPI:         300,
		Grayscale:   true,
		Orientation: "both",
	},
	"boox-note-air": {
		Name:        "Boox Note Air 2",
		Model:       "BNA2",
		Width:       1404,
		Height:      1872,
		DPI:         227,
		Grayscale:   true,
		Orientation: "both",
	},
	// Color tablets
	"fire-hd8": {
		Name:        "Fire HD 8",
		Model:       "FHD8",
		Width:       800,
		Height:      1280,
		DPI:         189,
		Grayscale:   false,
		Orientation: "both",
	},
}

// GetDeviceProfile returns the device profile for a given device ID
func GetDeviceProfile(deviceID string) (Device, bool) {
	device, ok := DeviceProfiles[deviceID]
	return device, ok
}

// ListDevices returns a list of all available device IDs and names
func ListDevices() []string {
	devices := make([]string, 0, len(DeviceProfiles))
	for id, device := range DeviceProfiles {
		devices = append(devices, id+": "+device.Name)
	}
	return devices
}

// ImageOptimizationSettings defines how page images are processed for a
// device before export.
type ImageOptimizationSettings struct {
	MaxWidth  int     // Maximum image width
	MaxHeight int     // Maximum image height
	Quality   int     // JPEG quality (1-100)
	Grayscale bool    // Convert to grayscale
	Sharpen   bool    // Apply sharpening for e-ink
	Contrast  float64 // Contrast adjustment (1.0 = no change)
	Gamma     float64 // Gamma correction for e-ink
	Format    string  // Output format: "jpeg" or "png"
}

// GetOptimizationSettings returns recommended settings for a device
func (d Device) GetOptimizationSettings() ImageOptimizationSettings {
	settings := ImageOptimizationSettings{
		MaxWidth:  d.Width,
		MaxHeight: d.Height,
		Quality:   85,
		Grayscale: d.Grayscale,
		Sharpen:   d.Grayscale, // Only sharpen for e-ink displays
		Contrast:  1.1,
		Gamma:     1.0,
		Format:    "jpeg",
	}

	// High DPI devices can use better quality
	if d.DPI >= 300 {
		settings.Quality = 90
	}

	// E-ink devices benefit from gamma adjustment
	if d.Grayscale {
		settings.Gamma = 0.9
	}

	return settings
}

// ExportFormat is the container produced by an export run.
type ExportFormat string

const (
	FormatEPUB ExportFormat = "epub"
	FormatMOBI ExportFormat = "mobi"
	FormatAZW3 ExportFormat = "azw3"
)

// ExportOptions defines a volume export request.
type ExportOptions struct {
	Device      Device
	Format      ExportFormat
	OutputDir   string
	Optimize    bool // Apply image optimization
	RightToLeft bool // For manga reading direction
}
