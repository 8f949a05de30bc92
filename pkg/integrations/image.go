package integrations

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"

	// Register decoders for every page format the extractor accepts.
	_ "image/gif"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ProbeDimensions reads just enough of an image to report its pixel
// size. Unknown or truncated images return an error rather than zeros.
func ProbeDimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to probe image: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// ImageProcessor optimizes page images for e-reader displays.
type ImageProcessor struct {
	settings ImageOptimizationSettings
}

func NewImageProcessor(settings ImageOptimizationSettings) *ImageProcessor {
	return &ImageProcessor{
		settings: settings,
	}
}

// Process implements PageFilter.
func (p *ImageProcessor) Process(data []byte) ([]byte, error) {
	return p.ProcessImage(bytes.NewReader(data))
}

// ProcessImage runs the full optimization pipeline: fit to the device
// panel, grayscale for e-ink, then contrast, gamma and sharpening.
func (p *ImageProcessor) ProcessImage(input io.Reader) ([]byte, error) {
	img, format, err := image.Decode(input)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	newWidth, newHeight := p.fitDimensions(bounds.Dx(), bounds.Dy())

	var processed image.Image = img
	if newWidth != bounds.Dx() || newHeight != bounds.Dy() {
		processed = p.resize(img, newWidth, newHeight)
	}

	if p.settings.Grayscale && format != "gray" {
		processed = p.toGrayscale(processed)
	}
	if p.settings.Contrast != 1.0 {
		processed = p.adjustContrast(processed, p.settings.Contrast)
	}
	if p.settings.Gamma != 1.0 {
		processed = p.adjustGamma(processed, p.settings.Gamma)
	}
	if p.settings.Sharpen {
		processed = p.sharpen(processed)
	}

	return p.encode(processed)
}

// fitDimensions scales down to the device panel while keeping aspect
// ratio. Images already inside the panel are left alone.
func (p *ImageProcessor) fitDimensions(width, height int) (int, int) {
	if width <= p.settings.MaxWidth && height <= p.settings.MaxHeight {
		return width, height
	}

	widthScale := float64(p.settings.MaxWidth) / float64(width)
	heightScale := float64(p.settings.MaxHeight) / float64(height)

	scale := widthScale
	if heightScale < widthScale {
		scale = heightScale
	}

	return int(float64(width) * scale), int(float64(height) * scale)
}

func (p *ImageProcessor) resize(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))

	// CatmullRom for high-quality downscaling
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	return dst
}

func (p *ImageProcessor) toGrayscale(img image.Image) image.Image {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, img.At(x, y))
		}
	}

	return gray
}

func (p *ImageProcessor) adjustContrast(img image.Image, factor float64) image.Image {
	bounds := img.Bounds()
	adjusted := image.NewRGBA(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()

			adjusted.SetRGBA(x, y, color.RGBA{
				R: adjustChannel(uint8(r>>8), factor),
				G: adjustChannel(uint8(g>>8), factor),
				B: adjustChannel(uint8(b>>8), factor),
				A: uint8(a >> 8),
			})
		}
	}

	return adjusted
}

// adjustChannel stretches a channel around middle gray.
func adjustChannel(value uint8, factor float64) uint8 {
	adjusted := (float64(value)-128)*factor + 128

	if adjusted < 0 {
		return 0
	}
	if adjusted > 255 {
		return 255
	}

	return uint8(adjusted)
}

func (p *ImageProcessor) adjustGamma(img image.Image, gamma float64) image.Image {
	bounds := img.Bounds()
	adjusted := image.NewRGBA(bounds)

	// Lookup table: 256 entries beats a pow call per pixel
	var gammaTable [256]uint8
	for i := range gammaTable {
		corrected := 255.0 * math.Pow(float64(i)/255.0, 1.0/gamma)
		if corrected > 255 {
			corrected = 255
		}
		gammaTable[i] = uint8(corrected)
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()

			adjusted.SetRGBA(x, y, color.RGBA{
				R: gammaTable[uint8(r>>8)],
				G: gammaTable[uint8(g>>8)],
				B: gammaTable[uint8(b>>8)],
				A: uint8(a >> 8),
			})
		}
	}

	return adjusted
}

// sharpen applies a 3x3 kernel tuned for e-ink panels. Edges are copied
// through untouched.
func (p *ImageProcessor) sharpen(img image.Image) image.Image {
	bounds := img.Bounds()
	sharpened := image.NewRGBA(bounds)

	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			var rSum, gSum, bSum int32

			r, g, b, a := img.At(x, y).RGBA()
			rSum += int32(r>>8) * 9
			gSum += int32(g>>8) * 9
			bSum += int32(b>>8) * 9

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					r, g, b, _ := img.At(x+dx, y+dy).RGBA()
					rSum -= int32(r >> 8)
					gSum -= int32(g >> 8)
					bSum -= int32(b >> 8)
				}
			}

			sharpened.SetRGBA(x, y, color.RGBA{
				R: clamp(rSum),
				G: clamp(gSum),
				B: clamp(bSum),
				A: uint8(a >> 8),
			})
		}
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		sharpened.Set(bounds.Min.X, y, img.At(bounds.Min.X, y))
		sharpened.Set(bounds.Max.X-1, y, img.At(bounds.Max.X-1, y))
	}
	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		sharpened.Set(x, bounds.Min.Y, img.At(x, bounds.Min.Y))
		sharpened.Set(x, bounds.Max.Y-1, img.At(x, bounds.Max.Y-1))
	}

	return sharpened
}

func clamp(value int32) uint8 {
	if value < 0 {
		return 0
	}
	if value > 255 {
		return 255
	}
	return uint8(value)
}

func (p *ImageProcessor) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer

	switch p.settings.Format {
	case "jpeg", "jpg":
		opts := &jpeg.Options{
			Quality: p.settings.Quality,
		}
		if err := jpeg.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", p.settings.Format)
	}

	return buf.Bytes(), nil
}
