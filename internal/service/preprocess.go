package service

import (
	"image"
	"image/color"
	"image/draw"
	"sort"

	"document-insight/internal/domain"

	xdraw "golang.org/x/image/draw"
)

// Thresholding parameters, matching the adaptive binarization the scanned
// inputs were tuned for: local mean over a 31px window minus a small bias.
const (
	thresholdWindow = 31
	thresholdBias   = 2

	// Rasters narrower than this are upscaled before recognition; classical
	// OCR quality drops sharply on low-resolution scans.
	minRasterWidth = 900
)

// Preprocessor derives the named variants a page's recognizers consume:
// grayscale, denoised+binarized, and left/right column halves. It is pure and
// deterministic; degenerate rasters yield no variants.
type Preprocessor struct {
	minWidth int
}

func NewPreprocessor() *Preprocessor {
	return &Preprocessor{minWidth: minRasterWidth}
}

// Variants computes the full variant set for one page raster.
func (p *Preprocessor) Variants(img image.Image) map[domain.VariantKind]image.Image {
	variants := make(map[domain.VariantKind]image.Image)
	if img == nil {
		return variants
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return variants
	}

	src := p.upscale(img)
	gray := toGray(src)

	variants[domain.VariantGray] = gray
	variants[domain.VariantBinary] = adaptiveThreshold(medianBlur3(gray), thresholdWindow, thresholdBias)

	half := gray.Bounds().Dx() / 2
	if half > 0 {
		gb := gray.Bounds()
		variants[domain.VariantLeft] = gray.SubImage(image.Rect(gb.Min.X, gb.Min.Y, gb.Min.X+half, gb.Max.Y))
		variants[domain.VariantRight] = gray.SubImage(image.Rect(gb.Min.X+half, gb.Min.Y, gb.Max.X, gb.Max.Y))
	}
	return variants
}

// upscale enlarges small rasters to the minimum working width, preserving
// aspect ratio.
func (p *Preprocessor) upscale(img image.Image) image.Image {
	b := img.Bounds()
	if p.minWidth <= 0 || b.Dx() >= p.minWidth {
		return img
	}
	scale := float64(p.minWidth) / float64(b.Dx())
	dst := image.NewRGBA(image.Rect(0, 0, p.minWidth, int(float64(b.Dy())*scale)))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(b)
	draw.Draw(gray, b, img, b.Min, draw.Src)
	return gray
}

// medianBlur3 applies a 3x3 median filter, the usual salt-and-pepper noise
// removal before binarization. Border pixels are copied unchanged.
func medianBlur3(src *image.Gray) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)

	var window [9]int
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			i := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					window[i] = int(src.GrayAt(x+dx, y+dy).Y)
					i++
				}
			}
			vals := window[:]
			sort.Ints(vals)
			dst.SetGray(x, y, color.Gray{Y: uint8(vals[4])})
		}
	}
	return dst
}

// adaptiveThreshold binarizes src: a pixel becomes white when it exceeds the
// mean of its window neighborhood minus bias, else black. The window mean is
// computed with an integral image so the pass stays linear in pixel count.
func adaptiveThreshold(src *image.Gray, window, bias int) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(b)
	if w == 0 || h == 0 {
		return dst
	}

	// integral[y][x] is the sum over the rectangle [0,0)..(x,y).
	integral := make([][]int64, h+1)
	for i := range integral {
		integral[i] = make([]int64, w+1)
	}
	for y := 0; y < h; y++ {
		var rowSum int64
		for x := 0; x < w; x++ {
			rowSum += int64(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			integral[y+1][x+1] = integral[y][x+1] + rowSum
		}
	}

	half := window / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := maxInt(0, x-half), maxInt(0, y-half)
			x1, y1 := minInt(w-1, x+half), minInt(h-1, y+half)
			count := int64((x1 - x0 + 1) * (y1 - y0 + 1))
			sum := integral[y1+1][x1+1] - integral[y0][x1+1] - integral[y1+1][x0] + integral[y0][x0]
			mean := sum / count

			v := int64(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			if v > mean-int64(bias) {
				dst.SetGray(b.Min.X+x, b.Min.Y+y, color.Gray{Y: 255})
			} else {
				dst.SetGray(b.Min.X+x, b.Min.Y+y, color.Gray{Y: 0})
			}
		}
	}
	return dst
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
