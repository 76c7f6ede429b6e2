// Package imaging provides the grayscale pixel operations used by the image
// tampering analysis: sharpness estimation, denoising filters, edge maps,
// connected components and normalized template matching.
package imaging

import (
	"image"
	"image/color"
	"math"
	"sort"
)

// FromImage converts any image to 8-bit grayscale using the ITU-R BT.601
// luma weights.
func FromImage(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}

// LaplacianVariance measures image sharpness as the variance of the
// 4-neighbor Laplacian response. Blurry images score near zero.
func LaplacianVariance(g *image.Gray) float64 {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return 0
	}

	responses := make([]float64, 0, (w-2)*(h-2))
	var sum float64
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			center := float64(grayAt(g, x, y))
			lap := float64(grayAt(g, x, y-1)) +
				float64(grayAt(g, x-1, y)) +
				float64(grayAt(g, x+1, y)) +
				float64(grayAt(g, x, y+1)) -
				4*center
			responses = append(responses, lap)
			sum += lap
		}
	}

	mean := sum / float64(len(responses))
	var variance float64
	for _, r := range responses {
		d := r - mean
		variance += d * d
	}
	return variance / float64(len(responses))
}

// MedianFilter5 applies a 5x5 median filter. Border pixels use the clamped
// neighborhood.
func MedianFilter5(g *image.Gray) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))

	window := make([]uint8, 0, 25)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			window = window[:0]
			for dy := -2; dy <= 2; dy++ {
				for dx := -2; dx <= 2; dx++ {
					window = append(window, grayAt(g, clamp(x+dx, 0, w-1), clamp(y+dy, 0, h-1)))
				}
			}
			sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
			out.SetGray(x, y, color.Gray{Y: window[len(window)/2]})
		}
	}
	return out
}

// DiffExceedingPct returns the percentage of pixels whose absolute
// difference between a and b exceeds threshold. Images must share
// dimensions.
func DiffExceedingPct(a, b *image.Gray, threshold uint8) float64 {
	ab, bb := a.Bounds(), b.Bounds()
	w, h := ab.Dx(), ab.Dy()
	if w != bb.Dx() || h != bb.Dy() || w == 0 || h == 0 {
		return 0
	}

	exceeding := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			va := int(grayAt(a, ab.Min.X+x, ab.Min.Y+y))
			vb := int(grayAt(b, bb.Min.X+x, bb.Min.Y+y))
			if absInt(va-vb) > int(threshold) {
				exceeding++
			}
		}
	}
	return float64(exceeding) * 100 / float64(w*h)
}

// SobelEdges produces a binary edge map: pixels whose Sobel gradient
// magnitude exceeds threshold become white.
func SobelEdges(g *image.Gray, threshold float64) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w < 3 || h < 3 {
		return out
	}

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -float64(grayAt(g, x-1, y-1)) + float64(grayAt(g, x+1, y-1)) +
				-2*float64(grayAt(g, x-1, y)) + 2*float64(grayAt(g, x+1, y)) +
				-float64(grayAt(g, x-1, y+1)) + float64(grayAt(g, x+1, y+1))
			gy := -float64(grayAt(g, x-1, y-1)) - 2*float64(grayAt(g, x, y-1)) - float64(grayAt(g, x+1, y-1)) +
				float64(grayAt(g, x-1, y+1)) + 2*float64(grayAt(g, x, y+1)) + float64(grayAt(g, x+1, y+1))
			if math.Sqrt(gx*gx+gy*gy) > threshold {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out
}

// Component is a connected region of white pixels in a binary image
type Component struct {
	Area   int
	Bounds image.Rectangle
}

// BoxArea is the area enclosed by the component's bounding box
func (c Component) BoxArea() int {
	return c.Bounds.Dx() * c.Bounds.Dy()
}

// AspectRatio is width over height of the bounding box
func (c Component) AspectRatio() float64 {
	if c.Bounds.Dy() == 0 {
		return 0
	}
	return float64(c.Bounds.Dx()) / float64(c.Bounds.Dy())
}

// ConnectedComponents labels 8-connected white regions of a binary image
func ConnectedComponents(bin *image.Gray) []Component {
	b := bin.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	visited := make([]bool, w*h)
	var components []Component
	stack := make([]image.Point, 0, 64)

	for sy := 0; sy < h; sy++ {
		for sx := 0; sx < w; sx++ {
			if visited[sy*w+sx] || grayAt(bin, b.Min.X+sx, b.Min.Y+sy) == 0 {
				continue
			}

			comp := Component{Bounds: image.Rect(sx, sy, sx+1, sy+1)}
			stack = append(stack[:0], image.Pt(sx, sy))
			visited[sy*w+sx] = true

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				comp.Area++
				comp.Bounds = comp.Bounds.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := p.X+dx, p.Y+dy
						if nx < 0 || ny < 0 || nx >= w || ny >= h || visited[ny*w+nx] {
							continue
						}
						if grayAt(bin, b.Min.X+nx, b.Min.Y+ny) != 0 {
							visited[ny*w+nx] = true
							stack = append(stack, image.Pt(nx, ny))
						}
					}
				}
			}
			components = append(components, comp)
		}
	}
	return components
}

// Crop returns a copy of the region r of g, in g's coordinate space
func Crop(g *image.Gray, r image.Rectangle) *image.Gray {
	r = r.Intersect(g.Bounds())
	out := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			out.SetGray(x, y, color.Gray{Y: grayAt(g, r.Min.X+x, r.Min.Y+y)})
		}
	}
	return out
}

// MeanAbsDiff returns the mean absolute pixel difference between two
// equally sized images, in gray levels.
func MeanAbsDiff(a, b *image.Gray) float64 {
	ab, bb := a.Bounds(), b.Bounds()
	w, h := ab.Dx(), ab.Dy()
	if w != bb.Dx() || h != bb.Dy() || w == 0 || h == 0 {
		return 0
	}

	var sum float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			va := int(grayAt(a, ab.Min.X+x, ab.Min.Y+y))
			vb := int(grayAt(b, bb.Min.X+x, bb.Min.Y+y))
			sum += float64(absInt(va - vb))
		}
	}
	return sum / float64(w*h)
}

// MatchTemplateMax slides tmpl over g and returns the maximum zero-mean
// normalized cross-correlation coefficient, in [-1, 1]. Returns 0 when the
// template does not fit or either signal is flat.
func MatchTemplateMax(g, tmpl *image.Gray) float64 {
	gb, tb := g.Bounds(), tmpl.Bounds()
	gw, gh := gb.Dx(), gb.Dy()
	tw, th := tb.Dx(), tb.Dy()
	if tw == 0 || th == 0 || tw > gw || th > gh {
		return 0
	}

	n := float64(tw * th)

	var tSum float64
	for y := 0; y < th; y++ {
		for x := 0; x < tw; x++ {
			tSum += float64(grayAt(tmpl, tb.Min.X+x, tb.Min.Y+y))
		}
	}
	tMean := tSum / n

	var tNorm float64
	tZero := make([]float64, tw*th)
	for y := 0; y < th; y++ {
		for x := 0; x < tw; x++ {
			v := float64(grayAt(tmpl, tb.Min.X+x, tb.Min.Y+y)) - tMean
			tZero[y*tw+x] = v
			tNorm += v * v
		}
	}
	if tNorm == 0 {
		return 0
	}

	best := -1.0
	for oy := 0; oy <= gh-th; oy++ {
		for ox := 0; ox <= gw-tw; ox++ {
			var wSum float64
			for y := 0; y < th; y++ {
				for x := 0; x < tw; x++ {
					wSum += float64(grayAt(g, gb.Min.X+ox+x, gb.Min.Y+oy+y))
				}
			}
			wMean := wSum / n

			var cross, wNorm float64
			for y := 0; y < th; y++ {
				for x := 0; x < tw; x++ {
					wv := float64(grayAt(g, gb.Min.X+ox+x, gb.Min.Y+oy+y)) - wMean
					cross += wv * tZero[y*tw+x]
					wNorm += wv * wv
				}
			}
			if wNorm == 0 {
				continue
			}

			score := cross / math.Sqrt(wNorm*tNorm)
			if score > best {
				best = score
			}
		}
	}
	if best < -1 {
		return -1
	}
	return best
}

// ResizeNearest scales g to w x h using nearest-neighbor sampling
func ResizeNearest(g *image.Gray, w, h int) *image.Gray {
	b := g.Bounds()
	sw, sh := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if sw == 0 || sh == 0 || w == 0 || h == 0 {
		return out
	}
	for y := 0; y < h; y++ {
		sy := y * sh / h
		for x := 0; x < w; x++ {
			sx := x * sw / w
			out.SetGray(x, y, color.Gray{Y: grayAt(g, b.Min.X+sx, b.Min.Y+sy)})
		}
	}
	return out
}

// EqualizeHist spreads the gray-level histogram over the full range
func EqualizeHist(g *image.Gray) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	total := w * h
	out := image.NewGray(image.Rect(0, 0, w, h))
	if total == 0 {
		return out
	}

	var hist [256]int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			hist[grayAt(g, b.Min.X+x, b.Min.Y+y)]++
		}
	}

	var lut [256]uint8
	cdf := 0
	cdfMin := 0
	for _, c := range hist {
		if c > 0 {
			cdfMin = c
			break
		}
	}
	denom := total - cdfMin
	for i := 0; i < 256; i++ {
		cdf += hist[i]
		if denom <= 0 {
			lut[i] = uint8(i)
			continue
		}
		v := float64(cdf-cdfMin) * 255 / float64(denom)
		lut[i] = uint8(clamp(int(math.Round(v)), 0, 255))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.SetGray(x, y, color.Gray{Y: lut[grayAt(g, b.Min.X+x, b.Min.Y+y)]})
		}
	}
	return out
}

// OtsuBinarize thresholds g at the level that maximizes between-class
// variance. Pixels above threshold become white.
func OtsuBinarize(g *image.Gray) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	total := w * h
	out := image.NewGray(image.Rect(0, 0, w, h))
	if total == 0 {
		return out
	}

	var hist [256]int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			hist[grayAt(g, b.Min.X+x, b.Min.Y+y)]++
		}
	}

	var sumAll float64
	for i, c := range hist {
		sumAll += float64(i * c)
	}

	var sumB, wB float64
	bestVar := -1.0
	threshold := 0
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / wB
		mF := (sumAll - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > bestVar {
			bestVar = between
			threshold = t
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if int(grayAt(g, b.Min.X+x, b.Min.Y+y)) > threshold {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out
}

// AdaptiveMeanBinarize thresholds each pixel against the mean of its
// blockSize x blockSize neighborhood minus c. blockSize must be odd.
func AdaptiveMeanBinarize(g *image.Gray, blockSize int, c float64) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}
	if blockSize < 3 {
		blockSize = 3
	}
	if blockSize%2 == 0 {
		blockSize++
	}
	r := blockSize / 2

	// Summed-area table with one row/col of zero padding
	integral := make([]int, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		rowSum := 0
		for x := 0; x < w; x++ {
			rowSum += int(grayAt(g, b.Min.X+x, b.Min.Y+y))
			integral[(y+1)*(w+1)+x+1] = integral[y*(w+1)+x+1] + rowSum
		}
	}

	for y := 0; y < h; y++ {
		y0, y1 := clamp(y-r, 0, h-1), clamp(y+r, 0, h-1)
		for x := 0; x < w; x++ {
			x0, x1 := clamp(x-r, 0, w-1), clamp(x+r, 0, w-1)
			area := (x1 - x0 + 1) * (y1 - y0 + 1)
			sum := integral[(y1+1)*(w+1)+x1+1] - integral[y0*(w+1)+x1+1] -
				integral[(y1+1)*(w+1)+x0] + integral[y0*(w+1)+x0]
			mean := float64(sum) / float64(area)
			if float64(grayAt(g, b.Min.X+x, b.Min.Y+y)) > mean-c {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out
}

func grayAt(g *image.Gray, x, y int) uint8 {
	return g.Pix[g.PixOffset(x, y)]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
