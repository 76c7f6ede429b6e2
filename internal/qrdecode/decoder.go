// Package qrdecode extracts QR payloads from images. Decoding walks an
// ordered chain of preprocessing strategies, from the raw frame through
// progressively more aggressive enhancement, stopping at the first hit.
package qrdecode

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	dimg "github.com/disintegration/imaging"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	grayops "qrshield/internal/imaging"
	"qrshield/pkg/logger"
)

// ErrNoQRCode is returned when every strategy in the chain fails
var ErrNoQRCode = errors.New("no QR code found in image")

// ErrBadImage is returned when the payload is not a decodable image
var ErrBadImage = errors.New("image data could not be decoded")

// Fallback is an out-of-process decoder tried after all local strategies
type Fallback interface {
	Decode(ctx context.Context, imageData []byte) (string, error)
}

// Result carries the decoded payload and the strategy that produced it
type Result struct {
	Text   string
	Method string
}

// Decoder runs the preprocessing strategy chain against gozxing
type Decoder struct {
	reader   gozxing.Reader
	hints    map[gozxing.DecodeHintType]interface{}
	fallback Fallback
	logger   *logger.Logger
}

// NewDecoder creates a decoder. fallback may be nil to disable the
// external decode step.
func NewDecoder(fallback Fallback, log *logger.Logger) *Decoder {
	return &Decoder{
		reader: qrcode.NewQRCodeReader(),
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
		fallback: fallback,
		logger:   log.WithComponent("qr-decoder"),
	}
}

// DecodeBytes parses the image payload and runs the strategy chain
func (d *Decoder) DecodeBytes(ctx context.Context, data []byte) (*Result, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrBadImage
	}
	return d.decode(ctx, img, data)
}

// Decode runs the strategy chain on an already parsed image
func (d *Decoder) Decode(ctx context.Context, img image.Image) (*Result, error) {
	return d.decode(ctx, img, nil)
}

func (d *Decoder) decode(ctx context.Context, img image.Image, raw []byte) (*Result, error) {
	for _, strategy := range d.strategies() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, frame := range strategy.frames(img) {
			if text, ok := d.tryDecode(frame); ok {
				d.logger.Debug().Str("method", strategy.name).Msg("QR decoded")
				return &Result{Text: text, Method: strategy.name}, nil
			}
		}
	}

	if d.fallback != nil && raw != nil {
		text, err := d.fallback.Decode(ctx, raw)
		if err == nil && text != "" {
			d.logger.Debug().Str("method", "external_api").Msg("QR decoded")
			return &Result{Text: text, Method: "external_api"}, nil
		}
		if err != nil {
			d.logger.Debug().Err(err).Msg("external decode fallback failed")
		}
	}

	return nil, ErrNoQRCode
}

func (d *Decoder) tryDecode(img image.Image) (string, bool) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", false
	}
	result, err := d.reader.Decode(bmp, d.hints)
	if err != nil || result.GetText() == "" {
		return "", false
	}
	return result.GetText(), true
}

type strategy struct {
	name   string
	frames func(image.Image) []image.Image
}

// strategies returns the chain in cost order: cheap transforms first
func (d *Decoder) strategies() []strategy {
	return []strategy{
		{
			name:   "raw",
			frames: func(img image.Image) []image.Image { return []image.Image{img} },
		},
		{
			name: "color_channels",
			frames: func(img image.Image) []image.Image {
				return channelPlanes(img)
			},
		},
		{
			name: "equalized",
			frames: func(img image.Image) []image.Image {
				return []image.Image{grayops.EqualizeHist(grayops.FromImage(img))}
			},
		},
		{
			name: "gamma",
			frames: func(img image.Image) []image.Image {
				var frames []image.Image
				for _, gamma := range []float64{0.5, 1.5, 2.0} {
					frames = append(frames, dimg.AdjustGamma(img, gamma))
				}
				return frames
			},
		},
		{
			name: "adaptive_threshold",
			frames: func(img image.Image) []image.Image {
				return []image.Image{grayops.AdaptiveMeanBinarize(grayops.FromImage(img), 11, 2)}
			},
		},
		{
			name: "otsu",
			frames: func(img image.Image) []image.Image {
				return []image.Image{grayops.OtsuBinarize(grayops.FromImage(img))}
			},
		},
	}
}

// channelPlanes splits the image into R, G and B planes rendered as gray.
// Colored or tinted QR codes often decode from a single channel when the
// luma conversion washes out the contrast.
func channelPlanes(img image.Image) []image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	planes := make([]*image.Gray, 3)
	for i := range planes {
		planes[i] = image.NewGray(image.Rect(0, 0, w, h))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			planes[0].Pix[planes[0].PixOffset(x, y)] = uint8(r >> 8)
			planes[1].Pix[planes[1].PixOffset(x, y)] = uint8(g >> 8)
			planes[2].Pix[planes[2].PixOffset(x, y)] = uint8(b >> 8)
		}
	}

	return []image.Image{planes[0], planes[1], planes[2]}
}
