package qrdecode

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"qrshield/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "disabled"})
}

// encodeQR renders a QR code for the given payload as a grayscale image
func encodeQR(t *testing.T, payload string, size int) *image.Gray {
	t.Helper()

	writer := qrcode.NewQRCodeWriter()
	matrix, err := writer.Encode(payload, gozxing.BarcodeFormat_QR_CODE, size, size, nil)
	if err != nil {
		t.Fatalf("encoding QR: %v", err)
	}

	img := image.NewGray(image.Rect(0, 0, matrix.GetWidth(), matrix.GetHeight()))
	for y := 0; y < matrix.GetHeight(); y++ {
		for x := 0; x < matrix.GetWidth(); x++ {
			if matrix.Get(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func TestDecodeRoundTrip(t *testing.T) {
	d := NewDecoder(nil, testLogger())

	payload := "upi://pay?pa=merchant@oksbi&pn=Shop"
	img := encodeQR(t, payload, 256)

	result, err := d.Decode(context.Background(), img)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if result.Text != payload {
		t.Errorf("Text = %q, want %q", result.Text, payload)
	}
	if result.Method != "raw" {
		t.Errorf("Method = %q, want raw for a clean image", result.Method)
	}
}

func TestDecodeBytesRoundTrip(t *testing.T) {
	d := NewDecoder(nil, testLogger())

	payload := "https://example.org/visit"
	var buf bytes.Buffer
	if err := png.Encode(&buf, encodeQR(t, payload, 256)); err != nil {
		t.Fatalf("encoding PNG: %v", err)
	}

	result, err := d.DecodeBytes(context.Background(), buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}
	if result.Text != payload {
		t.Errorf("Text = %q, want %q", result.Text, payload)
	}
}

func TestDecodeBytesBadPayload(t *testing.T) {
	d := NewDecoder(nil, testLogger())

	if _, err := d.DecodeBytes(context.Background(), []byte("not an image")); err != ErrBadImage {
		t.Errorf("err = %v, want ErrBadImage", err)
	}
}

func TestDecodeNoQRCode(t *testing.T) {
	d := NewDecoder(nil, testLogger())

	blank := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range blank.Pix {
		blank.Pix[i] = 200
	}

	if _, err := d.Decode(context.Background(), blank); err != ErrNoQRCode {
		t.Errorf("err = %v, want ErrNoQRCode", err)
	}
}

func TestDecodeCancelledContext(t *testing.T) {
	d := NewDecoder(nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := d.Decode(ctx, encodeQR(t, "x@oksbi", 128)); err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

// fakeFallback records whether the external decoder was consulted
type fakeFallback struct {
	called bool
	text   string
}

func (f *fakeFallback) Decode(ctx context.Context, imageData []byte) (string, error) {
	f.called = true
	return f.text, nil
}

func TestDecodeFallback(t *testing.T) {
	fb := &fakeFallback{text: "merchant@ybl"}
	d := NewDecoder(fb, testLogger())

	var buf bytes.Buffer
	blank := image.NewGray(image.Rect(0, 0, 64, 64))
	if err := png.Encode(&buf, blank); err != nil {
		t.Fatalf("encoding PNG: %v", err)
	}

	result, err := d.DecodeBytes(context.Background(), buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}
	if !fb.called {
		t.Error("fallback was not consulted")
	}
	if result.Method != "external_api" || result.Text != "merchant@ybl" {
		t.Errorf("got %+v, want external_api result", result)
	}
}
