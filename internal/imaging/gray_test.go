package imaging

import (
	"image"
	"image/color"
	"testing"
)

func uniform(w, h int, value uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = value
	}
	return img
}

func checkerboard(w, h, cell int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func TestLaplacianVariance(t *testing.T) {
	if v := LaplacianVariance(uniform(32, 32, 100)); v != 0 {
		t.Errorf("flat image variance = %v, want 0", v)
	}
	if v := LaplacianVariance(checkerboard(32, 32, 2)); v <= 0 {
		t.Errorf("checkerboard variance = %v, want > 0", v)
	}
	if v := LaplacianVariance(uniform(2, 2, 0)); v != 0 {
		t.Errorf("degenerate image variance = %v, want 0", v)
	}
}

func TestMedianFilter5RemovesSaltNoise(t *testing.T) {
	img := uniform(16, 16, 50)
	img.SetGray(8, 8, color.Gray{Y: 255})

	filtered := MedianFilter5(img)
	if got := filtered.GrayAt(8, 8).Y; got != 50 {
		t.Errorf("salt pixel survived the median filter: %d", got)
	}
}

func TestDiffExceedingPct(t *testing.T) {
	a := uniform(10, 10, 100)
	b := uniform(10, 10, 100)
	if pct := DiffExceedingPct(a, b, 30); pct != 0 {
		t.Errorf("identical images diff = %v, want 0", pct)
	}

	b.SetGray(0, 0, color.Gray{Y: 200})
	if pct := DiffExceedingPct(a, b, 30); pct != 1 {
		t.Errorf("one changed pixel of 100 = %v%%, want 1", pct)
	}
}

func TestSobelEdgesDetectsBoundary(t *testing.T) {
	img := uniform(20, 20, 0)
	for y := 0; y < 20; y++ {
		for x := 10; x < 20; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	edges := SobelEdges(img, 100)
	if edges.GrayAt(10, 10).Y == 0 && edges.GrayAt(9, 10).Y == 0 {
		t.Error("no edge detected at the step boundary")
	}
	if edges.GrayAt(3, 10).Y != 0 {
		t.Error("edge reported in a flat region")
	}
}

func TestConnectedComponents(t *testing.T) {
	bin := image.NewGray(image.Rect(0, 0, 30, 30))
	// Two separated 5x5 blocks
	for y := 2; y < 7; y++ {
		for x := 2; x < 7; x++ {
			bin.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	for y := 20; y < 25; y++ {
		for x := 20; x < 25; x++ {
			bin.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	comps := ConnectedComponents(bin)
	if len(comps) != 2 {
		t.Fatalf("got %d components, want 2", len(comps))
	}
	for _, c := range comps {
		if c.Area != 25 {
			t.Errorf("component area = %d, want 25", c.Area)
		}
		if c.BoxArea() != 25 {
			t.Errorf("component box area = %d, want 25", c.BoxArea())
		}
		if c.AspectRatio() != 1 {
			t.Errorf("component aspect = %v, want 1", c.AspectRatio())
		}
	}
}

func TestConnectedComponentsDiagonal(t *testing.T) {
	bin := image.NewGray(image.Rect(0, 0, 10, 10))
	bin.SetGray(2, 2, color.Gray{Y: 255})
	bin.SetGray(3, 3, color.Gray{Y: 255})

	// 8-connectivity joins diagonal neighbors
	comps := ConnectedComponents(bin)
	if len(comps) != 1 {
		t.Fatalf("got %d components, want 1", len(comps))
	}
	if comps[0].Area != 2 {
		t.Errorf("area = %d, want 2", comps[0].Area)
	}
}

func TestMeanAbsDiff(t *testing.T) {
	a := uniform(4, 4, 100)
	b := uniform(4, 4, 110)
	if d := MeanAbsDiff(a, b); d != 10 {
		t.Errorf("mean abs diff = %v, want 10", d)
	}
	if d := MeanAbsDiff(a, a); d != 0 {
		t.Errorf("self diff = %v, want 0", d)
	}
}

func TestMatchTemplateMax(t *testing.T) {
	scene := uniform(20, 20, 128)
	// Embed a distinctive 4x4 patch
	for y := 5; y < 9; y++ {
		for x := 5; x < 9; x++ {
			if (x+y)%2 == 0 {
				scene.SetGray(x, y, color.Gray{Y: 255})
			} else {
				scene.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}

	tmpl := Crop(scene, image.Rect(5, 5, 9, 9))
	score := MatchTemplateMax(scene, tmpl)
	if score < 0.99 {
		t.Errorf("exact template score = %v, want ~1.0", score)
	}

	if got := MatchTemplateMax(uniform(3, 3, 0), uniform(5, 5, 0)); got != 0 {
		t.Errorf("oversized template score = %v, want 0", got)
	}
}

func TestResizeNearest(t *testing.T) {
	img := checkerboard(4, 4, 2)
	out := ResizeNearest(img, 8, 8)
	if out.Bounds().Dx() != 8 || out.Bounds().Dy() != 8 {
		t.Fatalf("bounds = %v, want 8x8", out.Bounds())
	}
	if out.GrayAt(0, 0).Y != img.GrayAt(0, 0).Y {
		t.Error("origin pixel changed")
	}
	if out.GrayAt(7, 7).Y != img.GrayAt(3, 3).Y {
		t.Error("corner pixel changed")
	}
}

func TestEqualizeHistSpreadsRange(t *testing.T) {
	// Low-contrast image confined to [100, 120]
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(100 + (x+y)%20)})
		}
	}

	out := EqualizeHist(img)
	minV, maxV := uint8(255), uint8(0)
	for _, p := range out.Pix {
		if p < minV {
			minV = p
		}
		if p > maxV {
			maxV = p
		}
	}
	if maxV != 255 {
		t.Errorf("max after equalization = %d, want 255", maxV)
	}
	if maxV-minV <= 20 {
		t.Errorf("range after equalization = %d, want wider than input", maxV-minV)
	}
}

func TestOtsuBinarizeBimodal(t *testing.T) {
	img := uniform(10, 10, 30)
	for y := 0; y < 10; y++ {
		for x := 5; x < 10; x++ {
			img.SetGray(x, y, color.Gray{Y: 220})
		}
	}

	bin := OtsuBinarize(img)
	if bin.GrayAt(2, 5).Y != 0 {
		t.Error("dark half should threshold to black")
	}
	if bin.GrayAt(7, 5).Y != 255 {
		t.Error("bright half should threshold to white")
	}
}

func TestAdaptiveMeanBinarize(t *testing.T) {
	// Gradient background with a bright dot; local thresholding keeps the
	// dot distinct regardless of its absolute level
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(4 * x)})
		}
	}
	img.SetGray(16, 16, color.Gray{Y: 255})

	bin := AdaptiveMeanBinarize(img, 11, 2)
	if bin.GrayAt(16, 16).Y != 255 {
		t.Error("bright outlier should stay white under local thresholding")
	}
}

func TestFromImage(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(0, 0, 2, 2))
	rgba.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	rgba.Set(1, 1, color.RGBA{A: 255})

	gray := FromImage(rgba)
	if gray.GrayAt(0, 0).Y != 255 {
		t.Errorf("white pixel = %d, want 255", gray.GrayAt(0, 0).Y)
	}
	if gray.GrayAt(1, 1).Y != 0 {
		t.Errorf("black pixel = %d, want 0", gray.GrayAt(1, 1).Y)
	}

	g := uniform(3, 3, 7)
	if FromImage(g) != g {
		t.Error("gray input should be returned as-is")
	}
}
