package okcolor

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lucasb-eyer/go-colorful"
)

// forEachColor walks the sRGB cube, with a coarse stride in short mode.
func forEachColor(t *testing.T, f func(SRGB)) {
	t.Helper()
	step := 1
	if testing.Short() {
		step = 15
	}
	for r := 0; r < 256; r += step {
		for g := 0; g < 256; g += step {
			for b := 0; b < 256; b += step {
				f(SRGB{R: uint8(r), G: uint8(g), B: uint8(b)})
			}
		}
	}
}

func TestLinearRoundTrip(t *testing.T) {
	failures := 0
	forEachColor(t, func(c SRGB) {
		if got := c.Linear().SRGB(); got != c && failures < 10 {
			failures++
			t.Errorf("%s: linear round trip gave %s", c, got)
		}
	})
}

func TestLinearMatchesColorful(t *testing.T) {
	for _, c := range []SRGB{{0, 0, 0}, {10, 10, 10}, {11, 12, 13}, {128, 64, 200}, {255, 128, 127}, {255, 255, 255}} {
		want := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
		r, g, b := want.LinearRgb()
		got := c.Linear()
		if math.Abs(got.R-r) > 1e-12 || math.Abs(got.G-g) > 1e-12 || math.Abs(got.B-b) > 1e-12 {
			t.Errorf("%s: got %s, want LinearRGB(%g, %g, %g)", c, got, r, g, b)
		}
	}
}

func TestEncodeClamps(t *testing.T) {
	tests := []struct {
		name string
		in   LinearRGB
		want SRGB
	}{
		{"below", LinearRGB{R: -0.5, G: -1e-9, B: 0}, SRGB{}},
		{"above", LinearRGB{R: 1.5, G: 1 + 1e-9, B: 1}, White},
		{"nan", LinearRGB{R: math.NaN(), G: 0.5, B: math.Inf(1)}, SRGB{R: 0, G: 188, B: 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.SRGB(); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestInGamut(t *testing.T) {
	const tol = 0.25 / 255
	if !(LinearRGB{R: -tol, G: 1 + tol, B: 0.5}).InGamut(tol) {
		t.Error("boundary values should be in gamut")
	}
	if (LinearRGB{R: -2 * tol, G: 0.5, B: 0.5}).InGamut(tol) {
		t.Error("negative channel should be out of gamut")
	}
	if got := (LinearRGB{R: -1, G: 2, B: 0.5}).Clamp(); got != (LinearRGB{R: 0, G: 1, B: 0.5}) {
		t.Errorf("clamp gave %s", got)
	}
}

func TestSRGBIsColor(t *testing.T) {
	c := SRGB{R: 1, G: 0x80, B: 0xff}
	if diff := cmp.Diff(color.RGBA{R: 1, G: 0x80, B: 0xff, A: 0xff}, color.RGBAModel.Convert(c)); diff != "" {
		t.Errorf("RGBA mismatch (-want +got):\n%s", diff)
	}
	if got := SRGBModel.Convert(color.RGBA{R: 1, G: 0x80, B: 0xff, A: 0xff}); got != c {
		t.Errorf("model gave %v", got)
	}
}

func TestIndex(t *testing.T) {
	c := SRGB{R: 0x12, G: 0x34, B: 0x56}
	if c.Index() != 0x123456 {
		t.Errorf("index: %#x", c.Index())
	}
	if FromIndex(0x123456) != c {
		t.Errorf("from index: %s", FromIndex(0x123456))
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    SRGB
		wantErr bool
	}{
		{in: "#000", want: Black},
		{in: "#fff", want: White},
		{in: "#1a2", want: SRGB{R: 0x11, G: 0xaa, B: 0x22}},
		{in: "#ffff00", want: SRGB{R: 0xff, G: 0xff}},
		{in: "6200FF", want: SRGB{R: 0x62, B: 0xff}},
		{in: "#12345", wantErr: true},
		{in: "#zzzzzz", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidHex) {
					t.Fatalf("expected ErrInvalidHex, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSRGBText(t *testing.T) {
	var c SRGB
	if err := c.UnmarshalText([]byte("#a0b1c2")); err != nil {
		t.Fatal(err)
	}
	text, err := c.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	if string(text) != "#a0b1c2" {
		t.Errorf("got %q", text)
	}
}
