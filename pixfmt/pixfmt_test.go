package pixfmt

import (
	"errors"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		format   Format
		bpp      int
		alpha    bool
		scanline int
	}{
		{ARGB8888, 4, true, 400},
		{XRGB8888, 4, false, 400},
		{RGB565, 2, false, 200},
		{RGBA4444, 2, true, 200},
		{A8, 1, true, 100},
	}

	for _, test := range tests {
		t.Run(test.format.String(), func(t *testing.T) {
			info, err := Lookup(test.format)
			if err != nil {
				t.Fatal(err)
			}
			if info.BytesPerPixel != test.bpp {
				t.Errorf("bytes per pixel = %v, want %v", info.BytesPerPixel, test.bpp)
			}
			if info.HasAlpha() != test.alpha {
				t.Errorf("has alpha = %v, want %v", info.HasAlpha(), test.alpha)
			}
			if s := info.ScanlineSize(100); s != test.scanline {
				t.Errorf("scanline size = %v, want %v", s, test.scanline)
			}
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Default.Lookup(Format(0xDEAD))
	var uerr UnknownFormatError
	if !errors.As(err, &uerr) {
		t.Fatalf("err = %v, want UnknownFormatError", err)
	}
	if uerr.Format != 0xDEAD {
		t.Errorf("format = %v", uerr.Format)
	}
}
