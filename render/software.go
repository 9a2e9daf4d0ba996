// Package render provides a software implementation of the
// layerbuf.Renderer draw path.
package render

import (
	"image"
	"image/color"
	"sync"

	"deedles.dev/layerbuf"
	"golang.org/x/image/draw"
)

// Software draws into an in-memory image. Each source's frames are
// first uploaded into a cached texture, then scaled into place, the
// same way a GPU path would.
type Software struct {
	// Scaler is used to fit frames into their destination bounds. It
	// defaults to draw.ApproxBiLinear.
	Scaler draw.Scaler

	m        sync.Mutex
	dst      draw.Image
	textures map[any]*image.RGBA
}

func NewSoftware(dst draw.Image) *Software {
	return &Software{
		dst:      dst,
		textures: make(map[any]*image.RGBA),
	}
}

// Image returns the image being drawn into.
func (r *Software) Image() draw.Image {
	return r.dst
}

func (r *Software) Clear(clip image.Rectangle) {
	r.m.Lock()
	defer r.m.Unlock()

	draw.Draw(r.dst, clip, image.Transparent, image.Point{}, draw.Src)
}

func (r *Software) Draw(op layerbuf.DrawOp, buf *layerbuf.LockedBuffer) {
	r.m.Lock()
	defer r.m.Unlock()

	src, ok := buf.Image()
	if !ok {
		draw.Draw(r.dst, op.Clip, image.Transparent, image.Point{}, draw.Src)
		return
	}

	crop := buf.Crop().Intersect(src.Bounds())
	tex := r.upload(op.Key, src, crop)
	oriented := Orient(tex, op.Orientation)

	dr := op.Bounds
	if dr.Empty() {
		dr = oriented.Bounds().Sub(oriented.Bounds().Min).Add(op.Clip.Min)
	}

	dst := r.dst
	if sub, ok := dst.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		if clipped, ok := sub.SubImage(op.Clip).(draw.Image); ok {
			dst = clipped
		}
	}

	dop := draw.Src
	if op.Blend {
		dop = draw.Over
	}

	scaler := r.Scaler
	if scaler == nil {
		scaler = draw.ApproxBiLinear
	}
	scaler.Scale(dst, dr, oriented, oriented.Bounds(), dop, nil)
}

// upload copies the cropped frame into the texture for key, replacing
// the texture if its size no longer matches.
func (r *Software) upload(key any, src image.Image, crop image.Rectangle) *image.RGBA {
	tex := r.textures[key]
	size := crop.Size()
	if (tex == nil) || (tex.Bounds().Size() != size) {
		tex = image.NewRGBA(image.Rectangle{Max: size})
		r.textures[key] = tex
	}

	draw.Draw(tex, tex.Bounds(), src, crop.Min, draw.Src)
	return tex
}

// ReleaseTexture drops the cached texture for key.
func (r *Software) ReleaseTexture(key any) {
	r.m.Lock()
	defer r.m.Unlock()

	delete(r.textures, key)
}

// Textures returns the number of cached textures.
func (r *Software) Textures() int {
	r.m.Lock()
	defer r.m.Unlock()

	return len(r.textures)
}

// Orient returns a view of img with the given orientation applied.
// The view's bounds start at the origin.
func Orient(img image.Image, o layerbuf.Orientation) image.Image {
	if o == layerbuf.Rot0 {
		return img
	}
	return &oriented{img: img, o: o}
}

type oriented struct {
	img image.Image
	o   layerbuf.Orientation
}

func (img *oriented) ColorModel() color.Model {
	return img.img.ColorModel()
}

func (img *oriented) Bounds() image.Rectangle {
	size := img.img.Bounds().Size()
	if img.o&layerbuf.Rot90 != 0 {
		size.X, size.Y = size.Y, size.X
	}
	return image.Rectangle{Max: size}
}

// At maps (x, y) back into the source image. Flips are applied after
// the rotation.
func (img *oriented) At(x, y int) color.Color {
	b := img.Bounds()
	if img.o&layerbuf.FlipH != 0 {
		x = b.Dx() - 1 - x
	}
	if img.o&layerbuf.FlipV != 0 {
		y = b.Dy() - 1 - y
	}
	if img.o&layerbuf.Rot90 != 0 {
		// Rotating clockwise by 90 degrees takes source (sx, sy) to
		// (h-1-sy, sx).
		x, y = y, b.Dx()-1-x
	}

	sb := img.img.Bounds()
	return img.img.At(sb.Min.X+x, sb.Min.Y+y)
}
