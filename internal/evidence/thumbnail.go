package evidence

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	thumbBackground = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	labelBackground = color.RGBA{R: 0x21, G: 0x21, B: 0x21, A: 0xcc}
)

// makeThumbnail scales a PNG screenshot to fit w x h, keeping its aspect
// ratio, and stamps label along the bottom edge.
func makeThumbnail(data []byte, label string, w, h int) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(thumbBackground), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, fitRect(src.Bounds(), dst.Bounds()), src, src.Bounds(), draw.Over, nil)

	face := basicfont.Face7x13
	const pad = 3
	stripTop := h - face.Height - 2*pad
	draw.Draw(dst, image.Rect(0, stripTop, w, h), image.NewUniform(labelBackground), image.Point{}, draw.Over)

	maxChars := (w - 2*pad) / face.Advance
	if r := []rune(label); len(r) > maxChars {
		label = string(r[:maxChars-1]) + "~"
	}
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(pad, h-pad-face.Descent),
	}
	d.DrawString(label)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// fitRect centres the largest rectangle with src's aspect ratio inside bounds.
func fitRect(src, bounds image.Rectangle) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	bw, bh := bounds.Dx(), bounds.Dy()
	if sw == 0 || sh == 0 {
		return bounds
	}
	w, h := bw, sh*bw/sw
	if h > bh {
		w, h = sw*bh/sh, bh
	}
	x := bounds.Min.X + (bw-w)/2
	y := bounds.Min.Y + (bh-h)/2
	return image.Rect(x, y, x+w, y+h)
}
