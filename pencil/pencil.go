// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// Package pencil turns photographs into pencil sketches.
//
// The sketch is made by a fixed chain of operations: the lightness
// of the image is contrast enhanced in Lab space with CLAHE, the
// result is converted to grayscale, and the grayscale is divided by
// an inverted blur of its own inverse (a "colour dodge" blend). Each
// stage is exported so that it can be used and tested on its own,
// and all of them work on *image.Gray planes, returning a new image
// rather than changing their input.
package pencil

import (
	"errors"
	"fmt"
	"image"
	"math"
)

const (
	// ClipLimit is the CLAHE clip limit used by Sketch
	ClipLimit = 4.0
	// TileGrid is the number of CLAHE tiles along each axis used by Sketch
	TileGrid = 70
	// Scale is the multiplier of the divide blend used by Sketch
	Scale = 260.0
)

// ErrInvalidParameter is returned when a kernel size isn't a
// positive odd number.
var ErrInvalidParameter = errors.New("invalid parameter")

// DecodeError is returned when an image can't be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("Could not decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ValidateKSize checks that k can be used as the size of a
// Gaussian kernel.
func ValidateKSize(k int) error {
	if k <= 0 || k%2 == 0 {
		return fmt.Errorf("kernel size %d needs to be a positive odd number: %w", k, ErrInvalidParameter)
	}
	return nil
}

// round8 rounds half to even, like the rest of the pipeline, and
// saturates to the 0-255 range of a sample.
func round8(f float64) uint8 {
	r := math.RoundToEven(f)
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}

// reflect101 maps an out of range index back into [0, n) by
// reflecting around the edge pixels without repeating them, so
// for n = 5, -2 -1 | 0 1 2 3 4 | 5 6 maps to 2 1 | 0 1 2 3 4 | 3 2.
func reflect101(p, n int) int {
	if n == 1 {
		return 0
	}
	for p < 0 || p >= n {
		if p < 0 {
			p = -p
		} else {
			p = 2*n - p - 2
		}
	}
	return p
}

// newGray returns an empty image of the same size as b, with its
// origin at 0,0.
func newGray(b image.Rectangle) *image.Gray {
	return image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
}

// Invert returns a copy of img with every sample v replaced by 255-v.
func Invert(img *image.Gray) *image.Gray {
	b := img.Bounds()
	new := newGray(b)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			new.Pix[new.PixOffset(x, y)] = 255 - img.GrayAt(b.Min.X+x, b.Min.Y+y).Y
		}
	}
	return new
}

// Divide computes round(num * scale / den) for each pixel, saturated
// to 0-255. Where den is 0 the result is 255.
func Divide(num, den *image.Gray, scale float64) (*image.Gray, error) {
	b := num.Bounds()
	if b.Dx() != den.Bounds().Dx() || b.Dy() != den.Bounds().Dy() {
		return nil, errors.New("numerator and denominator images need to be the same dimensions")
	}
	db := den.Bounds()
	new := newGray(b)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			n := num.GrayAt(b.Min.X+x, b.Min.Y+y).Y
			d := den.GrayAt(db.Min.X+x, db.Min.Y+y).Y
			v := uint8(255)
			if d != 0 {
				v = round8(float64(n) * scale / float64(d))
			}
			new.Pix[new.PixOffset(x, y)] = v
		}
	}
	return new, nil
}
