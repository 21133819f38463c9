// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pencil

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "github.com/spakin/netpbm"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Enhance increases the local contrast of an image by applying
// CLAHE to its lightness, leaving the colour untouched. The result
// is returned as red, green and blue planes.
func Enhance(img image.Image) (*image.Gray, *image.Gray, *image.Gray) {
	lab := RGBToLab(ToRGB(img))
	lab.L = CLAHE(lab.L, ClipLimit, TileGrid, TileGrid)
	return LabToRGB(lab)
}

// Sketch converts an image to a pencil sketch, using a Gaussian
// kernel of size k for the blur. The result has the same dimensions
// as img.
func Sketch(img image.Image, k int) (*image.Gray, error) {
	err := ValidateKSize(k)
	if err != nil {
		return nil, err
	}

	gray := Gray(Enhance(img))
	invblur := Invert(GaussianBlur(Invert(gray), k))

	return Divide(gray, invblur, Scale)
}

// Decode decodes an image in any of the registered formats, which
// are PNG, JPEG, BMP, TIFF, WebP and the netpbm formats (PBM, PGM,
// PPM and PAM). Any failure is returned as a *DecodeError.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", &DecodeError{Err: err}
	}
	return img, format, nil
}

// SketchReader decodes an image from r and converts it to a pencil
// sketch. The kernel size is checked before anything is read.
func SketchReader(r io.Reader, k int) (*image.Gray, string, error) {
	err := ValidateKSize(k)
	if err != nil {
		return nil, "", err
	}

	img, format, err := Decode(r)
	if err != nil {
		return nil, "", err
	}

	sketch, err := Sketch(img, k)
	return sketch, format, err
}
