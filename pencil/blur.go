// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pencil

import (
	"image"
	"math"
)

// smallKernels are the binomial kernels used for small sizes when
// no sigma is given, which approximate a Gaussian better than
// sampling the function does at these sizes.
var smallKernels = map[int][]float64{
	1: {1},
	3: {0.25, 0.5, 0.25},
	5: {0.0625, 0.25, 0.375, 0.25, 0.0625},
	7: {0.03125, 0.109375, 0.21875, 0.28125, 0.21875, 0.109375, 0.03125},
}

// Sigma returns the standard deviation used for a Gaussian kernel
// of size k.
func Sigma(k int) float64 {
	return 0.3*((float64(k)-1)*0.5-1) + 0.8
}

// GaussianKernel returns a normalised one dimensional Gaussian
// kernel of size k, with the standard deviation derived from the
// size. k should be a positive odd number.
func GaussianKernel(k int) []float64 {
	if small, ok := smallKernels[k]; ok {
		kernel := make([]float64, k)
		copy(kernel, small)
		return kernel
	}

	sigma := Sigma(k)
	kernel := make([]float64, k)
	center := (k - 1) / 2
	sum := 0.0
	for i := range kernel {
		d := float64(i - center)
		kernel[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// GaussianBlur blurs an image with a square Gaussian kernel of size
// k. As the kernel is separable it is applied first along rows and
// then along columns. Pixels beyond the edge of the image are
// reflected back into it.
func GaussianBlur(img *image.Gray, k int) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	new := newGray(b)
	kernel := GaussianKernel(k)
	step := k / 2

	rows := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for i, kv := range kernel {
				sx := reflect101(x+i-step, w)
				sum += float64(img.GrayAt(b.Min.X+sx, b.Min.Y+y).Y) * kv
			}
			rows[y*w+x] = sum
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for i, kv := range kernel {
				sy := reflect101(y+i-step, h)
				sum += rows[sy*w+x] * kv
			}
			new.Pix[new.PixOffset(x, y)] = round8(sum)
		}
	}

	return new
}
