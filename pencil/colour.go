// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pencil

import (
	"image"
	"image/color"
	"math"
)

// D65 reference white
const (
	whiteX = 0.950456
	whiteZ = 1.088754
)

// Lab thresholds, see the CIE 1976 definition
const (
	labEpsilon = 0.008856
	labKappa   = 903.3
	labDelta   = 0.206893
)

// Lab holds an image in 8 bit CIE L*a*b* encoding: L is scaled from
// 0-100 to 0-255, and a and b are offset by 128.
type Lab struct {
	L, A, B *image.Gray
}

// linear is a lookup table from an sRGB sample to linear light
var linear [256]float64

func init() {
	for i := range linear {
		v := float64(i) / 255
		if v <= 0.04045 {
			linear[i] = v / 12.92
		} else {
			linear[i] = math.Pow((v+0.055)/1.055, 2.4)
		}
	}
}

// companded converts linear light back to an sRGB sample
func companded(v float64) uint8 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	if v <= 0.0031308 {
		v *= 12.92
	} else {
		v = 1.055*math.Pow(v, 1/2.4) - 0.055
	}
	return round8(v * 255)
}

func labf(t float64) float64 {
	if t > labEpsilon {
		return math.Cbrt(t)
	}
	return 7.787*t + 16.0/116.0
}

func labfinv(f float64) float64 {
	if f > labDelta {
		return f * f * f
	}
	return (f - 16.0/116.0) / 7.787
}

// ToRGB splits an image into 8 bit red, green and blue planes. Any
// alpha channel is dropped, and 16 bit samples are reduced to 8 bits.
func ToRGB(img image.Image) (*image.Gray, *image.Gray, *image.Gray) {
	b := img.Bounds()
	r, g, bl := newGray(b), newGray(b), newGray(b)

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			var c color.NRGBA
			switch i := img.(type) {
			case *image.YCbCr:
				yc := i.YCbCrAt(b.Min.X+x, b.Min.Y+y)
				c.R, c.G, c.B = color.YCbCrToRGB(yc.Y, yc.Cb, yc.Cr)
			case *image.NRGBA:
				c = i.NRGBAAt(b.Min.X+x, b.Min.Y+y)
			default:
				c = color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			}
			o := r.PixOffset(x, y)
			r.Pix[o], g.Pix[o], bl.Pix[o] = c.R, c.G, c.B
		}
	}

	return r, g, bl
}

// FromRGB joins red, green and blue planes into an RGBA image.
func FromRGB(r, g, b *image.Gray) *image.RGBA {
	bounds := r.Bounds()
	new := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			o := r.PixOffset(x, y)
			new.SetRGBA(x, y, color.RGBA{r.Pix[o], g.Pix[o], b.Pix[o], 255})
		}
	}
	return new
}

// RGBToLab converts red, green and blue planes to Lab. The planes
// must all be the same size with an origin of 0,0, as returned by
// ToRGB.
func RGBToLab(r, g, b *image.Gray) Lab {
	bounds := r.Bounds()
	lab := Lab{newGray(bounds), newGray(bounds), newGray(bounds)}

	for i := range r.Pix {
		rl, gl, bl := linear[r.Pix[i]], linear[g.Pix[i]], linear[b.Pix[i]]

		x := (0.412453*rl + 0.357580*gl + 0.180423*bl) / whiteX
		y := 0.212671*rl + 0.715160*gl + 0.072169*bl
		z := (0.019334*rl + 0.119193*gl + 0.950227*bl) / whiteZ

		fx, fy, fz := labf(x), labf(y), labf(z)

		var l float64
		if y > labEpsilon {
			l = 116*fy - 16
		} else {
			l = labKappa * y
		}

		lab.L.Pix[i] = round8(l * 255 / 100)
		lab.A.Pix[i] = round8(500*(fx-fy) + 128)
		lab.B.Pix[i] = round8(200*(fy-fz) + 128)
	}

	return lab
}

// LabToRGB converts Lab planes back to red, green and blue. Colours
// outside of the sRGB gamut are clipped.
func LabToRGB(lab Lab) (*image.Gray, *image.Gray, *image.Gray) {
	bounds := lab.L.Bounds()
	r, g, b := newGray(bounds), newGray(bounds), newGray(bounds)

	for i := range lab.L.Pix {
		l := float64(lab.L.Pix[i]) * 100 / 255
		a := float64(lab.A.Pix[i]) - 128
		bb := float64(lab.B.Pix[i]) - 128

		var y, fy float64
		if l <= labEpsilon*labKappa {
			y = l / labKappa
			fy = 7.787*y + 16.0/116.0
		} else {
			fy = (l + 16) / 116
			y = fy * fy * fy
		}

		x := labfinv(a/500+fy) * whiteX
		z := labfinv(fy-bb/200) * whiteZ

		r.Pix[i] = companded(3.240479*x - 1.53715*y - 0.498535*z)
		g.Pix[i] = companded(-0.969256*x + 1.875991*y + 0.041556*z)
		b.Pix[i] = companded(0.055648*x - 0.204043*y + 1.057311*z)
	}

	return r, g, b
}

// Gray converts red, green and blue planes to luma, using the
// Rec. 601 weights in 14 bit fixed point.
func Gray(r, g, b *image.Gray) *image.Gray {
	new := newGray(r.Bounds())
	for i := range r.Pix {
		v := 4899*uint32(r.Pix[i]) + 9617*uint32(g.Pix[i]) + 1868*uint32(b.Pix[i])
		new.Pix[i] = uint8((v + 1<<13) >> 14)
	}
	return new
}
