// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pencil

import (
	"image"
	"math"
)

const histSize = 256

// tileLUT builds the equalisation lookup table for one tile of an
// image, clipping the histogram at clip (if clip > 0) and spreading
// the clipped counts back over every bin.
func tileLUT(img *image.Gray, x0, y0, tw, th, clip int) [histSize]uint8 {
	var hist [histSize]int
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	for y := y0; y < y0+th; y++ {
		sy := reflect101(y, h)
		for x := x0; x < x0+tw; x++ {
			sx := reflect101(x, w)
			hist[img.GrayAt(b.Min.X+sx, b.Min.Y+sy).Y]++
		}
	}

	if clip > 0 {
		clipped := 0
		for i := range hist {
			if hist[i] > clip {
				clipped += hist[i] - clip
				hist[i] = clip
			}
		}

		batch := clipped / histSize
		residual := clipped - batch*histSize
		for i := range hist {
			hist[i] += batch
		}
		if residual > 0 {
			step := histSize / residual
			if step < 1 {
				step = 1
			}
			for i := 0; i < histSize && residual > 0; i += step {
				hist[i]++
				residual--
			}
		}
	}

	var lut [histSize]uint8
	scale := float64(histSize-1) / float64(tw*th)
	sum := 0
	for i := range hist {
		sum += hist[i]
		lut[i] = round8(float64(sum) * scale)
	}
	return lut
}

// CLAHE implements Contrast Limited Adaptive Histogram Equalisation,
// see Zuiderveld, "Contrast Limited Adaptive Histogram Equalization",
// Graphics Gems IV (1994).
//
// The image is divided into a grid of tilesX by tilesY tiles, each of
// which is equalised separately with its histogram clipped at
// clipLimit times the average bin height. Each output pixel is then
// interpolated from the lookup tables of the four nearest tiles. If
// the image dimensions aren't a multiple of the grid, tiles are
// filled out by reflecting the bottom and right edges.
func CLAHE(img *image.Gray, clipLimit float64, tilesX, tilesY int) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	new := newGray(b)
	if w == 0 || h == 0 {
		return new
	}

	if tilesX < 1 {
		tilesX = 1
	}
	if tilesY < 1 {
		tilesY = 1
	}

	pw, ph := w, h
	if w%tilesX != 0 || h%tilesY != 0 {
		pw = w + tilesX - w%tilesX
		ph = h + tilesY - h%tilesY
	}
	tw, th := pw/tilesX, ph/tilesY

	clip := 0
	if clipLimit > 0 {
		clip = int(clipLimit * float64(tw*th) / histSize)
		if clip < 1 {
			clip = 1
		}
	}

	luts := make([][histSize]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			luts[ty*tilesX+tx] = tileLUT(img, tx*tw, ty*th, tw, th, clip)
		}
	}

	invtw, invth := 1/float64(tw), 1/float64(th)

	for y := 0; y < h; y++ {
		tyf := float64(y)*invth - 0.5
		ty1 := int(math.Floor(tyf))
		ty2 := ty1 + 1
		ya := tyf - float64(ty1)
		if ty1 < 0 {
			ty1 = 0
		}
		if ty2 > tilesY-1 {
			ty2 = tilesY - 1
		}
		lut1 := luts[ty1*tilesX : (ty1+1)*tilesX]
		lut2 := luts[ty2*tilesX : (ty2+1)*tilesX]

		for x := 0; x < w; x++ {
			txf := float64(x)*invtw - 0.5
			tx1 := int(math.Floor(txf))
			tx2 := tx1 + 1
			xa := txf - float64(tx1)
			if tx1 < 0 {
				tx1 = 0
			}
			if tx2 > tilesX-1 {
				tx2 = tilesX - 1
			}

			v := img.GrayAt(b.Min.X+x, b.Min.Y+y).Y
			top := float64(lut1[tx1][v])*(1-xa) + float64(lut1[tx2][v])*xa
			bottom := float64(lut2[tx1][v])*(1-xa) + float64(lut2[tx2][v])*xa
			new.Pix[new.PixOffset(x, y)] = round8(top*(1-ya) + bottom*ya)
		}
	}

	return new
}
