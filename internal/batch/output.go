// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package batch

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/spakin/netpbm"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// JPEGQuality is the quality used when saving JPEG sketches
const JPEGQuality = 95

type encoder func(io.Writer, image.Image) error

var encoders = map[string]encoder{
	".png":  png.Encode,
	".jpg":  encodeJPEG,
	".jpeg": encodeJPEG,
	".jpe":  encodeJPEG,
	".bmp":  bmp.Encode,
	".dib":  bmp.Encode,
	".tif":  encodeTIFF,
	".tiff": encodeTIFF,
	".webp": encodeWebP,
	".pbm":  encodeNetpbm(netpbm.PBM),
	".pgm":  encodeNetpbm(netpbm.PGM),
	".ppm":  encodeNetpbm(netpbm.PPM),
	".pxm":  encodeNetpbm(netpbm.PNM),
}

func encodeJPEG(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
}

func encodeTIFF(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
}

// encodeWebP saves losslessly, as sketches are mostly flat white
// and compress well that way
func encodeWebP(w io.Writer, img image.Image) error {
	return nativewebp.Encode(w, img, nil)
}

// encodeNetpbm returns an encoder for the netpbm format f. PNM picks
// the format from the image, which is PGM for a sketch.
func encodeNetpbm(f netpbm.Format) encoder {
	return func(w io.Writer, img image.Image) error {
		return netpbm.Encode(w, img, &netpbm.EncodeOptions{Format: f, MaxValue: 255})
	}
}

// HasEncoder reports whether images can be saved with the file
// extension ext.
func HasEncoder(ext string) bool {
	_, ok := encoders[strings.ToLower(ext)]
	return ok
}

// Encode writes img to w in the format given by the file extension
// ext. Formats with no encoder, like JPEG 2000 and OpenEXR, give an
// error wrapping ErrNoEncoder.
func Encode(w io.Writer, img image.Image, ext string) error {
	enc, ok := encoders[strings.ToLower(ext)]
	if !ok {
		return fmt.Errorf("%w %s", ErrNoEncoder, ext)
	}
	return enc(w, img)
}

// writeImage saves img to path, in the format given by the
// extension of path. The image is written to a temporary file in
// the same directory which is only renamed to path once it has been
// fully written, so a failure never leaves a partial file behind.
func writeImage(path string, img image.Image) error {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	err = Encode(f, img, filepath.Ext(name))
	if err == nil {
		err = f.Chmod(0644)
	}
	if err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}

	err = f.Close()
	if err != nil {
		os.Remove(tmp)
		return err
	}

	err = os.Rename(tmp, path)
	if err != nil {
		os.Remove(tmp)
	}
	return err
}

// PrepareOutputDir creates the directory dir. If it already exists
// ErrOutputExists is returned, unless overwrite is set, in which
// case it is removed along with everything in it and created anew.
func PrepareOutputDir(dir string, overwrite bool) error {
	_, err := os.Stat(dir)
	switch {
	case err == nil && !overwrite:
		return fmt.Errorf("%s: %w", dir, ErrOutputExists)
	case err == nil:
		err = os.RemoveAll(dir)
		if err != nil {
			return fmt.Errorf("Error removing old output directory %s: %v", dir, err)
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("Error checking output directory %s: %v", dir, err)
	}

	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return fmt.Errorf("Error creating output directory %s: %v", dir, err)
	}
	return nil
}
