// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// batch is a package used by the sketch command, which converts
// every image in a directory to a pencil sketch, one at a time.
// Note that it is considered an "internal" package, not intended
// for external use, and no guarantee is made of the stability of
// any interfaces provided.
package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rescribe.xyz/sketch/pencil"
)

// DefaultKSize is the Gaussian kernel size used by the sketch command
// if none is given
const DefaultKSize = 23

// Suffix is added to the name of each file, before the extension
const Suffix = "_sketch"

// SupportedExts lists the extensions of files which will be
// processed. Any other file is skipped.
var SupportedExts = []string{
	".bmp", ".dib",
	".jpg", ".jpeg", ".jpe", ".jp2",
	".png", ".webp",
	".pbm", ".pgm", ".ppm", ".pxm", ".pfm",
	".sr", ".ras",
	".tiff", ".tif",
	".exr", ".hdr", ".pic",
}

var (
	ErrMissingInput        = errors.New("no input directory given")
	ErrOutputExists        = errors.New("output directory already exists")
	ErrOutputContainsInput = errors.New("output directory contains the input directory")
	ErrNoEncoder           = errors.New("no encoder for format")
)

// EncodeError is returned when a sketch can't be saved, which stops
// the whole batch.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("Error saving %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// null writer to enable non-verbose logging to be discarded
type NullWriter bool

func (w NullWriter) Write(p []byte) (n int, err error) {
	return len(p), nil
}

// Config holds the settings for a batch. OutputDir may be left
// empty to use the default; KSize has no default, and 0 is rejected
// like any other non-positive size.
type Config struct {
	InputDir  string
	OutputDir string
	KSize     int
	// Overwrite removes any existing output directory first
	Overwrite bool
	// AnyCase matches extensions regardless of case, so that
	// photo.JPG is processed as well as photo.jpg
	AnyCase bool
	// Hidden processes files whose names start with "."
	Hidden bool
}

// Validate checks the Config without touching the filesystem,
// other than to check that the input directory exists.
func (c Config) Validate() error {
	if c.InputDir == "" {
		return ErrMissingInput
	}

	err := pencil.ValidateKSize(c.KSize)
	if err != nil {
		return err
	}

	info, err := os.Stat(c.InputDir)
	if err != nil {
		return fmt.Errorf("Error reading input directory %s: %w", c.InputDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("Input %s is not a directory", c.InputDir)
	}

	if c.OutputDir != "" {
		inside, err := within(c.InputDir, c.OutputDir)
		if err != nil {
			return err
		}
		if inside {
			return fmt.Errorf("%s: %w %s", c.OutputDir, ErrOutputContainsInput, c.InputDir)
		}
	}

	return nil
}

// within reports whether path is dir or is somewhere inside it
func within(path, dir string) (bool, error) {
	abspath, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	absdir, err := filepath.Abs(dir)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(absdir, abspath)
	if err != nil {
		return false, nil
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, nil
	}
	return true, nil
}

// DefaultOutputDir returns the directory used when no output
// directory is given, which is named after the time t inside the
// input directory.
func DefaultOutputDir(inputDir string, t time.Time) string {
	return filepath.Join(inputDir, "sketch_"+t.Format("20060102-150405"))
}

// UnusedDir returns dir if nothing exists there yet, otherwise dir
// with the first free "-2", "-3", ... suffix added, so that runs
// started within the same second get their own directories.
func UnusedDir(dir string) string {
	try := dir
	for i := 2; ; i++ {
		_, err := os.Lstat(try)
		if err != nil {
			return try
		}
		try = fmt.Sprintf("%s-%d", dir, i)
	}
}

// OutputName returns the name of the sketch of the file name,
// which is the name with Suffix added before the extension.
func OutputName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + Suffix + ext
}
