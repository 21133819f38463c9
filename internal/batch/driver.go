// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package batch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rescribe.xyz/sketch/pencil"
)

// Status is the outcome of processing one file
type Status int

const (
	Done Status = iota
	Skipped
	Failed
)

func (s Status) String() string {
	switch s {
	case Done:
		return "done"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result records what happened to one file in the input directory
type Result struct {
	Name     string
	Input    string
	Output   string
	Status   Status
	Err      error
	Duration time.Duration
}

// Summary collects the Results of a batch
type Summary struct {
	OutputDir string
	Results   []Result
	Processed int
	Skipped   int
	Failed    int
}

func (s *Summary) add(r Result) {
	s.Results = append(s.Results, r)
	switch r.Status {
	case Done:
		s.Processed++
	case Skipped:
		s.Skipped++
	case Failed:
		s.Failed++
	}
}

// Driver converts the images in a directory to sketches. The
// supported extensions and output naming are fixed when it is
// created.
type Driver struct {
	cfg    Config
	exts   map[string]bool
	logger *log.Logger
}

// New creates a Driver from a Config, filling in the output
// directory if it isn't set. KSize must always be set, usually to
// DefaultKSize. The Config is validated, but nothing is written
// until Run is called. If logger is nil, log messages are discarded.
func New(cfg Config, logger *log.Logger) (*Driver, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = UnusedDir(DefaultOutputDir(cfg.InputDir, time.Now()))
	}

	if logger == nil {
		var n NullWriter
		logger = log.New(n, "", 0)
	}

	exts := make(map[string]bool)
	for _, e := range SupportedExts {
		if cfg.AnyCase {
			e = strings.ToLower(e)
		}
		exts[e] = true
	}

	return &Driver{cfg: cfg, exts: exts, logger: logger}, nil
}

// OutputDir returns the directory sketches are saved to
func (d *Driver) OutputDir() string {
	return d.cfg.OutputDir
}

// Supported reports whether a file name has one of the supported
// extensions. Files starting with "." are only supported if
// Config.Hidden is set, to prevent automatically generated files
// like ._photo.jpg getting in the way.
func (d *Driver) Supported(name string) bool {
	if strings.HasPrefix(name, ".") && !d.cfg.Hidden {
		return false
	}
	ext := filepath.Ext(name)
	if d.cfg.AnyCase {
		ext = strings.ToLower(ext)
	}
	return d.exts[ext]
}

// Run prepares the output directory and processes every regular
// file in the input directory in turn. Files which can't be decoded,
// or which are in a format that can't be written, are recorded as
// Failed and the batch carries on. An error saving a sketch stops
// the batch, returning an *EncodeError along with the Summary of
// what was done so far.
func (d *Driver) Run(ctx context.Context) (Summary, error) {
	s := Summary{OutputDir: d.cfg.OutputDir}

	entries, err := os.ReadDir(d.cfg.InputDir)
	if err != nil {
		return s, fmt.Errorf("Failed to read directory %s: %v", d.cfg.InputDir, err)
	}

	err = PrepareOutputDir(d.cfg.OutputDir, d.cfg.Overwrite)
	if err != nil {
		return s, err
	}

	for _, e := range entries {
		select {
		case <-ctx.Done():
			return s, ctx.Err()
		default:
		}

		path := filepath.Join(d.cfg.InputDir, e.Name())
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		r := d.process(e.Name())
		s.add(r)

		var enc *EncodeError
		if errors.As(r.Err, &enc) {
			return s, r.Err
		}
	}

	return s, nil
}

// process converts a single file from the input directory
func (d *Driver) process(name string) Result {
	start := time.Now()
	r := Result{Name: name, Input: filepath.Join(d.cfg.InputDir, name)}

	if !d.Supported(name) {
		d.logger.Println("Skipping unsupported file", name)
		r.Status = Skipped
		return r
	}

	r.Output = filepath.Join(d.cfg.OutputDir, OutputName(name))
	if !HasEncoder(filepath.Ext(name)) {
		r.Status = Failed
		r.Err = fmt.Errorf("%s: %w %s", name, ErrNoEncoder, filepath.Ext(name))
		return r
	}

	d.logger.Println("Sketching", r.Input)
	f, err := os.Open(r.Input)
	if err != nil {
		r.Status = Failed
		r.Err = fmt.Errorf("Could not open file %s: %v", r.Input, err)
		return r
	}
	defer f.Close()

	img, _, err := pencil.SketchReader(f, d.cfg.KSize)
	if err != nil {
		r.Status = Failed
		r.Err = fmt.Errorf("%s: %w", r.Input, err)
		return r
	}

	d.logger.Println("Saving", r.Output)
	err = writeImage(r.Output, img)
	if err != nil {
		r.Status = Failed
		r.Err = &EncodeError{Path: r.Output, Err: err}
		return r
	}

	r.Status = Done
	r.Duration = time.Since(start)
	return r
}
