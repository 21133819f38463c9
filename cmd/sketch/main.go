// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// sketch converts every image in a directory into a pencil sketch.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"rescribe.xyz/sketch"
	"rescribe.xyz/sketch/internal/batch"
	"rescribe.xyz/sketch/pencil"
)

const usage = `Usage: sketch [-v] [-k ksize] [-o outdir] [-overwrite] [-anycase] [-hidden] [-pdf file] [-graph file] -i indir

Converts each image in indir to a pencil sketch, saving it in outdir with
_sketch added to its name. If no outdir is given, a directory inside indir
named after the current time is used.

Files whose names start with "." are skipped unless -hidden is given.
Boolean flags take a value only with "=", so use -overwrite or
-overwrite=1, not -overwrite 1.

`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run runs the command with the arguments args, returning the exit
// code. 2 means the arguments couldn't be parsed, and 1 that the
// batch couldn't be run or was stopped partway through.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var cfg batch.Config
	var verbose bool
	var pdfpath, graphpath string

	flags := flag.NewFlagSet("sketch", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&cfg.InputDir, "input-dir", "", "directory of images to sketch")
	flags.StringVar(&cfg.InputDir, "i", "", "short for -input-dir")
	flags.StringVar(&cfg.OutputDir, "output-dir", "", "directory to save sketches to")
	flags.StringVar(&cfg.OutputDir, "o", "", "short for -output-dir")
	flags.IntVar(&cfg.KSize, "k-size", batch.DefaultKSize, "gaussian kernel size, which must be a positive odd number")
	flags.IntVar(&cfg.KSize, "k", batch.DefaultKSize, "short for -k-size")
	flags.BoolVar(&cfg.Overwrite, "overwrite", false, "remove the output directory first if it exists")
	flags.BoolVar(&cfg.AnyCase, "anycase", false, "match file extensions regardless of case")
	flags.BoolVar(&cfg.Hidden, "hidden", false, "also sketch files whose names start with \".\"")
	flags.BoolVar(&verbose, "v", false, "verbose")
	flags.StringVar(&pdfpath, "pdf", "", "save a sketchbook pdf of all the sketches to this file")
	flags.StringVar(&graphpath, "graph", "", "save a graph of the time taken for each file to this file")

	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), usage)
		flags.PrintDefaults()
	}

	err := flags.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}
	if flags.NArg() > 0 {
		fmt.Fprintf(stderr, "Unexpected argument %s\n", flags.Arg(0))
		flags.Usage()
		return 2
	}

	var verboselog *log.Logger
	if verbose {
		verboselog = log.New(stdout, "", log.LstdFlags)
	} else {
		var n batch.NullWriter
		verboselog = log.New(n, "", 0)
	}

	d, err := batch.New(cfg, verboselog)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	verboselog.Println("Saving sketches to", d.OutputDir())
	s, err := d.Run(ctx)

	for _, r := range s.Results {
		if r.Status == batch.Failed {
			fmt.Fprintf(stderr, "Warning: could not sketch %s: %v\n", r.Name, r.Err)
		}
	}
	fmt.Fprintf(stdout, "Sketched %d files into %s (%d skipped, %d failed)\n", s.Processed, s.OutputDir, s.Skipped, s.Failed)

	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if pdfpath != "" {
		verboselog.Println("Saving sketchbook to", pdfpath)
		err = savePdf(s, pdfpath)
		if err != nil {
			fmt.Fprintf(stderr, "Error saving sketchbook %s: %v\n", pdfpath, err)
			return 1
		}
	}

	if graphpath != "" {
		verboselog.Println("Saving graph to", graphpath)
		err = saveGraph(s, graphpath)
		if errors.Is(err, sketch.ErrNotEnoughTimings) {
			fmt.Fprintf(stderr, "Warning: not saving graph %s: %v\n", graphpath, err)
		} else if err != nil {
			fmt.Fprintf(stderr, "Error saving graph %s: %v\n", graphpath, err)
			return 1
		}
	}

	return 0
}

// savePdf saves a pdf with a page for each sketch made in a batch
func savePdf(s batch.Summary, path string) error {
	var p sketch.Fpdf
	err := p.Setup()
	if err != nil {
		return err
	}

	for _, r := range s.Results {
		if r.Status != batch.Done {
			continue
		}
		f, err := os.Open(r.Output)
		if err != nil {
			return fmt.Errorf("Could not open file %s: %v", r.Output, err)
		}
		img, _, err := pencil.Decode(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", r.Output, err)
		}
		err = p.AddPage(img, r.Name)
		if err != nil {
			return err
		}
	}
	if p.Pages() == 0 {
		return errors.New("No sketches to add")
	}

	return p.Save(path)
}

// saveGraph saves a graph of the time each sketch in a batch took
func saveGraph(s batch.Summary, path string) error {
	var timings []sketch.Timing
	for _, r := range s.Results {
		if r.Status == batch.Done {
			timings = append(timings, sketch.Timing{Name: r.Name, Duration: r.Duration})
		}
	}
	if len(timings) < 2 {
		return sketch.ErrNotEnoughTimings
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("Could not create file %s: %v", path, err)
	}
	defer f.Close()
	err = sketch.Graph(timings, "Time to sketch each file", f)
	if err != nil {
		return err
	}
	return f.Close()
}
