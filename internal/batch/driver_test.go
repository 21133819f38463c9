// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"rescribe.xyz/sketch/pencil"
)

func dirnames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Could not read directory %s: %v", dir, err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func decodeFile(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Could not open %s: %v", path, err)
	}
	defer f.Close()
	img, _, err := pencil.Decode(f)
	if err != nil {
		t.Fatalf("Could not decode %s: %v", path, err)
	}
	return img
}

// TestRunDefaults runs a batch over a directory with one image and
// one text file, with everything else left to the defaults
func TestRunDefaults(t *testing.T) {
	var slog StrLog
	vlog := log.New(&slog, "", 0)

	in := t.TempDir()
	writeTestImage(t, filepath.Join(in, "a.png"), 256, 256)
	writeFile(t, filepath.Join(in, "notes.txt"), []byte("some notes"))

	d, err := New(Config{InputDir: in, KSize: DefaultKSize}, vlog)
	if err != nil {
		t.Fatalf("Could not create driver: %v", err)
	}
	s, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v\nLog: %s", err, slog.log)
	}

	if filepath.Dir(s.OutputDir) != in || !strings.HasPrefix(filepath.Base(s.OutputDir), "sketch_") {
		t.Errorf("Unexpected default output directory %s", s.OutputDir)
	}
	if s.Processed != 1 || s.Skipped != 1 || s.Failed != 0 {
		t.Errorf("Expected 1 processed and 1 skipped, got %d processed, %d skipped, %d failed", s.Processed, s.Skipped, s.Failed)
	}

	names := dirnames(t, s.OutputDir)
	if !equal(names, []string{"a_sketch.png"}) {
		t.Fatalf("Output directory contains %v, expected only a_sketch.png", names)
	}

	img := decodeFile(t, filepath.Join(s.OutputDir, "a_sketch.png"))
	if _, ok := img.(*image.Gray); !ok {
		t.Errorf("Sketch is a %T, expected a single channel image", img)
	}
	if !img.Bounds().Eq(image.Rect(0, 0, 256, 256)) {
		t.Errorf("Sketch has bounds %v, expected 256x256", img.Bounds())
	}

	if !strings.Contains(slog.log, "Sketching") {
		t.Errorf("Nothing was logged about the sketch: %s", slog.log)
	}
}

func TestRunOverwrite(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	writeTestImage(t, filepath.Join(in, "a.png"), 20, 10)

	d, err := New(Config{InputDir: in, OutputDir: out, KSize: 3}, nil)
	if err != nil {
		t.Fatalf("Could not create driver: %v", err)
	}
	_, err = d.Run(context.Background())
	if err != nil {
		t.Fatalf("First run failed: %v", err)
	}

	old := filepath.Join(out, "old.txt")
	writeFile(t, old, []byte("from before"))

	_, err = d.Run(context.Background())
	if !errors.Is(err, ErrOutputExists) {
		t.Fatalf("Expected ErrOutputExists on second run, got %v", err)
	}
	if names := dirnames(t, out); !equal(names, []string{"a_sketch.png", "old.txt"}) {
		t.Fatalf("Output directory was changed by a failed run, it contains %v", names)
	}

	d, err = New(Config{InputDir: in, OutputDir: out, KSize: 3, Overwrite: true}, nil)
	if err != nil {
		t.Fatalf("Could not create driver: %v", err)
	}
	s, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Overwrite run failed: %v", err)
	}
	if s.Processed != 1 {
		t.Errorf("Expected 1 processed, got %d", s.Processed)
	}
	if names := dirnames(t, out); !equal(names, []string{"a_sketch.png"}) {
		t.Errorf("Overwritten output directory contains %v", names)
	}
}

// TestRunMixed checks that bad and unsupported files are skipped
// or recorded as failures without stopping the batch
func TestRunMixed(t *testing.T) {
	in := t.TempDir()
	writeTestImage(t, filepath.Join(in, "good.png"), 30, 20)
	writeTestImage(t, filepath.Join(in, "d.bmp"), 12, 9)
	writeTestImage(t, filepath.Join(in, "e.PNG"), 7, 7)
	writeTestImage(t, filepath.Join(in, ".hidden.png"), 7, 7)
	writeFile(t, filepath.Join(in, "bad.png"), []byte("\x89PNG\r\n\x1a\ncorrupted"))
	writeFile(t, filepath.Join(in, "pic.webp"), []byte("RIFF....WEBP"))
	writeFile(t, filepath.Join(in, "scan.jp2"), []byte("\x00\x00\x00\x0cjP  \r\n\x87\n"))
	writeFile(t, filepath.Join(in, "f.ppm"), []byte("P6\n2 2\n255\n"+
		"\xff\x00\x00\x00\xff\x00"+
		"\x00\x00\xff\xff\xff\xff"))
	writeFile(t, filepath.Join(in, "notes.txt"), []byte("notes"))
	err := os.Mkdir(filepath.Join(in, "sub.png"), 0755)
	if err != nil {
		t.Fatalf("Could not create directory: %v", err)
	}

	cases := []struct {
		name    string
		anycase bool
		hidden  bool
		done    []string
		skipped int
		failed  int
	}{
		{"exact", false, false, []string{"d_sketch.bmp", "f_sketch.ppm", "good_sketch.png"}, 3, 3},
		{"anycase", true, false, []string{"d_sketch.bmp", "e_sketch.PNG", "f_sketch.ppm", "good_sketch.png"}, 2, 3},
		{"hidden", false, true, []string{".hidden_sketch.png", "d_sketch.bmp", "f_sketch.ppm", "good_sketch.png"}, 2, 3},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out")
			d, err := New(Config{InputDir: in, OutputDir: out, KSize: 5, AnyCase: c.anycase, Hidden: c.hidden}, nil)
			if err != nil {
				t.Fatalf("Could not create driver: %v", err)
			}
			s, err := d.Run(context.Background())
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}

			if s.Processed != len(c.done) || s.Skipped != c.skipped || s.Failed != c.failed {
				t.Errorf("Got %d processed, %d skipped, %d failed, expected %d, %d, %d",
					s.Processed, s.Skipped, s.Failed, len(c.done), c.skipped, c.failed)
			}
			if names := dirnames(t, out); !equal(names, c.done) {
				t.Errorf("Output directory contains %v, expected %v", names, c.done)
			}

			for _, r := range s.Results {
				switch r.Name {
				case "bad.png":
					var derr *pencil.DecodeError
					if r.Status != Failed || !errors.As(r.Err, &derr) {
						t.Errorf("Corrupt file gave %v, %v, expected a DecodeError", r.Status, r.Err)
					}
				case "pic.webp":
					var derr *pencil.DecodeError
					if r.Status != Failed || !errors.As(r.Err, &derr) {
						t.Errorf("Corrupt WebP file gave %v, %v, expected a DecodeError", r.Status, r.Err)
					}
				case "scan.jp2":
					if r.Status != Failed || !errors.Is(r.Err, ErrNoEncoder) {
						t.Errorf("JPEG 2000 file gave %v, %v, expected ErrNoEncoder", r.Status, r.Err)
					}
				case "f.ppm":
					if r.Status != Done {
						t.Errorf("PPM file gave %v, %v, expected it to be sketched", r.Status, r.Err)
					}
				case "notes.txt":
					if r.Status != Skipped {
						t.Errorf("Text file was %v", r.Status)
					}
				case "sub.png":
					t.Errorf("Directory was treated as a file")
				}
			}
		})
	}
}

func TestRunBadKSize(t *testing.T) {
	in := t.TempDir()
	writeTestImage(t, filepath.Join(in, "a.png"), 4, 4)

	for _, k := range []int{0, -1, -23, 4, 24} {
		t.Run(fmt.Sprintf("%d", k), func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out")
			for _, cfg := range []Config{
				{InputDir: in, KSize: k},
				{InputDir: in, OutputDir: out, KSize: k},
			} {
				_, err := New(cfg, nil)
				if !errors.Is(err, pencil.ErrInvalidParameter) {
					t.Errorf("Expected ErrInvalidParameter, got %v", err)
				}
			}
			if names := dirnames(t, in); !equal(names, []string{"a.png"}) {
				t.Errorf("Input directory was changed: %v", names)
			}
			if _, err := os.Stat(out); err == nil {
				t.Errorf("Output directory %s was created", out)
			}
		})
	}
}

// TestRunSameSecond checks that runs using the default output
// directory don't collide, however quickly they follow each other
func TestRunSameSecond(t *testing.T) {
	in := t.TempDir()
	writeTestImage(t, filepath.Join(in, "a.png"), 4, 4)

	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		d, err := New(Config{InputDir: in, KSize: 3}, nil)
		if err != nil {
			t.Fatalf("Could not create driver: %v", err)
		}
		s, err := d.Run(context.Background())
		if err != nil {
			t.Fatalf("Run %d failed: %v", i, err)
		}
		if seen[s.OutputDir] {
			t.Errorf("Run %d reused output directory %s", i, s.OutputDir)
		}
		seen[s.OutputDir] = true
		if s.Processed != 1 {
			t.Errorf("Run %d processed %d files, expected 1", i, s.Processed)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	in := t.TempDir()
	writeTestImage(t, filepath.Join(in, "a.png"), 4, 4)

	d, err := New(Config{InputDir: in, OutputDir: filepath.Join(t.TempDir(), "out"), KSize: 3}, nil)
	if err != nil {
		t.Fatalf("Could not create driver: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, err := d.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(s.Results) != 0 {
		t.Errorf("Expected no results from a cancelled run, got %d", len(s.Results))
	}
}

func TestStatusString(t *testing.T) {
	for s, want := range map[Status]string{Done: "done", Skipped: "skipped", Failed: "failed", Status(9): "Status(9)"} {
		if s.String() != want {
			t.Errorf("Status %d is %q, expected %q", int(s), s.String(), want)
		}
	}
}
