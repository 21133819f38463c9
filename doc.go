// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

/*
The sketch package contains tools and functions to turn photographs into
pencil sketches, a whole directory at a time. The image processing itself
is in the rescribe.xyz/sketch/pencil package, which can be used on its own;
this package provides reports on a finished batch.

Introduction

A pencil sketch is made from a colour photograph in a few steps. First the
contrast of the photo is improved, using adaptive histogram equalisation
(CLAHE) on the lightness channel only, so colours are kept. The enhanced
image is converted to greyscale, and a blurred negative of it is made. The
greyscale image is then divided by the blurred negative, which leaves flat
areas white and picks out the edges as dark pencil lines. How thick the
lines are depends on the size of the blur, which is set with the kernel
size; it must be a positive odd number, and defaults to 23.

Presuming you have the go tools installed, you can install the sketch
command with this:
  go install rescribe.xyz/sketch/cmd/sketch@latest

Using the command

The sketch command takes a directory of images, and saves a sketch of each
one with "_sketch" added to the name, so photo.jpg becomes photo_sketch.jpg.
The sketches are saved in the same format as the original. By default they
go into a new directory inside the input directory named after the time,
like sketch_20260102-150405, but a different directory can be given with
-o. For example:
  sketch -v -i holiday -o holiday-sketches

Files which aren't images, or which can't be read, are skipped, and a list
of them is printed at the end. Files whose names start with "." are skipped
too, unless the -hidden flag is given. PNG, JPEG, BMP, TIFF, WebP and the
netpbm formats can all be read and written. An existing output directory is never
written to unless the -overwrite flag is given, in which case everything
in it is removed first.

Reports

Two optional reports can be made once a batch is done. The -pdf flag saves
a "sketchbook" PDF with one page per sketch, each captioned with the name
of the original file. The -graph flag saves a PNG graph of how long each
file took to process, which is useful to find out which images are slowing
a batch down.
*/
package sketch
