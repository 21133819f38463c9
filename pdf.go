// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package sketch

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/nickjwhite/gofpdf"
)

const pageWidth = 5 // pageWidth in inches

// captionHeight is the space left below each image for its caption, in pt
const captionHeight = 24

// pxToPt converts a pixel value into a pt value (72 pts per inch)
// This uses pageWidth to determine the appropriate value
func pxToPt(i int) float64 {
	return float64(i) / pageWidth
}

// Fpdf is a sketchbook PDF, with one sketch on each page
type Fpdf struct {
	fpdf  *gofpdf.Fpdf
	pages int
}

// Setup creates a new PDF with appropriate settings and fonts
func (p *Fpdf) Setup() error {
	p.fpdf = gofpdf.New("P", "pt", "A4", "")
	p.fpdf.SetFont("Helvetica", "", 10)
	p.fpdf.SetAutoPageBreak(false, float64(0))
	p.pages = 0
	return p.fpdf.Error()
}

// AddPage adds a page to the pdf sized to fit img, with caption
// written underneath it
func (p *Fpdf) AddPage(img image.Image, caption string) error {
	if p.fpdf == nil {
		return errors.New("PDF has not been set up")
	}
	b := img.Bounds()
	if b.Empty() {
		return errors.New("Can't add an empty image to a PDF")
	}

	var buf bytes.Buffer
	err := png.Encode(&buf, img)
	if err != nil {
		return fmt.Errorf("Could not encode image for PDF: %v", err)
	}

	w, h := pxToPt(b.Dx()), pxToPt(b.Dy())
	p.fpdf.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h + captionHeight})

	// each image needs its own name, otherwise the first one
	// registered is reused for every page
	p.pages++
	name := fmt.Sprintf("sketch%d", p.pages)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.fpdf.RegisterImageOptionsReader(name, opts, &buf)
	p.fpdf.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")

	p.fpdf.SetXY(0, h)
	p.fpdf.CellFormat(w, captionHeight, p.fpdf.UnicodeTranslatorFromDescriptor("")(caption), "", 0, "C", false, 0, "")

	return p.fpdf.Error()
}

// Pages returns the number of pages added so far
func (p *Fpdf) Pages() int {
	return p.pages
}

// Save saves the PDF to the file at path
func (p *Fpdf) Save(path string) error {
	if p.fpdf == nil {
		return errors.New("PDF has not been set up")
	}
	return p.fpdf.OutputFileAndClose(path)
}
