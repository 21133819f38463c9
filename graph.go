// Copyright 2026 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package sketch

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const maxticks = 40
const yticknum = 20

var ErrNotEnoughTimings = errors.New("Not enough timings to graph")

// Timing is how long one file took to sketch
type Timing struct {
	Name     string
	Duration time.Duration
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// createLine creates a horizontal line with a particular y value for
// a graph
func createLine(xvalues []float64, y float64, c drawing.Color) chart.ContinuousSeries {
	var yvalues []float64
	for range xvalues {
		yvalues = append(yvalues, y)
	}
	return chart.ContinuousSeries{
		XValues: xvalues,
		YValues: yvalues,
		Style: chart.Style{
			StrokeColor:     c,
			StrokeDashArray: []float64{5.0, 5.0},
		},
	}
}

// Graph creates a graph of the time taken to sketch each file, in
// the order given, with a line marking the mean
func Graph(timings []Timing, title string, w io.Writer) error {
	if len(timings) < 2 {
		return ErrNotEnoughTimings
	}

	var xvalues, yvalues []float64
	var ticks []chart.Tick
	var yticks []chart.Tick
	var total, slowest float64
	tickevery := len(timings) / maxticks
	if tickevery < 1 {
		tickevery = 1
	}
	for i, t := range timings {
		x := float64(i + 1)
		y := ms(t.Duration)
		xvalues = append(xvalues, x)
		yvalues = append(yvalues, y)
		total += y
		if y > slowest {
			slowest = y
		}
		if i%tickevery == 0 {
			ticks = append(ticks, chart.Tick{Value: x, Label: fmt.Sprintf("%.0f", x)})
		}
	}
	// Make last tick the final file
	last := float64(len(timings))
	ticks[len(ticks)-1] = chart.Tick{Value: last, Label: fmt.Sprintf("%.0f", last)}

	mean := total / float64(len(timings))

	// a fixed range stops identical timings giving a zero y range
	ymax := slowest * 1.1
	if ymax < 1 {
		ymax = 1
	}
	for i := 0; i <= yticknum; i++ {
		n := ymax * float64(i) / yticknum
		yticks = append(yticks, chart.Tick{Value: n, Label: fmt.Sprintf("%.1f", n)})
	}

	mainSeries := chart.ContinuousSeries{
		Style: chart.Style{
			StrokeColor: chart.ColorBlue,
			FillColor:   chart.ColorAlternateBlue,
		},
		XValues: xvalues,
		YValues: yvalues,
	}
	meanSeries := createLine(xvalues, mean, chart.ColorOrange)

	// Annotate the slowest files, along with the mean
	var annotations []chart.Value2
	for i, t := range timings {
		if yvalues[i] > mean*2 {
			annotations = append(annotations, chart.Value2{Label: t.Name, XValue: xvalues[i], YValue: yvalues[i]})
		}
	}
	annotations = append(annotations, chart.Value2{Label: fmt.Sprintf("mean %.0fms", mean), XValue: last, YValue: mean})

	graph := chart.Chart{
		Title:  title,
		Width:  1920,
		Height: 1080,
		XAxis: chart.XAxis{
			Name: "File",
			Range: &chart.ContinuousRange{
				Min: 1.0,
				Max: last,
			},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name: "Time (ms)",
			Range: &chart.ContinuousRange{
				Min: 0.0,
				Max: ymax,
			},
			Ticks: yticks,
		},
		Series: []chart.Series{
			mainSeries,
			meanSeries,
			chart.AnnotationSeries{
				Annotations: annotations,
			},
		},
	}
	return graph.Render(chart.PNG, w)
}
