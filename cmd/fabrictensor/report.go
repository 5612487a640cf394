package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"fabrictensor/pkg/fabric"
	"fabrictensor/pkg/sampling"
)

// report is the YAML document written by the tool.
type report struct {
	Mode      string  `yaml:"mode"`
	Source    string  `yaml:"source"`
	Shape     [3]int  `yaml:"shape,flow"`
	ROISize   int     `yaml:"roiSize"`
	Spacing   int     `yaml:"spacing,omitempty"`
	Threshold float64 `yaml:"threshold"`
	Method    string  `yaml:"method"`
	Zoom      float64 `yaml:"zoomFactor"`

	// Lattice is the grid shape in (depth, rows, cols) for grid scans
	Lattice [3]int `yaml:"lattice,flow,omitempty"`

	Summary fabric.Summary `yaml:"summary"`
	Samples []sampleReport `yaml:"samples"`
}

type sampleReport struct {
	Center      [3]float64    `yaml:"center,flow"`
	ROI         string        `yaml:"roi"`
	DA          float64       `yaml:"da"`
	Radii       [3]float64    `yaml:"radii,flow"`
	Eigenvalues [3]float64    `yaml:"eigenvalues,flow"`
	Components  [6]float64    `yaml:"components,flow"`
	Axes        [3][3]float64 `yaml:"axes,flow"`
	Orientation [4]float64    `yaml:"orientation,flow"`
	Error       string        `yaml:"error,omitempty"`
}

func newSampleReport(res sampling.Result) sampleReport {
	q := res.Sample.Orientation()
	sr := sampleReport{
		Center:      centerTriple(res.Center),
		ROI:         res.ROI.String(),
		DA:          res.Sample.DA,
		Radii:       res.Sample.Radii,
		Eigenvalues: res.Sample.Eigenvalues,
		Components:  res.Sample.Components,
		Axes:        res.Sample.Axes,
		Orientation: [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag},
	}
	if res.Err != nil {
		sr.Error = res.Err.Error()
	}
	return sr
}

// centerTriple flattens a centre for the report.
func centerTriple(c r3.Vec) [3]float64 {
	return [3]float64{c.X, c.Y, c.Z}
}

// parseTriple parses "a,b,c" into three floats.
func parseTriple(s string) ([3]float64, error) {
	var out [3]float64
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return out, fmt.Errorf("expected three comma separated values, got %q", s)
	}
	for i, p := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return out, err
		}
		out[i] = x
	}
	return out, nil
}

// parseShape parses "depth,rows,cols".
func parseShape(s string) ([3]int, error) {
	var shape [3]int
	vals, err := parseTriple(s)
	if err != nil {
		return shape, err
	}
	for i, x := range vals {
		if x <= 0 || x != float64(int(x)) {
			return shape, fmt.Errorf("extent %v must be a positive integer", x)
		}
		shape[i] = int(x)
	}
	return shape, nil
}

// loadPoints reads one "x y z" centre per line. Blank lines and lines
// starting with # are skipped; commas are accepted as separators.
func loadPoints(path string) ([]r3.Vec, error) {
	if path == "" {
		return nil, fmt.Errorf("no points file given")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var points []r3.Vec
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(strings.ReplaceAll(text, ",", " "))
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: expected x y z, got %q", line, text)
		}
		var p [3]float64
		for i, field := range fields {
			if p[i], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		points = append(points, r3.Vec{X: p[0], Y: p[1], Z: p[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return points, nil
}
