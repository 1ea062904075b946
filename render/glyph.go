package render

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/arloliu/heatgrid/snapshot"
	"github.com/arloliu/heatgrid/types"
)

// Glyph maps a quantized cell to a single character by its share of the
// maximum temperature: '#' above 75%, '+' above 50%, '-' above 25% and '.'
// otherwise.
//
// The share is taken from the quantized byte, so a temperature within half a
// quantization step of a threshold may land on either side of it. Use
// GlyphOf when the raw temperature is available.
func Glyph(v byte) byte {
	return glyphForRatio(float64(v) / 255)
}

// GlyphOf maps a raw temperature to a glyph using its exact ratio to maxTemp.
func GlyphOf(temp, maxTemp float64) byte {
	if maxTemp <= 0 {
		return '.'
	}

	return glyphForRatio(temp / maxTemp)
}

func glyphForRatio(ratio float64) byte {
	switch {
	case ratio > 0.75:
		return '#'
	case ratio > 0.5:
		return '+'
	case ratio > 0.25:
		return '-'
	default:
		return '.'
	}
}

// WriteGridGlyphs writes grid as rows of glyphs computed from raw temperatures.
func WriteGridGlyphs(w io.Writer, grid types.Grid, maxTemp float64) error {
	bw := bufio.NewWriter(w)

	line := make([]byte, grid.Cols+1)
	line[grid.Cols] = '\n'
	for r := range grid.Rows {
		for c := range grid.Cols {
			line[c] = GlyphOf(grid.At(r, c), maxTemp)
		}
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// WriteGlyphs writes one frame as rows of glyphs.
func WriteGlyphs(w io.Writer, f snapshot.Frame) error {
	bw := bufio.NewWriter(w)

	line := make([]byte, f.Cols+1)
	line[f.Cols] = '\n'
	for r := range f.Rows {
		for c := range f.Cols {
			line[c] = Glyph(f.At(r, c))
		}
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\033[H\033[2J"

// Terminal returns a FrameFunc that redraws each frame in place on w.
func Terminal(w io.Writer) FrameFunc {
	return func(_ /* ctx */ context.Context, f snapshot.Frame) error {
		if _, err := io.WriteString(w, clearScreen); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Iteration %d\n", f.Iteration); err != nil {
			return err
		}

		return WriteGlyphs(w, f)
	}
}
