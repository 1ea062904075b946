package render

import (
	"bufio"
	"fmt"
	"io"

	"github.com/arloliu/heatgrid/snapshot"
)

// ZeroField replaces the numeric field of a cell whose byte is 0.
const ZeroField = "...."

// WriteText writes each frame as a header line "Iteration <n>:" followed by
// its rows. Every cell is a right-aligned 4-character field separated by a
// space; cells with byte 0 print as ZeroField. Frames are separated by a
// blank line.
//
// Example output for a 2x3 frame:
//
//	Iteration 0:
//	 255 .... ....
//	.... ....    1
func WriteText(w io.Writer, frames []snapshot.Frame) error {
	bw := bufio.NewWriter(w)

	for i, f := range frames {
		if i > 0 {
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		if err := writeTextFrame(bw, f); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func writeTextFrame(w *bufio.Writer, f snapshot.Frame) error {
	if _, err := fmt.Fprintf(w, "Iteration %d:\n", f.Iteration); err != nil {
		return err
	}

	for r := range f.Rows {
		for c := range f.Cols {
			if c > 0 {
				if err := w.WriteByte(' '); err != nil {
					return err
				}
			}

			v := f.At(r, c)
			if v == 0 {
				if _, err := w.WriteString(ZeroField); err != nil {
					return err
				}
			} else if _, err := fmt.Fprintf(w, "%4d", v); err != nil {
				return err
			}
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}

	return nil
}
