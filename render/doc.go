// Package render turns recorded snapshot frames into terminal output.
//
// WriteText prints every frame as a block of 4-character numeric fields.
// WriteGlyphs prints one character per cell. Player replays frames in order
// with a minimum delay between them, for live display.
package render
