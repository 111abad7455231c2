// Package mgf reads and writes Mascot Generic Format (MGF) files.
//
// MGF is a line-oriented text format for tandem mass-spectrometry spectra.
// Each spectrum is a block delimited by BEGIN IONS / END IONS containing
// KEY=VALUE parameter lines followed by peak lines ("m/z intensity [charge]").
// Parameters that appear before the first block are global header
// parameters and apply to every spectrum in the file. Any other text
// outside a block is skipped.
//
// The Reader is strictly sequential: it never seeks and never builds an
// index, so a file is consumed in a single forward pass and only the
// spectrum currently being parsed is held in memory.
//
// The Writer emits TITLE, PEPMASS, RTINSECONDS and CHARGE first, then every
// other parameter in insertion order, with keys in upper case.
package mgf
