// Package merge combines a directory of MGF files into a single file.
//
// Input files are the direct entries of a directory whose name ends in
// ".mgf". They are processed in natural sort order ("a2.mgf" before
// "a10.mgf"), and every spectrum gets a fresh "scans" parameter counting
// up from 1 across all files. The merged file is written into the same
// directory as merged.mgf.
//
// Two write strategies are available:
//   - accumulate (default): every spectrum is held in memory and the output
//     file is opened after the last input has been read
//   - stream: each spectrum is written to a temporary file as soon as it is
//     renumbered
//
// In both modes the destination is replaced by a rename at the very end,
// so a failure never leaves a truncated merged file.
//
// By default the output name itself matches the input filter, so a second
// run in the same directory reads the previous merged.mgf back in. Set
// Options.ExcludeOutput to skip it.
package merge
