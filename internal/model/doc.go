// Package model defines the domain types shared by the mgfmerge packages.
//
// A Spectrum is the unit of work: the MGF reader creates it, the merger
// overwrites its "scans" parameter, and the MGF writer serializes it.
// Apart from that single parameter the merger treats a Spectrum as opaque.
//
// The package also carries the CLI exit codes and the CLIError type that
// lets domain layers tell the CLI which exit code a failure maps to.
package model
