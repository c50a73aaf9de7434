// Package textutil provides small text helpers: token fingerprints with cosine
// similarity for suggesting near-miss title matches, and filename sanitizing
// for generated output files.
//
// Fingerprints are term-frequency vectors over lowercase letter and digit
// runs, so titles in any script can be compared.
package textutil
