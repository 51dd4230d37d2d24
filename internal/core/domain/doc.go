// Package domain contains the core business entities of the scan pipeline:
// OCR readings, problem segments, candidate problems, matches, metadata
// suggestions, and the settings that govern them.
//
// All entities are request-scoped values created at the start of one
// image-processing request and discarded at its end. Nothing here performs
// I/O, and the package imports nothing outside the standard library.
package domain
