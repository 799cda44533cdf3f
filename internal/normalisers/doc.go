// Package normalisers implements the content extractor: one Normaliser per
// document format plus the Registry that resolves a document's format and
// dispatches to the matching normaliser.
//
// Normalisers are registered with the Registry at startup via RegisterDefaults.
package normalisers
