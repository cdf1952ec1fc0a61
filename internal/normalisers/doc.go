// Package normalisers provides implementations of the Normaliser interface
// for the submission formats a thesis arrives in. Each normaliser knows how to
// extract text content from a specific MIME type.
//
// The Registry picks a normaliser by MIME type, and ReadFile turns a path on
// disk into a Document.
package normalisers
