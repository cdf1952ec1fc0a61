// Package plaintext provides the fallback Normaliser for plain text
// submissions, and the charset decoding shared by the text-based normalisers.
package plaintext
