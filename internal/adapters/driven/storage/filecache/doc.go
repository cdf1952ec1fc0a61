// Package filecache stores fetched page content and embeddings as one JSON file
// per URL, named by the SHA-256 of the URL.
//
// Files are plain JSON objects so they can be inspected or seeded by other tools;
// fields this program does not know survive every merge.
package filecache
