// Package textutil provides text helpers shared across the repo, primarily
// filename sanitization for generated disc and playlist names.
package textutil
