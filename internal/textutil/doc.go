// Package textutil provides text helpers shared by the ingestion and
// extraction stages: path-safe tokens for raw storage layout and the stable
// slug used as a person identifier.
package textutil
