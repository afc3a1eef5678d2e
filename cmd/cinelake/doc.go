// Package main hosts the cinelake CLI entrypoint and command graph.
//
// The Cobra command tree wires configuration, logging, the ingestion ledger,
// and the transform stage together. Commands stay thin: ingestion, transform,
// ledger auditing, and override capture all live in internal packages and are
// only surfaced here.
package main
