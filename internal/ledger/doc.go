// Package ledger persists the append-only ingestion log that decides whether a
// raw source file must be copied into run-versioned storage.
//
// Records are keyed by source name and SHA-256 content digest. A source whose
// digest already has a completed record is skipped. The ledger never updates
// or deletes rows; it is the source of truth for dedup, not the raw
// directory tree.
//
// Writers take an exclusive file lock (Store.Lock) for the duration of an
// ingestion run so that the read-then-append decision cannot race with a
// second process. Readers such as `cinelake ledger list` do not need the lock.
package ledger
