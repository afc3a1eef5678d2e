// Package fetch resolves a configured source to a local file ready for
// hashing. Local-file sources are used in place; remote-dataset sources are
// downloaded as a zip archive into the cache directory and the configured
// member is extracted.
package fetch
