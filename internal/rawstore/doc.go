// Package rawstore lays out ingested source files as
// <raw_root>/<source>/<run_id>/<file> with a _SUCCESS.json marker per run
// directory, and resolves the newest copy of a file across one or more raw
// roots for the transform stage.
package rawstore
