// Package materialize persists tables.
//
// Each curated table lives in its own single-file SQLite database at
// <root>/<table>/<table>.sqlite. Writes go to a uniquely named sibling temp
// file that is renamed over the destination, so a reader sees either the old
// table or the new one. The package also mirrors tables into a local
// directory, loads them into the analytical warehouse database, and maintains
// the small override tables that downstream consumers merge on top of the
// curated data.
package materialize
