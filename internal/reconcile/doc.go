// Package reconcile merges aggregator and external catalog film rows into the
// canonical films table.
//
// Rows are joined on the aggregator id (the external catalog carries it inside
// its tomatoURL). Every join is a full outer join: a film known to one source
// only still yields a row. Conflicting fields are resolved by a fixed source
// priority and the result holds exactly one row per film_id.
package reconcile
