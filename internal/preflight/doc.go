// Package preflight provides readiness checks for the filesystem paths and
// remote hosts cinelake depends on.
//
// These checks run in two contexts:
//   - "cinelake run" calls RunAll before each cycle and skips the cycle when a
//     check fails, rather than ingesting into an unwritable tree.
//   - "cinelake check" prints every result for the operator.
//
// Remote checks only run when a remote_dataset source is configured.
package preflight
