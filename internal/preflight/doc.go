// Package preflight provides readiness checks for the filesystem paths, job
// store and external binaries execmany depends on.
//
// These checks run in two contexts:
//   - "execmany run" calls RunAll before executing an operation and refuses
//     to dispatch jobs when a check fails.
//   - "execmany check" prints every result, including the per-binary
//     dependency report from CheckSystemDeps.
package preflight
