// Package staging reclaims files left in the workspace staging collections.
//
// Execution jobs write their output into a collection named after the
// service; the execute-many step either moves each file into the
// mediapackage or deletes it after reading it. Files survive only when a run
// aborts, so cleanup is age-based, optionally narrowed to files whose job is
// no longer in flight.
package staging
