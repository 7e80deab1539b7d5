// Package executemany implements the execute-many workflow operation.
//
// The operation selects the package elements matching the configured source
// flavor, tags and track characteristics, submits one execute job per
// element, waits for all of them, inspects any track results in a second
// round, and finally reconciles every result. A result either becomes a new
// element derived from its input (relocated into the package, with the target
// flavor applied) or, when set-workflow-properties is enabled, a property
// file merged into the workflow properties. Target tags are applied to every
// result, including inputs passed through unchanged.
//
// The operation works on a copy of the mediapackage. A failure at any point
// leaves the caller's package untouched.
package executemany
