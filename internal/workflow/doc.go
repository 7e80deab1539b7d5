// Package workflow defines the contract between a hosting workflow engine and
// the operation handlers it drives.
//
// An operation receives an Instance carrying the mediapackage and the
// operation's configuration and returns a Result: the updated package, any
// workflow properties it produced, the action the engine should take next,
// and the time its jobs spent queued. Run wraps a Handler with the context
// annotation, logging and error classification every operation shares.
package workflow
