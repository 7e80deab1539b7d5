// Package workspace is the file store shared by the job services and the
// workflow operations.
//
// Layout below the workspace root:
//
//	mediapackage/<mediapackage id>/<element id>/<file>   package-owned files
//	collection/<collection>/<file>                      staging collections
//
// Element locations are file:// URIs; plain absolute paths are accepted on
// input. Moves into a mediapackage directory hold an advisory file lock on
// that directory so concurrent writers never interleave.
package workspace
