// Package textutil provides filename and path-segment sanitization shared by
// the workspace and the execution service.
package textutil
