// Package inspection submits media inspection jobs. Each job runs ffprobe on
// a workspace file and yields a serialized Track element carrying the stream
// kinds, duration, size and MIME type found in the file.
package inspection
