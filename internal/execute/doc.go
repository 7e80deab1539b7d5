// Package execute runs allow-listed commands against mediapackage elements as
// asynchronous jobs.
//
// A request names the command, a parameter string and the input element.
// The parameter string is split like a shell would split it and the
// placeholders #{in} (input file), #{out} (output file) and #{id} (input
// element id) are substituted per argument. When an output filename is
// requested the job writes into the "execute" staging collection under a
// job-unique name and its payload is a serialized element of the expected
// type pointing at that file. Without an output filename the payload is
// empty and callers keep the input element as is.
package execute
