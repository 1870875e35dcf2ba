// Package output presents review results on stdout and progress/errors on
// stderr, with color when the stream supports it.
package output
