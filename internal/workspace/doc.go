// Package workspace manages the staging directory for extracted chunk
// audio, with a file lock enforcing single-process access.
package workspace
