// Package model defines the data structures for driving the bun test runner.
package model

// Path represents a file system path.
type Path string
