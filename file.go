package semjson

import "io"

// OutputFile is an export document being written to a file. Written data
// becomes visible at the destination path only after Commit.
type OutputFile interface {
	io.Writer

	// Commit makes the written document visible at its destination.
	Commit() error

	// Abort discards everything written so far.
	Abort() error
}

// FileService creates output files.
type FileService interface {
	// CreateFile opens an output file for the given destination path.
	CreateFile(path string) (OutputFile, error)
}
