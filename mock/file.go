package mock

import "github.com/fwojciec/semjson"

var (
	_ semjson.FileService = (*FileService)(nil)
	_ semjson.OutputFile  = (*OutputFile)(nil)
)

// FileService is a mock implementation of semjson.FileService.
type FileService struct {
	CreateFileFn func(path string) (semjson.OutputFile, error)
}

func (s *FileService) CreateFile(path string) (semjson.OutputFile, error) {
	return s.CreateFileFn(path)
}

// OutputFile is a mock implementation of semjson.OutputFile.
type OutputFile struct {
	WriteFn  func(p []byte) (int, error)
	CommitFn func() error
	AbortFn  func() error
}

func (f *OutputFile) Write(p []byte) (int, error) {
	return f.WriteFn(p)
}

func (f *OutputFile) Commit() error {
	return f.CommitFn()
}

func (f *OutputFile) Abort() error {
	return f.AbortFn()
}
