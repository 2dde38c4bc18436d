package mock

import "github.com/fwojciec/semjson"

var _ semjson.Serializer = (*Serializer)(nil)

// Serializer is a mock implementation of semjson.Serializer.
type Serializer struct {
	ClearFn        func()
	StartFn        func()
	AddPageFn      func(ref *semjson.PageRef, info *semjson.PageInfo, fields *semjson.FieldMap) error
	AddRecordFn    func(record any) error
	FinishFn       func() error
	FlushContentFn func() string
}

func (s *Serializer) Clear() {
	s.ClearFn()
}

func (s *Serializer) Start() {
	s.StartFn()
}

func (s *Serializer) AddPage(ref *semjson.PageRef, info *semjson.PageInfo, fields *semjson.FieldMap) error {
	return s.AddPageFn(ref, info, fields)
}

func (s *Serializer) AddRecord(record any) error {
	return s.AddRecordFn(record)
}

func (s *Serializer) Finish() error {
	return s.FinishFn()
}

func (s *Serializer) FlushContent() string {
	return s.FlushContentFn()
}
