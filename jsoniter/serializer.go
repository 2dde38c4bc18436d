// Package jsoniter implements semjson.Serializer on top of json-iterator.
package jsoniter

import (
	"bytes"
	"fmt"

	"github.com/fwojciec/semjson"
	jsoniter "github.com/json-iterator/go"
)

// Ensure Serializer implements semjson.Serializer at compile time.
var _ semjson.Serializer = (*Serializer)(nil)

// api encodes records without escaping HTML, so rendered fields stay
// readable in the output document.
var api = jsoniter.Config{
	EscapeHTML:  false,
	SortMapKeys: true,
}.Froze()

type state int

const (
	stateIdle state = iota
	stateStarted
	stateFinished
)

// Serializer buffers exported records as a {"results":[...]} document.
// It is not safe for concurrent use.
type Serializer struct {
	buf        bytes.Buffer
	state      state
	hasContent bool
	pages      []*semjson.PageRecord
}

// NewSerializer returns an idle Serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// Clear discards buffered content and returns to the idle state.
func (s *Serializer) Clear() {
	s.buf.Reset()
	s.state = stateIdle
	s.hasContent = false
	s.pages = nil
}

// Start opens a new document, discarding anything buffered before.
func (s *Serializer) Start() {
	s.Clear()
	s.buf.WriteString(`{"results":[`)
	s.state = stateStarted
}

// AddPage appends the record of a page.
func (s *Serializer) AddPage(ref *semjson.PageRef, info *semjson.PageInfo, fields *semjson.FieldMap) error {
	if ref == nil {
		return semjson.Errorf(semjson.EINVALID, "page reference required")
	}
	record := semjson.NewPageRecord(ref, info, fields)
	if err := s.AddRecord(record); err != nil {
		return err
	}
	s.pages = append(s.pages, record)
	return nil
}

// AddRecord appends an arbitrary JSON-encodable record.
func (s *Serializer) AddRecord(record any) error {
	if s.state != stateStarted {
		return semjson.Errorf(semjson.EINVALID, "serializer not started")
	}
	b, err := api.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if s.hasContent {
		s.buf.WriteByte(',')
	}
	s.buf.Write(b)
	s.hasContent = true
	return nil
}

// Finish closes the document.
func (s *Serializer) Finish() error {
	if s.state != stateStarted {
		return semjson.Errorf(semjson.EINVALID, "serializer not started")
	}
	s.buf.WriteString(`]}`)
	s.state = stateFinished
	return nil
}

// FlushContent returns the buffered output and clears it together with the
// list of page records added since the previous flush.
func (s *Serializer) FlushContent() string {
	out := s.buf.String()
	s.buf.Reset()
	s.pages = nil
	return out
}

// Pages returns the page records added since the last flush.
func (s *Serializer) Pages() []*semjson.PageRecord {
	return s.pages
}
