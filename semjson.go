// Package semjson exports structured page data from a wiki content store
// as JSON documents. It resolves pages, extracts the fields of named
// template blocks embedded in page markup, optionally renders selected
// fields to HTML, and streams the results to an output sink.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goldmark/, jsoniter/).
package semjson
