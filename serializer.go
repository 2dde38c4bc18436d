package semjson

// PageRecord is the exported unit for a single page.
type PageRecord struct {
	Namespace    string     `json:"namespace"`
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Creator      string     `json:"creator"`
	Categories   []Category `json:"categories"`
	DisplayTitle string     `json:"Display title of"`
	Content      *FieldMap  `json:"content"`
}

// NewPageRecord builds the record for a page from its identity, metadata and
// extracted fields.
func NewPageRecord(ref *PageRef, info *PageInfo, fields *FieldMap) *PageRecord {
	r := &PageRecord{
		Namespace:  ref.NamespaceKey(),
		ID:         ref.DBKey,
		Title:      ref.Text(),
		Categories: []Category{},
		Content:    fields,
	}
	if info != nil {
		r.Creator = info.Creator
		r.DisplayTitle = info.DisplayTitle
		if info.Categories != nil {
			r.Categories = info.Categories
		}
	}
	if r.Content == nil {
		r.Content = NewFieldMap()
	}
	return r
}

// SiteRecord describes the wiki itself.
type SiteRecord struct {
	Type             string `json:"type"`
	Name             string `json:"name"`
	PagePrefix       string `json:"pagePrefix"`
	Version          string `json:"version"`
	LangCode         string `json:"langCode"`
	MainPage         string `json:"mainPage,omitempty"`
	PageCount        int    `json:"pageCount"`
	ContentPageCount int    `json:"contentPageCount"`
	MediaCount       int    `json:"mediaCount"`
	EditCount        int    `json:"editCount"`
	UserCount        int    `json:"userCount"`
	AdminCount       int    `json:"adminCount"`
}

// ContinueRecord points to the next page of a paginated export.
type ContinueRecord struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	URL    string `json:"url"`
}

// Record types of non-page records.
const (
	RecordTypeSite     = "wiki"
	RecordTypeContinue = "next"
)

// Serializer accumulates exported records into a JSON document of the form
// {"results":[...]}. Output is drained in chunks with FlushContent; the
// concatenation of all chunks from Start through Finish is one document.
type Serializer interface {
	// Clear discards buffered content and returns to the idle state.
	Clear()

	// Start opens a new document.
	Start()

	// AddPage appends a page record. Returns EINVALID unless started.
	AddPage(ref *PageRef, info *PageInfo, fields *FieldMap) error

	// AddRecord appends an arbitrary record. Returns EINVALID unless started.
	AddRecord(record any) error

	// Finish closes the document. Returns EINVALID unless started.
	Finish() error

	// FlushContent returns and clears the buffered output.
	FlushContent() string
}
