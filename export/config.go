package export

import "github.com/fwojciec/semjson"

// Default limits of the done-set memo.
const (
	DefaultMaxCacheSize  = 5000
	DefaultCacheBackjump = 500
)

// Flush delays per export mode: the number of flush requests that are
// suppressed before output starts being written after every page.
const (
	pagesFlushDelay = 10
	listFlushDelay  = 35
)

// DefaultPageListLimit is the page size of PrintPageList when none is given.
const DefaultPageListLimit = 30

// CategoryMemberLimit caps the members exported per category.
const CategoryMemberLimit = 100

// Config holds the settings of an export run.
type Config struct {
	// Blocks lists the recognized template blocks in output order.
	Blocks []semjson.BlockType `yaml:"blocks"`

	// FieldsToParse names the fields whose values are rendered to HTML.
	FieldsToParse []string `yaml:"fieldsToParse"`

	// SemanticNamespaces are the namespaces whose pages carry exportable
	// data. Full-site and paginated dumps skip other namespaces.
	SemanticNamespaces []int `yaml:"semanticNamespaces"`

	// ExportURL is the public address of the export endpoint, used to build
	// continuation links.
	ExportURL string `yaml:"exportURL"`

	// PagePrefix is the base address of wiki pages, reported in site info.
	PagePrefix string `yaml:"pagePrefix"`

	SiteName     string `yaml:"siteName"`
	LanguageCode string `yaml:"languageCode"`
	Version      string `yaml:"version"`

	MaxCacheSize  int `yaml:"maxCacheSize"`
	CacheBackjump int `yaml:"cacheBackjump"`

	// FollowLinks enqueues the outgoing links of exported pages according
	// to the requested recursion depth.
	FollowLinks bool `yaml:"followLinks"`
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		Blocks: []semjson.BlockType{
			{Name: "Tuto Details"},
			{Name: "Introduction"},
			{Name: "Materials"},
			{Name: "Tuto Step", Repeatable: true},
			{Name: "Notes"},
			{Name: "VideoIntro"},
			{Name: "WikiPage"},
			{Name: "PropertiesList", Repeatable: true},
			{Name: "PropertyOptions", Repeatable: true},
		},
		SemanticNamespaces: []int{
			semjson.NSMain,
			semjson.NSUser,
			semjson.NSProject,
			semjson.NSFile,
			semjson.NSHelp,
			semjson.NSCategory,
			semjson.NSProperty,
			semjson.NSType,
			semjson.NSConcept,
		},
		SiteName:      "Wiki",
		LanguageCode:  "en",
		Version:       "1.0",
		MaxCacheSize:  DefaultMaxCacheSize,
		CacheBackjump: DefaultCacheBackjump,
	}
}

// IsSemantic reports whether pages of namespace ns carry exportable data.
func (c *Config) IsSemantic(ns int) bool {
	for _, n := range c.SemanticNamespaces {
		if n == ns {
			return true
		}
	}
	return false
}
