package semjson

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Namespace constants of the host wiki. The semantic namespaces follow the
// numbering used by Semantic MediaWiki.
const (
	NSMain          = 0
	NSTalk          = 1
	NSUser          = 2
	NSUserTalk      = 3
	NSProject       = 4
	NSProjectTalk   = 5
	NSFile          = 6
	NSFileTalk      = 7
	NSMediaWiki     = 8
	NSMediaWikiTalk = 9
	NSTemplate      = 10
	NSTemplateTalk  = 11
	NSHelp          = 12
	NSHelpTalk      = 13
	NSCategory      = 14
	NSCategoryTalk  = 15
	NSProperty      = 102
	NSPropertyTalk  = 103
	NSType          = 104
	NSTypeTalk      = 105
	NSConcept       = 108
	NSConceptTalk   = 109
)

var namespaceNames = map[int]string{
	NSMain:          "",
	NSTalk:          "Talk",
	NSUser:          "User",
	NSUserTalk:      "User_talk",
	NSProject:       "Project",
	NSProjectTalk:   "Project_talk",
	NSFile:          "File",
	NSFileTalk:      "File_talk",
	NSMediaWiki:     "MediaWiki",
	NSMediaWikiTalk: "MediaWiki_talk",
	NSTemplate:      "Template",
	NSTemplateTalk:  "Template_talk",
	NSHelp:          "Help",
	NSHelpTalk:      "Help_talk",
	NSCategory:      "Category",
	NSCategoryTalk:  "Category_talk",
	NSProperty:      "Property",
	NSPropertyTalk:  "Property_talk",
	NSType:          "Type",
	NSTypeTalk:      "Type_talk",
	NSConcept:       "Concept",
	NSConceptTalk:   "Concept_talk",
}

// namespaceAliases maps lower-cased prefixes to namespace numbers.
var namespaceAliases = func() map[string]int {
	m := map[string]int{"image": NSFile, "image_talk": NSFileTalk}
	for ns, name := range namespaceNames {
		if name != "" {
			m[strings.ToLower(name)] = ns
		}
	}
	return m
}()

// NamespaceName returns the canonical prefix of a namespace, without the
// trailing colon. The main namespace has an empty name.
func NamespaceName(ns int) string {
	if name, ok := namespaceNames[ns]; ok {
		return name
	}
	return "Ns" + strconv.Itoa(ns)
}

// NamespaceKey returns the tab key used for a namespace in exported records,
// e.g. "nstab-main" or "nstab-category". Talk namespaces share the key of
// their subject namespace.
func NamespaceKey(ns int) string {
	if ns > 0 && ns%2 == 1 {
		ns--
	}
	switch ns {
	case NSMain:
		return "nstab-main"
	case NSFile:
		return "nstab-image"
	}
	return "nstab-" + strings.ToLower(NamespaceName(ns))
}

// ParseTitle splits a page name such as "Category:Foo bar" into its
// namespace and database key ("Foo_bar"). Unknown prefixes are kept as part
// of a main-namespace title.
func ParseTitle(text string) (ns int, dbkey string, err error) {
	text = strings.TrimSpace(strings.ReplaceAll(text, " ", "_"))
	text = strings.Trim(text, "_")

	if i := strings.Index(text, "#"); i != -1 {
		text = text[:i]
	}
	if strings.ContainsAny(text, "<>[]|{}") {
		return 0, "", Errorf(EINVALID, "title %q contains invalid characters", text)
	}

	if i := strings.Index(text, ":"); i > 0 {
		prefix := strings.ToLower(strings.Trim(text[:i], "_"))
		if n, ok := namespaceAliases[prefix]; ok {
			ns = n
			text = strings.Trim(text[i+1:], "_")
		}
	}

	if text == "" {
		return 0, "", Errorf(EINVALID, "empty title")
	}
	return ns, ucfirst(text), nil
}

func ucfirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// restrictionKind enumerates the encodings of a namespace restriction.
type restrictionKind int

const (
	restrictNone restrictionKind = iota
	restrictList
	restrictSingle
	restrictStructural
)

// Restriction limits an export to a subset of namespaces. The zero value
// places no restriction.
type Restriction struct {
	kind       restrictionKind
	namespaces []int
}

// NoRestriction returns a restriction that every namespace fits.
func NoRestriction() Restriction {
	return Restriction{}
}

// OnlyNamespaces returns a restriction fitting exactly the given namespaces.
func OnlyNamespaces(ns ...int) Restriction {
	return Restriction{kind: restrictList, namespaces: append([]int(nil), ns...)}
}

// OnlyNamespace returns a restriction fitting a single namespace.
func OnlyNamespace(ns int) Restriction {
	return Restriction{kind: restrictSingle, namespaces: []int{ns}}
}

// ExcludeStructural returns a restriction fitting every namespace except
// Category, Property and Type.
func ExcludeStructural() Restriction {
	return Restriction{kind: restrictStructural}
}

// Fits reports whether ns satisfies the restriction.
func (r Restriction) Fits(ns int) bool {
	switch r.kind {
	case restrictList, restrictSingle:
		for _, n := range r.namespaces {
			if n == ns {
				return true
			}
		}
		return false
	case restrictStructural:
		return ns != NSCategory && ns != NSProperty && ns != NSType
	default:
		return true
	}
}

// String returns the restriction in the form accepted by ParseRestriction.
func (r Restriction) String() string {
	switch r.kind {
	case restrictList:
		parts := make([]string, len(r.namespaces))
		for i, n := range r.namespaces {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, ",") + ","
	case restrictSingle:
		return strconv.Itoa(r.namespaces[0])
	case restrictStructural:
		return "-1"
	default:
		return ""
	}
}

// ParseRestriction parses a restriction. An empty string or "false" means no
// restriction, a comma-separated list restricts to its members, a
// non-negative number to that namespace, and a negative number excludes the
// structural namespaces.
func ParseRestriction(s string) (Restriction, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "false") {
		return NoRestriction(), nil
	}

	if strings.Contains(s, ",") {
		var ns []int
		for _, part := range strings.Split(s, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil {
				return Restriction{}, Errorf(EINVALID, "invalid namespace %q in restriction", part)
			}
			ns = append(ns, n)
		}
		return OnlyNamespaces(ns...), nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return Restriction{}, Errorf(EINVALID, "invalid namespace restriction %q", s)
	}
	if n < 0 {
		return ExcludeStructural(), nil
	}
	return OnlyNamespace(n), nil
}
