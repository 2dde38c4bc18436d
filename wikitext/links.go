package wikitext

import (
	"regexp"
	"strings"

	"github.com/fwojciec/semjson"
)

var linkRegex = regexp.MustCompile(`\[\[\s*([^\[\]|#]+?)\s*(?:#[^\]|]*)?(?:\|[^\]]*)?\]\]`)

// ScanLinks returns the link targets and category memberships declared in
// markup, in order of first appearance and without duplicates. Links are
// returned as written; categories are returned as database keys. A link
// with a leading colon, such as [[:Category:Foo]], is a plain link.
func ScanLinks(text string) (links []string, categories []string) {
	seenLinks := make(map[string]bool)
	seenCats := make(map[string]bool)

	for _, m := range linkRegex.FindAllStringSubmatch(text, -1) {
		target := strings.TrimSpace(m[1])
		forced := strings.HasPrefix(target, ":")
		target = strings.TrimPrefix(target, ":")

		ns, dbkey, err := semjson.ParseTitle(target)
		if err != nil {
			continue
		}

		if ns == semjson.NSCategory && !forced {
			if !seenCats[dbkey] {
				seenCats[dbkey] = true
				categories = append(categories, dbkey)
			}
			continue
		}

		key := semjson.NewPageRef(0, ns, dbkey).FullText()
		if !seenLinks[key] {
			seenLinks[key] = true
			links = append(links, target)
		}
	}

	return links, categories
}
