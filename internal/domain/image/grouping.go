package image

import (
	"fmt"
	"regexp"
	"sort"
)

// OtherGroup collects tags that match no keyword.
const OtherGroup = "other"

// DefaultTagKeywords is the ordered keyword list used to bucket tags. The
// full semantic version pattern must stay ahead of the major.minor one.
var DefaultTagKeywords = []string{
	"dev",
	"develop",
	"qc",
	"debug",
	"test",
	"feature",
	"release",
	"hotfix",
	"master",
	"version",
	`v\d+\.\d+\.\d+`,
	`v\d+\.\d+`,
}

// TagGrouper buckets tags by the first keyword pattern found anywhere in the
// tag, case-insensitively.
type TagGrouper struct {
	keywords []string
	patterns []*regexp.Regexp
}

func NewTagGrouper(keywords []string) (*TagGrouper, error) {
	if len(keywords) == 0 {
		keywords = DefaultTagKeywords
	}
	g := &TagGrouper{keywords: keywords, patterns: make([]*regexp.Regexp, 0, len(keywords))}
	for _, kw := range keywords {
		re, err := regexp.Compile("(?i)" + kw)
		if err != nil {
			return nil, fmt.Errorf("invalid tag keyword %q: %w", kw, err)
		}
		g.patterns = append(g.patterns, re)
	}
	return g, nil
}

// Keywords returns the keyword list in match order.
func (g *TagGrouper) Keywords() []string {
	return g.keywords
}

func (g *TagGrouper) Classify(tag string) string {
	for i, re := range g.patterns {
		if re.MatchString(tag) {
			return g.keywords[i]
		}
	}
	return OtherGroup
}

func (g *TagGrouper) Group(tags []string) map[string]int {
	groups := make(map[string]int)
	for _, tag := range tags {
		groups[g.Classify(tag)]++
	}
	return groups
}

// GroupByRepository flattens the grouping of every repository. Rows are
// ordered by repository name, then by keyword order with "other" last.
func (g *TagGrouper) GroupByRepository(tagsByRepo map[string][]string) []TagGroupCount {
	names := make([]string, 0, len(tagsByRepo))
	for name := range tagsByRepo {
		names = append(names, name)
	}
	sort.Strings(names)

	order := append(append([]string{}, g.keywords...), OtherGroup)
	var rows []TagGroupCount
	for _, name := range names {
		groups := g.Group(tagsByRepo[name])
		for _, group := range order {
			if n, ok := groups[group]; ok {
				rows = append(rows, TagGroupCount{RepositoryName: name, Group: group, Count: n})
				delete(groups, group)
			}
		}
	}
	return rows
}
