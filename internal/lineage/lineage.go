package lineage

import (
	"regexp"

	"github.com/leapstack-labs/workloadgen/internal/loader"
)

var backtickPattern = regexp.MustCompile("`([^`]+)`")

// ExtractReferences returns the distinct backtick-quoted spans of sql, without
// the backticks, in order of first appearance. Unbalanced backticks are not
// reported; pairing is left to right.
func ExtractReferences(sql string) []string {
	matches := backtickPattern.FindAllStringSubmatch(sql, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	refs := make([]string, 0, len(matches))
	for _, m := range matches {
		ref := m[1]
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	return refs
}

// QueryLineage describes the inputs of one query of a graph.
type QueryLineage struct {
	Name       string
	References []string // every table reference, first-appearance order
	Upstream   []string // references that are themselves queries of the graph
}

// Resolve extracts references for every query of g, in graph order. A query
// referencing itself is not listed as its own upstream.
func Resolve(g *loader.Graph) []QueryLineage {
	result := make([]QueryLineage, 0, g.Len())
	for _, q := range g.Queries() {
		refs := ExtractReferences(q.SQL)
		ql := QueryLineage{Name: q.Name, References: refs}
		for _, ref := range refs {
			if ref == q.Name {
				continue
			}
			if _, ok := g.Get(ref); ok {
				ql.Upstream = append(ql.Upstream, ref)
			}
		}
		result = append(result, ql)
	}
	return result
}
