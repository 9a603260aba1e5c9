package mcpserver

import (
	"fmt"
	"strings"

	"github.com/starford/histmap/internal/categorize"
)

// TaxonomyContract renders the ordered categorisation rules and the journey
// file format as Markdown for LLM consumers.
func TaxonomyContract() string {
	var b strings.Builder
	b.WriteString("# histmap URL Taxonomy\n\n")
	b.WriteString("Every visited URL gets exactly one category. The hostname is lower-cased and\n")
	b.WriteString("checked against the rules below in order; the first rule with a pattern that\n")
	b.WriteString("occurs anywhere in the hostname wins. Paths and query strings are ignored.\n\n")
	b.WriteString("## Rules\n\n")
	for i, r := range categorize.Rules() {
		quoted := make([]string, len(r.Patterns))
		for j, p := range r.Patterns {
			quoted[j] = "`" + p + "`"
		}
		fmt.Fprintf(&b, "%d. **%s**: %s\n", i+1, r.Category, strings.Join(quoted, ", "))
	}
	fmt.Fprintf(&b, "%d. **other**: anything else\n\n", len(categorize.Rules())+1)
	b.WriteString(`## Relationships

Two visits are related when they share the exact hostname (` + "`www.github.com`" + ` and
` + "`github.com`" + ` differ) or the same category. The graph draws one edge per related
pair and places visit i of n at angle i/n * 2π on a circle.

## Journeys

A journey is a named, saved list of visits. Names are trimmed and must not be
blank. Saving without URLs snapshots the current history window. Categories
are always recomputed from the URL; any supplied category is ignored.
`)
	return b.String()
}
