// Package extract locates declarations in JavaScript-family source text with
// a table of regular-expression dialects. It does not parse: every dialect is
// a gate, an extraction pattern and a capture mapping applied to raw text.
package extract

// Analyzer runs every spec of a registry over a file's text.
// It holds no mutable state and is safe for concurrent use.
type Analyzer struct {
	registry Registry
}

// NewAnalyzer creates an analyzer over the given registry.
func NewAnalyzer(registry Registry) *Analyzer {
	return &Analyzer{registry: registry}
}

// Registry returns the registry the analyzer applies.
func (a *Analyzer) Registry() Registry {
	return a.registry
}

// AnalyzeFile returns the declarations found in text. Results are grouped
// by spec in registry order, then by match order within each spec; they are
// not sorted by source position.
func (a *Analyzer) AnalyzeFile(text string) []Declaration {
	var decls []Declaration
	for _, spec := range a.registry.specs {
		decls = append(decls, Extract(text, spec)...)
	}
	return decls
}

// CountByTag tallies declarations per tag.
func CountByTag(decls []Declaration) map[Tag]int {
	counts := make(map[Tag]int)
	for _, d := range decls {
		counts[d.Tag]++
	}
	return counts
}
