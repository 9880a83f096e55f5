package extract

import "regexp"

// Capture is the normalized result of mapping one match's capture groups.
type Capture struct {
	Name   string
	Params string
	Note   string
}

// CaptureFunc maps the groups of a single match to a Capture. groups[0] is
// the whole match and groups[i] is capture group i; groups that did not
// participate in the match are empty strings.
type CaptureFunc func(groups []string) Capture

// PatternSpec describes how one dialect is recognized.
//
// Gate is a cheap whole-file pre-filter: Pattern is only applied when Gate
// matches somewhere in the text. Gate does not bound where Pattern matches.
type PatternSpec struct {
	Tag     Tag
	Gate    *regexp.Regexp
	Pattern *regexp.Regexp
	Capture CaptureFunc
}

// Registry is an immutable, ordered set of PatternSpecs. The order is part
// of the output contract: declarations from earlier specs always precede
// declarations from later ones.
type Registry struct {
	specs []PatternSpec
}

// NewRegistry builds a registry holding the given specs in order.
func NewRegistry(specs ...PatternSpec) Registry {
	return Registry{specs: append([]PatternSpec(nil), specs...)}
}

// Specs returns the specs in registry order. The returned slice is a copy.
func (r Registry) Specs() []PatternSpec {
	return append([]PatternSpec(nil), r.specs...)
}

// Len returns the number of specs.
func (r Registry) Len() int {
	return len(r.specs)
}

// Append returns a new registry with specs added after the existing ones.
// The receiver is left untouched.
func (r Registry) Append(specs ...PatternSpec) Registry {
	out := make([]PatternSpec, 0, len(r.specs)+len(specs))
	out = append(out, r.specs...)
	out = append(out, specs...)
	return Registry{specs: out}
}

// Lookup returns the first spec registered for tag.
func (r Registry) Lookup(tag Tag) (PatternSpec, bool) {
	for _, s := range r.specs {
		if s.Tag == tag {
			return s, true
		}
	}
	return PatternSpec{}, false
}

// Only returns a registry reduced to the given tags, preserving registry
// order. Unknown tags are ignored.
func (r Registry) Only(tags ...Tag) Registry {
	want := make(map[Tag]bool, len(tags))
	for _, t := range tags {
		want[t] = true
	}
	var out []PatternSpec
	for _, s := range r.specs {
		if want[s.Tag] {
			out = append(out, s)
		}
	}
	return Registry{specs: out}
}

// Notes attached by the fixed-marker dialects.
const (
	NoteFunctionalComponent = "functional component"
	NoteClassComponent      = "class component"
	NoteCompositionAPI      = "composition API"
	NoteTypeDefinition      = "type definition"
)

// Shared pattern fragments. ident is a JavaScript identifier; args accepts
// call arguments with up to two levels of nested parentheses. Calls nested
// deeper still match, with args cut short before the first too-deep group.
const (
	ident      = `[A-Za-z_$][\w$]*`
	upperIdent = `[A-Z][\w$]*`
	exportOpt  = `(?:export\s+(?:default\s+)?)?`
	typeAnnot  = `(?::[^=]*)?`
	args       = `((?:[^()]|\((?:[^()]|\([^()]*\))*\))*)`
	generics   = `(?:<[^>()]*>)?`
)

const compositionPrimitives = `ref|reactive|computed|shallowRef|shallowReactive|readonly|toRef|toRefs|watch|watchEffect|inject|provide`

var defaultRegistry = NewRegistry(
	PatternSpec{
		Tag:  TagModuleExportObject,
		Gate: regexp.MustCompile(`module\.exports\s*=|\bexports\.[A-Za-z_$]|\bexport\s+default\s*\{`),
		Pattern: regexp.MustCompile(
			`(?:module\.)?exports\.(` + ident + `)\s*=\s*(?:async\s+)?function\s*\*?\s*(?:` + ident + `)?\s*\(([^)]*)\)` +
				`|(` + ident + `)\s*:\s*(?:async\s+)?function\s*\*?\s*(?:` + ident + `)?\s*\(([^)]*)\)` +
				`|(` + ident + `)\s*:\s*(?:async\s+)?\(([^)]*)\)\s*=>`),
		Capture: func(g []string) Capture {
			return Capture{
				Name:   firstNonEmpty(g, 1, 3, 5),
				Params: firstNonEmpty(g, 2, 4, 6),
			}
		},
	},
	PatternSpec{
		Tag:  TagNamedExport,
		Gate: regexp.MustCompile(`\bexport\s+`),
		Pattern: regexp.MustCompile(
			`export\s+(?:default\s+)?(?:async\s+)?function\s*\*?\s*(` + ident + `)?\s*\(([^)]*)\)` +
				`|export\s+const\s+(` + ident + `)\s*` + typeAnnot + `=\s*(?:async\s+)?(?:\(([^)]*)\)\s*` + typeAnnot + `=>|(` + ident + `)\s*=>)?`),
		Capture: func(g []string) Capture {
			return Capture{
				Name:   firstNonEmpty(g, 1, 3),
				Params: firstNonEmpty(g, 2, 4, 5),
			}
		},
	},
	PatternSpec{
		Tag:  TagFunctionalComponent,
		Gate: regexp.MustCompile(`from\s+['"]react['"]|\bReact\.|\breturn\s*\(?\s*<[A-Za-z>]|=>\s*\(?\s*<[A-Za-z>]`),
		Pattern: regexp.MustCompile(
			exportOpt + `function\s+(` + upperIdent + `)\s*\(([^)]*)\)` +
				`|` + exportOpt + `(?:const|let|var)\s+(` + upperIdent + `)\s*` + typeAnnot + `=\s*` +
				`(?:(?:React\.)?(?:memo|forwardRef)\s*(?:<[^>()]*>)?\s*\(\s*)?(?:async\s+)?` +
				`(?:function\s*(?:` + ident + `)?\s*\(([^)]*)\)|\(([^)]*)\)\s*` + typeAnnot + `=>|(` + ident + `)\s*=>)`),
		Capture: func(g []string) Capture {
			return Capture{
				Name:   firstNonEmpty(g, 1, 3),
				Params: firstNonEmpty(g, 2, 4, 5, 6),
				Note:   NoteFunctionalComponent,
			}
		},
	},
	PatternSpec{
		Tag:     TagClassComponent,
		Gate:    regexp.MustCompile(`\bextends\s+(?:React\.)?(?:Pure)?Component\b`),
		Pattern: regexp.MustCompile(exportOpt + `class\s+(` + upperIdent + `)\s+extends\s+(?:React\.)?(?:Pure)?Component\b`),
		Capture: func(g []string) Capture {
			return Capture{Name: firstNonEmpty(g, 1), Note: NoteClassComponent}
		},
	},
	PatternSpec{
		Tag:  TagHookUsage,
		Gate: regexp.MustCompile(`\buse[A-Z][\w$]*\s*(?:<[^>()]*>)?\s*\(`),
		Pattern: regexp.MustCompile(
			`(?:export\s+)?(?:const|let|var)\s+(\[[^\]]*\]|\{[^}]*\}|` + ident + `)\s*` + typeAnnot +
				`=\s*(?:await\s+)?(use[A-Z][\w$]*)\s*` + generics + `\s*\(` + args + `\)?`),
		Capture: func(g []string) Capture {
			c := Capture{Name: firstNonEmpty(g, 1), Params: firstNonEmpty(g, 3)}
			if hook := firstNonEmpty(g, 2); hook != "" {
				c.Note = "hook: " + hook
			}
			return c
		},
	},
	PatternSpec{
		Tag:  TagCompositionAPI,
		Gate: regexp.MustCompile(`\b(?:` + compositionPrimitives + `)\s*` + generics + `\s*\(`),
		Pattern: regexp.MustCompile(
			`(?:export\s+)?(?:const|let|var)\s+(\{[^}]*\}|` + ident + `)\s*` + typeAnnot +
				`=\s*(` + compositionPrimitives + `)\s*` + generics + `\s*\(` + args + `\)?`),
		Capture: func(g []string) Capture {
			c := Capture{Name: firstNonEmpty(g, 1), Params: firstNonEmpty(g, 3), Note: NoteCompositionAPI}
			if prim := firstNonEmpty(g, 2); prim != "" {
				c.Note += ": " + prim
			}
			return c
		},
	},
	PatternSpec{
		Tag:  TagOptionsAPIMember,
		Gate: regexp.MustCompile(`\b(?:methods|computed|watch)\s*:\s*\{`),
		Pattern: regexp.MustCompile(
			`(` + ident + `)\s*:\s*(?:async\s+)?function\s*\(([^)]*)\)` +
				`|(` + ident + `)\s*:\s*(?:async\s+)?(?:\(([^)]*)\)|(` + ident + `))\s*=>`),
		Capture: func(g []string) Capture {
			return Capture{
				Name:   firstNonEmpty(g, 1, 3),
				Params: firstNonEmpty(g, 2, 4, 5),
			}
		},
	},
	PatternSpec{
		Tag:  TagTypeDeclaration,
		Gate: regexp.MustCompile(`\b(?:interface|type|enum)\s+[A-Za-z_$]`),
		Pattern: regexp.MustCompile(
			`(?:export\s+)?(?:declare\s+)?\b(?:` +
				`interface\s+(` + ident + `)(?:\s*<[^>{]*>)?(?:\s+extends\s+([A-Za-z_$][\w$.]*))?` +
				`|type\s+(` + ident + `)(?:\s*<[^>=]*>)?\s*=` +
				`|(?:const\s+)?enum\s+(` + ident + `))`),
		Capture: func(g []string) Capture {
			return Capture{
				Name:   firstNonEmpty(g, 1, 3, 4),
				Params: firstNonEmpty(g, 2),
				Note:   NoteTypeDefinition,
			}
		},
	},
)

// DefaultRegistry returns the built-in dialect registry. The registry is
// compiled once per process and never mutated.
func DefaultRegistry() Registry {
	return defaultRegistry
}

// firstNonEmpty returns the first non-empty group among the given indexes.
func firstNonEmpty(groups []string, idx ...int) string {
	for _, i := range idx {
		if i < len(groups) && groups[i] != "" {
			return groups[i]
		}
	}
	return ""
}
