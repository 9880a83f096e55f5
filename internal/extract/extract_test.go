package extract

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Extract / AnalyzeFile:
// - each dialect yields exactly one declaration for a minimal snippet
// - options API blocks emit members, never the block key itself
// - an unresolvable name is emitted as "" instead of being dropped
// - a gate that does not match suppresses the spec entirely
// - declarations are ordered by registry, not by source position
// - re-running analysis on the same text is deterministic
// - empty-width patterns terminate and never overlap
// - Append adds specs after the built-in ones without mutating the base

func specFor(t *testing.T, tag Tag) PatternSpec {
	t.Helper()
	spec, ok := DefaultRegistry().Lookup(tag)
	require.True(t, ok, "no spec for %s", tag)
	return spec
}

func TestExtract_SingleDeclarationPerDialect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		tag     Tag
		text    string
		want    string
		params  string
		comment string
		note    string
	}{
		{
			name:    "module export object member",
			tag:     TagModuleExportObject,
			text:    "module.exports = {\n  // adds two numbers\n  add: function(a, b) {\n    return a + b;\n  }\n};\n",
			want:    "add",
			params:  "a, b",
			comment: "adds two numbers",
		},
		{
			name:   "exports property assignment",
			tag:    TagModuleExportObject,
			text:   "exports.greet = function (name) {\n  return 'hi ' + name;\n};\n",
			want:   "greet",
			params: "name",
		},
		{
			name:   "ES module default export object",
			tag:    TagModuleExportObject,
			text:   "export default {\n  create: async function(req, res) {}\n};\n",
			want:   "create",
			params: "req, res",
		},
		{
			name:    "named export function",
			tag:     TagNamedExport,
			text:    "/** adds two numbers */\nexport function add(a, b) { return a + b; }",
			want:    "add",
			params:  "a, b",
			comment: "adds two numbers",
		},
		{
			name:   "named export arrow",
			tag:    TagNamedExport,
			text:   "export const sum = (x, y) => x + y;\n",
			want:   "sum",
			params: "x, y",
		},
		{
			name:   "named export single parameter arrow",
			tag:    TagNamedExport,
			text:   "export const double = n => n * 2;\n",
			want:   "double",
			params: "n",
		},
		{
			name: "named export constant",
			tag:  TagNamedExport,
			text: "export const VERSION = '1.0';\n",
			want: "VERSION",
		},
		{
			name:    "functional component declaration",
			tag:     TagFunctionalComponent,
			text:    "import React from 'react';\n\n// Renders a button\nfunction Button({ label }) {\n  return <button>{label}</button>;\n}\n",
			want:    "Button",
			params:  "{ label }",
			comment: "Renders a button",
			note:    NoteFunctionalComponent,
		},
		{
			name:   "functional component arrow",
			tag:    TagFunctionalComponent,
			text:   "const Card = ({ title, children }) => (\n  <div>{title}{children}</div>\n);\n",
			want:   "Card",
			params: "{ title, children }",
			note:   NoteFunctionalComponent,
		},
		{
			name:   "functional component wrapped in memo",
			tag:    TagFunctionalComponent,
			text:   "const Item = React.memo(function Item(props) { return <li/>; });\n",
			want:   "Item",
			params: "props",
			note:   NoteFunctionalComponent,
		},
		{
			name:    "class component",
			tag:     TagClassComponent,
			text:    "import React, { Component } from 'react';\n\n/**\n * Counter keeps a tally.\n */\nexport default class Counter extends Component {\n  render() { return null; }\n}\n",
			want:    "Counter",
			comment: "Counter keeps a tally.",
			note:    NoteClassComponent,
		},
		{
			name:   "hook usage",
			tag:    TagHookUsage,
			text:   "const data = useFetch(url)",
			want:   "data",
			params: "url",
			note:   "hook: useFetch",
		},
		{
			name:   "hook usage with destructuring",
			tag:    TagHookUsage,
			text:   "const [count, setCount] = useState(0);\n",
			want:   "[count, setCount]",
			params: "0",
			note:   "hook: useState",
		},
		{
			name:   "hook usage with nested calls",
			tag:    TagHookUsage,
			text:   "import { useMemo } from 'react';\nconst total = useMemo(() => sum(items.map(price)), [items]);\n",
			want:   "total",
			params: "() => sum(items.map(price)), [items]",
			note:   "hook: useMemo",
		},
		{
			name:   "hook usage nested beyond two levels keeps a prefix",
			tag:    TagHookUsage,
			text:   "const save = useCallback(() => api(post(body(x))), []);\n",
			want:   "save",
			params: "() => api",
			note:   "hook: useCallback",
		},
		{
			name:   "composition API inject",
			tag:    TagCompositionAPI,
			text:   "import { inject, ref } from 'vue';\nconst store = inject('store');\n",
			want:   "store",
			params: "'store'",
			note:   "composition API: inject",
		},
		{
			name:   "composition API primitive",
			tag:    TagCompositionAPI,
			text:   "import { ref } from 'vue';\nconst count = ref(0);\n",
			want:   "count",
			params: "0",
			note:   "composition API: ref",
		},
		{
			name:    "options API method",
			tag:     TagOptionsAPIMember,
			text:    "methods: {\n  // increment counter\n  increment: function(amount) { this.count += amount; }\n}",
			want:    "increment",
			params:  "amount",
			comment: "increment counter",
		},
		{
			name: "options API arrow member",
			tag:  TagOptionsAPIMember,
			text: "computed: {\n  total: () => 1,\n}\n",
			want: "total",
		},
		{
			name:   "interface with extends",
			tag:    TagTypeDeclaration,
			text:   "export interface ButtonProps extends BaseProps {\n  label: string;\n}\n",
			want:   "ButtonProps",
			params: "BaseProps",
			note:   NoteTypeDefinition,
		},
		{
			name: "type alias",
			tag:  TagTypeDeclaration,
			text: "type Size = 'sm' | 'lg';\n",
			want: "Size",
			note: NoteTypeDefinition,
		},
		{
			name: "enum",
			tag:  TagTypeDeclaration,
			text: "enum Color { Red, Green }\n",
			want: "Color",
			note: NoteTypeDefinition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			decls := Extract(tt.text, specFor(t, tt.tag))
			require.Len(t, decls, 1)

			d := decls[0]
			assert.Equal(t, tt.want, d.Name)
			assert.Equal(t, tt.params, d.Params)
			assert.Equal(t, tt.comment, d.Comment)
			assert.Equal(t, tt.note, d.Note)
			assert.Equal(t, tt.tag, d.Tag)
		})
	}
}

func TestAnalyzeFile_NamedExportExample(t *testing.T) {
	t.Parallel()

	text := "/** adds two numbers */\nexport function add(a, b) { return a + b; }"
	decls := NewAnalyzer(DefaultRegistry()).AnalyzeFile(text)

	require.Len(t, decls, 1)
	assert.Equal(t, Declaration{
		Name:    "add",
		Params:  "a, b",
		Comment: "adds two numbers",
		Tag:     TagNamedExport,
		Offset:  24,
		Line:    2,
	}, decls[0])
}

func TestAnalyzeFile_OptionsAPIDoesNotEmitBlockKey(t *testing.T) {
	t.Parallel()

	text := "methods: {\n  // increment counter\n  increment: function(amount) { this.count += amount; }\n}"
	decls := NewAnalyzer(DefaultRegistry()).AnalyzeFile(text)

	require.Len(t, decls, 1)
	assert.Equal(t, "increment", decls[0].Name)
	assert.Equal(t, "amount", decls[0].Params)
	assert.Equal(t, "increment counter", decls[0].Comment)
	assert.Equal(t, TagOptionsAPIMember, decls[0].Tag)
}

func TestAnalyzeFile_HookExample(t *testing.T) {
	t.Parallel()

	decls := NewAnalyzer(DefaultRegistry()).AnalyzeFile("const data = useFetch(url)")

	require.Len(t, decls, 1)
	assert.Equal(t, "data", decls[0].Name)
	assert.Equal(t, "url", decls[0].Params)
	assert.Contains(t, decls[0].Note, "useFetch")
	assert.Equal(t, TagHookUsage, decls[0].Tag)
}

func TestAnalyzeFile_ReactComponentFile(t *testing.T) {
	t.Parallel()

	text := `import React, { useState } from 'react';

// Shows a counter
export function Counter({ start }) {
  const [count, setCount] = useState(start);
  return <button onClick={() => setCount(count + 1)}>{count}</button>;
}

export interface CounterProps {
  start: number;
}
`
	decls := NewAnalyzer(DefaultRegistry()).AnalyzeFile(text)
	require.Len(t, decls, 4)

	assert.Equal(t, "Counter", decls[0].Name)
	assert.Equal(t, TagNamedExport, decls[0].Tag)
	assert.Equal(t, "Shows a counter", decls[0].Comment)
	assert.Equal(t, 4, decls[0].Line)

	assert.Equal(t, "Counter", decls[1].Name)
	assert.Equal(t, TagFunctionalComponent, decls[1].Tag)
	assert.Equal(t, "{ start }", decls[1].Params)

	assert.Equal(t, "[count, setCount]", decls[2].Name)
	assert.Equal(t, TagHookUsage, decls[2].Tag)
	assert.Equal(t, "start", decls[2].Params)
	assert.Equal(t, "", decls[2].Comment)
	assert.Equal(t, 5, decls[2].Line)

	assert.Equal(t, "CounterProps", decls[3].Name)
	assert.Equal(t, TagTypeDeclaration, decls[3].Tag)
	assert.Equal(t, 9, decls[3].Line)
}

func TestExtract_UnresolvedNameIsStillEmitted(t *testing.T) {
	t.Parallel()

	decls := Extract("export default function () {}\n", specFor(t, TagNamedExport))

	require.Len(t, decls, 1)
	assert.Equal(t, "", decls[0].Name)
	assert.Equal(t, "", decls[0].Params)
	assert.Equal(t, TagNamedExport, decls[0].Tag)
}

func TestExtract_GateShortCircuits(t *testing.T) {
	t.Parallel()

	spec := PatternSpec{
		Tag:     "probe",
		Gate:    regexp.MustCompile(`NEVER_PRESENT`),
		Pattern: regexp.MustCompile(`\w+`),
		Capture: func(g []string) Capture { return Capture{Name: g[0]} },
	}
	assert.Empty(t, Extract("alpha beta", spec))

	spec.Gate = regexp.MustCompile(`beta`)
	decls := Extract("alpha beta", spec)
	require.Len(t, decls, 2)
	assert.Equal(t, "alpha", decls[0].Name)
	assert.Equal(t, "beta", decls[1].Name)
}

func TestExtract_GateDoesNotBoundMatches(t *testing.T) {
	t.Parallel()

	// The gate only appears at the end; matches before it still count.
	spec := PatternSpec{
		Tag:     "probe",
		Gate:    regexp.MustCompile(`END$`),
		Pattern: regexp.MustCompile(`item\d`),
		Capture: func(g []string) Capture { return Capture{Name: g[0]} },
	}
	decls := Extract("item1 item2 END", spec)
	require.Len(t, decls, 2)
	assert.Equal(t, 0, decls[0].Offset)
	assert.Equal(t, 6, decls[1].Offset)
}

func TestExtract_EmptyMatchesTerminate(t *testing.T) {
	t.Parallel()

	spec := PatternSpec{
		Tag:     "probe",
		Gate:    regexp.MustCompile(``),
		Pattern: regexp.MustCompile(`x*`),
	}
	text := "abc"
	decls := Extract(text, spec)

	require.NotEmpty(t, decls)
	assert.LessOrEqual(t, len(decls), len(text)+1)
	for i := 1; i < len(decls); i++ {
		assert.Greater(t, decls[i].Offset, decls[i-1].Offset)
	}
}

func TestAnalyzeFile_RegistryOrderBeatsSourceOrder(t *testing.T) {
	t.Parallel()

	text := "type ID = string;\nexport function load(id) {}\n"
	decls := NewAnalyzer(DefaultRegistry()).AnalyzeFile(text)

	require.Len(t, decls, 2)
	assert.Equal(t, "load", decls[0].Name)
	assert.Equal(t, TagNamedExport, decls[0].Tag)
	assert.Equal(t, "ID", decls[1].Name)
	assert.Equal(t, TagTypeDeclaration, decls[1].Tag)
	assert.Greater(t, decls[0].Offset, decls[1].Offset)
}

func TestAnalyzeFile_ReducedRegistry(t *testing.T) {
	t.Parallel()

	text := "type ID = string;\nexport function load(id) {}\n"
	decls := NewAnalyzer(DefaultRegistry().Only(TagTypeDeclaration)).AnalyzeFile(text)

	require.Len(t, decls, 1)
	assert.Equal(t, "ID", decls[0].Name)
}

func TestAnalyzeFile_Deterministic(t *testing.T) {
	t.Parallel()

	text := `import { ref, computed } from 'vue';
import { useRouter } from 'vue-router';

/** Current page. */
export const page = ref(1);
const router = useRouter();
const next = computed(() => page.value + 1);

export default {
  methods: {
    go: function(n) { router.push(n); },
    back: () => router.back(),
  },
};
`
	a := NewAnalyzer(DefaultRegistry())
	first := a.AnalyzeFile(text)
	second := a.AnalyzeFile(text)

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestRegistry_AppendAddsSpecsLast(t *testing.T) {
	t.Parallel()

	todo := PatternSpec{
		Tag:     Tag("todo"),
		Gate:    regexp.MustCompile(`TODO`),
		Pattern: regexp.MustCompile(`TODO\((\w+)\)`),
		Capture: func(g []string) Capture { return Capture{Name: g[1]} },
	}
	base := DefaultRegistry()
	extended := base.Append(todo)

	assert.Equal(t, 8, base.Len())
	assert.Equal(t, 9, extended.Len())
	_, ok := base.Lookup(todo.Tag)
	assert.False(t, ok)

	decls := NewAnalyzer(extended).AnalyzeFile("// TODO(ana)\nexport function run() {}\n")
	require.Len(t, decls, 2)
	assert.Equal(t, TagNamedExport, decls[0].Tag)
	assert.Equal(t, "ana", decls[1].Name)
	assert.Equal(t, Tag("todo"), decls[1].Tag)
}
