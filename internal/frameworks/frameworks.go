// Package frameworks derives advisory notes about the frameworks a project
// uses from its dependency names and the declarations found in its files.
package frameworks

import (
	"path"
	"strings"

	"github.com/mvp-joe/codecontext/internal/extract"
)

// Hint is one advisory note.
type Hint struct {
	ID      string `json:"id" yaml:"id"`
	Message string `json:"message" yaml:"message"`
}

// FileDeclarations pairs a relative path with the declarations found in it.
type FileDeclarations struct {
	RelPath      string
	Declarations []extract.Declaration
}

// dependencyRule fires when any of its packages is declared.
type dependencyRule struct {
	id       string
	packages []string
	message  string
}

var dependencyRules = []dependencyRule{
	{"react", []string{"react"}, "React project: components and hooks are listed per file."},
	{"next", []string{"next", "@nextjs/core"}, "Next.js detected: files under pages/ or app/ are routes."},
	{"vue", []string{"vue"}, "Vue project: .vue single-file components are analyzed as text."},
	{"nuxt", []string{"nuxt"}, "Nuxt detected: pages/ and composables/ follow Nuxt conventions."},
	{"angular", []string{"@angular/core", "angular"}, "Angular detected: decorators are not extracted."},
	{"svelte", []string{"svelte"}, "Svelte detected: .svelte files are not analyzed."},
	{"express", []string{"express"}, "Express server: route handlers appear as module exports."},
	{"typescript", []string{"typescript"}, "TypeScript is used: type declarations are listed."},
	{"redux", []string{"redux", "react-redux", "@reduxjs/toolkit"}, "Redux state management is used."},
	{"mobx", []string{"mobx", "mobx-react"}, "MobX state management is used."},
	{"recoil", []string{"recoil"}, "Recoil state management is used."},
	{"vuex", []string{"vuex"}, "Vuex state management is used."},
	{"pinia", []string{"pinia"}, "Pinia stores are used; defineStore setup functions appear as composition API."},
	{"material-ui", []string{"@mui/material", "@material-ui/core"}, "Material UI component library."},
	{"ant-design", []string{"antd", "@ant-design/icons"}, "Ant Design component library."},
	{"bootstrap", []string{"bootstrap", "react-bootstrap"}, "Bootstrap styling."},
	{"tailwind", []string{"tailwindcss"}, "Styled with Tailwind CSS."},
	{"react-router", []string{"react-router-dom"}, "React Router handles client-side routes."},
	{"vue-router", []string{"vue-router"}, "Vue Router handles client-side routes."},
	{"webpack", []string{"webpack"}, "Built with webpack."},
	{"vite", []string{"vite"}, "Built with Vite."},
	{"rollup", []string{"rollup"}, "Bundled with Rollup."},
	{"esbuild", []string{"esbuild"}, "Bundled with esbuild."},
	{"testing", []string{"jest", "vitest"}, "A test runner is configured."},
}

// Detect returns the hints for the given dependencies and declarations.
// Dependency hints come first, in rule order, followed by declaration hints.
func Detect(deps map[string]string, files []FileDeclarations) []Hint {
	var hints []Hint
	for _, rule := range dependencyRules {
		for _, pkg := range rule.packages {
			if has(deps, pkg) {
				hints = append(hints, Hint{ID: rule.id, Message: rule.message})
				break
			}
		}
	}

	tags := make(map[extract.Tag]int)
	typesInJS, memoHooks := 0, 0
	for _, f := range files {
		for _, d := range f.Declarations {
			tags[d.Tag]++
			if d.Tag == extract.TagTypeDeclaration && isPlainJS(f.RelPath) {
				typesInJS++
			}
			if d.Tag == extract.TagHookUsage && (d.Note == "hook: useMemo" || d.Note == "hook: useCallback") {
				memoHooks++
			}
		}
	}

	// Hook and class shapes also match non-React code, so the mixed-style
	// hints need the framework among the dependencies.
	if has(deps, "react") && tags[extract.TagHookUsage] > 0 && tags[extract.TagClassComponent] > 0 {
		hints = append(hints, Hint{
			ID:      "mixed-react-styles",
			Message: "Both hooks and class components are present; the codebase mixes React styles.",
		})
	}
	if has(deps, "react") && memoHooks == 0 {
		hints = append(hints, Hint{
			ID:      "react-memoization",
			Message: "No useMemo or useCallback calls were found; expensive renders may benefit from memoization.",
		})
	}
	if has(deps, "vue") && tags[extract.TagCompositionAPI] > 0 && tags[extract.TagOptionsAPIMember] > 0 {
		hints = append(hints, Hint{
			ID:      "mixed-vue-styles",
			Message: "Both Composition API and Options API are present; the codebase mixes Vue styles.",
		})
	}
	if has(deps, "typescript") && tags[extract.TagTypeDeclaration] == 0 {
		hints = append(hints, Hint{
			ID:      "typescript-without-types",
			Message: "TypeScript is a dependency but no interfaces, types or enums were found.",
		})
	}
	if typesInJS > 0 {
		hints = append(hints, Hint{
			ID:      "types-in-js",
			Message: "Type declarations were matched in plain JavaScript files; they may be false positives.",
		})
	}
	return hints
}

func has(deps map[string]string, pkg string) bool {
	_, ok := deps[pkg]
	return ok
}

func isPlainJS(relPath string) bool {
	switch strings.ToLower(path.Ext(relPath)) {
	case ".js", ".jsx", ".mjs", ".cjs":
		return true
	}
	return false
}
