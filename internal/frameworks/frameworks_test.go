package frameworks

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mvp-joe/codecontext/internal/extract"
)

func ids(hints []Hint) []string {
	out := make([]string, len(hints))
	for i, h := range hints {
		out[i] = h.ID
	}
	return out
}

func TestDetect_Dependencies(t *testing.T) {
	t.Parallel()

	deps := map[string]string{
		"@reduxjs/toolkit": "^2.0.0",
		"react":            "^18.2.0",
		"typescript":       "^5.0.0",
		"vitest":           "^1.0.0",
	}
	assert.Equal(t, []string{
		"react", "typescript", "redux", "testing",
		"react-memoization", "typescript-without-types",
	}, ids(Detect(deps, nil)))
}

func TestDetect_AlternatePackageNames(t *testing.T) {
	t.Parallel()

	deps := map[string]string{
		"@material-ui/core": "^4.0.0",
		"@nextjs/core":      "^1.0.0",
		"react-redux":       "^9.0.0",
		"tailwindcss":       "^3.0.0",
	}
	assert.Equal(t, []string{"next", "redux", "material-ui", "tailwind"}, ids(Detect(deps, nil)))
}

func TestDetect_DependencyAwareTips(t *testing.T) {
	t.Parallel()

	deps := map[string]string{"react": "^18", "typescript": "^5"}
	memo := []FileDeclarations{{
		RelPath: "src/List.tsx",
		Declarations: []extract.Declaration{
			{Name: "sorted", Tag: extract.TagHookUsage, Note: "hook: useMemo"},
			{Name: "Props", Tag: extract.TagTypeDeclaration},
		},
	}}
	assert.Equal(t, []string{"react", "typescript"}, ids(Detect(deps, memo)))

	plain := []FileDeclarations{{
		RelPath:      "src/List.tsx",
		Declarations: []extract.Declaration{{Name: "items", Tag: extract.TagHookUsage, Note: "hook: useState"}},
	}}
	assert.Equal(t, []string{"react", "typescript", "react-memoization", "typescript-without-types"}, ids(Detect(deps, plain)))
}

func TestDetect_Declarations(t *testing.T) {
	t.Parallel()

	files := []FileDeclarations{
		{RelPath: "src/Old.jsx", Declarations: []extract.Declaration{{Name: "Old", Tag: extract.TagClassComponent}}},
		{RelPath: "src/New.tsx", Declarations: []extract.Declaration{{Name: "x", Tag: extract.TagHookUsage}}},
		{RelPath: "src/store.js", Declarations: []extract.Declaration{{Name: "State", Tag: extract.TagTypeDeclaration}}},
		{RelPath: "src/a.ts", Declarations: []extract.Declaration{{Name: "count", Tag: extract.TagCompositionAPI}}},
	}
	deps := map[string]string{"react": "^18.2.0"}
	assert.Equal(t, []string{"react", "mixed-react-styles", "react-memoization", "types-in-js"}, ids(Detect(deps, files)))

	files = append(files, FileDeclarations{
		RelPath:      "src/b.vue",
		Declarations: []extract.Declaration{{Name: "go", Tag: extract.TagOptionsAPIMember}},
	})
	deps["vue"] = "^3.4.0"
	assert.Equal(t, []string{"react", "vue", "mixed-react-styles", "react-memoization", "mixed-vue-styles", "types-in-js"}, ids(Detect(deps, files)))
}

func TestDetect_MixedStylesNeedFrameworkDependency(t *testing.T) {
	t.Parallel()

	files := []FileDeclarations{
		{RelPath: "src/Old.js", Declarations: []extract.Declaration{{Name: "Old", Tag: extract.TagClassComponent}}},
		{RelPath: "src/New.js", Declarations: []extract.Declaration{{Name: "x", Tag: extract.TagHookUsage}}},
		{RelPath: "src/a.js", Declarations: []extract.Declaration{{Name: "count", Tag: extract.TagCompositionAPI}}},
		{RelPath: "src/b.js", Declarations: []extract.Declaration{{Name: "go", Tag: extract.TagOptionsAPIMember}}},
	}
	assert.Empty(t, Detect(nil, files))
	assert.Equal(t, []string{"express"}, ids(Detect(map[string]string{"express": "^4.18.0"}, files)))
}

func TestDetect_Nothing(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Detect(map[string]string{"lodash": "^4"}, nil))
}
