package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssociateComment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "line comment directly above",
			text: "// loads the user\nfunction load() {}",
			want: "loads the user",
		},
		{
			name: "line comment with blank line between",
			text: "// loads the user\n\nfunction load() {}",
			want: "loads the user",
		},
		{
			name: "nearest line comment wins",
			text: "// first\n// second\nfunction load() {}",
			want: "second",
		},
		{
			name: "empty line comment is skipped",
			text: "// real\n//\nfunction load() {}",
			want: "real",
		},
		{
			name: "block comment directly above",
			text: "/**\n * Loads the user.\n * @param id user id\n */\nfunction load(id) {}",
			want: "Loads the user.\n@param id user id",
		},
		{
			name: "single line block comment",
			text: "/* loads */\nfunction load() {}",
			want: "loads",
		},
		{
			name: "line comment preferred over block comment",
			text: "/** block */\n// line\nfunction load() {}",
			want: "line",
		},
		{
			name: "last block comment wins",
			text: "/* one */\n/* two */\nfunction load() {}",
			want: "two",
		},
		{
			name: "trailing line comment on code line",
			text: "init(); // after init\nfunction load() {}",
			want: "after init",
		},
		{
			name: "no comment",
			text: "const a = 1;\nfunction load() {}",
			want: "",
		},
		{
			name: "no text before match",
			text: "function load() {}",
			want: "",
		},
		{
			// The block fallback scans all preceding text, so a distant
			// header comment is attached even with code in between.
			name: "distant block comment is still attached",
			text: "/* file header */\nconst x = 1;\nfunction load() {}",
			want: "file header",
		},
		{
			name: "code line hides line comment above it",
			text: "// unrelated\nconst x = 1;\nfunction load() {}",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			offset := strings.Index(tt.text, "function load")
			assert.Equal(t, tt.want, AssociateComment(tt.text, offset))
		})
	}
}

func TestAssociateComment_OffsetOutOfRange(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", AssociateComment("// x\n", -5))
	assert.Equal(t, "x", AssociateComment("// x\n", 1000))
}

func TestDeclaration_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "add(a, b) - adds", Declaration{Name: "add", Params: "a, b", Comment: "adds"}.String())
	assert.Equal(t, "data(url) [hook: useFetch]", Declaration{Name: "data", Params: "url", Note: "hook: useFetch"}.String())
	assert.Equal(t, "Box() [class component] - a box", Declaration{Name: "Box", Note: NoteClassComponent, Comment: "a box"}.String())
	assert.Equal(t, "()", Declaration{}.String())
}
