package extract

import "strings"

// Tag identifies which declaration convention a match belongs to.
type Tag string

const (
	TagModuleExportObject  Tag = "moduleExportObject"
	TagNamedExport         Tag = "namedExport"
	TagFunctionalComponent Tag = "functionalComponent"
	TagClassComponent      Tag = "classComponent"
	TagHookUsage           Tag = "hookUsage"
	TagCompositionAPI      Tag = "compositionApi"
	TagOptionsAPIMember    Tag = "optionsApiMember"
	TagTypeDeclaration     Tag = "typeDeclaration"
)

// Declaration is one located function, component or type-like entity.
// Name is empty when the capture mapping could not resolve one; such
// declarations are still emitted.
type Declaration struct {
	Name    string `json:"name" yaml:"name"`
	Params  string `json:"params" yaml:"params"`
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`
	Tag     Tag    `json:"tag" yaml:"tag"`
	Note    string `json:"note,omitempty" yaml:"note,omitempty"`
	Offset  int    `json:"offset" yaml:"offset"` // byte offset of the match start
	Line    int    `json:"line" yaml:"line"`     // 1-based line of the match start
}

// String renders the declaration as "name(params) [note] - comment",
// omitting the note and comment parts when they are empty.
func (d Declaration) String() string {
	var b strings.Builder
	b.WriteString(d.Name)
	b.WriteByte('(')
	b.WriteString(d.Params)
	b.WriteByte(')')
	if d.Note != "" {
		b.WriteString(" [")
		b.WriteString(d.Note)
		b.WriteByte(']')
	}
	if d.Comment != "" {
		b.WriteString(" - ")
		b.WriteString(d.Comment)
	}
	return b.String()
}
