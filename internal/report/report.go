// Package report composes the project context report.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mvp-joe/codecontext/internal/extract"
	"github.com/mvp-joe/codecontext/internal/frameworks"
	"github.com/mvp-joe/codecontext/internal/manifest"
)

// Problem kinds.
const (
	ProblemUnreadableFile    = "unreadable-file"
	ProblemUnreadablePath    = "unreadable-path"
	ProblemMalformedManifest = "malformed-manifest"
)

// Problem is a non-fatal failure recorded during a run.
type Problem struct {
	Kind    string `json:"kind" yaml:"kind"`
	Path    string `json:"path" yaml:"path"`
	Message string `json:"message" yaml:"message"`
}

// FileEntry holds the declarations of one analyzed file.
type FileEntry struct {
	Path         string                `json:"path" yaml:"path"`
	Declarations []extract.Declaration `json:"declarations" yaml:"declarations"`
}

// Totals are the aggregate counts shown in the report header.
type Totals struct {
	Files        int                 `json:"files" yaml:"files"`
	Declarations int                 `json:"declarations" yaml:"declarations"`
	ByTag        map[extract.Tag]int `json:"byTag,omitempty" yaml:"byTag,omitempty"`
}

// Report is the complete output of one run.
type Report struct {
	Root     string             `json:"root" yaml:"root"`
	Tree     string             `json:"tree,omitempty" yaml:"tree,omitempty"`
	Projects []manifest.Project `json:"projects,omitempty" yaml:"projects,omitempty"`
	Hints    []frameworks.Hint  `json:"hints,omitempty" yaml:"hints,omitempty"`
	Files    []FileEntry        `json:"files" yaml:"files"`
	Totals   Totals             `json:"totals" yaml:"totals"`
	Problems []Problem          `json:"problems,omitempty" yaml:"problems,omitempty"`
}

// Write renders r in the given format ("text", "json" or "yaml").
func Write(w io.Writer, r *Report, format string) error {
	switch strings.ToLower(format) {
	case "", "text":
		return WriteText(w, r)
	case "json":
		return WriteJSON(w, r)
	case "yaml":
		return WriteYAML(w, r)
	}
	return fmt.Errorf("unknown report format %q", format)
}

// WriteJSON renders r as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// WriteYAML renders r as YAML.
func WriteYAML(w io.Writer, r *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}

// WriteText renders r as the human-readable report. Sections without
// content are left out.
func WriteText(w io.Writer, r *Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Project context: %s\n\n", r.Root)
	fmt.Fprintf(&b, "Files analyzed: %d\n", r.Totals.Files)
	fmt.Fprintf(&b, "Declarations found: %d\n", r.Totals.Declarations)

	if r.Tree != "" {
		b.WriteString("\n## Directory structure\n\n")
		b.WriteString(r.Tree)
	}

	if len(r.Projects) > 0 {
		b.WriteString("\n## Dependencies\n")
		for _, p := range r.Projects {
			fmt.Fprintf(&b, "\n### %s (%s)\n", p.Name, p.Path)
			writeDeps(&b, "dependencies", p.Dependencies)
			writeDeps(&b, "devDependencies", p.DevDependencies)
		}
	}

	if len(r.Hints) > 0 {
		b.WriteString("\n## Framework notes\n\n")
		for _, h := range r.Hints {
			fmt.Fprintf(&b, "- %s\n", h.Message)
		}
	}

	if len(r.Files) > 0 {
		b.WriteString("\n## Declarations\n")
		for _, f := range r.Files {
			fmt.Fprintf(&b, "\n### %s\n\n", f.Path)
			if len(f.Declarations) == 0 {
				b.WriteString("(none)\n")
				continue
			}
			for _, d := range f.Declarations {
				fmt.Fprintf(&b, "- %s\n", indentContinuation(d.String()))
			}
		}
	}

	if len(r.Problems) > 0 {
		b.WriteString("\n## Problems\n\n")
		for _, p := range r.Problems {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", p.Kind, p.Path, p.Message)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeDeps(b *strings.Builder, label string, deps map[string]string) {
	if len(deps) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", label)
	for _, name := range manifest.SortedNames(deps) {
		fmt.Fprintf(b, "  - %s@%s\n", name, deps[name])
	}
}

// indentContinuation keeps multi-line comments inside their list item.
func indentContinuation(s string) string {
	return strings.ReplaceAll(s, "\n", "\n  ")
}
