// Package tree renders a list of relative paths as an ASCII directory tree.
package tree

import (
	"sort"
	"strings"
)

type node struct {
	name     string
	children map[string]*node
	isDir    bool
}

func newNode(name string, isDir bool) *node {
	return &node{name: name, isDir: isDir, children: make(map[string]*node)}
}

// Render draws the tree rooted at rootName for the given slash-separated
// relative file paths. At each level directories come before files and both
// groups are sorted; directories carry a trailing "/".
func Render(rootName string, relPaths []string) string {
	return RenderDepth(rootName, relPaths, 0)
}

// RenderDepth is Render limited to maxDepth levels below the root. Directories
// on the last level are drawn without their contents. Zero means no limit.
func RenderDepth(rootName string, relPaths []string, maxDepth int) string {
	root := newNode(rootName, true)
	for _, p := range relPaths {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		parts := strings.Split(p, "/")
		cur := root
		for i, part := range parts {
			last := i == len(parts)-1
			child, ok := cur.children[part]
			if !ok {
				child = newNode(part, !last)
				cur.children[part] = child
			} else if !last {
				child.isDir = true
			}
			cur = child
		}
	}

	var b strings.Builder
	b.WriteString(strings.TrimSuffix(rootName, "/"))
	b.WriteString("/\n")
	writeChildren(&b, root, "", 1, maxDepth)
	return b.String()
}

func writeChildren(b *strings.Builder, n *node, prefix string, depth, maxDepth int) {
	children := sortedChildren(n)
	for i, child := range children {
		last := i == len(children)-1
		connector, extension := "├── ", "│   "
		if last {
			connector, extension = "└── ", "    "
		}

		b.WriteString(prefix)
		b.WriteString(connector)
		b.WriteString(child.name)
		if child.isDir {
			b.WriteByte('/')
		}
		b.WriteByte('\n')

		if child.isDir && (maxDepth == 0 || depth < maxDepth) {
			writeChildren(b, child, prefix+extension, depth+1, maxDepth)
		}
	}
}

func sortedChildren(n *node) []*node {
	out := make([]*node, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].isDir != out[j].isDir {
			return out[i].isDir
		}
		return out[i].name < out[j].name
	})
	return out
}
