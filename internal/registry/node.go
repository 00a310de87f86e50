package registry

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Node is one entry of the app menu tree. Leaves carry a Module; submenus
// carry Children.
type Node struct {
	Name     string
	Path     string
	Module   string
	Children []*Node
}

func (n *Node) IsLeaf() bool { return n != nil && n.Module != "" }

// Find returns the node at the slash separated path, or nil.
func (n *Node) Find(path string) *Node {
	if n == nil {
		return nil
	}
	path = strings.Trim(path, "/")
	if path == n.Path {
		return n
	}
	for _, child := range n.Children {
		if child.Path == path {
			return child
		}
		if !child.IsLeaf() && strings.HasPrefix(path, child.Path+"/") {
			return child.Find(path)
		}
	}
	return nil
}

// Walk calls fn for n and every descendant, depth first.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Leaves returns every app entry below n.
func (n *Node) Leaves() []*Node {
	var leaves []*Node
	n.Walk(func(node *Node) {
		if node.IsLeaf() {
			leaves = append(leaves, node)
		}
	})
	return leaves
}

// DisplayName turns a directory name like sound_demos into Sound Demos.
func DisplayName(dir string) string {
	words := strings.Split(dir, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
