package vdom

import (
	"fmt"
	"strings"
)

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Raw creates an unescaped HTML node.
// Use with caution - can lead to XSS if content is user-provided.
func Raw(html string) *VNode {
	return &VNode{
		Kind: KindRaw,
		Text: html,
	}
}

// Fragment groups children without a wrapper element.
func Fragment(children ...any) *VNode {
	node := &VNode{
		Kind:     KindFragment,
		Children: make([]*VNode, 0),
	}

	for _, child := range children {
		switch v := child.(type) {
		case nil:
			continue
		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}
		case []*VNode:
			for _, c := range v {
				if c != nil {
					node.Children = append(node.Children, c)
				}
			}
		case string:
			node.Children = append(node.Children, Text(v))
		case Component:
			node.Children = append(node.Children, &VNode{
				Kind: KindComponent,
				Comp: v,
			})
		}
	}

	return node
}

// If returns the node if condition is true, nil otherwise.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// Resolve expands every KindComponent node in the tree by rendering its
// component and storing the output as the node's only child. The tree is
// modified in place and returned for chaining.
func Resolve(node *VNode) *VNode {
	if node == nil {
		return nil
	}
	if node.Kind == KindComponent && node.Comp != nil {
		out := node.Comp.Render()
		if out != nil {
			node.Children = []*VNode{out}
		} else {
			node.Children = nil
		}
	}
	for _, child := range node.Children {
		Resolve(child)
	}
	return node
}

// FindByID returns the first element whose id attribute equals id, walking
// the tree in document order. Unresolved components are not entered.
func FindByID(node *VNode, id string) *VNode {
	if node == nil {
		return nil
	}
	if node.Kind == KindElement {
		if v, ok := node.Props["id"].(string); ok && v == id {
			return node
		}
	}
	for _, child := range node.Children {
		if found := FindByID(child, id); found != nil {
			return found
		}
	}
	return nil
}

// TextContent returns the concatenated text of the tree, like the DOM
// textContent property. Raw nodes are included verbatim.
func TextContent(node *VNode) string {
	if node == nil {
		return ""
	}
	switch node.Kind {
	case KindText, KindRaw:
		return node.Text
	}
	var b strings.Builder
	for _, child := range node.Children {
		b.WriteString(TextContent(child))
	}
	return b.String()
}
