package parser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Selector extracts the paragraphs worth keeping from a parsed page.
type Selector func(doc *html.Node) []string

// Selector names accepted by SelectorFor.
const (
	SelectorParagraph    = "paragraph"
	SelectorSumula       = "sumula"
	SelectorEnciclopedia = "enciclopedia"
)

// excludedEnciclopediaBlocks are the containers of notes and bibliography
// on encyclopedia entries.
var excludedEnciclopediaBlocks = map[string]bool{
	"notas-verbetes":        true,
	"bibliografia-verbetes": true,
	"citacao-verbetes":      true,
	"edicoes-verbetes":      true,
	"artigos-verbetes":      true,
}

// SelectorFor returns the selector registered under name.
func SelectorFor(name string) (Selector, error) {
	switch name {
	case SelectorParagraph, "":
		return Paragraphs, nil
	case SelectorSumula:
		return Sumulas, nil
	case SelectorEnciclopedia:
		return EnciclopediaEntries, nil
	default:
		return nil, fmt.Errorf("unknown selector: %q", name)
	}
}

// Paragraphs returns the text of every <p>.
func Paragraphs(doc *html.Node) []string {
	var out []string
	walk(doc, func(n *html.Node) bool {
		if isElement(n, "p") {
			out = append(out, nodeText(n))
		}
		return true
	})
	return out
}

// Sumulas returns the first paragraph of each div.parCOM inside #conteudo.
func Sumulas(doc *html.Node) []string {
	container := find(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "id") == "conteudo"
	})
	if container == nil {
		return nil
	}

	var out []string
	walk(container, func(n *html.Node) bool {
		if !isElement(n, "div") || !hasClass(n, "parCOM") {
			return true
		}
		if p := find(n, func(c *html.Node) bool { return c != n && isElement(c, "p") }); p != nil {
			out = append(out, nodeText(p))
		}
		return true
	})
	return out
}

// EnciclopediaEntries returns every <p> except those whose parent's first
// class marks a notes or bibliography block.
func EnciclopediaEntries(doc *html.Node) []string {
	var out []string
	walk(doc, func(n *html.Node) bool {
		if !isElement(n, "p") {
			return true
		}
		if n.Parent != nil {
			if classes := strings.Fields(attr(n.Parent, "class")); len(classes) > 0 && excludedEnciclopediaBlocks[classes[0]] {
				return true
			}
		}
		out = append(out, nodeText(n))
		return true
	})
	return out
}

// walk visits n and its descendants depth first while visit returns true.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	walk(n, func(c *html.Node) bool {
		if found != nil {
			return false
		}
		if match(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

func isElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// nodeText concatenates the text nodes below n.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}
