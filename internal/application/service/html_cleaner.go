package service

import (
	"errors"
	"strings"

	"golang.org/x/net/html"
)

const truncatedMarker = "\n<!-- HTML truncated -->"

var errNoBody = errors.New("no <body> element")

// ContentFilter decides what survives when page HTML is reduced for reading.
type ContentFilter struct {
	DropTags  []string
	DropAttrs []string
	// MaxBytes truncates the rendered result. Zero disables truncation.
	MaxBytes int
	// DropAttr removes additional attributes when it returns true.
	DropAttr func(attr html.Attribute) bool
}

func DefaultContentFilter() ContentFilter {
	return ContentFilter{
		DropTags: []string{
			"script", "style", "noscript", "svg", "iframe",
			"link", "meta", "head", "title",
		},
		DropAttrs: []string{
			"style", "srcset", "sizes", "loading", "decoding", "fetchpriority", "tabindex",
		},
		MaxBytes: 130_000,
	}
}

// Clean renders the <body> of rawHTML without comments, dropped tags, event
// handlers, data-* attributes or dropped attributes. Indentation-only text
// nodes are removed too.
func (f ContentFilter) Clean(rawHTML string) (string, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}

	var body *html.Node
	for n := range walk(doc) {
		if n.Type == html.ElementNode && n.Data == "body" {
			body = n
			break
		}
	}
	if body == nil {
		return "", errNoBody
	}

	p := pruner{
		tags:  toSet(f.DropTags),
		attrs: toSet(f.DropAttrs),
		extra: f.DropAttr,
	}
	p.prune(body)

	var sb strings.Builder
	if err := html.Render(&sb, body); err != nil {
		return "", err
	}
	return truncateBytes(sb.String(), f.MaxBytes), nil
}

type pruner struct {
	tags  map[string]struct{}
	attrs map[string]struct{}
	extra func(attr html.Attribute) bool
}

func (p pruner) prune(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if p.drop(c) {
			n.RemoveChild(c)
		} else if c.Type == html.ElementNode {
			c.Attr = p.keepAttrs(c.Attr)
			p.prune(c)
		}
		c = next
	}
}

func (p pruner) drop(n *html.Node) bool {
	switch n.Type {
	case html.CommentNode:
		return true
	case html.TextNode:
		return strings.TrimSpace(n.Data) == "" && strings.Contains(n.Data, "\n")
	case html.ElementNode:
		_, ok := p.tags[n.Data]
		return ok
	}
	return false
}

// Role and aria-* attributes are kept; selectors are usually built from them.
func (p pruner) keepAttrs(attrs []html.Attribute) []html.Attribute {
	kept := attrs[:0]
	for _, a := range attrs {
		if _, ok := p.attrs[a.Key]; ok {
			continue
		}
		if strings.HasPrefix(a.Key, "data-") || strings.HasPrefix(a.Key, "on") {
			continue
		}
		if p.extra != nil && p.extra(a) {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

func walk(root *html.Node) func(yield func(*html.Node) bool) {
	return func(yield func(*html.Node) bool) {
		var visit func(n *html.Node) bool
		visit = func(n *html.Node) bool {
			if !yield(n) {
				return false
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if !visit(c) {
					return false
				}
			}
			return true
		}
		visit(root)
	}
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

func truncateBytes(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + truncatedMarker
}
