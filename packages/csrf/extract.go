package csrf

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
)

// FieldName is the name of the hidden input holding the token.
const FieldName = "csrfmiddlewaretoken"

// Parse builds a document tree from r.
func Parse(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse login page: %w", err)
	}
	return doc, nil
}

// Extract walks the tree below root in document order and returns the value
// of the first input element named FieldName.
func Extract(root *html.Node) (string, bool) {
	if root == nil {
		return "", false
	}
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.Data == "input" {
			if token, ok := inputToken(child); ok {
				return token, true
			}
		}
		if token, ok := Extract(child); ok {
			return token, true
		}
	}
	return "", false
}

// inputToken scans attributes in parser order. A value attribute only counts
// once the name attribute has matched on the same element.
func inputToken(n *html.Node) (string, bool) {
	matched := false
	for _, attr := range n.Attr {
		switch attr.Key {
		case "name":
			if attr.Val == FieldName {
				matched = true
			}
		case "value":
			if matched {
				return attr.Val, true
			}
		}
	}
	return "", false
}

// FromReader parses r and extracts the token in one step.
func FromReader(r io.Reader) (string, bool, error) {
	doc, err := Parse(r)
	if err != nil {
		return "", false, err
	}
	token, ok := Extract(doc)
	return token, ok, nil
}
