package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// NormalizeText strips non-printable characters, trims the ends and collapses
// runs of whitespace into a single space.
func NormalizeText(s string) string {
	s = removeNonPrintable(s)
	s = strings.TrimSpace(s)
	return innerWhitespace.ReplaceAllString(s, " ")
}

// Text returns the normalized text of every node in the selection.
func Text(sel *goquery.Selection) string {
	parts := make([]string, len(sel.Nodes))
	for i, n := range sel.Nodes {
		parts[i] = GetText(n)
	}
	return NormalizeText(strings.Join(parts, " "))
}

// FirstMatch returns the selection for the first selector in `selectors`
// that matches anything in doc, along with the selector. Empty selectors
// are skipped.
func FirstMatch(doc *goquery.Document, selectors []string) (*goquery.Selection, string, bool) {
	for _, selector := range selectors {
		if selector == "" {
			continue
		}
		sel := doc.Find(selector)
		if sel.Length() > 0 {
			return sel, selector, true
		}
	}
	return nil, "", false
}
