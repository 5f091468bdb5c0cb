package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const page = `<html><body>
<div class="alert">
	Invalid   username
	or password
</div>
<div id="empty"></div>
</body></html>`

func TestText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	require.Equal(t, "Invalid username or password", Text(doc.Find(".alert")))
	require.Equal(t, "", Text(doc.Find("#empty")))
	require.Equal(t, "", Text(doc.Find(".missing")))
	require.Equal(t, "Invalid username or password", Text(doc.Find(".alert, #empty")))
}

func TestTextJoinsNodes(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<ul><li>een</li><li>twee</li></ul>`))
	require.NoError(t, err)
	require.Equal(t, "een twee", Text(doc.Find("li")))
	require.Equal(t, "eentwee", GetText(doc.Find("ul").Nodes[0]))
}

func TestFirstMatch(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	sel, selector, ok := FirstMatch(doc, []string{"", ".missing", ".alert", "#empty"})
	require.True(t, ok)
	require.Equal(t, ".alert", selector)
	require.Equal(t, 1, sel.Length())

	_, _, ok = FirstMatch(doc, []string{".missing"})
	require.False(t, ok)
	_, _, ok = FirstMatch(doc, nil)
	require.False(t, ok)
}

func TestNormalizeText(t *testing.T) {
	require.Equal(t, "a b c", NormalizeText("\t a \n\n b  c\u0000 "))
}
