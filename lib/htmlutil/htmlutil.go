package htmlutil

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"patsearch-backend/lib/textutil"

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

var docIDPattern = regexp.MustCompile(`docId=([^&\s]+)`)

// DocID extracts the docId query parameter from a portal href. Returns
// "" when the href carries none.
func DocID(href string) string {
	groups := docIDPattern.FindStringSubmatch(href)
	if len(groups) < 2 {
		return ""
	}
	return groups[1]
}

// AbsoluteURL resolves a possibly relative href against the portal base
// URL. Hrefs that fail to parse resolve to "".
func AbsoluteURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

type Anchor struct {
	Name string
	Href string
}

// Anchors collects the cleaned text and href of every anchor node in
// the selection.
func Anchors(sel *goquery.Selection) []Anchor {
	var anchors []Anchor
	sel.Each(func(_ int, a *goquery.Selection) {
		anchors = append(anchors, Anchor{
			Name: textutil.NormalizeSpace(a.Text()),
			Href: a.AttrOr("href", ""),
		})
	})
	return anchors
}
