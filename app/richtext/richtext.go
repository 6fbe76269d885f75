// Package richtext cleans user supplied HTML before it is stored and
// rendered unescaped.
package richtext

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// dropped elements are removed together with everything inside them.
var dropped = "script, style, svg, math, iframe, frame, frameset, object, embed, applet, " +
	"template, noscript, noembed, xmp, plaintext, textarea, select, option, title, " +
	"head, link, meta, base, form, input, button"

// allowed maps each permitted element to its permitted attributes. Other
// elements are unwrapped, keeping their children.
var allowed = map[string]map[string]bool{
	"p": nil, "br": nil, "hr": nil, "div": nil, "span": nil,
	"h1": nil, "h2": nil, "h3": nil, "h4": nil, "h5": nil, "h6": nil,
	"strong": nil, "b": nil, "em": nil, "i": nil, "u": nil, "s": nil, "strike": nil,
	"sub": nil, "sup": nil, "small": nil, "mark": nil,
	"blockquote": {"cite": true}, "q": {"cite": true},
	"pre": nil, "code": nil, "kbd": nil,
	"ul": nil, "ol": {"start": true}, "li": nil, "dl": nil, "dt": nil, "dd": nil,
	"a":   {"href": true, "title": true},
	"img": {"src": true, "alt": true, "title": true, "width": true, "height": true},
	"figure": nil, "figcaption": nil,
	"table": nil, "caption": nil, "thead": nil, "tbody": nil, "tfoot": nil,
	"tr": nil, "th": {"colspan": true, "rowspan": true}, "td": {"colspan": true, "rowspan": true},
}

var urlAttrs = map[string]bool{"href": true, "src": true, "cite": true}

// Sanitize reduces an HTML fragment to a fixed set of formatting elements
// and attributes. Links and images must use http, https or mailto URLs,
// or be relative.
func Sanitize(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + fragment + "</body>"))
	if err != nil {
		return "", err
	}

	body := doc.Find("body")
	body.Find(dropped).Remove()

	body.Find("*").Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		if node.Parent == nil {
			// inside an element removed earlier
			return
		}
		if node.Namespace != "" {
			s.Remove()
			return
		}

		attrs, ok := allowed[node.Data]
		if !ok {
			if contents := s.Contents(); contents.Length() > 0 {
				contents.Unwrap()
			} else {
				s.Remove()
			}
			return
		}

		kept := node.Attr[:0]
		for _, attr := range node.Attr {
			if attr.Namespace != "" || !attrs[attr.Key] {
				continue
			}
			if urlAttrs[attr.Key] && !safeURL(attr.Val) {
				continue
			}
			kept = append(kept, attr)
		}
		node.Attr = kept
	})

	// comments are not content
	body.Find("*").AddSelection(body).Contents().FilterFunction(func(_ int, s *goquery.Selection) bool {
		return goquery.NodeName(s) == "#comment"
	}).Remove()

	out, err := body.Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// safeURL accepts relative URLs and the http, https and mailto schemes.
// Browsers ignore whitespace and control characters inside a scheme, so
// they are stripped before parsing.
func safeURL(raw string) bool {
	cleaned := strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f {
			return -1
		}
		return r
	}, raw)
	u, err := url.Parse(cleaned)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return true
	}
	return false
}

// Excerpt returns the first max characters of the fragment's text.
func Excerpt(fragment string, max int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	text := strings.Join(strings.Fields(doc.Text()), " ")
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:max])) + "…"
}
