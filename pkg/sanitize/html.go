// Package sanitize converts message HTML into readable plain text.
package sanitize

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/jaytaylor/html2text"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var policy = bluemonday.UGCPolicy().AllowElements("center")

// skipElements have their entire subtree dropped; none of it is message text.
var skipElements = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Title:    true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Template: true,
}

// HTML removes non-content elements and anything unsafe from the provided html.
func HTML(input string) (string, error) {
	b := &bytes.Buffer{}
	if err := contentFilter(b, strings.NewReader(input)); err != nil {
		return "", err
	}
	return policy.Sanitize(b.String()), nil
}

// Text renders the provided html as plain text.
func Text(input string) (string, error) {
	clean, err := HTML(input)
	if err != nil {
		return "", err
	}
	text, err := html2text.FromString(clean)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// contentFilter copies tokens from r to w, leaving out the subtrees of skipElements.
func contentFilter(w io.Writer, r io.Reader) error {
	bw := bufio.NewWriter(w)
	z := html.NewTokenizer(r)
	depth := 0
	var skipping atom.Atom
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			err := z.Err()
			if err == io.EOF {
				return bw.Flush()
			}
			return err
		case html.StartTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if depth > 0 {
				if a == skipping {
					depth++
				}
				continue
			}
			if skipElements[a] {
				skipping = a
				depth = 1
				continue
			}
		case html.EndTagToken:
			if depth > 0 {
				name, _ := z.TagName()
				if atom.Lookup(name) == skipping {
					depth--
				}
				continue
			}
		default:
			if depth > 0 {
				continue
			}
		}
		if _, err := bw.Write(z.Raw()); err != nil {
			return err
		}
	}
}
