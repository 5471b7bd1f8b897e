package sanitize_test

import (
	"testing"

	"github.com/inbucket/mimetpl/pkg/sanitize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHTMLPlainStrings test plain text passthrough
func TestHTMLPlainStrings(t *testing.T) {
	testStrings := []string{
		"",
		"plain string",
		"one &lt; two",
	}
	for _, ts := range testStrings {
		t.Run(ts, func(t *testing.T) {
			got, err := sanitize.HTML(ts)
			require.NoError(t, err)
			assert.Equal(t, ts, got)
		})
	}
}

// TestHTMLSkippedElements checks that non-content elements vanish with their text.
func TestHTMLSkippedElements(t *testing.T) {
	testCases := []struct {
		name, input, want string
	}{
		{
			"script",
			`safe<script>nope</script>`,
			`safe`,
		},
		{
			"style",
			`<style>p { color: red; }</style><p>text</p>`,
			`<p>text</p>`,
		},
		{
			"head",
			`<html><head><title>Title</title></head><body><div>body</div></body></html>`,
			`<div>body</div>`,
		},
		{
			"event handler",
			`<a onblur="alert(something)" href="http://mysite.com">mysite</a>`,
			`<a href="http://mysite.com" rel="nofollow">mysite</a>`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := sanitize.HTML(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestText(t *testing.T) {
	testCases := []struct {
		name, input, want string
	}{
		{
			"paragraph",
			`<p>This is a &lt;HTML&gt; text part.</p>`,
			`This is a <HTML> text part.`,
		},
		{
			"document",
			`<html><head><title>Ignored</title><style>p {}</style></head>` +
				`<body><p>Hello</p></body></html>`,
			`Hello`,
		},
		{
			"plain",
			`just text`,
			`just text`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := sanitize.Text(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
