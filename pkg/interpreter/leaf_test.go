package interpreter_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/inbucket/mimetpl/pkg/attachment"
	"github.com/inbucket/mimetpl/pkg/filter"
	"github.com/inbucket/mimetpl/pkg/interpreter"
	"github.com/inbucket/mimetpl/pkg/mimetree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const allText = `From: from@localhost
To: to@localhost
Content-Type: multipart/mixed; boundary="mixed"

--mixed
Content-Type: text/plain; charset=utf-8

This is a plain text part.
--mixed
Content-Type: text/html; charset=utf-8

<p>This is a &lt;HTML&gt; text part.</p>
--mixed
Content-Type: text/json; charset=utf-8

{"type": "This is a JSON text part."}
--mixed--
`

const singleAttachment = `Content-Type: application/octet-stream
Content-Disposition: attachment; filename="attachment.txt"
Content-Transfer-Encoding: base64

SGVsbG8sIHdvcmxkIQ==
`

const inlineImage = `Content-Type: multipart/related; boundary="rel"

--rel
Content-Type: text/plain; charset=utf-8

See the logo.
--rel
Content-Type: image/png
Content-Disposition: inline
Content-ID: <logo@localhost>
Content-Transfer-Encoding: base64

iVBORw0KGgo=
--rel--
`

func TestAllTextFilters(t *testing.T) {
	plain := "This is a plain text part."
	html := "<#part type=text/html>\nThis is a <HTML> text part.\n<#/part>"
	json := "<#part type=text/json>\n{\"type\": \"This is a JSON text part.\"}\n<#/part>"

	testCases := []struct {
		name   string
		policy filter.Policy
		want   string
	}{
		{"all", filter.ShowAll(), plain + "\n\n" + html + "\n\n" + json + "\n"},
		{"only plain", filter.ShowOnly("text/plain"), plain + "\n"},
		{"only html", filter.ShowOnly("text/html"), "<p>This is a &lt;HTML&gt; text part.</p>\n"},
		{"only json", filter.ShowOnly("text/json"), "{\"type\": \"This is a JSON text part.\"}\n"},
		{"include", filter.ShowIncluded("text/json", "text/plain"), plain + "\n\n" + json + "\n"},
		{"exclude", filter.ShowExcluded("text/html"), plain + "\n\n" + json + "\n"},
		{"exclude plain", filter.ShowExcluded("text/plain"), html + "\n\n" + json + "\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, interpret(t, allText, interpreter.WithFilter(tc.policy)))
		})
	}
}

func TestHTMLSkipsHead(t *testing.T) {
	raw := "Content-Type: text/html; charset=utf-8\n\n" +
		"<html><head><title>Title</title><style>p {}</style></head>" +
		"<body><p>Body text.</p></body></html>\n"
	assert.Equal(t, "<#part type=text/html>\nBody text.\n<#/part>\n", interpret(t, raw))
}

func TestPlainTextSignature(t *testing.T) {
	testCases := []struct {
		name, body, want string
	}{
		{"delimited", "Hello\n\n-- \nJohn\n", "Hello\n"},
		{"last delimiter", "a\n-- \nb\n-- \nsig\n", "a\n-- \nb\n"},
		{"leading delimiter", "-- \nonly a signature\n", "\n"},
		{"absent", "no signature--  here\n", "no signature--  here\n"},
		{"mid line", "x-- \ny\n", "x-- \ny\n"},
		{"mid line after delimiter line", "a\n-- \nb x-- \nc\n", "a\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw := "Content-Type: text/plain; charset=utf-8\n\n" + tc.body
			assert.Equal(t, tc.want, interpret(t, raw, interpreter.WithStripSignature(true)))
		})
	}
}

func TestPlainTextSignatureKept(t *testing.T) {
	raw := "Content-Type: text/plain; charset=utf-8\n\nHello\n\n-- \nJohn\n"
	assert.Equal(t, "Hello\n\n-- \nJohn\n", interpret(t, raw))
}

func TestPlainTextCarriageReturns(t *testing.T) {
	raw := "Content-Type: text/plain; charset=utf-8\r\n\r\nline one\r\nline two\r\n"
	assert.Equal(t, "line one\nline two\n", interpret(t, raw))
}

func TestUndeclaredTypeIsWrapped(t *testing.T) {
	raw := "Subject: untyped\n\nJust some text.\n"
	want := "<#part type=application/octet-stream>\nJust some text.\n<#/part>\n"
	assert.Equal(t, want, interpret(t, raw))
}

func TestAttachmentExample(t *testing.T) {
	tree, err := mimetree.Parse([]byte(singleAttachment))
	require.NoError(t, err)
	in := interpreter.New(interpreter.WithAttachmentDir("~/Downloads"))

	got, err := in.InterpretBody(context.Background(), tree)
	require.NoError(t, err)
	assert.Equal(t,
		"<#part type=application/octet-stream filename=\"~/Downloads/attachment.txt\">\n\n", got)
}

func TestAttachmentSaved(t *testing.T) {
	dir := t.TempDir()
	got := interpret(t, singleAttachment,
		interpreter.WithAttachmentDir(dir),
		interpreter.WithSaveAttachments(true))

	path := filepath.Join(dir, "attachment.txt")
	assert.Equal(t, "<#part type=application/octet-stream filename=\""+path+"\">\n", got)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", string(content))
}

func TestAttachmentNotSavedWhenHidden(t *testing.T) {
	testCases := []struct {
		name string
		opt  interpreter.Option
	}{
		{"hidden", interpreter.WithAttachments(false)},
		{"filtered", interpreter.WithFilter(filter.ShowExcluded("application/octet-stream"))},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			got := interpret(t, singleAttachment,
				interpreter.WithAttachmentDir(dir),
				interpreter.WithSaveAttachments(true),
				tc.opt)
			assert.Equal(t, "\n", got)
			assert.NoFileExists(t, filepath.Join(dir, "attachment.txt"))
		})
	}
}

func TestAttachmentWriteError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	in := interpreter.New(
		interpreter.WithAttachmentDir(dir),
		interpreter.WithSaveAttachments(true))

	got, err := in.InterpretBytes(context.Background(), []byte(singleAttachment))
	require.Error(t, err)
	assert.Empty(t, got)
	var werr *attachment.WriteError
	require.True(t, errors.As(err, &werr), "got %T", err)
	assert.Equal(t, filepath.Join(dir, "attachment.txt"), werr.Path)
	assert.Contains(t, err.Error(), werr.Path)
}

func TestInlineAttachmentNamedByContentID(t *testing.T) {
	dir := t.TempDir()
	got := interpret(t, inlineImage,
		interpreter.WithAttachmentDir(dir),
		interpreter.WithSaveAttachments(true))

	path := filepath.Join(dir, "logo@localhost")
	want := "See the logo.\n\n" +
		"<#part type=image/png disposition=inline filename=\"" + path + "\">\n"
	assert.Equal(t, want, got)
	assert.FileExists(t, path)
}

func TestInlineAttachmentHidden(t *testing.T) {
	got := interpret(t, inlineImage, interpreter.WithInlineAttachments(false))
	assert.Equal(t, "See the logo.\n", got)
}

func TestInlineAttachmentFallbackName(t *testing.T) {
	tree := mimetree.New(emptyHeader(), 0, &mimetree.Part{
		ID:          0,
		ContentType: "image/gif",
		Kind:        mimetree.KindInlineBinary,
		Content:     []byte("GIF89a"),
	})
	in := interpreter.New(interpreter.WithAttachmentDir("/tmp/mimetpl"))

	got, err := in.InterpretBody(context.Background(), tree)
	require.NoError(t, err)
	assert.Equal(t, "<#part type=image/gif disposition=inline filename=\"/tmp/mimetpl/noname\">\n\n", got)
}
