package interpreter

import (
	"strings"
	"unicode"

	"github.com/inbucket/mimetpl/pkg/mimetree"
	"github.com/inbucket/mimetpl/pkg/sanitize"
	"github.com/rs/zerolog/log"
)

const (
	ctTextPlain = "text/plain"
	ctTextHTML  = "text/html"

	signatureDelim = "-- \n"
)

// plain renders a text/plain body. Plain text is the implicit body and is never wrapped.
func (w *walker) plain(text string) string {
	if !w.config.Filter.Visible(ctTextPlain) {
		return ""
	}
	text = normalize(text)
	if w.config.StripPlainSignature {
		text = stripSignature(text)
	}
	return trimEnd(text) + "\n\n"
}

// text renders any other text body, wrapped unless ctype is the sole type shown.
func (w *walker) text(ctype, text string) string {
	if !w.config.Filter.Visible(ctype) {
		return ""
	}
	text = trimEnd(normalize(text))
	if w.config.Filter.SoleFocus(ctype) {
		return text + "\n\n"
	}
	return wrap(ctype, text)
}

// html renders a text/html body. Sole focus shows the markup itself, otherwise it is
// converted to plain text.
func (w *walker) html(html string) string {
	if !w.config.Filter.Visible(ctTextHTML) {
		return ""
	}
	if w.config.Filter.SoleFocus(ctTextHTML) {
		return trimEnd(normalize(html)) + "\n\n"
	}
	text, err := sanitize.Text(html)
	if err != nil {
		log.Warn().Str("module", "interpreter").Err(err).
			Msg("Failed to convert HTML to text, using source")
		text = normalize(html)
	}
	return wrap(ctTextHTML, trimEnd(text))
}

// attachment renders the directive of a binary part, saving it if configured.
func (w *walker) attachment(ctype string, p *mimetree.Part) (string, error) {
	if !w.config.ShowAttachments || !w.config.Filter.Visible(ctype) {
		return "", nil
	}
	path, err := w.files.Materialize(p.Content, p.Filename)
	if err != nil {
		return "", err
	}
	return "<#part type=" + ctype + " filename=\"" + path + "\">\n\n", nil
}

// inlineAttachment renders the directive of an inline binary part. Unnamed parts are named
// after their content id.
func (w *walker) inlineAttachment(ctype string, p *mimetree.Part) (string, error) {
	if !w.config.ShowInlineAttachments || !w.config.Filter.Visible(ctype) {
		return "", nil
	}
	path, err := w.files.Materialize(p.Content, p.Filename, p.ContentID)
	if err != nil {
		return "", err
	}
	return "<#part type=" + ctype + " disposition=inline filename=\"" + path + "\">\n\n", nil
}

func wrap(ctype, text string) string {
	return "<#part type=" + ctype + ">\n" + text + "\n<#/part>\n\n"
}

func normalize(text string) string {
	return strings.ReplaceAll(text, "\r", "")
}

func trimEnd(text string) string {
	return strings.TrimRightFunc(text, unicode.IsSpace)
}

// stripSignature cuts text at the last delimiter line opening a signature block.
func stripSignature(text string) string {
	for i := strings.LastIndex(text, signatureDelim); i >= 0; i = strings.LastIndex(text[:i], signatureDelim) {
		if i == 0 || text[i-1] == '\n' {
			return text[:i]
		}
	}
	return text
}
