package mimetree

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/emersion/go-message/textproto"
	"github.com/jhillyerd/enmime/v2"
)

const (
	ctMultipartPrefix = "multipart/"
	ctMessageRFC822   = "message/rfc822"
	ctTextPlain       = "text/plain"
	ctTextHTML        = "text/html"
	ctTextPrefix      = "text/"

	cdAttachment = "attachment"
	cdInline     = "inline"
)

// ParseError indicates the input bytes are not a valid MIME message.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "cannot parse raw email: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// BuildError indicates a message builder could not produce message bytes.
type BuildError struct {
	Err error
}

func (e *BuildError) Error() string {
	return "cannot build email: " + e.Err.Error()
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// Builder produces a MIME part tree; enmime.MailBuilder satisfies it.
type Builder interface {
	Build() (*enmime.Part, error)
}

// Serialize builds b and encodes it to raw message bytes.
func Serialize(b Builder) ([]byte, error) {
	root, err := b.Build()
	if err != nil {
		return nil, &BuildError{Err: err}
	}
	buf := &bytes.Buffer{}
	if err := root.Encode(buf); err != nil {
		return nil, &BuildError{Err: err}
	}
	return buf.Bytes(), nil
}

// Parse reads a raw message into a Tree. Part ids are assigned in depth first order starting
// with the root at zero. Embedded message/rfc822 parts are parsed into their own Trees.
func Parse(raw []byte) (*Tree, error) {
	// enmime keeps headers in a map, go-message keeps source order.
	header, err := textproto.ReadHeader(bufio.NewReader(bytes.NewReader(raw)))
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	root, err := enmime.ReadParts(bytes.NewReader(raw))
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	t := &Tree{
		Header: header,
		parts:  make(map[PartID]*Part),
	}
	t.root, err = t.add(root)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// add converts ep and its descendants, returning the id assigned to ep.
func (t *Tree) add(ep *enmime.Part) (PartID, error) {
	p := &Part{
		ID:        PartID(len(t.parts)),
		Filename:  ep.FileName,
		ContentID: ep.ContentID,
	}
	if ep.Header.Get("Content-Type") != "" {
		p.ContentType = normalizeType(ep.ContentType)
	}
	// Reserve the id before descending so parents precede children.
	t.parts[p.ID] = p

	// enmime substitutes text/plain for a missing Content-Type, which decides the body kind.
	effective := strings.ToLower(ep.ContentType)
	if effective == "" {
		effective = ctTextPlain
	}
	disposition := strings.ToLower(ep.Disposition)

	switch {
	case ep.FirstChild != nil || strings.HasPrefix(effective, ctMultipartPrefix):
		p.Kind = KindMultipart
		for c := ep.FirstChild; c != nil; c = c.NextSibling {
			id, err := t.add(c)
			if err != nil {
				return 0, err
			}
			p.Children = append(p.Children, id)
		}
	case effective == ctMessageRFC822:
		msg, err := Parse(ep.Content)
		if err != nil {
			return 0, err
		}
		p.Kind = KindMessage
		p.Message = msg
	case strings.HasPrefix(effective, ctTextPrefix) && disposition != cdAttachment:
		p.Text = string(ep.Content)
		switch effective {
		case ctTextPlain:
			p.Kind = KindPlainText
		case ctTextHTML:
			p.Kind = KindHTML
		default:
			p.Kind = KindOtherText
		}
	case disposition == cdInline:
		p.Kind = KindInlineBinary
		p.Content = ep.Content
	default:
		p.Kind = KindBinary
		p.Content = ep.Content
	}
	return p.ID, nil
}
