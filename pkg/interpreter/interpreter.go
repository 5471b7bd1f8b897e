// Package interpreter renders MIME messages as template markup: plain text bodies with
// `<#part>` and `<#multipart>` directives describing the structure plain text cannot carry.
//
// An Interpreter is immutable once created and may be shared by concurrent callers. The only
// state an interpretation leaves behind is the attachment files it saves.
package interpreter

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/emersion/go-message/textproto"
	"github.com/inbucket/mimetpl/pkg/attachment"
	"github.com/inbucket/mimetpl/pkg/header"
	"github.com/inbucket/mimetpl/pkg/mimetree"
	"github.com/inbucket/mimetpl/pkg/trust"
)

// ErrMissingPart is wrapped by the DecryptError or VerifyError returned for an encrypted or
// signed container lacking one of its two children.
var ErrMissingPart = errors.New("missing part")

// Interpreter converts messages into template markup.
type Interpreter struct {
	config   Config
	delegate trust.Delegate
	files    attachment.Materializer
}

// New creates an Interpreter from DefaultConfig modified by opts.
func New(opts ...Option) *Interpreter {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return NewWithConfig(c)
}

// NewWithConfig creates an Interpreter from a complete Config.
func NewWithConfig(c Config) *Interpreter {
	d := c.Delegate
	if d == nil {
		d = trust.Commands{DecryptCmd: c.DecryptCmd, VerifyCmd: c.VerifyCmd}
	}
	return &Interpreter{
		config:   c,
		delegate: d,
		files:    attachment.Materializer{Dir: c.AttachmentDir, Persist: c.SaveAttachments},
	}
}

// With returns a new Interpreter with opts applied on top of this one's Config.
func (in *Interpreter) With(opts ...Option) *Interpreter {
	c := in.config
	for _, opt := range opts {
		opt(&c)
	}
	return NewWithConfig(c)
}

// Config returns a copy of the configuration.
func (in *Interpreter) Config() Config {
	return in.config
}

// InterpretBytes parses raw and renders the whole message.
func (in *Interpreter) InterpretBytes(ctx context.Context, raw []byte) (string, error) {
	tree, err := mimetree.Parse(raw)
	if err != nil {
		return "", err
	}
	return in.InterpretTree(ctx, tree)
}

// InterpretBuilder serializes a message under construction, e.g. an enmime.MailBuilder, and
// renders it.
func (in *Interpreter) InterpretBuilder(ctx context.Context, b mimetree.Builder) (string, error) {
	raw, err := mimetree.Serialize(b)
	if err != nil {
		return "", err
	}
	return in.InterpretBytes(ctx, raw)
}

// InterpretTree renders the header block selected by the header policy followed by the body.
// The result ends with exactly one newline.
func (in *Interpreter) InterpretTree(ctx context.Context, tree *mimetree.Tree) (string, error) {
	body, err := in.InterpretBody(ctx, tree)
	if err != nil {
		return "", err
	}
	sb := &strings.Builder{}
	sb.WriteString(in.headers(tree.Header))
	sb.WriteString(strings.TrimRightFunc(body, unicode.IsSpace))
	sb.WriteByte('\n')
	return sb.String(), nil
}

// InterpretBody renders the body of tree without headers or final trimming.
func (in *Interpreter) InterpretBody(ctx context.Context, tree *mimetree.Tree) (string, error) {
	return in.walker(tree.Header).body(ctx, tree)
}

// headers renders the header lines followed by a blank line, or nothing when no line is
// selected.
func (in *Interpreter) headers(h textproto.Header) string {
	sb := &strings.Builder{}
	if in.config.Headers.All() {
		for _, f := range header.Fields(h) {
			sb.WriteString(header.Line(f.Key, f.Value))
		}
	} else {
		for _, key := range in.config.Headers.names {
			if v, ok := header.Lookup(h, key); ok {
				sb.WriteString(header.Line(key, v))
			}
		}
	}
	if sb.Len() > 0 {
		sb.WriteByte('\n')
	}
	return sb.String()
}

// walker returns the per message rendering state, with the trust delegate bound to the first
// From and To addresses of h.
func (in *Interpreter) walker(h textproto.Header) *walker {
	return &walker{
		Interpreter: in,
		trust: trust.Bind(in.delegate,
			header.FirstAddress(h, "From"),
			header.FirstAddress(h, "To")),
	}
}
