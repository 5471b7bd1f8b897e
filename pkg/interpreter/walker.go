package interpreter

import (
	"context"
	"fmt"
	"strings"

	"github.com/inbucket/mimetpl/pkg/filter"
	"github.com/inbucket/mimetpl/pkg/mimetree"
	"github.com/inbucket/mimetpl/pkg/trust"
	"github.com/rs/zerolog/log"
)

const (
	ctAlternative      = "multipart/alternative"
	ctEncrypted        = "multipart/encrypted"
	ctSigned           = "multipart/signed"
	ctPGPEncrypted     = "application/pgp-encrypted"
	ctPGPSignature     = "application/pgp-signature"
	defaultMultipartST = "mixed"
)

// walker renders the parts of one message.
type walker struct {
	*Interpreter
	trust trust.Delegate
}

// body renders the root part of tree.
func (w *walker) body(ctx context.Context, tree *mimetree.Tree) (string, error) {
	root := tree.Root()
	if root == nil {
		return "", nil
	}
	return w.part(ctx, tree, root)
}

// part dispatches p to the renderer for its kind and content type.
func (w *walker) part(ctx context.Context, tree *mimetree.Tree, p *mimetree.Part) (string, error) {
	ctype := mimetree.ContentType(p)
	switch ctype {
	case ctPGPEncrypted, ctPGPSignature:
		// Control and signature parts carry nothing to show.
		return "", nil
	}
	switch p.Kind {
	case mimetree.KindPlainText:
		if ctype == ctTextPlain {
			return w.plain(p.Text), nil
		}
		return w.text(ctype, p.Text), nil
	case mimetree.KindOtherText:
		return w.text(ctype, p.Text), nil
	case mimetree.KindHTML:
		return w.html(p.Text), nil
	case mimetree.KindBinary:
		return w.attachment(ctype, p)
	case mimetree.KindInlineBinary:
		return w.inlineAttachment(ctype, p)
	case mimetree.KindMessage:
		return w.message(ctx, p.Message)
	case mimetree.KindMultipart:
		switch ctype {
		case ctAlternative:
			return w.alternative(ctx, tree, p)
		case ctEncrypted:
			return w.encrypted(ctx, tree, p)
		case ctSigned:
			return w.signed(ctx, tree, p)
		}
		return w.multipart(ctx, tree, p)
	}
	return "", nil
}

// alternative renders a single branch of a multipart/alternative.
func (w *walker) alternative(ctx context.Context, tree *mimetree.Tree, p *mimetree.Part) (string, error) {
	children := w.children(tree, p)
	if w.config.Filter.Mode() != filter.All {
		for _, c := range children {
			if w.config.Filter.Visible(mimetree.ContentType(c)) {
				return w.part(ctx, tree, c)
			}
		}
		return "", nil
	}

	for _, c := range children {
		if c.Kind == mimetree.KindPlainText && mimetree.ContentType(c) == ctTextPlain &&
			!blank(c.Text) {
			return w.plain(c.Text), nil
		}
	}
	for _, c := range children {
		if c.Kind == mimetree.KindHTML && !blank(c.Text) {
			return w.html(c.Text), nil
		}
	}
	for _, c := range children {
		if (c.Kind == mimetree.KindPlainText || c.Kind == mimetree.KindOtherText) && !blank(c.Text) {
			return w.text(mimetree.ContentType(c), c.Text), nil
		}
	}
	if len(children) > 0 {
		// No usable text, fall back to the first alternative whatever it holds.
		return w.part(ctx, tree, children[0])
	}
	return "", nil
}

// encrypted decrypts the payload of a multipart/encrypted and renders the resulting message
// body. The first child only holds the protocol version.
func (w *walker) encrypted(ctx context.Context, tree *mimetree.Tree, p *mimetree.Part) (string, error) {
	payload, err := w.child(tree, p, 1)
	if err != nil {
		return "", &trust.DecryptError{Err: err}
	}
	plain, err := w.trust.Decrypt(ctx, payload.Contents())
	if err != nil {
		return "", &trust.DecryptError{Err: err}
	}
	decrypted, err := mimetree.Parse(plain)
	if err != nil {
		return "", err
	}
	return w.body(ctx, decrypted)
}

// signed verifies the detached signature of a multipart/signed, then renders the signed
// content.
func (w *walker) signed(ctx context.Context, tree *mimetree.Tree, p *mimetree.Part) (string, error) {
	content, err := w.child(tree, p, 0)
	if err != nil {
		return "", &trust.VerifyError{Err: err}
	}
	signature, err := w.child(tree, p, 1)
	if err != nil {
		return "", &trust.VerifyError{Err: err}
	}
	if err := w.trust.Verify(ctx, signature.Contents()); err != nil {
		return "", &trust.VerifyError{Err: err}
	}
	return w.part(ctx, tree, content)
}

// multipart renders every child of a generic container in order, between markers when
// configured. A single type view never shows markers.
func (w *walker) multipart(ctx context.Context, tree *mimetree.Tree, p *mimetree.Part) (string, error) {
	markers := w.config.ShowMultiparts && w.config.Filter.Mode() != filter.Only
	sb := &strings.Builder{}
	if markers {
		sb.WriteString("<#multipart type=" + mimetree.Subtype(p, defaultMultipartST) + ">\n\n")
	}
	for _, c := range w.children(tree, p) {
		s, err := w.part(ctx, tree, c)
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
	}
	if markers {
		sb.WriteString("<#/multipart>\n\n")
	}
	return sb.String(), nil
}

// message renders an embedded message like a top level one, headers included.
func (w *walker) message(ctx context.Context, msg *mimetree.Tree) (string, error) {
	if msg == nil {
		return "", nil
	}
	s, err := w.InterpretTree(ctx, msg)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return s + "\n", nil
}

// children resolves the child ids of p, skipping those missing from tree.
func (w *walker) children(tree *mimetree.Tree, p *mimetree.Part) []*mimetree.Part {
	out := make([]*mimetree.Part, 0, len(p.Children))
	for _, id := range p.Children {
		c, ok := tree.Part(id)
		if !ok {
			log.Warn().Str("module", "interpreter").Int("part", int(id)).
				Msg("Cannot find part, skipping it")
			continue
		}
		out = append(out, c)
	}
	return out
}

// child resolves the child of p at position i.
func (w *walker) child(tree *mimetree.Tree, p *mimetree.Part, i int) (*mimetree.Part, error) {
	if i >= len(p.Children) {
		return nil, fmt.Errorf("%w: %s has no part at position %d", ErrMissingPart,
			mimetree.ContentType(p), i)
	}
	c, ok := tree.Part(p.Children[i])
	if !ok {
		return nil, fmt.Errorf("%w: %s references unknown part %d", ErrMissingPart,
			mimetree.ContentType(p), p.Children[i])
	}
	return c, nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
