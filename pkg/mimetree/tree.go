// Package mimetree holds the immutable MIME part tree consumed by the interpreter.
package mimetree

import (
	"github.com/emersion/go-message/textproto"
)

// PartID identifies a Part within the Tree that owns it.
type PartID int

// Kind is the semantic kind of a part body.
type Kind int

const (
	// KindPlainText is a text/plain body.
	KindPlainText Kind = iota
	// KindOtherText is any other text/* body, e.g. text/json.
	KindOtherText
	// KindHTML is a text/html body.
	KindHTML
	// KindBinary is an attachment.
	KindBinary
	// KindInlineBinary is an attachment with inline disposition.
	KindInlineBinary
	// KindMessage is an embedded message/rfc822.
	KindMessage
	// KindMultipart is a container of child parts.
	KindMultipart
)

var kindNames = [...]string{
	KindPlainText:    "plain",
	KindOtherText:    "text",
	KindHTML:         "html",
	KindBinary:       "binary",
	KindInlineBinary: "inline",
	KindMessage:      "message",
	KindMultipart:    "multipart",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Part is a single node of a Tree. Exactly one of Text, Content, Message or Children is
// meaningful, selected by Kind.
type Part struct {
	ID PartID
	// ContentType is the declared type/subtype, lowercase and without parameters. Empty when
	// the part declares no usable content type.
	ContentType string
	Filename    string
	ContentID   string
	Kind        Kind
	Text        string   // KindPlainText, KindOtherText, KindHTML
	Content     []byte   // KindBinary, KindInlineBinary
	Message     *Tree    // KindMessage
	Children    []PartID // KindMultipart
}

// Contents returns the decoded bytes of the part body.
func (p *Part) Contents() []byte {
	switch p.Kind {
	case KindPlainText, KindOtherText, KindHTML:
		return []byte(p.Text)
	}
	return p.Content
}

// Tree is a parsed message: its top level header in source order, and a table of parts
// rooted at Root. Trees are not modified after construction.
type Tree struct {
	Header textproto.Header
	root   PartID
	parts  map[PartID]*Part
}

// New assembles a Tree from already built parts. Children may reference ids that are not
// present, callers of Part must cope with that.
func New(header textproto.Header, root PartID, parts ...*Part) *Tree {
	t := &Tree{
		Header: header,
		root:   root,
		parts:  make(map[PartID]*Part, len(parts)),
	}
	for _, p := range parts {
		t.parts[p.ID] = p
	}
	return t
}

// Root returns the root part, or nil for an empty tree.
func (t *Tree) Root() *Part {
	return t.parts[t.root]
}

// Part resolves id against the part table.
func (t *Tree) Part(id PartID) (*Part, bool) {
	p, ok := t.parts[id]
	return p, ok
}

// Len returns the number of parts in the table.
func (t *Tree) Len() int {
	return len(t.parts)
}
