// Package header enumerates message header fields and formats their values for display.
package header

import (
	nettextproto "net/textproto"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset" // Additional charsets for encoded words.
	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-message/textproto"
	"github.com/inbucket/mimetpl/pkg/stringutil"
)

// DateLayout is the display format of date fields.
const DateLayout = "Mon, 2 Jan 2006 15:04:05 -0700"

type valueKind int

const (
	kindText valueKind = iota
	kindAddress
	kindDate
	kindMessageID
)

var kinds = map[string]valueKind{
	"From":              kindAddress,
	"Sender":            kindAddress,
	"Reply-To":          kindAddress,
	"To":                kindAddress,
	"Cc":                kindAddress,
	"Bcc":               kindAddress,
	"Resent-From":       kindAddress,
	"Resent-Sender":     kindAddress,
	"Resent-To":         kindAddress,
	"Resent-Cc":         kindAddress,
	"Resent-Bcc":        kindAddress,
	"Date":              kindDate,
	"Resent-Date":       kindDate,
	"Message-Id":        kindMessageID,
	"In-Reply-To":       kindMessageID,
	"References":        kindMessageID,
	"Resent-Message-Id": kindMessageID,
	"Content-Id":        kindMessageID,
}

// Field is a single header field with the key spelled as in the source.
type Field struct {
	Key   string
	Value string
}

// Fields lists the fields of h in source order.
func Fields(h textproto.Header) []Field {
	out := make([]Field, 0, h.Len())
	fields := h.Fields()
	for fields.Next() {
		out = append(out, Field{Key: rawKey(fields), Value: fields.Value()})
	}
	return out
}

// rawKey recovers the source spelling of the current key, go-message canonicalizes it.
func rawKey(fields textproto.HeaderFields) string {
	raw, err := fields.Raw()
	if err == nil {
		if i := strings.IndexByte(string(raw), ':'); i > 0 {
			if k := strings.TrimSpace(string(raw[:i])); strings.EqualFold(k, fields.Key()) {
				return k
			}
		}
	}
	return fields.Key()
}

// Lookup returns the value of the first field named key.
func Lookup(h textproto.Header, key string) (string, bool) {
	if !h.Has(key) {
		return "", false
	}
	return h.Get(key), true
}

// Line renders a single `Key: value` line, terminated by a newline.
func Line(key, value string) string {
	return key + ": " + Display(key, value) + "\n"
}

// Display formats value according to the kind of field key names: address lists, dates and
// message ids are normalized, anything else has its encoded words decoded. Values that do not
// parse are returned unfolded but otherwise as is.
func Display(key, value string) string {
	value = unfold(value)
	var th textproto.Header
	switch kinds[nettextproto.CanonicalMIMEHeaderKey(key)] {
	case kindAddress:
		th.Set(key, value)
		h := mail.Header{Header: message.Header{Header: th}}
		addrs, err := h.AddressList(key)
		if err != nil || len(addrs) == 0 {
			return value
		}
		return strings.Join(stringutil.StringAddressList(addrs), ", ")
	case kindDate:
		th.Set("Date", value)
		h := mail.Header{Header: message.Header{Header: th}}
		t, err := h.Date()
		if err != nil || t.IsZero() {
			return value
		}
		return t.Format(DateLayout)
	case kindMessageID:
		th.Set(key, value)
		h := mail.Header{Header: message.Header{Header: th}}
		ids, err := h.MsgIDList(key)
		if err != nil || len(ids) == 0 {
			return value
		}
		for i, id := range ids {
			ids[i] = "<" + id + ">"
		}
		return strings.Join(ids, " ")
	}
	th.Set(key, value)
	h := message.Header{Header: th}
	text, err := h.Text(key)
	if err != nil {
		return value
	}
	return text
}

// FirstAddress returns the bare address of the first entry of the address list field key, or
// the empty string.
func FirstAddress(h textproto.Header, key string) string {
	mh := mail.Header{Header: message.Header{Header: h}}
	addrs, err := mh.AddressList(key)
	if err != nil || len(addrs) == 0 || addrs[0] == nil {
		return ""
	}
	return addrs[0].Address
}

func unfold(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "")
	s = strings.ReplaceAll(s, "\n", "")
	return strings.ReplaceAll(s, "\r", "")
}
