package mimetree

import "strings"

// DefaultContentType is reported for parts without a usable content type.
const DefaultContentType = "application/octet-stream"

// ContentType returns the canonical type/subtype of p.
func ContentType(p *Part) string {
	if _, _, ok := splitType(p.ContentType); !ok {
		return DefaultContentType
	}
	return p.ContentType
}

// Subtype returns the declared subtype of p, or fallback when none is declared.
func Subtype(p *Part, fallback string) string {
	if _, sub, ok := splitType(p.ContentType); ok {
		return sub
	}
	return fallback
}

// normalizeType lowercases a media type and returns "" unless it has the type/subtype form.
func normalizeType(ctype string) string {
	ctype = strings.ToLower(strings.TrimSpace(ctype))
	if _, _, ok := splitType(ctype); !ok {
		return ""
	}
	return ctype
}

func splitType(ctype string) (typ, sub string, ok bool) {
	typ, sub, found := strings.Cut(ctype, "/")
	if !found || typ == "" || sub == "" {
		return "", "", false
	}
	return typ, sub, true
}
