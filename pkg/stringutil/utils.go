package stringutil

import (
	"net/mail"
	"net/textproto"
	"strings"
)

// StringAddress formats an address for display: the bare address when it carries no name,
// otherwise `Name <address>`.
func StringAddress(a *mail.Address) string {
	if a == nil {
		return ""
	}
	if a.Name == "" {
		return a.Address
	}
	return a.Name + " <" + a.Address + ">"
}

// StringAddressList converts a list of addresses to a list of strings
func StringAddressList(addrs []*mail.Address) []string {
	s := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a != nil {
			s = append(s, StringAddress(a))
		}
	}
	return s
}

// UniqueHeaderNames removes repeated and empty header names, comparing them
// case-insensitively. The first spelling and the input order are kept.
func UniqueHeaderNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := textproto.CanonicalMIMEHeaderKey(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}

// SplitList splits a comma separated list, dropping blank elements.
func SplitList(s string) []string {
	var out []string
	for _, e := range strings.Split(s, ",") {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// ShellQuote quotes s as a single word for sh.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
