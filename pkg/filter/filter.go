// Package filter decides which MIME types are shown when interpreting a message.
package filter

import (
	"fmt"
	"slices"
	"strings"
)

// Mode selects how a Policy matches content types.
type Mode int

const (
	// All shows every part. Parts other than plain text are wrapped in markup.
	All Mode = iota
	// Only shows parts of a single type, without any markup.
	Only
	// Include shows parts whose type is in the list.
	Include
	// Exclude shows parts whose type is not in the list.
	Exclude
)

var modeNames = map[Mode]string{
	All:     "all",
	Only:    "only",
	Include: "include",
	Exclude: "exclude",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Policy filters parts by MIME type. The zero value shows all parts.
type Policy struct {
	mode  Mode
	types []string
}

// ShowAll returns a Policy showing every part.
func ShowAll() Policy {
	return Policy{mode: All}
}

// ShowOnly returns a Policy showing only parts of ctype, unwrapped.
func ShowOnly(ctype string) Policy {
	return Policy{mode: Only, types: normalize([]string{ctype})}
}

// ShowIncluded returns a Policy showing only parts of the listed types.
func ShowIncluded(ctypes ...string) Policy {
	return Policy{mode: Include, types: normalize(ctypes)}
}

// ShowExcluded returns a Policy showing every part except those of the listed types.
func ShowExcluded(ctypes ...string) Policy {
	return Policy{mode: Exclude, types: normalize(ctypes)}
}

// Mode returns the matching mode of p.
func (p Policy) Mode() Mode {
	return p.mode
}

// Types returns a copy of the types p matches against.
func (p Policy) Types() []string {
	return slices.Clone(p.types)
}

// Visible reports whether parts of ctype are shown at all.
func (p Policy) Visible(ctype string) bool {
	ctype = strings.ToLower(ctype)
	switch p.mode {
	case Only:
		return p.types[0] == ctype
	case Include:
		return slices.Contains(p.types, ctype)
	case Exclude:
		return !slices.Contains(p.types, ctype)
	}
	return true
}

// SoleFocus reports whether ctype is the single type selected by an Only policy, in which
// case its content is rendered without markup.
func (p Policy) SoleFocus(ctype string) bool {
	return p.mode == Only && p.types[0] == strings.ToLower(ctype)
}

// String formats p in the form accepted by Parse.
func (p Policy) String() string {
	if p.mode == All {
		return "all"
	}
	return p.mode.String() + ":" + strings.Join(p.types, ",")
}

// Parse reads a Policy from its string form: "all", "only:<type>", "include:<type>,..." or
// "exclude:<type>,...". An empty string means all.
func Parse(s string) (Policy, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return ShowAll(), nil
	}
	name, list, found := strings.Cut(s, ":")
	if !found {
		return Policy{}, fmt.Errorf("filter %q is not one of: all, only:, include:, exclude:", s)
	}
	var types []string
	for _, t := range strings.Split(list, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	switch strings.ToLower(name) {
	case "only":
		if len(types) != 1 {
			return Policy{}, fmt.Errorf("filter %q must name exactly one type", s)
		}
		return ShowOnly(types[0]), nil
	case "include":
		return ShowIncluded(types...), nil
	case "exclude":
		return ShowExcluded(types...), nil
	}
	return Policy{}, fmt.Errorf("unknown filter mode %q", name)
}

func normalize(ctypes []string) []string {
	out := make([]string, len(ctypes))
	for i, t := range ctypes {
		out[i] = strings.ToLower(strings.TrimSpace(t))
	}
	return out
}
