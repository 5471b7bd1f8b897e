package filter_test

import (
	"testing"

	"github.com/inbucket/mimetpl/pkg/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisible(t *testing.T) {
	testCases := []struct {
		name   string
		policy filter.Policy
		ctype  string
		want   bool
	}{
		{"all plain", filter.ShowAll(), "text/plain", true},
		{"all binary", filter.ShowAll(), "application/pdf", true},
		{"zero value", filter.Policy{}, "image/png", true},
		{"only match", filter.ShowOnly("text/html"), "text/html", true},
		{"only case", filter.ShowOnly("Text/HTML"), "text/html", true},
		{"only miss", filter.ShowOnly("text/html"), "text/plain", false},
		{"include match", filter.ShowIncluded("text/plain", "text/html"), "text/html", true},
		{"include miss", filter.ShowIncluded("text/plain"), "text/json", false},
		{"exclude match", filter.ShowExcluded("text/html"), "text/html", false},
		{"exclude miss", filter.ShowExcluded("text/html"), "text/plain", true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.policy.Visible(tc.ctype))
		})
	}
}

func TestSoleFocus(t *testing.T) {
	assert.False(t, filter.ShowAll().SoleFocus("text/plain"))
	assert.True(t, filter.ShowOnly("text/json").SoleFocus("text/json"))
	assert.False(t, filter.ShowOnly("text/json").SoleFocus("text/plain"))
	assert.False(t, filter.ShowIncluded("text/json").SoleFocus("text/json"))
	assert.False(t, filter.ShowExcluded().SoleFocus("text/json"))
}

func TestTypesIsCopy(t *testing.T) {
	p := filter.ShowIncluded("text/plain")
	types := p.Types()
	types[0] = "text/html"
	assert.True(t, p.Visible("text/plain"))
	assert.False(t, p.Visible("text/html"))
}

func TestParse(t *testing.T) {
	testCases := []struct {
		input string
		mode  filter.Mode
		types []string
	}{
		{"", filter.All, nil},
		{"all", filter.All, nil},
		{"ALL", filter.All, nil},
		{"only:text/html", filter.Only, []string{"text/html"}},
		{"include:text/plain, text/html", filter.Include, []string{"text/plain", "text/html"}},
		{"exclude:text/json", filter.Exclude, []string{"text/json"}},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := filter.Parse(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.mode, got.Mode())
			assert.Equal(t, tc.types, got.Types())
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"some", "only:", "only:a/b,c/d", "maybe:text/plain"} {
		t.Run(input, func(t *testing.T) {
			_, err := filter.Parse(input)
			assert.Error(t, err)
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, p := range []filter.Policy{
		filter.ShowAll(),
		filter.ShowOnly("text/html"),
		filter.ShowIncluded("text/plain", "text/html"),
		filter.ShowExcluded("image/png"),
	} {
		t.Run(p.String(), func(t *testing.T) {
			got, err := filter.Parse(p.String())
			require.NoError(t, err)
			assert.Equal(t, p, got)
		})
	}
}
