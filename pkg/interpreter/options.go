package interpreter

import (
	"os"
	"slices"
	"strings"

	"github.com/inbucket/mimetpl/pkg/config"
	"github.com/inbucket/mimetpl/pkg/filter"
	"github.com/inbucket/mimetpl/pkg/stringutil"
	"github.com/inbucket/mimetpl/pkg/trust"
)

// Config holds the settings of an Interpreter.
type Config struct {
	// ShowMultiparts wraps generic multipart containers in structural markers.
	ShowMultiparts bool
	// Filter selects the content types to render.
	Filter filter.Policy
	// StripPlainSignature cuts plain text parts at their last `-- ` signature delimiter.
	StripPlainSignature bool
	// ShowAttachments and ShowInlineAttachments enable attachment directives.
	ShowAttachments       bool
	ShowInlineAttachments bool
	// SaveAttachments writes shown attachments into AttachmentDir.
	SaveAttachments bool
	AttachmentDir   string
	// DecryptCmd and VerifyCmd build the default Delegate.
	DecryptCmd trust.Command
	VerifyCmd  trust.Command
	// Delegate overrides the command based Delegate when set.
	Delegate trust.Delegate
	// Headers selects the header lines rendered above the body.
	Headers HeaderPolicy
}

// DefaultConfig returns the configuration used by New before options are applied.
func DefaultConfig() Config {
	return Config{
		Filter:                filter.ShowAll(),
		ShowAttachments:       true,
		ShowInlineAttachments: true,
		AttachmentDir:         os.TempDir(),
		DecryptCmd:            trust.DefaultDecryptCmd,
		VerifyCmd:             trust.DefaultVerifyCmd,
		Headers:               AllHeaders(),
	}
}

// Option modifies a Config.
type Option func(*Config)

// WithMultiparts toggles multipart markers.
func WithMultiparts(show bool) Option {
	return func(c *Config) {
		c.ShowMultiparts = show
	}
}

// WithFilter sets the content type filter.
func WithFilter(p filter.Policy) Option {
	return func(c *Config) {
		c.Filter = p
	}
}

// WithStripSignature toggles removal of plain text signatures.
func WithStripSignature(strip bool) Option {
	return func(c *Config) {
		c.StripPlainSignature = strip
	}
}

// WithAttachments toggles attachment directives.
func WithAttachments(show bool) Option {
	return func(c *Config) {
		c.ShowAttachments = show
	}
}

// WithInlineAttachments toggles inline attachment directives.
func WithInlineAttachments(show bool) Option {
	return func(c *Config) {
		c.ShowInlineAttachments = show
	}
}

// WithSaveAttachments toggles writing attachments to disk.
func WithSaveAttachments(save bool) Option {
	return func(c *Config) {
		c.SaveAttachments = save
	}
}

// WithAttachmentDir sets the directory attachments are saved into and referenced from.
func WithAttachmentDir(dir string) Option {
	return func(c *Config) {
		c.AttachmentDir = dir
	}
}

// WithDecryptCmd sets the shell command used to decrypt multipart/encrypted payloads.
func WithDecryptCmd(cmd string) Option {
	return func(c *Config) {
		c.DecryptCmd = trust.Command(cmd)
	}
}

// WithVerifyCmd sets the shell command used to verify multipart/signed signatures.
func WithVerifyCmd(cmd string) Option {
	return func(c *Config) {
		c.VerifyCmd = trust.Command(cmd)
	}
}

// WithDelegate replaces the command based trust delegate.
func WithDelegate(d trust.Delegate) Option {
	return func(c *Config) {
		c.Delegate = d
	}
}

// WithHeaders sets the header policy.
func WithHeaders(p HeaderPolicy) Option {
	return func(c *Config) {
		c.Headers = p
	}
}

// WithAdditionalHeaders adds names to the current header policy, see HeaderPolicy.With.
func WithAdditionalHeaders(names ...string) Option {
	return func(c *Config) {
		c.Headers = c.Headers.With(names...)
	}
}

// HeaderPolicy selects which header lines are rendered. The zero value renders all headers in
// source order.
type HeaderPolicy struct {
	only  bool
	names []string
}

// AllHeaders renders every header field in source order.
func AllHeaders() HeaderPolicy {
	return HeaderPolicy{}
}

// OnlyHeaders renders the named headers in the given order, skipping absent ones. Repeated
// names are dropped.
func OnlyHeaders(names ...string) HeaderPolicy {
	return HeaderPolicy{only: true, names: stringutil.UniqueHeaderNames(names)}
}

// NoHeaders renders no header at all.
func NoHeaders() HeaderPolicy {
	return HeaderPolicy{only: true}
}

// All reports whether every header is rendered.
func (p HeaderPolicy) All() bool {
	return !p.only
}

// Names returns the rendered header names, nil for AllHeaders.
func (p HeaderPolicy) Names() []string {
	return slices.Clone(p.names)
}

// With adds names to the list of rendered headers. Applied to AllHeaders it yields
// OnlyHeaders(names...).
func (p HeaderPolicy) With(names ...string) HeaderPolicy {
	if !p.only {
		return OnlyHeaders(names...)
	}
	return OnlyHeaders(append(slices.Clone(p.names), names...)...)
}

// String returns the form accepted by ParseHeaderPolicy.
func (p HeaderPolicy) String() string {
	switch {
	case !p.only:
		return "all"
	case len(p.names) == 0:
		return "none"
	}
	return strings.Join(p.names, ",")
}

// ParseHeaderPolicy parses `all`, `none` or a comma separated list of header names. An empty
// string means all.
func ParseHeaderPolicy(s string) HeaderPolicy {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return AllHeaders()
	case "none":
		return NoHeaders()
	}
	return OnlyHeaders(stringutil.SplitList(s)...)
}

// ConfigOptions converts application configuration into Options.
func ConfigOptions(c config.Interpreter) ([]Option, error) {
	fp, err := filter.Parse(c.Filter)
	if err != nil {
		return nil, err
	}
	opts := []Option{
		WithMultiparts(c.Multiparts),
		WithFilter(fp),
		WithStripSignature(c.StripSignature),
		WithAttachments(c.Attachments),
		WithInlineAttachments(c.InlineAttachments),
		WithSaveAttachments(c.SaveAttachments),
		WithDecryptCmd(c.DecryptCmd),
		WithVerifyCmd(c.VerifyCmd),
		WithHeaders(ParseHeaderPolicy(c.Headers)),
	}
	if c.AttachmentDir != "" {
		opts = append(opts, WithAttachmentDir(c.AttachmentDir))
	}
	return opts, nil
}

// FromConfig creates an Interpreter from application configuration, then applies opts.
func FromConfig(c config.Interpreter, opts ...Option) (*Interpreter, error) {
	base, err := ConfigOptions(c)
	if err != nil {
		return nil, err
	}
	return New(append(base, opts...)...), nil
}
