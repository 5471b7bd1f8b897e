package config

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	prefix      = "mimetpl"
	tableFormat = `mimetpl is configured via the environment, optionally overridden by a YAML
file. The following environment variables can be used:

KEY	DEFAULT	REQUIRED	DESCRIPTION
{{range .}}{{usage_key .}}	{{usage_default .}}	{{usage_required .}}	{{usage_description .}}
{{end}}`
)

var (
	// Version of this build, set by main
	Version = ""

	// BuildDate for this build, set by main
	BuildDate = ""
)

// Root wraps all other configurations.
type Root struct {
	LogLevel    string      `yaml:"loglevel" required:"true" default:"info" desc:"debug, info, warn, or error"`
	Interpreter Interpreter `yaml:"interpreter"`
	Web         Web         `yaml:"web"`
}

// Interpreter contains the template rendering configuration.
type Interpreter struct {
	Multiparts        bool   `yaml:"multiparts" default:"false" desc:"Show multipart structure markers?"`
	Filter            string `yaml:"filter" default:"all" desc:"all, only:<type>, include:<types>, exclude:<types>"`
	StripSignature    bool   `yaml:"stripsignature" default:"false" desc:"Remove plain text signatures?"`
	Attachments       bool   `yaml:"attachments" default:"true" desc:"Show attachments?"`
	InlineAttachments bool   `yaml:"inlineattachments" default:"true" desc:"Show inline attachments?"`
	SaveAttachments   bool   `yaml:"saveattachments" default:"false" desc:"Write attachments to disk?"`
	AttachmentDir     string `yaml:"attachmentdir" desc:"Attachment dir, system temp dir if empty"`
	DecryptCmd        string `yaml:"decryptcmd" default:"gpg --decrypt --quiet" desc:"Decrypt command"`
	VerifyCmd         string `yaml:"verifycmd" default:"gpg --verify --quiet --recipient <recipient>" desc:"Verify command"`
	Headers           string `yaml:"headers" default:"all" desc:"all, none, or comma separated header names"`
}

// Web contains the HTTP server configuration.
type Web struct {
	Addr     string `yaml:"addr" required:"true" default:"127.0.0.1:9025" desc:"HTTP server host:port"`
	MaxBytes int64  `yaml:"maxbytes" required:"true" default:"10240000" desc:"Maximum message size"`
}

// Process loads and parses configuration from the environment.
func Process() (*Root, error) {
	c := &Root{}
	err := envconfig.Process(prefix, c)
	return c, err
}

// Load processes the environment, then applies the YAML file at path on top of it. An empty
// path skips the file.
func Load(path string) (*Root, error) {
	c, err := Process()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return c, nil
	}
	if err := c.LoadFile(path); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile overrides c with the values present in the YAML file at path.
func (c *Root) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Usage prints out the envconfig usage to Stderr.
func Usage() {
	tabs := tabwriter.NewWriter(os.Stderr, 1, 0, 4, ' ', 0)
	if err := envconfig.Usagef(prefix, &Root{}, tabs, tableFormat); err != nil {
		log.Fatalf("Unable to parse env config: %v", err)
	}
	tabs.Flush()
}
