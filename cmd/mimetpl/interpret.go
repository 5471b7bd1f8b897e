package main

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/google/subcommands"
	"github.com/inbucket/mimetpl/pkg/config"
	"github.com/inbucket/mimetpl/pkg/interpreter"
)

type interpretCmd struct {
	headers           string
	filter            string
	multiparts        bool
	stripSignature    bool
	attachments       bool
	inlineAttachments bool
	saveAttachments   bool
	dir               string
	decryptCmd        string
	verifyCmd         string

	stdin  io.Reader
	stdout io.Writer
}

func (*interpretCmd) Name() string {
	return "interpret"
}

func (*interpretCmd) Synopsis() string {
	return "render a MIME message as a template"
}

func (*interpretCmd) Usage() string {
	return `interpret [flags] [file]:
	render the message in file, or stdin, as an MML template on stdout
`
}

func (c *interpretCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.headers, "headers", "", "all, none, or comma separated header names")
	f.StringVar(&c.filter, "filter", "", "all, only:<type>, include:<types>, exclude:<types>")
	f.BoolVar(&c.multiparts, "multiparts", false, "show multipart structure markers")
	f.BoolVar(&c.stripSignature, "strip-signature", false, "remove plain text signatures")
	f.BoolVar(&c.attachments, "attachments", true, "show attachments")
	f.BoolVar(&c.inlineAttachments, "inline-attachments", true, "show inline attachments")
	f.BoolVar(&c.saveAttachments, "save-attachments", false, "write attachments to -dir")
	f.StringVar(&c.dir, "dir", "", "attachment directory")
	f.StringVar(&c.decryptCmd, "decrypt-cmd", "", "decrypt command")
	f.StringVar(&c.verifyCmd, "verify-cmd", "", "verify command")
}

func (c *interpretCmd) Execute(
	ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		return usage("at most one file may be given")
	}
	conf := rootConfig(args).Interpreter
	c.override(f, &conf)
	in, err := interpreter.FromConfig(conf)
	if err != nil {
		return usage(err.Error())
	}

	stdin, stdout := c.stdin, c.stdout
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	raw, err := readInput(f.Arg(0), stdin)
	if err != nil {
		return fatal("Couldn't read message", err)
	}
	out, err := in.InterpretBytes(ctx, raw)
	if err != nil {
		return fatal("Couldn't interpret message", err)
	}
	if _, err := io.WriteString(stdout, out); err != nil {
		return fatal("Couldn't write template", err)
	}

	return subcommands.ExitSuccess
}

// override replaces the configured values with the flags set on the command line.
func (c *interpretCmd) override(f *flag.FlagSet, conf *config.Interpreter) {
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "headers":
			conf.Headers = c.headers
		case "filter":
			conf.Filter = c.filter
		case "multiparts":
			conf.Multiparts = c.multiparts
		case "strip-signature":
			conf.StripSignature = c.stripSignature
		case "attachments":
			conf.Attachments = c.attachments
		case "inline-attachments":
			conf.InlineAttachments = c.inlineAttachments
		case "save-attachments":
			conf.SaveAttachments = c.saveAttachments
		case "dir":
			conf.AttachmentDir = c.dir
		case "decrypt-cmd":
			conf.DecryptCmd = c.decryptCmd
		case "verify-cmd":
			conf.VerifyCmd = c.verifyCmd
		}
	})
}
