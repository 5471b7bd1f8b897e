package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/inbucket/mimetpl/pkg/rest/client"
)

type remoteCmd struct {
	server         string
	headers        string
	filter         string
	multiparts     bool
	stripSignature bool
}

func (*remoteCmd) Name() string {
	return "remote"
}

func (*remoteCmd) Synopsis() string {
	return "render a MIME message using a mimetpl server"
}

func (*remoteCmd) Usage() string {
	return `remote [flags] [file]:
	send the message in file, or stdin, to a mimetpl server and print the template
`
}

func (r *remoteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.server, "server", "", "base URL of the mimetpl server, default from web.addr")
	f.StringVar(&r.headers, "headers", "", "all, none, or comma separated header names")
	f.StringVar(&r.filter, "filter", "", "all, only:<type>, include:<types>, exclude:<types>")
	f.BoolVar(&r.multiparts, "multiparts", false, "show multipart structure markers")
	f.BoolVar(&r.stripSignature, "strip-signature", false, "remove plain text signatures")
}

func (r *remoteCmd) Execute(
	ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		return usage("at most one file may be given")
	}
	baseURL := r.server
	if baseURL == "" {
		baseURL = "http://" + rootConfig(args).Web.Addr
	}

	// Setup rest client
	c, err := client.New(baseURL)
	if err != nil {
		return fatal("Couldn't build client", err)
	}

	opts := &client.InterpretOptions{Headers: r.headers, Filter: r.filter}
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "multiparts":
			opts.Multiparts = &r.multiparts
		case "strip-signature":
			opts.StripSignature = &r.stripSignature
		}
	})

	raw, err := readInput(f.Arg(0), os.Stdin)
	if err != nil {
		return fatal("Couldn't read message", err)
	}
	out, err := c.Interpret(ctx, raw, opts)
	if err != nil {
		return fatal("REST call failed", err)
	}
	fmt.Print(out)

	return subcommands.ExitSuccess
}
