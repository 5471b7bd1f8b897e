package trust

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/inbucket/mimetpl/pkg/stringutil"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultDecryptCmd decrypts with gpg.
	DefaultDecryptCmd Command = "gpg --decrypt --quiet"
	// DefaultVerifyCmd verifies with gpg.
	DefaultVerifyCmd Command = "gpg --verify --quiet --recipient <recipient>"

	// SenderPlaceholder is replaced by the first From address.
	SenderPlaceholder = "<sender>"
	// RecipientPlaceholder is replaced by the first To address.
	RecipientPlaceholder = "<recipient>"
)

// ErrNoCommand is returned when running an empty Command.
var ErrNoCommand = errors.New("no command configured")

// CommandError reports a command that could not be run or exited unsuccessfully.
type CommandError struct {
	Cmd    string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q failed: %v", e.Cmd, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Command is a shell command line, run with sh -c.
type Command string

// Expand replaces the address placeholders with shell quoted addresses. Placeholders for
// unknown (empty) addresses are left in place.
func (c Command) Expand(sender, recipient string) Command {
	// A single pass, so text inserted for one placeholder is never expanded again.
	var pairs []string
	if sender != "" {
		pairs = append(pairs, SenderPlaceholder, stringutil.ShellQuote(sender))
	}
	if recipient != "" {
		pairs = append(pairs, RecipientPlaceholder, stringutil.ShellQuote(recipient))
	}
	if len(pairs) == 0 {
		return c
	}
	return Command(strings.NewReplacer(pairs...).Replace(string(c)))
}

// Run executes the command with input on its standard input and returns its standard output.
func (c Command) Run(ctx context.Context, input []byte) ([]byte, error) {
	line := strings.TrimSpace(string(c))
	if line == "" {
		return nil, ErrNoCommand
	}
	log.Debug().Str("module", "trust").Str("cmd", line).Int("input", len(input)).
		Msg("Running command")
	cmd := exec.CommandContext(ctx, "sh", "-c", line)
	cmd.Stdin = bytes.NewReader(input)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return nil, &CommandError{
			Cmd:    line,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return stdout.Bytes(), nil
}
