// Package trust performs decryption and signature verification of message parts by handing
// them to external programs.
package trust

import (
	"context"
)

// Delegate decrypts and verifies message parts on behalf of the interpreter.
type Delegate interface {
	// Decrypt returns the plaintext of an encrypted payload.
	Decrypt(ctx context.Context, data []byte) ([]byte, error)
	// Verify checks a detached signature, returning nil if it is valid.
	Verify(ctx context.Context, signature []byte) error
}

// AddressBinder is implemented by delegates that need the addresses of the message being
// interpreted, e.g. to select keys.
type AddressBinder interface {
	BindAddresses(sender, recipient string) Delegate
}

// Bind returns d bound to the given addresses if it supports binding, or d unchanged.
func Bind(d Delegate, sender, recipient string) Delegate {
	if b, ok := d.(AddressBinder); ok {
		return b.BindAddresses(sender, recipient)
	}
	return d
}

// DecryptError wraps a failure to decrypt a part.
type DecryptError struct {
	Err error
}

func (e *DecryptError) Error() string {
	return "cannot decrypt email part: " + e.Err.Error()
}

func (e *DecryptError) Unwrap() error {
	return e.Err
}

// VerifyError wraps a failure to verify a signed part.
type VerifyError struct {
	Err error
}

func (e *VerifyError) Error() string {
	return "cannot verify email part: " + e.Err.Error()
}

func (e *VerifyError) Unwrap() error {
	return e.Err
}

// Commands is a Delegate running shell commands: the part is written to the command's
// standard input, and the decrypted content read from its standard output.
type Commands struct {
	DecryptCmd Command
	VerifyCmd  Command
}

var (
	_ Delegate      = Commands{}
	_ AddressBinder = Commands{}
)

// DefaultCommands returns the gpg based commands.
func DefaultCommands() Commands {
	return Commands{DecryptCmd: DefaultDecryptCmd, VerifyCmd: DefaultVerifyCmd}
}

// Decrypt runs the decrypt command.
func (c Commands) Decrypt(ctx context.Context, data []byte) ([]byte, error) {
	return c.DecryptCmd.Run(ctx, data)
}

// Verify runs the verify command; any successful exit is a valid signature.
func (c Commands) Verify(ctx context.Context, signature []byte) error {
	_, err := c.VerifyCmd.Run(ctx, signature)
	return err
}

// BindAddresses substitutes the sender and recipient placeholders of both commands.
func (c Commands) BindAddresses(sender, recipient string) Delegate {
	return Commands{
		DecryptCmd: c.DecryptCmd.Expand(sender, recipient),
		VerifyCmd:  c.VerifyCmd.Expand(sender, recipient),
	}
}
