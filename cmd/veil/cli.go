// Package veil is the command-line front end for the veil cryptosystem: key
// generation and sealing, detached signatures, and multi-receiver streaming
// signcryption. It is a thin I/O shell around the group, pbenc, schnorr,
// sres, key, and mres packages, which implement the cryptographic core.
package veil

import (
	"fmt"
	"io"
	"os"

	"github.com/drand/veil/log"
	"github.com/urfave/cli/v2"
)

// default output of the veil operational commands.
var output io.Writer = os.Stdout

// Automatically set through -ldflags.
// Example: go install -ldflags "-X github.com/drand/veil/cmd/veil.version=`git describe --tags`"
var (
	version   = "master"
	gitCommit = "none"
	buildDate = "unknown"
)

func banner() {
	fmt.Fprintf(output, "veil %v (date %v, commit %v)\n", version, buildDate, gitCommit)
}

// logger is shared by every command action; setVerbosity raises it to debug
// level when --verbose is passed.
var logger = log.DefaultLogger().Named("veil")

func setVerbosity(c *cli.Context) error {
	if c.Bool(verboseFlag.Name) {
		logger = log.New(os.Stderr, log.DebugLevel, false).Named("veil")
	}
	return nil
}

var appCommands = []*cli.Command{
	{
		Name:      "private-key",
		Usage:     "Generate a private key and write it sealed under a passphrase.",
		ArgsUsage: "<output-file>",
		Flags:     toArray(passphraseFileFlag, spaceFlag, timeFlag, entropySourceFlag),
		Action:    privateKeyCmd,
	},
	{
		Name:      "public-key",
		Usage:     "Print the base58-encoded public key for a sealed private key.",
		ArgsUsage: "<private-key-file>",
		Flags:     toArray(passphraseFileFlag, outFlag),
		Action:    publicKeyCmd,
	},
	{
		Name:      "sign",
		Usage:     "Sign a message, writing a detached 64-byte signature.",
		ArgsUsage: "<private-key-file> <message-file>",
		Flags:     toArray(passphraseFileFlag, outFlag),
		Action:    signCmd,
	},
	{
		Name:      "verify",
		Usage:     "Verify a detached signature against a public key and message.",
		ArgsUsage: "<public-key> <message-file> <signature-file>",
		Action:    verifyCmd,
	},
	{
		Name:      "encrypt",
		Usage:     "Signcrypt a message to one or more receivers, with optional decoys and padding.",
		ArgsUsage: "<private-key-file> <message-file>",
		Flags:     toArray(passphraseFileFlag, receiverFlag, fakesFlag, paddingFlag, outFlag),
		Action:    encryptCmd,
	},
	{
		Name:      "decrypt",
		Usage:     "Open a signcrypted message, verifying it came from the claimed sender.",
		ArgsUsage: "<private-key-file> <sender-public-key> <ciphertext-file>",
		Flags:     toArray(passphraseFileFlag, outFlag),
		Action:    decryptCmd,
	},
	{
		Name:      "digest",
		Usage:     "Print a 32-byte hex digest of a file, using veil's duplex in unkeyed hash mode.",
		ArgsUsage: "<file>",
		Action:    digestCmd,
	},
}

// CLI builds the veil application.
func CLI() *cli.App {
	app := cli.NewApp()
	app.Name = "veil"
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintf(output, "veil %v (date %v, commit %v)\n", version, buildDate, gitCommit)
	}
	app.Version = version
	app.Usage = "encrypt, sign, and decrypt messages to multiple receivers at once"
	app.Commands = appCommands
	app.Flags = toArray(verboseFlag)
	app.Before = setVerbosity
	app.ExitErrHandler = func(c *cli.Context, err error) {
		// overridden so tests can run multiple commands against one process
		// without the default handler calling os.Exit.
	}
	return app
}
