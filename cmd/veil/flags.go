package veil

import (
	"github.com/drand/veil/pbenc"
	"github.com/urfave/cli/v2"
)

var passphraseFileFlag = &cli.StringFlag{
	Name:     "passphrase-file",
	Usage:    "Path to a file whose first line is the passphrase protecting the private key.",
	Required: true,
}

var spaceFlag = &cli.UintFlag{
	Name:  "space",
	Usage: "Balloon-hashing space cost, as a power-of-two block count exponent (0-31).",
	Value: uint(pbenc.DefaultSpaceCost),
}

var timeFlag = &cli.UintFlag{
	Name:  "time",
	Usage: "Balloon-hashing time cost (number of passes).",
	Value: uint(pbenc.DefaultTimeCost),
}

var fakesFlag = &cli.UintFlag{
	Name:  "fakes",
	Usage: "Number of decoy receiver headers to add, indistinguishable from real ones.",
}

var paddingFlag = &cli.UintFlag{
	Name:  "padding",
	Usage: "Number of random padding bytes to insert after the header table.",
}

var outFlag = &cli.StringFlag{
	Name:  "out",
	Usage: "Write output to this path instead of stdout.",
}

var receiverFlag = &cli.StringSliceFlag{
	Name:     "receiver",
	Usage:    "Base58-encoded public key of a receiver. Repeat for multiple receivers.",
	Required: true,
}

var verboseFlag = &cli.BoolFlag{
	Name:  "verbose",
	Usage: "If set, log debug-level detail about each operation to stderr.",
}

var entropySourceFlag = &cli.StringFlag{
	Name:  "entropy-source",
	Usage: "Path to an executable whose stdout is mixed in as extra entropy when generating a private key.",
}

func toArray(flags ...cli.Flag) []cli.Flag {
	return flags
}
