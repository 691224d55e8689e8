package veil

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/drand/veil/entropy"
	"github.com/drand/veil/fs"
	"github.com/drand/veil/group"
	"github.com/drand/veil/internal/duplex"
	"github.com/drand/veil/key"
	"github.com/drand/veil/mres"
	"github.com/drand/veil/schnorr"
	"github.com/urfave/cli/v2"
)

// readPassphrase reads the first line of the file named by the
// passphrase-file flag, trimming the trailing newline.
func readPassphrase(c *cli.Context) ([]byte, error) {
	path := c.String(passphraseFileFlag.Name)
	if err := fs.CheckKeyFilePermissions(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening passphrase file: %w", err)
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading passphrase file: %w", err)
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

func openOutput(c *cli.Context) (io.Writer, func() error, error) {
	path := c.String(outFlag.Name)
	if path == "" {
		return output, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file %s: %w", path, err)
	}
	return f, f.Close, nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func loadPrivateKey(c *cli.Context, path string) (*key.PrivateKey, error) {
	if err := fs.CheckKeyFilePermissions(path); err != nil {
		return nil, err
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading private key file: %w", err)
	}
	passphrase, err := readPassphrase(c)
	if err != nil {
		return nil, err
	}
	defer zeroBytes(passphrase)
	return key.Unseal(passphrase, blob)
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func privateKeyCmd(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("private-key: expected exactly one output-file argument")
	}

	passphrase, err := readPassphrase(c)
	if err != nil {
		return err
	}
	defer zeroBytes(passphrase)

	var priv *key.PrivateKey
	if src := c.String(entropySourceFlag.Name); src != "" {
		priv, err = key.GenerateWithEntropy(entropy.NewEntropyReader(src))
	} else {
		priv, err = key.Generate()
	}
	if err != nil {
		return fmt.Errorf("private-key: %w", err)
	}
	defer priv.Zero()

	space := uint8(c.Uint(spaceFlag.Name))
	timeCost := uint8(c.Uint(timeFlag.Name))
	blob, err := priv.Seal(passphrase, timeCost, space)
	if err != nil {
		return fmt.Errorf("private-key: sealing: %w", err)
	}

	f, err := fs.CreateSecureFile(c.Args().Get(0))
	if err != nil || f == nil {
		return fmt.Errorf("private-key: creating output file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(blob); err != nil {
		return fmt.Errorf("private-key: writing output: %w", err)
	}
	logger.Debugw("sealed private key written", "file", c.Args().Get(0), "space", space, "time", timeCost)
	fmt.Fprintf(output, "%s\n", priv.Public().String())
	return nil
}

func publicKeyCmd(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("public-key: expected exactly one private-key-file argument")
	}

	priv, err := loadPrivateKey(c, c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("public-key: %w", err)
	}
	defer priv.Zero()

	w, closeFn, err := openOutput(c)
	if err != nil {
		return err
	}
	defer closeFn()

	fmt.Fprintf(w, "%s\n", priv.Public().String())
	return nil
}

func signCmd(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("sign: expected private-key-file and message-file arguments")
	}

	priv, err := loadPrivateKey(c, c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("sign: %w", err)
	}
	defer priv.Zero()

	msg, err := openInput(c.Args().Get(1))
	if err != nil {
		return fmt.Errorf("sign: opening message: %w", err)
	}
	defer msg.Close()

	sig, err := schnorr.Sign(priv.D, priv.Public().Q, msg)
	if err != nil {
		return fmt.Errorf("sign: %w", err)
	}

	w, closeFn, err := openOutput(c)
	if err != nil {
		return err
	}
	defer closeFn()

	if _, err := w.Write(sig); err != nil {
		return fmt.Errorf("sign: writing signature: %w", err)
	}
	return nil
}

func verifyCmd(c *cli.Context) error {
	if c.Args().Len() != 3 {
		return fmt.Errorf("verify: expected public-key, message-file and signature-file arguments")
	}

	pub, err := key.ParsePublicKey(c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	msg, err := openInput(c.Args().Get(1))
	if err != nil {
		return fmt.Errorf("verify: opening message: %w", err)
	}
	defer msg.Close()

	sig, err := os.ReadFile(c.Args().Get(2))
	if err != nil {
		return fmt.Errorf("verify: reading signature: %w", err)
	}

	ok, err := schnorr.Verify(pub.Q, msg, sig)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	if !ok {
		fmt.Fprintln(output, "INVALID")
		return fmt.Errorf("verify: signature does not verify")
	}
	fmt.Fprintln(output, "OK")
	return nil
}

func encryptCmd(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("encrypt: expected private-key-file and message-file arguments")
	}

	priv, err := loadPrivateKey(c, c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}
	defer priv.Zero()

	receiverArgs := c.StringSlice(receiverFlag.Name)
	receivers := make([]*group.Point, 0, len(receiverArgs))
	for _, r := range receiverArgs {
		pub, err := key.ParsePublicKey(r)
		if err != nil {
			return fmt.Errorf("encrypt: receiver %q: %w", r, err)
		}
		receivers = append(receivers, pub.Q)
	}

	msg, err := openInput(c.Args().Get(1))
	if err != nil {
		return fmt.Errorf("encrypt: opening message: %w", err)
	}
	defer msg.Close()

	w, closeFn, err := openOutput(c)
	if err != nil {
		return err
	}
	defer closeFn()

	fakes := int(c.Uint(fakesFlag.Name))
	padding := int(c.Uint(paddingFlag.Name))
	logger.Debugw("encrypting message", "receivers", len(receivers), "fakes", fakes, "padding", padding)
	if err := mres.EncryptMessage(priv.D, receivers, fakes, padding, msg, w); err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}
	return nil
}

func decryptCmd(c *cli.Context) error {
	if c.Args().Len() != 3 {
		return fmt.Errorf("decrypt: expected private-key-file, sender-public-key and ciphertext-file arguments")
	}

	priv, err := loadPrivateKey(c, c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("decrypt: %w", err)
	}
	defer priv.Zero()

	sender, err := key.ParsePublicKey(c.Args().Get(1))
	if err != nil {
		return fmt.Errorf("decrypt: %w", err)
	}

	ct, err := openInput(c.Args().Get(2))
	if err != nil {
		return fmt.Errorf("decrypt: opening ciphertext: %w", err)
	}
	defer ct.Close()

	w, closeFn, err := openOutput(c)
	if err != nil {
		return err
	}
	defer closeFn()

	logger.Debugw("decrypting message", "sender", sender.String())
	if err := mres.DecryptMessage(priv.D, sender.Q, ct, w); err != nil {
		return fmt.Errorf("decrypt: %w", err)
	}
	return nil
}

func digestCmd(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("digest: expected exactly one file argument")
	}

	f, err := openInput(c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("digest: %w", err)
	}
	defer f.Close()

	d := duplex.New("veil.digest")
	defer d.Zero()

	buf := make([]byte, 64*1024)
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			d.Absorb(buf[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("digest: reading input: %w", readErr)
		}
	}

	fmt.Fprintln(output, hex.EncodeToString(d.SqueezeKey(32)))
	return nil
}
