package tool

import (
	"context"
	"strconv"
)

// KeyOptions describe a key to generate in a keystore.
type KeyOptions struct {
	Keystore     string
	Alias        string
	StorePass    string
	KeyPass      string
	DName        string
	KeyAlgorithm string
	KeySize      int
	ValidityDays int
}

// SignOptions describe how an APK is signed.
type SignOptions struct {
	Input     string
	Output    string
	Keystore  string
	Alias     string
	StorePass string
	KeyPass   string
	V1        bool
	V2        bool
	V3        bool
	V4        bool
}

type Zipalign struct {
	Tool
	exec Executor
}

// Align runs "zipalign -p -f 4 <in> <out>".
func (z Zipalign) Align(ctx context.Context, in, out string) error {
	return z.exec.Run(ctx, Command{
		Tool: z.Tool,
		Args: []string{"-p", "-f", "4", in, out},
	})
}

type Apksigner struct {
	Tool
	exec Executor
}

// Sign writes a signed copy of the input APK to the output path.
func (a Apksigner) Sign(ctx context.Context, opts SignOptions) error {
	keyPass := opts.KeyPass
	if keyPass == "" {
		keyPass = opts.StorePass
	}

	return a.exec.Run(ctx, Command{
		Tool: a.Tool,
		Args: []string{
			"sign",
			"--ks", opts.Keystore,
			"--ks-key-alias", opts.Alias,
			"--ks-pass", "pass:" + opts.StorePass,
			"--key-pass", "pass:" + keyPass,
			"--v1-signing-enabled", strconv.FormatBool(opts.V1),
			"--v2-signing-enabled", strconv.FormatBool(opts.V2),
			"--v3-signing-enabled", strconv.FormatBool(opts.V3),
			"--v4-signing-enabled", strconv.FormatBool(opts.V4),
			"--out", opts.Output,
			opts.Input,
		},
		Redact: []string{opts.StorePass, keyPass},
	})
}

type Jarsigner struct {
	Tool
	exec Executor
}

// Sign signs the given APK in place (jarsigner only produces v1 signatures).
func (j Jarsigner) Sign(ctx context.Context, opts SignOptions) error {
	keyPass := opts.KeyPass
	if keyPass == "" {
		keyPass = opts.StorePass
	}

	return j.exec.Run(ctx, Command{
		Tool: j.Tool,
		Args: []string{
			"-sigalg", "SHA256withRSA",
			"-digestalg", "SHA-256",
			"-keystore", opts.Keystore,
			"-storepass", opts.StorePass,
			"-keypass", keyPass,
			opts.Output,
			opts.Alias,
		},
		Redact: []string{opts.StorePass, keyPass},
	})
}

type Keytool struct {
	Tool
	exec Executor
}

// GenerateKey creates the keystore (if needed) holding a new self-signed key pair.
func (k Keytool) GenerateKey(ctx context.Context, opts KeyOptions) error {
	keyPass := opts.KeyPass
	if keyPass == "" {
		keyPass = opts.StorePass
	}

	return k.exec.Run(ctx, Command{
		Tool: k.Tool,
		Args: []string{
			"-genkeypair", "-v",
			"-keystore", opts.Keystore,
			"-storepass", opts.StorePass,
			"-keypass", keyPass,
			"-alias", opts.Alias,
			"-keyalg", opts.KeyAlgorithm,
			"-keysize", strconv.Itoa(opts.KeySize),
			"-validity", strconv.Itoa(opts.ValidityDays),
			"-dname", opts.DName,
		},
		Redact: []string{opts.StorePass, keyPass},
	})
}
