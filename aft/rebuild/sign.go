package rebuild

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/afterr"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/apk"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/tool"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/file"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/log"
)

// the conventional Android debug key, generated on demand
const (
	DebugKeystoreName = "debug.keystore"
	DebugKeyAlias     = "androiddebugkey"
	DebugKeystorePass = "android"

	debugKeyDName        = "CN=Android Debug,O=Android,C=US"
	debugKeyAlgorithm    = "RSA"
	debugKeySize         = 2048
	debugKeyValidityDays = 10000
)

// SignConfig selects the key and signature schemes used to sign an APK.
type SignConfig struct {
	Keystore  string
	Alias     string
	StorePass string
	KeyPass   string
	// GenerateKeystore creates a debug keystore with keytool when Keystore does not exist.
	GenerateKeystore bool
	Zipalign         bool
	V1               bool
	V2               bool
	V3               bool
	V4               bool
}

func DefaultSignConfig() SignConfig {
	return SignConfig{
		Keystore:         DebugKeystoreName,
		Alias:            DebugKeyAlias,
		StorePass:        DebugKeystorePass,
		GenerateKeystore: true,
		Zipalign:         true,
		V1:               true,
		V2:               true,
	}
}

// SignResult describes a signed APK.
type SignResult struct {
	Path      string         `json:"path"`
	Signer    string         `json:"signer"`
	Aligned   bool           `json:"aligned"`
	Signature *apk.Signature `json:"signature"`
}

// SignedName is the default output for a signed copy of the given APK: <dir>/<name>-signed.apk.
func SignedName(apkPath string) string {
	ext := filepath.Ext(apkPath)
	return strings.TrimSuffix(apkPath, ext) + "-signed.apk"
}

// Sign writes a signed copy of the APK to output (default SignedName). apksigner is preferred, jarsigner (v1 only)
// is the fallback. The APK is zip-aligned when zipalign is available, and the result is always verified.
func (b *Builder) Sign(ctx context.Context, apkPath string, cfg SignConfig, output string) (*SignResult, error) {
	if !file.Exists(b.fs, apkPath) {
		return nil, fmt.Errorf("APK %q does not exist", apkPath)
	}
	if output == "" {
		output = SignedName(apkPath)
	}
	if filepath.Clean(output) == filepath.Clean(apkPath) {
		return nil, fmt.Errorf("signed output must differ from the input APK %q", apkPath)
	}
	if err := b.fs.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return nil, fmt.Errorf("unable to create output directory: %w", err)
	}

	useApksigner := b.toolbox.Available(b.toolbox.Apksigner.Tool)
	if !useApksigner {
		if err := b.toolbox.Require(b.toolbox.Jarsigner.Tool); err != nil {
			return nil, fmt.Errorf("neither apksigner nor jarsigner is available: %w", afterr.ErrToolNotFound)
		}
		log.Warnf("apksigner not found, falling back to jarsigner (v1 signature only)")
	}

	align := cfg.Zipalign
	if align && !b.toolbox.Available(b.toolbox.Zipalign.Tool) {
		log.Warnf("zipalign not found, the signed APK will not be aligned")
		align = false
	}

	stage, prog := publishTask("Signing APK", apkPath, 3)
	defer prog.SetCompleted()

	stage.Set("keystore")
	if err := b.ensureKeystore(ctx, cfg); err != nil {
		prog.SetError(err)
		return nil, err
	}
	prog.Increment()

	result := &SignResult{Path: output, Aligned: align}
	var err error
	if useApksigner {
		result.Signer = tool.ApksignerName
		err = b.signWithApksigner(ctx, stage, apkPath, output, cfg, align)
	} else {
		result.Signer = tool.JarsignerName
		err = b.signWithJarsigner(ctx, stage, apkPath, output, cfg, align)
	}
	if err != nil {
		prog.SetError(err)
		return nil, err
	}
	prog.Increment()

	stage.Set("verifying")
	sig, err := b.verify(output)
	result.Signature = sig
	if err != nil {
		err = fmt.Errorf("signed APK %q failed verification: %w", output, err)
		prog.SetError(err)
		return result, err
	}
	prog.Increment()
	stage.Set("done")

	log.Infof("signed APK written to %q (%s, scheme v%d)", output, result.Signer, sig.Scheme)
	return result, nil
}

func (b *Builder) ensureKeystore(ctx context.Context, cfg SignConfig) error {
	if file.Exists(b.fs, cfg.Keystore) {
		return nil
	}
	if !cfg.GenerateKeystore {
		return fmt.Errorf("keystore %q does not exist", cfg.Keystore)
	}
	if err := b.toolbox.Require(b.toolbox.Keytool.Tool); err != nil {
		return fmt.Errorf("unable to generate keystore %q: %w", cfg.Keystore, err)
	}
	if dir := filepath.Dir(cfg.Keystore); dir != "" {
		if err := b.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("unable to create keystore directory: %w", err)
		}
	}

	log.Infof("generating debug keystore %q", cfg.Keystore)
	err := b.toolbox.Keytool.GenerateKey(ctx, tool.KeyOptions{
		Keystore:     cfg.Keystore,
		Alias:        cfg.Alias,
		StorePass:    cfg.StorePass,
		KeyPass:      cfg.KeyPass,
		DName:        debugKeyDName,
		KeyAlgorithm: debugKeyAlgorithm,
		KeySize:      debugKeySize,
		ValidityDays: debugKeyValidityDays,
	})
	if err != nil {
		return fmt.Errorf("unable to generate keystore %q: %w", cfg.Keystore, err)
	}
	return nil
}

// apksigner signatures (v2+) cover the whole archive, so alignment happens before signing.
func (b *Builder) signWithApksigner(ctx context.Context, stage stageSetter, in, out string, cfg SignConfig, align bool) error {
	source := in
	if align {
		stage.Set("zipalign")
		aligned := out + ".aligned"
		defer b.remove(aligned)
		if err := b.toolbox.Zipalign.Align(ctx, in, aligned); err != nil {
			return fmt.Errorf("unable to align APK: %w", err)
		}
		source = aligned
	}

	stage.Set("apksigner")
	if err := b.toolbox.Apksigner.Sign(ctx, signOptions(source, out, cfg)); err != nil {
		return fmt.Errorf("unable to sign APK: %w", err)
	}
	return nil
}

// jarsigner signs in place and rewrites entries, so alignment happens after signing.
func (b *Builder) signWithJarsigner(ctx context.Context, stage stageSetter, in, out string, cfg SignConfig, align bool) error {
	if err := file.CopyFile(b.fs, in, out); err != nil {
		return fmt.Errorf("unable to copy APK for signing: %w", err)
	}

	stage.Set("jarsigner")
	if err := b.toolbox.Jarsigner.Sign(ctx, signOptions(in, out, cfg)); err != nil {
		b.remove(out)
		return fmt.Errorf("unable to sign APK: %w", err)
	}

	if align {
		stage.Set("zipalign")
		aligned := out + ".aligned"
		if err := b.toolbox.Zipalign.Align(ctx, out, aligned); err != nil {
			b.remove(aligned)
			return fmt.Errorf("unable to align APK: %w", err)
		}
		if err := b.fs.Rename(aligned, out); err != nil {
			return fmt.Errorf("unable to replace signed APK with the aligned one: %w", err)
		}
	}
	return nil
}

func signOptions(in, out string, cfg SignConfig) tool.SignOptions {
	return tool.SignOptions{
		Input:     in,
		Output:    out,
		Keystore:  cfg.Keystore,
		Alias:     cfg.Alias,
		StorePass: cfg.StorePass,
		KeyPass:   cfg.KeyPass,
		V1:        cfg.V1,
		V2:        cfg.V2,
		V3:        cfg.V3,
		V4:        cfg.V4,
	}
}

func (b *Builder) remove(path string) {
	if err := b.fs.Remove(path); err != nil && file.Exists(b.fs, path) {
		log.Debugf("unable to remove %q: %+v", path, err)
	}
}

type stageSetter interface {
	Set(string)
}
