package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/rebuild"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/bus"
)

type signOptions struct {
	APK string
	Out string
}

var signOpts signOptions

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "sign an APK (zipalign + apksigner, or jarsigner when apksigner is missing)",
	Long: fmt.Sprintf(`Writes a signed copy of the APK (default <name>-signed.apk next to it) and verifies the signature.
When the keystore is the default %q and it does not exist, a debug key is generated with keytool.
Keystore passwords are read from the config file or the AFT_SIGN_STORE_PASS / AFT_SIGN_KEY_PASS environment variables.`,
		rebuild.DebugKeystoreName),
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runWorker(func(ctx context.Context) error {
			return runSign(ctx, signOpts.APK, signOpts.Out)
		})
	},
}

func init() {
	flags := signCmd.Flags()
	flags.StringVar(&signOpts.APK, "apk", "", "the APK to sign")
	flags.StringVar(&signOpts.Out, "out", "", "the signed APK to write (default: <name>-signed.apk)")
	addKeystoreFlags(flags)
	flags.String("alias", rebuild.DebugKeyAlias, "the key alias within the keystore")
	_ = signCmd.MarkFlagRequired("apk")

	configBinders[signCmd] = func(flags *pflag.FlagSet) error {
		return bindFlags(flags, map[string]string{
			"sign.keystore": "keystore",
			"sign.alias":    "alias",
		})
	}
	rootCmd.AddCommand(signCmd)
}

func addKeystoreFlags(flags *pflag.FlagSet) {
	flags.String("keystore", rebuild.DebugKeystoreName, "the keystore holding the signing key")
}

func runSign(ctx context.Context, apkPath, out string) error {
	toolkit, err := newToolkit()
	if err != nil {
		return err
	}

	result, err := toolkit.Sign(ctx, apkPath, appConfig.Sign.ToConfig(), out)
	if err != nil {
		return fmt.Errorf("failed to sign %q: %w", apkPath, err)
	}

	bus.Notify("sign", signedMessage(result))
	return nil
}

func signedMessage(result *rebuild.SignResult) string {
	msg := fmt.Sprintf("Signed APK written to %s (%s", result.Path, result.Signer)
	if result.Signature != nil && result.Signature.Scheme > 0 {
		msg += fmt.Sprintf(", signature scheme v%d", result.Signature.Scheme)
	}
	if result.Aligned {
		msg += ", zip-aligned"
	}
	return msg + ")"
}
