package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yolodolo42/basetip/internal/setup"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Run the setup wizard",
	Long: `Run the interactive setup wizard to configure basetip.

This command asks for whatever is still missing:
  - Your registered builder code
  - The address that receives tips
  - A wallet: a new or imported local keystore account, or an external
    wallet endpoint

Answers are merged into the config file. Use --all to answer every
question again.`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().Bool("all", false, "Ask for every setting, even ones already configured")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	if !IsInteractive() {
		printSetupInstructions(cmd)
		return fmt.Errorf("setup requires an interactive terminal")
	}

	status := setup.DetectSetupStatus(setup.CurrentFrom(viper.GetViper()))
	if all, _ := cmd.Flags().GetBool("all"); all {
		status = &setup.SetupStatus{
			HasWallet:     status.HasWallet,
			Provider:      status.Provider,
			WalletAddress: status.WalletAddress,
			DataDir:       status.DataDir,
		}
	}

	saved, err := runWizard(status)
	if err != nil {
		return err
	}
	if saved {
		fmt.Fprintf(cmd.OutOrStdout(), "\nSetup saved to %s. Run 'basetip' to send a tip.\n", configPath())
	}
	return nil
}

// runWizard shows the wizard and saves its answers. It reports false when
// the user cancelled.
func runWizard(status *setup.SetupStatus) (bool, error) {
	result, err := setup.RunWizard(status)
	if err != nil {
		return false, fmt.Errorf("setup failed: %w", err)
	}
	if result == nil || result.Cancelled {
		return false, nil
	}

	path := configPath()
	if err := setup.WriteConfig(path, result); err != nil {
		return false, err
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return false, fmt.Errorf("failed to reload %s: %w", path, err)
	}
	return true, nil
}

func printSetupInstructions(cmd *cobra.Command) {
	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, "basetip needs these keys in %s:\n\n", configPath())
	fmt.Fprintln(out, "  builder_code: <your registered builder code>")
	fmt.Fprintln(out, "  recipient: 0x<address that receives tips>")
	fmt.Fprintln(out, "  wallet_rpc_url: http://127.0.0.1:8545   # or provider: local")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Each key can also come from the environment, e.g. BASETIP_RECIPIENT.")
}
