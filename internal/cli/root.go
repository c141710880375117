package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/yolodolo42/basetip/internal/config"
	"github.com/yolodolo42/basetip/internal/setup"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "basetip",
		Short: "Send USDC tips on Base from the terminal",
		Long: `basetip sends a small USDC tip on Base to a fixed recipient through
your wallet, attributing the transaction to a registered builder code
(ERC-8021).

Run without arguments in a terminal to open the tip sheet, or use
'basetip send' from scripts. A first run walks through 'basetip setup'.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !IsInteractive() {
				return fmt.Errorf("the tip sheet needs an interactive terminal; use 'basetip send --amount <n>' instead")
			}
			if status := setup.DetectSetupStatus(setup.CurrentFrom(viper.GetViper())); !status.IsComplete {
				saved, err := runWizard(status)
				if err != nil || !saved {
					return err
				}
			}
			return runSheet(cmd)
		},
	}
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.basetip/config.yaml)")
	flags.String("provider", config.ProviderRPC, "Wallet provider: rpc or local")
	flags.String("wallet-rpc-url", "", "JSON-RPC endpoint of the wallet (rpc provider)")
	flags.String("account", "", "Keystore account to send from (local provider)")
	flags.String("chain", "base", "Initial chain of the local wallet: base or base-sepolia")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. 127.0.0.1:9102)")

	_ = viper.BindPFlag("provider", flags.Lookup("provider"))
	_ = viper.BindPFlag("wallet_rpc_url", flags.Lookup("wallet-rpc-url"))
	_ = viper.BindPFlag("account", flags.Lookup("account"))
	_ = viper.BindPFlag("chain", flags.Lookup("chain"))
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("metrics_addr", flags.Lookup("metrics-addr"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configDir := config.DefaultDataDir()
		if err := os.MkdirAll(configDir, 0700); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config directory: %v\n", err)
		}

		viper.AddConfigPath(configDir)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Silently ignore missing config file - it's optional
	_ = viper.ReadInConfig()
}

// IsInteractive returns true if running in a terminal
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func getDataDir() string {
	if dir := viper.GetString("data_dir"); dir != "" {
		return dir
	}
	return config.DefaultDataDir()
}

// configPath names the file settings were read from, for error hints.
func configPath() string {
	if f := viper.ConfigFileUsed(); f != "" {
		return f
	}
	return filepath.Join(config.DefaultDataDir(), "config.yaml")
}
