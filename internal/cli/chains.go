package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yolodolo42/basetip/internal/chain"
	"github.com/yolodolo42/basetip/internal/config"
	"github.com/yolodolo42/basetip/internal/ui"
)

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List the chains and tokens tips can be sent with",
	RunE:  runChains,
}

func init() {
	rootCmd.AddCommand(chainsCmd)
}

func runChains(cmd *cobra.Command, args []string) error {
	registry := chain.DefaultChains()

	// Apply RPC overrides when the config parses; listing works without one.
	var overrides map[string]config.ChainOverride
	if err := viper.UnmarshalKey("chains", &overrides); err == nil {
		cfg := &config.Config{Chains: overrides}
		if err := cfg.ApplyChains(registry); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	for _, name := range registry.Names() {
		c := registry[name]
		title := fmt.Sprintf("%s (%s)", c.Name, name)
		if c.IsTestnet {
			title += " testnet"
		}
		fmt.Fprintln(out, ui.TitleStyle.Render(title))
		fmt.Fprintf(out, "  chain id: %s (%d)\n", c.ID(), c.ChainIDInt)
		fmt.Fprintf(out, "  token:    %s %s (%d decimals)\n", c.Token.Symbol, c.Token.Address.Hex(), c.Token.Decimals)
		fmt.Fprintf(out, "  rpc:      %s\n", strings.Join(c.RPCURLs, ", "))
		if c.ExplorerURL != "" {
			fmt.Fprintf(out, "  explorer: %s\n", c.ExplorerURL)
		}
		fmt.Fprintln(out)
	}
	return nil
}
