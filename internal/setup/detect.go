// Package setup walks a new user through the settings basetip needs
// before a tip can go out.
package setup

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/yolodolo42/basetip/internal/config"
	"github.com/yolodolo42/basetip/internal/wallet"
)

// Current is the subset of settings setup inspects.
type Current struct {
	BuilderCode  string
	BuilderCodes []string
	Recipient    string
	Provider     string
	WalletRPCURL string
	DataDir      string
}

// CurrentFrom reads the inspected keys from v. Missing keys read as empty.
func CurrentFrom(v *viper.Viper) Current {
	return Current{
		BuilderCode:  v.GetString("builder_code"),
		BuilderCodes: v.GetStringSlice("builder_codes"),
		Recipient:    v.GetString("recipient"),
		Provider:     v.GetString("provider"),
		WalletRPCURL: v.GetString("wallet_rpc_url"),
		DataDir:      v.GetString("data_dir"),
	}
}

// SetupStatus represents the current setup state
type SetupStatus struct {
	HasBuilderCode bool
	HasRecipient   bool
	HasWallet      bool // keystore holds at least one account
	HasWalletRPC   bool
	WalletReady    bool // the configured provider can sign
	IsComplete     bool
	Provider       string
	WalletAddress  string
	DataDir        string
}

// DetectSetupStatus checks the current setup state
func DetectSetupStatus(cur Current) *SetupStatus {
	status := &SetupStatus{
		Provider: cur.Provider,
		DataDir:  cur.DataDir,
	}
	if status.Provider == "" {
		status.Provider = config.ProviderRPC
	}
	if status.DataDir == "" {
		status.DataDir = config.DefaultDataDir()
	}

	status.HasBuilderCode = !config.IsPlaceholderCode(cur.BuilderCode)
	for _, code := range cur.BuilderCodes {
		if !config.IsPlaceholderCode(code) {
			status.HasBuilderCode = true
		}
	}
	status.HasRecipient = !config.IsZeroAddress(cur.Recipient)
	status.HasWalletRPC = cur.WalletRPCURL != ""

	keystoreDir := filepath.Join(status.DataDir, "keystore")
	if entries, err := os.ReadDir(keystoreDir); err == nil {
		// Filter out directories and hidden files
		for _, entry := range entries {
			if !entry.IsDir() && entry.Name()[0] != '.' {
				status.HasWallet = true
				break
			}
		}
	}

	if status.HasWallet {
		km, err := wallet.NewKeystoreManager(status.DataDir)
		if err == nil {
			if accounts := km.ListAccounts(); len(accounts) > 0 {
				status.WalletAddress = accounts[0].Address.Hex()
			}
		}
	}

	if status.Provider == config.ProviderLocal {
		status.WalletReady = status.HasWallet
	} else {
		status.WalletReady = status.HasWalletRPC
	}
	status.IsComplete = status.HasBuilderCode && status.HasRecipient && status.WalletReady
	return status
}

// NeedsSetup returns true if interactive setup should run
func NeedsSetup(cur Current) bool {
	return !DetectSetupStatus(cur).IsComplete
}
