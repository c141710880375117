package setup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/yolodolo42/basetip/internal/config"
)

// WriteConfig merges the wizard's answers into the YAML file at path,
// keeping every key already there.
func WriteConfig(path string, r *SetupResult) error {
	if r == nil || r.Cancelled {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if r.BuilderCode != "" {
		v.Set("builder_code", r.BuilderCode)
	}
	if r.Recipient != "" {
		v.Set("recipient", r.Recipient)
	}
	if r.Provider != "" {
		v.Set("provider", r.Provider)
	}
	if r.WalletRPCURL != "" {
		v.Set("wallet_rpc_url", r.WalletRPCURL)
	}
	if r.WalletAddress != "" && r.Provider == config.ProviderLocal {
		v.Set("account", r.WalletAddress)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
