package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yolodolo42/basetip/internal/chain"
	"github.com/yolodolo42/basetip/internal/testutil"
)

const recipient = "0x1111111111111111111111111111111111111111"

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.Set("data_dir", testutil.TempDir(t))
	v.Set("wallet_rpc_url", "http://127.0.0.1:8545")
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, PlaceholderBuilderCode, cfg.BuilderCode)
	assert.True(t, IsPlaceholderCode(cfg.BuilderCode))
	assert.True(t, IsZeroAddress(cfg.Recipient))
	assert.Equal(t, []string{"1", "3", "5", "10"}, cfg.Presets)
	assert.Equal(t, DefaultWarmup, cfg.Warmup)
	assert.Equal(t, ProviderRPC, cfg.Provider)
	assert.Equal(t, chain.Base, cfg.Chain)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_File(t *testing.T) {
	dir := testutil.TempDir(t)
	path := testutil.WriteFile(t, dir, "config.yaml", `
builder_code: bc_tipjar
builder_codes: [bc_partner]
recipient: "`+recipient+`"
presets: ["0.5", "2"]
warmup: 1500ms
provider: local
chain: base-sepolia
chains:
  base-sepolia:
    rpc_urls: ["http://localhost:8545"]
`)

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	v.Set("data_dir", dir)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, []string{"bc_tipjar", "bc_partner"}, cfg.Codes())
	assert.Equal(t, 1500*time.Millisecond, cfg.Warmup)
	assert.Equal(t, ProviderLocal, cfg.Provider)
	assert.Equal(t, []string{"0.5", "2"}, cfg.Presets)

	reg := chain.DefaultChains()
	require.NoError(t, cfg.ApplyChains(reg))
	assert.Equal(t, []string{"http://localhost:8545"}, reg[chain.BaseSepolia].RPCURLs)
}

func TestLoad_Env(t *testing.T) {
	testutil.SetEnv(t, "BASETIP_RECIPIENT", recipient)
	testutil.SetEnv(t, "BASETIP_BUILDER_CODE", "bc_env")
	testutil.SetEnv(t, "BASETIP_WARMUP", "1s")

	cfg, err := Load(newViper(t))
	require.NoError(t, err)
	assert.Equal(t, recipient, cfg.Recipient)
	assert.Equal(t, "bc_env", cfg.BuilderCode)
	assert.Equal(t, time.Second, cfg.Warmup)
	assert.False(t, IsZeroAddress(cfg.Recipient))
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   any
		wantMsg string
	}{
		{"warmup too short", "warmup", "200ms", "warmup must be between"},
		{"warmup too long", "warmup", "3s", "warmup must be between"},
		{"bad recipient", "recipient", "0x1234", "recipient must be"},
		{"comma in code", "builder_code", "a,b", "builder_code"},
		{"bad preset", "presets", []string{"1", "-2"}, "is not a positive decimal amount"},
		{"zero preset", "presets", []string{"0"}, "is not a positive decimal amount"},
		{"bad max tip", "max_tip", "lots", "is not a positive decimal amount"},
		{"unknown provider", "provider", "metamask", "provider must be one of"},
		{"rpc without url", "wallet_rpc_url", "", "wallet_rpc_url is required"},
		{"bad log level", "log_level", "loud", "log_level must be one of"},
		{"unknown chain", "chain", "ethereum", "chain must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper(t)
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestApplyChains_Unknown(t *testing.T) {
	cfg := &Config{Chains: map[string]ChainOverride{"optimism": {RPCURLs: []string{"http://x"}}}}
	err := cfg.ApplyChains(chain.DefaultChains())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestPlaceholders(t *testing.T) {
	assert.True(t, IsPlaceholderCode(""))
	assert.True(t, IsPlaceholderCode("  "))
	assert.True(t, IsPlaceholderCode("TODO"))
	assert.False(t, IsPlaceholderCode("bc_abc123"))

	assert.True(t, IsZeroAddress(""))
	assert.True(t, IsZeroAddress("0x0000000000000000000000000000000000000000"))
	assert.False(t, IsZeroAddress(recipient))
}
