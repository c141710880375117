// Package config loads basetip settings from flags, file and environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/yolodolo42/basetip/internal/amount"
	"github.com/yolodolo42/basetip/internal/chain"
)

// EnvPrefix namespaces environment overrides (BASETIP_RECIPIENT, ...).
const EnvPrefix = "BASETIP"

// PlaceholderBuilderCode ships in fresh configs until the owner registers a code.
const PlaceholderBuilderCode = "TODO_REPLACE_BUILDER_CODE"

// Provider kinds.
const (
	ProviderRPC   = "rpc"
	ProviderLocal = "local"
)

// Warm-up bounds for the preparing phase.
const (
	DefaultWarmup = 1200 * time.Millisecond
	MinWarmup     = time.Second
	MaxWarmup     = 1500 * time.Millisecond
)

var ErrInvalidConfig = errors.New("invalid configuration")

// ChainOverride replaces the built-in RPC endpoints of one chain.
type ChainOverride struct {
	RPCURLs []string `mapstructure:"rpc_urls" validate:"dive,required"`
}

type Config struct {
	BuilderCode  string                   `mapstructure:"builder_code" validate:"required,printascii,max=255,excludesall=0x2C"`
	BuilderCodes []string                 `mapstructure:"builder_codes" validate:"dive,required,printascii,excludesall=0x2C"`
	Recipient    string                   `mapstructure:"recipient" validate:"required,eth_addr"`
	Presets      []string                 `mapstructure:"presets" validate:"min=1,max=8,dive,amount"`
	MaxTip       string                   `mapstructure:"max_tip" validate:"omitempty,amount"`
	Warmup       time.Duration            `mapstructure:"warmup" validate:"warmup"`
	Provider     string                   `mapstructure:"provider" validate:"oneof=rpc local"`
	WalletRPCURL string                   `mapstructure:"wallet_rpc_url" validate:"required_if=Provider rpc"`
	Account      string                   `mapstructure:"account" validate:"omitempty,eth_addr"`
	Chain        string                   `mapstructure:"chain" validate:"oneof=base base-sepolia"`
	Chains       map[string]ChainOverride `mapstructure:"chains" validate:"dive"`
	DataDir      string                   `mapstructure:"data_dir" validate:"required"`
	LogLevel     string                   `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogEnv       string                   `mapstructure:"log_env" validate:"oneof=production development"`
	MetricsAddr  string                   `mapstructure:"metrics_addr" validate:"omitempty,hostname_port"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report config keys, not Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
	})
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		_, err := amount.ToBaseUnits(fl.Field().String(), 6)
		return err == nil
	})
	_ = v.RegisterValidation("warmup", func(fl validator.FieldLevel) bool {
		d := time.Duration(fl.Field().Int())
		return d >= MinWarmup && d <= MaxWarmup
	})
	return v
}

// SetDefaults registers every key so AutomaticEnv can override it during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("builder_code", PlaceholderBuilderCode)
	v.SetDefault("builder_codes", []string{})
	v.SetDefault("recipient", common.Address{}.Hex())
	v.SetDefault("presets", amount.DefaultPresets)
	v.SetDefault("max_tip", "")
	v.SetDefault("warmup", DefaultWarmup)
	v.SetDefault("provider", ProviderRPC)
	v.SetDefault("wallet_rpc_url", "")
	v.SetDefault("account", "")
	v.SetDefault("chain", chain.Base)
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("log_level", "info")
	v.SetDefault("log_env", "development")
	v.SetDefault("metrics_addr", "")
}

// DefaultDataDir is $HOME/.basetip, or .basetip when no home is set.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".basetip"
	}
	return filepath.Join(home, ".basetip")
}

// Load reads v into a validated Config. Placeholder values pass: they are
// well-formed and only block sending.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field formats.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "eth_addr":
		return fmt.Sprintf("%s must be a 0x-prefixed 20-byte address", field)
	case "amount":
		return fmt.Sprintf("%s: %q is not a positive decimal amount", field, fe.Value())
	case "warmup":
		return fmt.Sprintf("%s must be between %s and %s", field, MinWarmup, MaxWarmup)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// Codes returns the builder codes in attribution order, primary first.
func (c *Config) Codes() []string {
	codes := []string{c.BuilderCode}
	seen := map[string]bool{c.BuilderCode: true}
	for _, code := range c.BuilderCodes {
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	return codes
}

// ApplyChains copies RPC overrides onto a registry. Unknown chain names are an error.
func (c *Config) ApplyChains(reg chain.Registry) error {
	for name, o := range c.Chains {
		cfg, ok := reg[name]
		if !ok {
			return fmt.Errorf("%w: unknown chain %q (supported: %s)", ErrInvalidConfig, name, strings.Join(reg.Names(), ", "))
		}
		if len(o.RPCURLs) > 0 {
			cfg.RPCURLs = append([]string(nil), o.RPCURLs...)
		}
	}
	return nil
}

// IsPlaceholderCode reports whether code is unset or still a TODO marker.
func IsPlaceholderCode(code string) bool {
	code = strings.TrimSpace(code)
	return code == "" || strings.HasPrefix(code, "TODO")
}

// IsZeroAddress reports whether addr is empty or the zero address.
func IsZeroAddress(addr string) bool {
	addr = strings.TrimSpace(addr)
	return addr == "" || common.HexToAddress(addr) == (common.Address{})
}
