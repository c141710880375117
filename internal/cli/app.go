package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"

	"github.com/yolodolo42/basetip/internal/chain"
	"github.com/yolodolo42/basetip/internal/config"
	"github.com/yolodolo42/basetip/internal/logger"
	"github.com/yolodolo42/basetip/internal/metrics"
	"github.com/yolodolo42/basetip/internal/mood"
	"github.com/yolodolo42/basetip/internal/tip"
	"github.com/yolodolo42/basetip/internal/wallet"
)

// app carries what every command that sends a tip needs.
type app struct {
	cfg      *config.Config
	log      logger.Logger
	metrics  metrics.Recorder
	registry chain.Registry
	mood     *mood.Engine

	closers []func()
}

func newApp(v *viper.Viper) (*app, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("%w (config file: %s)", err, configPath())
	}

	log, err := logger.NewZapLogger(cfg.LogLevel, cfg.LogEnv)
	if err != nil {
		return nil, err
	}

	registry := chain.DefaultChains()
	if err := cfg.ApplyChains(registry); err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		metrics:  metrics.NoopRecorder{},
		registry: registry,
		mood:     mood.New(),
	}
	a.closers = append(a.closers, func() { _ = log.Sync() })

	if cfg.MetricsAddr != "" {
		if err := a.serveMetrics(cfg.MetricsAddr); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) serveMetrics(addr string) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	rec, err := metrics.NewPrometheusRecorder(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	a.metrics = rec

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server stopped", map[string]any{"addr": addr, "error": err})
		}
	}()
	a.log.Info("serving metrics", map[string]any{"addr": addr})

	a.closers = append(a.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) settings() tip.Settings {
	return tip.Settings{
		BuilderCodes: a.cfg.Codes(),
		Recipient:    a.cfg.Recipient,
		Warmup:       a.cfg.Warmup,
	}
}

func (a *app) machine(connect tip.Connector, opts ...tip.Option) *tip.Machine {
	base := []tip.Option{
		tip.WithLogger(a.log),
		tip.WithMetrics(a.metrics),
		tip.WithMood(a.mood),
		tip.WithRegistry(a.registry),
	}
	return tip.NewMachine(a.settings(), connect, append(base, opts...)...)
}

// connector returns how each attempt reaches the wallet. The rpc provider
// dials per attempt. The local provider is built once so its active chain
// survives between tips; its Close is a no-op.
func (a *app) connector(password wallet.PasswordFunc, approve wallet.Approver) (tip.Connector, error) {
	switch a.cfg.Provider {
	case config.ProviderLocal:
		local, err := a.localProvider(password, approve)
		if err != nil {
			return nil, err
		}
		return func(context.Context) (wallet.Provider, error) { return local, nil }, nil
	default:
		url := a.cfg.WalletRPCURL
		return func(ctx context.Context) (wallet.Provider, error) {
			return wallet.DialRPC(ctx, url)
		}, nil
	}
}

func (a *app) localProvider(password wallet.PasswordFunc, approve wallet.Approver) (*wallet.LocalProvider, error) {
	km, err := wallet.NewKeystoreManager(a.cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize keystore: %w", err)
	}

	client := chain.NewClientWithRegistry(a.registry)
	a.closers = append(a.closers, client.Close)

	var account common.Address
	if a.cfg.Account != "" {
		account = common.HexToAddress(a.cfg.Account)
	}

	initial, ok := a.registry[a.cfg.Chain]
	if !ok {
		return nil, fmt.Errorf("unknown chain %q", a.cfg.Chain)
	}

	return wallet.NewLocalProvider(wallet.LocalConfig{
		Keys:     km,
		Backend:  client,
		Account:  account,
		Chain:    initial.ID(),
		Password: password,
		Approve:  approve,
		MaxTip:   a.cfg.MaxTip,
		Log:      a.log,
	})
}

// chainName returns the display name for a wallet chain id.
func (a *app) chainName(id chain.ChainID) string {
	if _, cfg, err := a.registry.Lookup(id); err == nil {
		return cfg.Name
	}
	return id.String()
}

// token returns the tip token of a chain, falling back to mainnet's.
func (a *app) token(id chain.ChainID) chain.TokenConfig {
	if _, cfg, err := a.registry.Lookup(id); err == nil {
		return cfg.Token
	}
	if cfg, ok := a.registry[chain.Base]; ok {
		return cfg.Token
	}
	return chain.DefaultChains()[chain.Base].Token
}

// explorerLink points at the transaction when the calls id is a tx hash,
// which only the local provider guarantees.
func (a *app) explorerLink(id chain.ChainID, callsID string) string {
	if a.cfg.Provider != config.ProviderLocal || len(callsID) != 66 {
		return ""
	}
	_, cfg, err := a.registry.Lookup(id)
	if err != nil || cfg.ExplorerURL == "" {
		return ""
	}
	return cfg.ExplorerURL + "/tx/" + callsID
}
