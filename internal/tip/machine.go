// Package tip runs one USDC tip from amount selection to wallet submission.
package tip

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yolodolo42/basetip/internal/amount"
	"github.com/yolodolo42/basetip/internal/calldata"
	"github.com/yolodolo42/basetip/internal/chain"
	"github.com/yolodolo42/basetip/internal/config"
	"github.com/yolodolo42/basetip/internal/logger"
	"github.com/yolodolo42/basetip/internal/metrics"
	"github.com/yolodolo42/basetip/internal/wallet"
)

// MsgThanks is shown after the wallet accepts a tip.
const MsgThanks = "Thank you for the warmth 💗"

// Pulse lengths for the mood engine.
const (
	WarmupPulse  = 1200 * time.Millisecond
	SuccessPulse = 900 * time.Millisecond
)

// Mood receives cosmetic pulses. Pulse must not block.
type Mood interface {
	Pulse(d time.Duration)
}

// Connector returns the wallet provider for one attempt.
type Connector func(ctx context.Context) (wallet.Provider, error)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Change is reported to observers on every state change.
type Change struct {
	From    State
	To      State
	Attempt string
}

// Observer is called synchronously on the sending goroutine and must not block.
type Observer func(Change)

// Settings are resolved once at startup.
type Settings struct {
	BuilderCodes []string
	Recipient    string
	Warmup       time.Duration
}

// Outcome is the result of one Send.
type Outcome struct {
	Attempt     string
	Kind        Kind // empty on success
	Message     string
	Recoverable bool
	ChainID     chain.ChainID
	From        string
	Amount      *big.Int
	CallsID     string
}

// Success reports whether the wallet accepted the tip.
func (o Outcome) Success() bool {
	return o.Kind == ""
}

// Machine owns the tip state. One attempt runs at a time.
type Machine struct {
	settings   Settings
	connect    Connector
	negotiator *chain.Negotiator
	registry   chain.Registry
	log        logger.Logger
	metrics    metrics.Recorder
	mood       Mood
	sleep      Sleeper
	observers  []Observer

	mu    sync.Mutex
	state State
	busy  bool
}

type Option func(*Machine)

func WithLogger(l logger.Logger) Option {
	return func(m *Machine) {
		m.log = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(m *Machine) {
		m.metrics = r
	}
}

func WithMood(mood Mood) Option {
	return func(m *Machine) {
		m.mood = mood
	}
}

func WithSleeper(s Sleeper) Option {
	return func(m *Machine) {
		m.sleep = s
	}
}

func WithObserver(o Observer) Option {
	return func(m *Machine) {
		m.observers = append(m.observers, o)
	}
}

// WithRegistry replaces the built-in chain registry used to pick the token.
func WithRegistry(r chain.Registry) Option {
	return func(m *Machine) {
		m.registry = r
	}
}

func NewMachine(settings Settings, connect Connector, opts ...Option) *Machine {
	m := &Machine{
		settings:   settings,
		connect:    connect,
		negotiator: chain.NewNegotiator(),
		registry:   chain.DefaultChains(),
		log:        logger.NoopLogger{},
		metrics:    metrics.NoopRecorder{},
		sleep:      sleepContext,
		state:      StateSelect,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Reset returns a finished machine to select.
func (m *Machine) Reset() error {
	m.mu.Lock()
	if m.busy {
		m.mu.Unlock()
		return ErrBusy
	}
	from := m.state
	next, err := Transition(from, EventReset)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.state = next
	m.mu.Unlock()

	if from != next {
		m.notify(Change{From: from, To: next})
	}
	return nil
}

// Send runs one attempt. The only error is ErrBusy; every failure inside
// the attempt is reported through the Outcome and leaves the machine in
// select.
func (m *Machine) Send(ctx context.Context, sel amount.Selection) (Outcome, error) {
	if err := m.begin(); err != nil {
		return Outcome{}, err
	}
	defer m.end()

	attempt := uuid.NewString()
	start := time.Now()

	out := m.run(ctx, attempt, sel)
	out.Attempt = attempt

	result := "success"
	if !out.Success() {
		result = string(out.Kind)
	}
	labels := map[string]string{"chain": out.ChainID.String()}
	m.metrics.IncCounter(result, labels)
	m.metrics.ObserveLatency("attempt", time.Since(start), labels)

	return out, nil
}

// begin claims the machine. A done machine is reset first.
func (m *Machine) begin() error {
	m.mu.Lock()
	if m.busy || m.state.InFlight() {
		m.mu.Unlock()
		return ErrBusy
	}
	m.busy = true
	from := m.state
	if from == StateDone {
		m.state = StateSelect
	}
	m.mu.Unlock()

	if from == StateDone {
		m.notify(Change{From: from, To: StateSelect})
	}
	return nil
}

func (m *Machine) end() {
	m.mu.Lock()
	m.busy = false
	m.mu.Unlock()
}

func (m *Machine) run(ctx context.Context, attempt string, sel amount.Selection) Outcome {
	suffix, err := m.checkSettings()
	if err != nil {
		m.log.Warn("tip blocked by configuration", map[string]any{"attempt": attempt, "error": err})
		return m.fail(attempt, err, Outcome{})
	}

	units, err := amount.ToBaseUnits(sel.Resolve(), m.decimals())
	if err != nil {
		return m.fail(attempt, amountError(err), Outcome{})
	}
	out := Outcome{Amount: units}

	m.fire(attempt, EventStart)
	m.pulse(WarmupPulse)
	if err := m.timed("warmup", "", func() error { return m.sleep(ctx, m.warmup()) }); err != nil {
		return m.fail(attempt, err, out)
	}

	// Observers see confirm before the wallet can open its own prompt.
	m.fire(attempt, EventWarmedUp)

	var provider wallet.Provider
	if err := m.timed("connect", "", func() (err error) {
		provider, err = m.connect(ctx)
		return err
	}); err != nil {
		return m.fail(attempt, tagProvider(err), out)
	}
	if provider == nil {
		return m.fail(attempt, newError(KindNoProvider, MsgNoProvider, wallet.ErrNoProvider), out)
	}
	defer provider.Close()

	var chainID chain.ChainID
	if err := m.timed("negotiate", "", func() (err error) {
		chainID, err = m.negotiator.Ensure(ctx, provider)
		return err
	}); err != nil {
		if errors.Is(err, chain.ErrUnsupportedChain) {
			err = newError(KindUnsupportedChain, MsgUnsupportedChain, err)
		}
		return m.fail(attempt, err, out)
	}
	out.ChainID = chainID

	var from string
	if err := m.timed("account", chainID.String(), func() (err error) {
		from, err = wallet.RequestAccount(ctx, provider)
		return err
	}); err != nil {
		if errors.Is(err, wallet.ErrNoAccount) {
			err = newError(KindNoAccount, MsgNoAccount, err)
		}
		return m.fail(attempt, err, out)
	}
	out.From = from

	_, cfg, err := m.registry.Lookup(chainID)
	if err != nil {
		return m.fail(attempt, newError(KindUnsupportedChain, MsgUnsupportedChain, err), out)
	}
	data, err := calldata.EncodeTransfer(m.settings.Recipient, units)
	if err != nil {
		return m.fail(attempt, newError(KindConfig, err.Error(), err), out)
	}

	req := wallet.SendCallsRequest{
		Version:        wallet.SendCallsVersion,
		From:           from,
		ChainID:        chainID.String(),
		AtomicRequired: true,
		Calls: []wallet.Call{{
			To:    cfg.Token.Address.Hex(),
			Value: "0x0",
			Data:  calldata.Hex(data),
		}},
		Capabilities: wallet.Capabilities{DataSuffix: calldata.Hex(suffix)},
	}

	m.fire(attempt, EventSubmit)
	m.log.Info("submitting tip", map[string]any{
		"attempt": attempt,
		"amount":  units.String(),
		"chain":   chainID.String(),
		"from":    from,
		"token":   cfg.Token.Address.Hex(),
	})

	var res *wallet.SendCallsResult
	if err := m.timed("send", chainID.String(), func() (err error) {
		res, err = wallet.SendCalls(ctx, provider, req)
		return err
	}); err != nil {
		return m.fail(attempt, err, out)
	}

	m.fire(attempt, EventSucceeded)
	m.pulse(SuccessPulse)

	out.CallsID = res.ID
	out.Message = MsgThanks
	out.Recoverable = true
	m.log.Info("tip sent", map[string]any{"attempt": attempt, "calls_id": res.ID, "chain": chainID.String()})
	return out
}

// checkSettings rejects placeholder values and builds the attribution suffix.
func (m *Machine) checkSettings() ([]byte, error) {
	if len(m.settings.BuilderCodes) == 0 {
		return nil, newError(KindConfig, MsgMissingCode, calldata.ErrNoBuilderCodes)
	}
	for _, code := range m.settings.BuilderCodes {
		if config.IsPlaceholderCode(code) {
			return nil, newError(KindConfig, MsgMissingCode, nil)
		}
	}
	if config.IsZeroAddress(m.settings.Recipient) {
		return nil, newError(KindConfig, MsgMissingRecipient, nil)
	}

	suffix, err := calldata.AttributionSuffix(m.settings.BuilderCodes...)
	if err != nil {
		return nil, newError(KindConfig, fmt.Sprintf("Invalid builder code: %v", err), err)
	}
	return suffix, nil
}

// decimals is the precision of the mainnet token. Every supported chain's
// token shares it, so the amount is encoded before the chain is known.
func (m *Machine) decimals() int32 {
	if cfg, ok := m.registry[chain.Base]; ok {
		return cfg.Token.Decimals
	}
	return 6
}

func (m *Machine) warmup() time.Duration {
	if m.settings.Warmup > 0 {
		return m.settings.Warmup
	}
	return config.DefaultWarmup
}

// fail classifies err and returns the machine to select.
func (m *Machine) fail(attempt string, err error, out Outcome) Outcome {
	c := Classify(err)
	out.Kind = c.Kind
	out.Message = c.Message
	out.Recoverable = c.Recoverable

	if m.State() != StateSelect {
		m.fire(attempt, EventAbort)
	}

	fields := map[string]any{"attempt": attempt, "kind": string(c.Kind), "error": err}
	var tagged *Error
	if errors.As(err, &tagged) && tagged.Err != nil {
		fields["cause"] = tagged.Err
	}
	if c.Kind == KindUserCanceled {
		m.log.Info("tip canceled", fields)
	} else {
		m.log.Warn("tip failed", fields)
	}
	return out
}

// fire applies e. The pipeline only fires events valid for the current
// state, so an error here is a programming mistake and is logged.
func (m *Machine) fire(attempt string, e Event) {
	m.mu.Lock()
	from := m.state
	next, err := Transition(from, e)
	if err != nil {
		m.mu.Unlock()
		m.log.Error("dropped tip event", map[string]any{"attempt": attempt, "error": err})
		return
	}
	m.state = next
	m.mu.Unlock()

	m.log.Debug("tip state", map[string]any{"attempt": attempt, "from": string(from), "to": string(next)})
	m.notify(Change{From: from, To: next, Attempt: attempt})
}

func (m *Machine) notify(c Change) {
	for _, o := range m.observers {
		o(c)
	}
}

func (m *Machine) timed(phase, chainID string, fn func() error) error {
	start := time.Now()
	err := fn()
	m.metrics.ObserveLatency(phase, time.Since(start), map[string]string{"chain": chainID})
	return err
}

// pulse never waits on the mood engine and survives a panicking one.
func (m *Machine) pulse(d time.Duration) {
	if m.mood == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				m.log.Warn("mood pulse panicked", map[string]any{"panic": fmt.Sprint(r)})
			}
		}()
		m.mood.Pulse(d)
	}()
}

// tagProvider marks connection failures as NoProvider unless they are
// already tagged or are a cancellation.
func tagProvider(err error) error {
	var tagged *Error
	if errors.As(err, &tagged) || errors.Is(err, context.Canceled) {
		return err
	}
	return newError(KindNoProvider, MsgNoProvider, err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
