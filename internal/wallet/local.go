package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/yolodolo42/basetip/internal/amount"
	"github.com/yolodolo42/basetip/internal/calldata"
	"github.com/yolodolo42/basetip/internal/chain"
	"github.com/yolodolo42/basetip/internal/logger"
	"github.com/yolodolo42/basetip/internal/tx"
)

// JSON-RPC codes the local wallet answers with outside the EIP-1193 range.
const (
	codeInvalidParams = -32602
	codeServerError   = -32000
)

// LocalBackend is the node access the local wallet needs to sign and
// broadcast. *chain.Client satisfies it.
type LocalBackend interface {
	tx.Backend
	Lookup(id chain.ChainID) (string, *chain.ChainConfig, error)
	TokenBalance(ctx context.Context, chainName string, token, holder common.Address) (*big.Int, error)
	SendTransaction(ctx context.Context, chainName string, tx *types.Transaction) error
}

// PasswordFunc returns the keystore password for account.
type PasswordFunc func(ctx context.Context, account common.Address) (string, error)

// Approval is what the user is shown before the local wallet signs.
type Approval struct {
	Chain       string
	ChainID     chain.ChainID
	From        common.Address
	Token       common.Address
	Recipient   common.Address
	Amount      string
	Symbol      string
	Attribution []string
}

// Approver asks the user to confirm a transfer. Returning false rejects it.
type Approver func(ctx context.Context, a Approval) (bool, error)

// LocalConfig configures a LocalProvider.
type LocalConfig struct {
	Keys     *KeystoreManager
	Backend  LocalBackend
	Account  common.Address // zero selects the first keystore account
	Chain    chain.ChainID  // initial active chain
	Password PasswordFunc
	Approve  Approver
	MaxTip   string // decimal token amount per tip, "" for no cap
	Log      logger.Logger
}

// LocalProvider is an EIP-1193 wallet backed by the local keystore. It
// signs each bundle as a single EIP-1559 transaction.
type LocalProvider struct {
	keys     *KeystoreManager
	backend  LocalBackend
	account  common.Address
	password PasswordFunc
	approve  Approver
	maxTip   string
	log      logger.Logger

	mu     sync.Mutex
	active chain.ChainID
}

// NewLocalProvider validates cfg and returns a provider.
func NewLocalProvider(cfg LocalConfig) (*LocalProvider, error) {
	if cfg.Keys == nil || cfg.Backend == nil {
		return nil, ErrNoProvider
	}
	if cfg.Password == nil {
		return nil, fmt.Errorf("%w: password source missing", ErrNoProvider)
	}
	if cfg.Account != (common.Address{}) && !cfg.Keys.HasAccount(cfg.Account) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, cfg.Account.Hex())
	}

	active := cfg.Chain
	if active == "" {
		active = chain.Mainnet
	}
	log := cfg.Log
	if log == nil {
		log = logger.NoopLogger{}
	}

	return &LocalProvider{
		keys:     cfg.Keys,
		backend:  cfg.Backend,
		account:  cfg.Account,
		password: cfg.Password,
		approve:  cfg.Approve,
		maxTip:   cfg.MaxTip,
		log:      log,
		active:   active,
	}, nil
}

// Request dispatches one EIP-1193 call.
func (p *LocalProvider) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch method {
	case MethodChainID:
		return json.Marshal(p.activeChain())
	case MethodSwitchChain:
		return p.switchChain(params)
	case MethodRequestAccounts:
		return p.accounts()
	case MethodSendCalls:
		return p.sendCalls(ctx, params)
	default:
		return nil, &ProviderError{Code: CodeUnsupportedMethod, Message: fmt.Sprintf("method %s not supported", method)}
	}
}

// Close is a no-op; the backend belongs to the caller.
func (p *LocalProvider) Close() {}

func (p *LocalProvider) activeChain() chain.ChainID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *LocalProvider) switchChain(params []any) (json.RawMessage, error) {
	var req chain.SwitchChainParams
	if err := firstParam(params, &req); err != nil {
		return nil, err
	}

	id, err := chain.ParseChainID(string(req.ChainID))
	if err != nil {
		return nil, &ProviderError{Code: codeInvalidParams, Message: err.Error()}
	}
	if _, _, err := p.backend.Lookup(id); err != nil {
		return nil, &ProviderError{Code: CodeUnrecognizedChain, Message: fmt.Sprintf("unrecognized chain %s", id)}
	}

	p.mu.Lock()
	p.active = id
	p.mu.Unlock()

	p.log.Info("local wallet switched chain", map[string]any{"chain_id": id.String()})
	return json.RawMessage("null"), nil
}

func (p *LocalProvider) accounts() (json.RawMessage, error) {
	if p.account != (common.Address{}) {
		return json.Marshal([]string{p.account.Hex()})
	}

	list := p.keys.ListAccounts()
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Address.Hex())
	}
	return json.Marshal(out)
}

// signerAddress resolves the account a bundle is sent from.
func (p *LocalProvider) signerAddress() (common.Address, error) {
	if p.account != (common.Address{}) {
		return p.account, nil
	}
	list := p.keys.ListAccounts()
	if len(list) == 0 {
		return common.Address{}, ErrNoAccount
	}
	return list[0].Address, nil
}

func (p *LocalProvider) sendCalls(ctx context.Context, params []any) (json.RawMessage, error) {
	var req SendCallsRequest
	if err := firstParam(params, &req); err != nil {
		return nil, err
	}

	active := p.activeChain()
	id, err := chain.ParseChainID(req.ChainID)
	if err != nil || id != active {
		return nil, &ProviderError{Code: CodeUnsupportedChainID, Message: fmt.Sprintf("chain %s is not the active chain %s", req.ChainID, active)}
	}

	from, err := p.signerAddress()
	if err != nil {
		return nil, &ProviderError{Code: CodeUnauthorized, Message: err.Error()}
	}
	if !common.IsHexAddress(req.From) || common.HexToAddress(req.From) != from {
		return nil, &ProviderError{Code: CodeUnauthorized, Message: fmt.Sprintf("account %s is not authorized", req.From)}
	}

	switch {
	case len(req.Calls) == 0:
		return nil, &ProviderError{Code: codeInvalidParams, Message: "bundle has no calls"}
	case len(req.Calls) > 1 && req.AtomicRequired:
		return nil, &ProviderError{Code: CodeAtomicityUnsupported, Message: "atomic bundles of more than one call are not supported"}
	case len(req.Calls) > 1:
		return nil, &ProviderError{Code: codeInvalidParams, Message: "only single-call bundles are supported"}
	}

	name, cfg, err := p.backend.Lookup(active)
	if err != nil {
		return nil, &ProviderError{Code: CodeUnsupportedChainID, Message: err.Error()}
	}

	call := req.Calls[0]
	intent, err := decodeCall(call)
	if err != nil {
		return nil, &ProviderError{Code: codeInvalidParams, Message: err.Error()}
	}
	intent.Chain = name
	intent.ChainID = cfg.ChainID
	intent.From = from

	policy, err := p.policy(cfg.Token)
	if err != nil {
		return nil, &ProviderError{Code: codeServerError, Message: err.Error()}
	}
	if err := tx.Validate(intent, policy); err != nil {
		return nil, &ProviderError{Code: CodeUnauthorized, Message: err.Error()}
	}

	recipient, value, err := calldata.DecodeTransfer(intent.Data)
	if err != nil {
		return nil, &ProviderError{Code: codeInvalidParams, Message: err.Error()}
	}
	if err := policy.CheckTransfer(value); err != nil {
		return nil, &ProviderError{Code: CodeUnauthorized, Message: fmt.Sprintf(
			"tip of %s %s exceeds the max_tip limit of %s",
			amount.FormatBaseUnits(value, cfg.Token.Decimals), cfg.Token.Symbol, p.maxTip,
		)}
	}

	balance, err := p.backend.TokenBalance(ctx, name, cfg.Token.Address, from)
	if err != nil {
		return nil, &ProviderError{Code: codeServerError, Message: err.Error()}
	}
	if balance.Cmp(value) < 0 {
		return nil, &ProviderError{Code: codeServerError, Message: fmt.Sprintf(
			"insufficient %s balance: have %s, need %s",
			cfg.Token.Symbol,
			amount.FormatBaseUnits(balance, cfg.Token.Decimals),
			amount.FormatBaseUnits(value, cfg.Token.Decimals),
		)}
	}

	var suffix []byte
	if req.Capabilities.DataSuffix != "" {
		suffix, err = hexutil.Decode(req.Capabilities.DataSuffix)
		if err != nil {
			return nil, &ProviderError{Code: codeInvalidParams, Message: fmt.Sprintf("invalid dataSuffix: %v", err)}
		}
	}
	codes, err := calldata.ParseAttribution(suffix)
	if err != nil && len(suffix) > 0 {
		p.log.Warn("unrecognized attribution suffix", map[string]any{
			"suffix": req.Capabilities.DataSuffix,
			"error":  err,
		})
	}

	if p.approve != nil {
		ok, err := p.approve(ctx, Approval{
			Chain:       name,
			ChainID:     active,
			From:        from,
			Token:       cfg.Token.Address,
			Recipient:   recipient,
			Amount:      amount.FormatBaseUnits(value, cfg.Token.Decimals),
			Symbol:      cfg.Token.Symbol,
			Attribution: codes,
		})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &ProviderError{Code: CodeUserRejected, Message: "User rejected the request."}
		}
	}

	password, err := p.password(ctx, from)
	if err != nil {
		return nil, err
	}
	signer, err := p.keys.GetSigner(from, password)
	if err != nil {
		return nil, &ProviderError{Code: CodeUnauthorized, Message: err.Error()}
	}
	defer signer.Lock()

	intent.Data = append(intent.Data, suffix...)

	unsigned, fees, err := tx.BuildUnsignedTx(ctx, p.backend, intent)
	if err != nil {
		return nil, &ProviderError{Code: codeServerError, Message: err.Error()}
	}
	signed, err := signer.SignTransaction(unsigned, cfg.ChainID)
	if err != nil {
		return nil, &ProviderError{Code: codeServerError, Message: err.Error()}
	}
	if err := p.backend.SendTransaction(ctx, name, signed); err != nil {
		return nil, &ProviderError{Code: codeServerError, Message: err.Error()}
	}

	p.log.Info("local wallet broadcast transfer", map[string]any{
		"chain":     name,
		"tx_hash":   signed.Hash().Hex(),
		"gas_limit": fees.GasLimit,
		"max_fee":   fees.MaxFeePerGas.String(),
	})

	return json.Marshal(SendCallsResult{ID: signed.Hash().Hex()})
}

// policy allows only the chain's token and applies the tip cap in its units.
func (p *LocalProvider) policy(token chain.TokenConfig) (tx.Policy, error) {
	policy := tx.Policy{AllowTo: []common.Address{token.Address}}
	if p.maxTip == "" {
		return policy, nil
	}
	limit, err := amount.ToBaseUnits(p.maxTip, token.Decimals)
	if err != nil {
		return tx.Policy{}, fmt.Errorf("invalid max tip %q: %w", p.maxTip, err)
	}
	policy.MaxTransfer = limit
	return policy, nil
}

func decodeCall(call Call) (tx.Intent, error) {
	if !common.IsHexAddress(call.To) {
		return tx.Intent{}, fmt.Errorf("invalid call target %q", call.To)
	}
	data, err := hexutil.Decode(call.Data)
	if err != nil {
		return tx.Intent{}, fmt.Errorf("invalid call data: %w", err)
	}
	value := new(big.Int)
	if call.Value != "" {
		value, err = hexutil.DecodeBig(call.Value)
		if err != nil {
			return tx.Intent{}, fmt.Errorf("invalid call value: %w", err)
		}
	}
	return tx.Intent{
		To:       common.HexToAddress(call.To),
		ValueWei: value,
		Data:     data,
	}, nil
}

// firstParam round-trips params[0] through JSON so Go values and raw
// messages decode the same way.
func firstParam(params []any, v any) error {
	if len(params) == 0 {
		return &ProviderError{Code: codeInvalidParams, Message: "missing params"}
	}
	raw, err := json.Marshal(params[0])
	if err != nil {
		return &ProviderError{Code: codeInvalidParams, Message: err.Error()}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &ProviderError{Code: codeInvalidParams, Message: err.Error()}
	}
	return nil
}

var _ Provider = (*LocalProvider)(nil)
