package setup

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yolodolo42/basetip/internal/calldata"
	"github.com/yolodolo42/basetip/internal/config"
	"github.com/yolodolo42/basetip/internal/testutil"
)

const testKey = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	downKey  = tea.KeyMsg{Type: tea.KeyDown}
)

func update(t *testing.T, m WizardModel, msg tea.Msg) (WizardModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	wm, ok := next.(WizardModel)
	require.True(t, ok)
	return wm, cmd
}

// submit types s into the focused input and presses Enter.
func submit(t *testing.T, m WizardModel, s string) WizardModel {
	t.Helper()
	m, _ = update(t, m, keyRunes(s))
	m, _ = update(t, m, enterKey)
	return m
}

func freshWizard(t *testing.T) WizardModel {
	t.Helper()
	m := *NewWizard(&SetupStatus{Provider: config.ProviderRPC, DataDir: testutil.TempDir(t)})
	m, _ = update(t, m, enterKey)
	return m
}

func TestNewWizard_InputPrompts(t *testing.T) {
	t.Run("all textinputs have empty prompt", func(t *testing.T) {
		m := NewWizard(&SetupStatus{})

		assert.Equal(t, "", m.codeInput.Prompt)
		assert.Equal(t, "", m.recipientInput.Prompt)
		assert.Equal(t, "", m.rpcInput.Prompt)
		assert.Equal(t, "", m.keyInput.Prompt)
		assert.Equal(t, "", m.passwordInput.Prompt)
		assert.Equal(t, "", m.confirmInput.Prompt)
	})
}

func TestNewWizard_Initialization(t *testing.T) {
	t.Run("initializes with StepWelcome", func(t *testing.T) {
		m := NewWizard(&SetupStatus{})
		assert.Equal(t, StepWelcome, m.step)
	})

	t.Run("offers create, import and external wallets", func(t *testing.T) {
		m := NewWizard(&SetupStatus{})
		require.Len(t, m.walletChoices, 3)
		assert.Equal(t, choiceCreate, m.walletChoices[0].id)
	})

	t.Run("offers an existing keystore account first", func(t *testing.T) {
		m := NewWizard(&SetupStatus{HasWallet: true, WalletAddress: testRecipient})
		require.Len(t, m.walletChoices, 4)
		assert.Equal(t, choiceExisting, m.walletChoices[0].id)
		assert.Contains(t, m.walletChoices[0].label, "0x1234...7890")
	})
}

func TestWizard_SkipsConfiguredSteps(t *testing.T) {
	tests := []struct {
		name   string
		status SetupStatus
		want   WizardStep
	}{
		{"nothing configured", SetupStatus{}, StepBuilderCode},
		{"code configured", SetupStatus{HasBuilderCode: true}, StepRecipient},
		{"code and recipient configured", SetupStatus{HasBuilderCode: true, HasRecipient: true}, StepWalletChoice},
		{"everything configured", SetupStatus{HasBuilderCode: true, HasRecipient: true, WalletReady: true}, StepComplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := tt.status
			m := *NewWizard(&status)
			m, _ = update(t, m, enterKey)
			assert.Equal(t, tt.want, m.step)
		})
	}
}

func TestWizard_BuilderCode(t *testing.T) {
	t.Run("required", func(t *testing.T) {
		m := freshWizard(t)
		m, _ = update(t, m, enterKey)
		assert.Equal(t, StepBuilderCode, m.step)
		assert.Equal(t, "Builder code is required", m.inputError)
	})

	t.Run("placeholder refused", func(t *testing.T) {
		m := submit(t, freshWizard(t), "TODO_MINE")
		assert.Equal(t, StepBuilderCode, m.step)
		assert.Equal(t, "Builder code is required", m.inputError)
	})

	t.Run("comma refused", func(t *testing.T) {
		m := submit(t, freshWizard(t), "a,b")
		assert.Equal(t, StepBuilderCode, m.step)
		assert.Contains(t, m.inputError, calldata.ErrInvalidBuilderCode.Error())
	})

	t.Run("valid code moves on", func(t *testing.T) {
		m := submit(t, freshWizard(t), testCode)
		assert.Equal(t, StepRecipient, m.step)
		assert.Equal(t, testCode, m.builderCode)
		assert.Empty(t, m.inputError)
	})
}

func TestWizard_Recipient(t *testing.T) {
	atRecipient := func(t *testing.T) WizardModel {
		return submit(t, freshWizard(t), testCode)
	}

	t.Run("not an address", func(t *testing.T) {
		m := submit(t, atRecipient(t), "nope")
		assert.Equal(t, StepRecipient, m.step)
		assert.Equal(t, "Enter a 0x-prefixed 20-byte address", m.inputError)
	})

	t.Run("zero address", func(t *testing.T) {
		m := submit(t, atRecipient(t), "0x0000000000000000000000000000000000000000")
		assert.Equal(t, "Recipient cannot be the zero address", m.inputError)
	})

	t.Run("stored checksummed", func(t *testing.T) {
		m := submit(t, atRecipient(t), "0xd8da6bf26964af9d7eed9e03e53415d37aa96045")
		assert.Equal(t, StepWalletChoice, m.step)
		assert.Equal(t, "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", m.recipient)
	})
}

func atWalletChoice(t *testing.T, status SetupStatus) WizardModel {
	t.Helper()
	status.HasBuilderCode = true
	status.HasRecipient = true
	if status.DataDir == "" {
		status.DataDir = testutil.TempDir(t)
	}
	m := *NewWizard(&status)
	m, _ = update(t, m, enterKey)
	require.Equal(t, StepWalletChoice, m.step)
	return m
}

func TestWizard_ExternalWallet(t *testing.T) {
	m := atWalletChoice(t, SetupStatus{})
	m, _ = update(t, m, downKey)
	m, _ = update(t, m, downKey)
	m, _ = update(t, m, enterKey)
	require.Equal(t, StepWalletRPC, m.step)

	m = submit(t, m, "localhost")
	assert.Equal(t, StepWalletRPC, m.step)
	assert.NotEmpty(t, m.inputError)

	m.rpcInput.Reset()
	m = submit(t, m, "http://127.0.0.1:8545")
	assert.Equal(t, StepComplete, m.step)
	assert.Equal(t, config.ProviderRPC, m.provider)
	assert.Equal(t, "http://127.0.0.1:8545", m.walletRPCURL)
}

func TestWizard_ExistingWallet(t *testing.T) {
	m := atWalletChoice(t, SetupStatus{HasWallet: true, WalletAddress: testRecipient})
	m, _ = update(t, m, enterKey)

	assert.Equal(t, StepComplete, m.step)
	assert.Equal(t, config.ProviderLocal, m.provider)
	assert.Equal(t, testRecipient, m.walletAddress)
	assert.False(t, m.walletCreated)
}

func TestWizard_CreateWalletPassword(t *testing.T) {
	m := atWalletChoice(t, SetupStatus{})
	m, _ = update(t, m, enterKey)
	require.Equal(t, StepWalletPassword, m.step)

	t.Run("too short", func(t *testing.T) {
		m := submit(t, m, "short")
		assert.Equal(t, 0, m.passwordStep)
		assert.Equal(t, "Password must be at least 8 characters", m.inputError)
	})

	t.Run("mismatch", func(t *testing.T) {
		m := submit(t, m, "password123")
		require.Equal(t, 1, m.passwordStep)
		m = submit(t, m, "password124")
		assert.Equal(t, "Passwords do not match. Try again.", m.inputError)
		assert.Empty(t, m.confirmInput.Value())
		assert.False(t, m.savingWallet)
	})

	t.Run("match starts keystore write", func(t *testing.T) {
		m := submit(t, m, "password123")
		m, _ = update(t, m, keyRunes("password123"))
		m, cmd := update(t, m, enterKey)
		assert.True(t, m.savingWallet)
		assert.NotNil(t, cmd)
		assert.Equal(t, choiceCreate, m.walletAction)
	})
}

func TestWizard_ImportKey(t *testing.T) {
	m := atWalletChoice(t, SetupStatus{})
	m, _ = update(t, m, downKey)
	m, _ = update(t, m, enterKey)
	require.Equal(t, StepWalletImportKey, m.step)

	bad := submit(t, m, "0xnothex")
	assert.Equal(t, StepWalletImportKey, bad.step)
	assert.Equal(t, "Not a valid hex private key", bad.inputError)

	good := submit(t, m, "0x"+testKey)
	assert.Equal(t, StepWalletPassword, good.step)
	assert.Equal(t, testKey, good.keyInput.Value())
	assert.Equal(t, choiceImport, good.walletAction)
}

func TestWizard_WalletCreatedMsg(t *testing.T) {
	m := atWalletChoice(t, SetupStatus{})
	m, _ = update(t, m, enterKey)
	m.savingWallet = true

	t.Run("error stays on password step", func(t *testing.T) {
		m, _ := update(t, m, walletCreatedMsg{err: errors.New("disk full")})
		assert.Equal(t, StepWalletPassword, m.step)
		assert.Equal(t, "disk full", m.inputError)
		assert.False(t, m.savingWallet)
	})

	t.Run("success selects the local provider", func(t *testing.T) {
		m, _ := update(t, m, walletCreatedMsg{address: testRecipient, created: true})
		assert.Equal(t, StepComplete, m.step)
		assert.Equal(t, config.ProviderLocal, m.provider)
		assert.Equal(t, testRecipient, m.walletAddress)
		assert.True(t, m.walletCreated)
	})
}

func TestWizard_CompleteReturnsResult(t *testing.T) {
	m := freshWizard(t)
	m = submit(t, m, testCode)
	m = submit(t, m, testRecipient)
	m, _ = update(t, m, walletCreatedMsg{address: testRecipient, created: true})
	require.Equal(t, StepComplete, m.step)

	m, cmd := update(t, m, enterKey)
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	require.NotNil(t, m.result)
	assert.Equal(t, SetupResult{
		BuilderCode:   testCode,
		Recipient:     testRecipient,
		Provider:      config.ProviderLocal,
		WalletAddress: testRecipient,
		WalletCreated: true,
	}, *m.result)
}

func TestWizard_CtrlCCancels(t *testing.T) {
	m := freshWizard(t)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	require.NotNil(t, m.result)
	assert.True(t, m.result.Cancelled)
	assert.Contains(t, m.View(), "Setup cancelled")
}

func TestWizard_View(t *testing.T) {
	m := *NewWizard(&SetupStatus{HasRecipient: true})
	assert.Contains(t, m.View(), "a builder code and a wallet")

	m, _ = update(t, m, enterKey)
	assert.Contains(t, m.View(), "Builder Code")
}
