package setup

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yolodolo42/basetip/internal/wallet"
)

// createWallet creates a new keystore account with the entered password
func (m WizardModel) createWallet() tea.Cmd {
	password := m.passwordInput.Value()
	dataDir := m.status.DataDir

	return func() tea.Msg {
		km, err := wallet.NewKeystoreManager(dataDir)
		if err != nil {
			return walletCreatedMsg{err: err}
		}

		account, err := km.CreateAccount(password)
		if err != nil {
			return walletCreatedMsg{err: err}
		}

		return walletCreatedMsg{address: account.Address.Hex(), created: true}
	}
}

// importWallet encrypts the pasted private key into the keystore
func (m WizardModel) importWallet() tea.Cmd {
	key := m.keyInput.Value()
	password := m.passwordInput.Value()
	dataDir := m.status.DataDir

	return func() tea.Msg {
		km, err := wallet.NewKeystoreManager(dataDir)
		if err != nil {
			return walletCreatedMsg{err: err}
		}

		account, err := km.ImportKey(key, password)
		if err != nil {
			return walletCreatedMsg{err: err}
		}

		return walletCreatedMsg{address: account.Address.Hex()}
	}
}
