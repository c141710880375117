package setup

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/yolodolo42/basetip/internal/calldata"
	"github.com/yolodolo42/basetip/internal/config"
)

// WizardStep represents the current step in the wizard
type WizardStep int

const (
	StepWelcome WizardStep = iota
	StepBuilderCode
	StepRecipient
	StepWalletChoice
	StepWalletRPC
	StepWalletImportKey
	StepWalletPassword
	StepComplete
)

const totalSteps = 3 // Builder code, Recipient, Wallet

const minPasswordLength = 8

// SetupResult contains the answers collected by the wizard. Empty fields
// leave the existing setting alone.
type SetupResult struct {
	BuilderCode   string
	Recipient     string
	Provider      string
	WalletRPCURL  string
	WalletAddress string
	WalletCreated bool
	Cancelled     bool
}

type walletChoice struct {
	id    string
	label string
	desc  string
}

const (
	choiceExisting = "existing"
	choiceCreate   = "create"
	choiceImport   = "import"
	choiceRPC      = "rpc"
)

// WizardModel is the setup wizard Bubbletea model
type WizardModel struct {
	step     WizardStep
	status   *SetupStatus
	quitting bool

	codeInput      textinput.Model
	recipientInput textinput.Model
	rpcInput       textinput.Model
	keyInput       textinput.Model
	passwordInput  textinput.Model
	confirmInput   textinput.Model
	passwordStep   int // 0=enter, 1=confirm
	inputError     string

	walletChoices []walletChoice
	walletCursor  int
	walletAction  string
	savingWallet  bool

	spinner  spinner.Model
	progress progress.Model

	builderCode   string
	recipient     string
	provider      string
	walletRPCURL  string
	walletAddress string
	walletCreated bool

	result *SetupResult
}

type walletCreatedMsg struct {
	address string
	created bool
	err     error
}

func newInput(placeholder string, limit int, secret bool) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = 50
	if secret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	return in
}

// NewWizard creates a wizard that only asks for what status lacks.
func NewWizard(status *SetupStatus) *WizardModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 40

	choices := make([]walletChoice, 0, 4)
	if status.HasWallet && status.WalletAddress != "" {
		choices = append(choices, walletChoice{
			id:    choiceExisting,
			label: "Use local wallet " + shortAddress(status.WalletAddress),
			desc:  "already in your keystore",
		})
	}
	choices = append(choices,
		walletChoice{id: choiceCreate, label: "Create a new local wallet", desc: "encrypted keystore on this machine"},
		walletChoice{id: choiceImport, label: "Import a private key", desc: "encrypted into the local keystore"},
		walletChoice{id: choiceRPC, label: "Use an external wallet", desc: "EIP-1193 JSON-RPC endpoint"},
	)

	return &WizardModel{
		step:           StepWelcome,
		status:         status,
		codeInput:      newInput("your builder code, e.g. bc_abc123", 64, false),
		recipientInput: newInput("0x... address that receives tips", 42, false),
		rpcInput:       newInput("http://127.0.0.1:8545", 200, false),
		keyInput:       newInput("0x... private key (hex)", 66, true),
		passwordInput:  newInput("Enter password (8+ chars)", 100, true),
		confirmInput:   newInput("Confirm password", 100, true),
		walletChoices:  choices,
		spinner:        sp,
		progress:       prog,
	}
}

// Init initializes the wizard
func (m WizardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink)
}

// nextStep is the first step after from that still has something to ask.
func (m WizardModel) nextStep(from WizardStep) WizardStep {
	switch {
	case from < StepBuilderCode && !m.status.HasBuilderCode:
		return StepBuilderCode
	case from < StepRecipient && !m.status.HasRecipient:
		return StepRecipient
	case from < StepWalletChoice && !m.status.WalletReady:
		return StepWalletChoice
	}
	return StepComplete
}

func (m WizardModel) enter(step WizardStep) (tea.Model, tea.Cmd) {
	m.step = step
	m.inputError = ""
	for _, in := range []*textinput.Model{&m.codeInput, &m.recipientInput, &m.rpcInput, &m.keyInput, &m.passwordInput, &m.confirmInput} {
		in.Blur()
	}

	var cmd tea.Cmd
	switch step {
	case StepBuilderCode:
		cmd = m.codeInput.Focus()
	case StepRecipient:
		cmd = m.recipientInput.Focus()
	case StepWalletRPC:
		cmd = m.rpcInput.Focus()
	case StepWalletImportKey:
		cmd = m.keyInput.Focus()
	case StepWalletPassword:
		m.passwordStep = 0
		m.passwordInput.Reset()
		m.confirmInput.Reset()
		cmd = m.passwordInput.Focus()
	}
	return m, cmd
}

// Update handles messages
func (m WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.result = &SetupResult{Cancelled: true}
			m.quitting = true
			return m, tea.Quit
		}
		if m.savingWallet {
			return m, nil
		}

		switch m.step {
		case StepWelcome:
			if msg.Type == tea.KeyEnter {
				return m.enter(m.nextStep(StepWelcome))
			}
			return m, nil

		case StepBuilderCode:
			switch msg.Type {
			case tea.KeyEsc:
				return m.enter(StepWelcome)
			case tea.KeyEnter:
				return m.submitBuilderCode()
			}

		case StepRecipient:
			switch msg.Type {
			case tea.KeyEsc:
				return m.enter(StepWelcome)
			case tea.KeyEnter:
				return m.submitRecipient()
			}

		case StepWalletChoice:
			return m.updateWalletChoice(msg)

		case StepWalletRPC:
			switch msg.Type {
			case tea.KeyEsc:
				return m.enter(StepWalletChoice)
			case tea.KeyEnter:
				return m.submitWalletRPC()
			}

		case StepWalletImportKey:
			switch msg.Type {
			case tea.KeyEsc:
				m.keyInput.Reset()
				return m.enter(StepWalletChoice)
			case tea.KeyEnter:
				return m.submitImportKey()
			}

		case StepWalletPassword:
			switch msg.Type {
			case tea.KeyEsc:
				return m.enter(StepWalletChoice)
			case tea.KeyEnter:
				return m.updateWalletPassword()
			}

		case StepComplete:
			if msg.Type == tea.KeyEnter {
				m.result = &SetupResult{
					BuilderCode:   m.builderCode,
					Recipient:     m.recipient,
					Provider:      m.provider,
					WalletRPCURL:  m.walletRPCURL,
					WalletAddress: m.walletAddress,
					WalletCreated: m.walletCreated,
				}
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.progress.Width = min(40, msg.Width-20)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case walletCreatedMsg:
		m.savingWallet = false
		if msg.err != nil {
			m.inputError = msg.err.Error()
			return m, nil
		}
		m.walletCreated = msg.created
		m.walletAddress = msg.address
		m.provider = config.ProviderLocal
		m.keyInput.Reset()
		return m.enter(StepComplete)
	}

	if in := m.activeInput(); in != nil && !m.savingWallet {
		var cmd tea.Cmd
		*in, cmd = in.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *WizardModel) activeInput() *textinput.Model {
	switch m.step {
	case StepBuilderCode:
		return &m.codeInput
	case StepRecipient:
		return &m.recipientInput
	case StepWalletRPC:
		return &m.rpcInput
	case StepWalletImportKey:
		return &m.keyInput
	case StepWalletPassword:
		if m.passwordStep == 0 {
			return &m.passwordInput
		}
		return &m.confirmInput
	}
	return nil
}

func (m WizardModel) submitBuilderCode() (tea.Model, tea.Cmd) {
	code := strings.TrimSpace(m.codeInput.Value())
	if config.IsPlaceholderCode(code) {
		m.inputError = "Builder code is required"
		return m, nil
	}
	if _, err := calldata.AttributionSuffix(code); err != nil {
		m.inputError = err.Error()
		return m, nil
	}
	m.builderCode = code
	return m.enter(m.nextStep(StepBuilderCode))
}

func (m WizardModel) submitRecipient() (tea.Model, tea.Cmd) {
	addr := strings.TrimSpace(m.recipientInput.Value())
	if !common.IsHexAddress(addr) {
		m.inputError = "Enter a 0x-prefixed 20-byte address"
		return m, nil
	}
	if config.IsZeroAddress(addr) {
		m.inputError = "Recipient cannot be the zero address"
		return m, nil
	}
	m.recipient = common.HexToAddress(addr).Hex()
	return m.enter(m.nextStep(StepRecipient))
}

func (m WizardModel) updateWalletChoice(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.walletCursor > 0 {
			m.walletCursor--
		}
	case "down", "j":
		if m.walletCursor < len(m.walletChoices)-1 {
			m.walletCursor++
		}
	case "esc":
		return m.enter(StepWelcome)
	case "enter":
		m.walletAction = m.walletChoices[m.walletCursor].id
		switch m.walletAction {
		case choiceExisting:
			m.provider = config.ProviderLocal
			m.walletAddress = m.status.WalletAddress
			return m.enter(StepComplete)
		case choiceCreate:
			return m.enter(StepWalletPassword)
		case choiceImport:
			return m.enter(StepWalletImportKey)
		default:
			return m.enter(StepWalletRPC)
		}
	}
	return m, nil
}

func (m WizardModel) submitWalletRPC() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.rpcInput.Value())
	if raw == "" {
		m.inputError = "Wallet RPC URL is required"
		return m, nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		m.inputError = "Enter a full URL such as http://127.0.0.1:8545"
		return m, nil
	}
	m.provider = config.ProviderRPC
	m.walletRPCURL = raw
	return m.enter(StepComplete)
}

func (m WizardModel) submitImportKey() (tea.Model, tea.Cmd) {
	key := strings.TrimPrefix(strings.TrimSpace(m.keyInput.Value()), "0x")
	if _, err := crypto.HexToECDSA(key); err != nil {
		m.inputError = "Not a valid hex private key"
		return m, nil
	}
	m.keyInput.SetValue(key)
	return m.enter(StepWalletPassword)
}

func (m WizardModel) updateWalletPassword() (tea.Model, tea.Cmd) {
	if m.passwordStep == 0 {
		if len(m.passwordInput.Value()) < minPasswordLength {
			m.inputError = fmt.Sprintf("Password must be at least %d characters", minPasswordLength)
			return m, nil
		}
		m.passwordStep = 1
		m.inputError = ""
		m.passwordInput.Blur()
		return m, m.confirmInput.Focus()
	}

	if m.passwordInput.Value() != m.confirmInput.Value() {
		m.inputError = "Passwords do not match. Try again."
		m.confirmInput.Reset()
		return m, nil
	}
	m.inputError = ""
	m.savingWallet = true
	if m.walletAction == choiceImport {
		return m, m.importWallet()
	}
	return m, m.createWallet()
}

// View renders the wizard
func (m WizardModel) View() string {
	if m.quitting {
		if m.result != nil && m.result.Cancelled {
			return DimStyle.Render("\n  Setup cancelled.\n\n")
		}
		return ""
	}

	var b strings.Builder
	if m.step > StepWelcome && m.step < StepComplete {
		b.WriteString("\n")
		b.WriteString(m.renderProgress())
		b.WriteString("\n")
	}

	switch m.step {
	case StepWelcome:
		b.WriteString(m.viewWelcome())
	case StepBuilderCode:
		b.WriteString(m.viewInput("Builder Code",
			"Registered ERC-8021 code that tips are attributed to.", m.codeInput))
	case StepRecipient:
		b.WriteString(m.viewInput("Tip Recipient",
			"Address that receives every USDC tip.", m.recipientInput))
	case StepWalletChoice:
		b.WriteString(m.viewWalletChoice())
	case StepWalletRPC:
		b.WriteString(m.viewInput("Wallet Endpoint",
			"JSON-RPC URL of a wallet that speaks wallet_sendCalls.", m.rpcInput))
	case StepWalletImportKey:
		b.WriteString(m.viewInput("Import Private Key",
			"The key is encrypted into your keystore and never written in plain text.", m.keyInput))
	case StepWalletPassword:
		b.WriteString(m.viewWalletPassword())
	case StepComplete:
		b.WriteString(m.viewComplete())
	}
	return b.String()
}

func (m WizardModel) renderProgress() string {
	var currentStep int
	switch m.step {
	case StepBuilderCode:
		currentStep = 1
	case StepRecipient:
		currentStep = 2
	case StepWalletChoice, StepWalletRPC, StepWalletImportKey, StepWalletPassword:
		currentStep = 3
	}

	percent := float64(currentStep) / float64(totalSteps)
	bar := m.progress.ViewAs(percent)

	labels := "  Code        Recipient       Wallet"
	return fmt.Sprintf("  %s\n%s", bar, DimStyle.Render(labels))
}

func (m WizardModel) viewWelcome() string {
	var b strings.Builder
	b.WriteString("\n\n")

	var missing []string
	if !m.status.HasBuilderCode {
		missing = append(missing, "a builder code")
	}
	if !m.status.HasRecipient {
		missing = append(missing, "a recipient")
	}
	if !m.status.WalletReady {
		missing = append(missing, "a wallet")
	}
	need := "Everything is configured. Press Enter to review."
	if len(missing) > 0 {
		need = "basetip still needs " + strings.Join(missing, " and ") + "."
	}

	box := BoxStyle.Render(
		TitleStyle.Render("Welcome to basetip") + "\n" +
			SubtitleStyle.Render("USDC tips on Base, attributed to your builder code") + "\n\n" +
			need,
	)
	b.WriteString(box)
	b.WriteString("\n\n")
	b.WriteString(HelpStyle.Render("  Press Enter to continue..."))
	return b.String()
}

func (m WizardModel) viewInput(title, hint string, in textinput.Model) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(TitleStyle.Render("  " + title))
	b.WriteString("\n\n")
	b.WriteString(SubtitleStyle.Render("  " + hint))
	b.WriteString("\n\n  ")
	b.WriteString(in.View())
	b.WriteString("\n")
	if m.inputError != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", ErrorStyle.Render("✗ "+m.inputError)))
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("  Enter to continue • Esc back"))
	return b.String()
}

func (m WizardModel) viewWalletChoice() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(TitleStyle.Render("  Choose a wallet"))
	b.WriteString("\n\n")
	b.WriteString(DimStyle.Render("  The wallet signs each tip transfer.\n\n"))
	for i, c := range m.walletChoices {
		cursor := "  "
		label := NormalStyle.Render(c.label)
		if i == m.walletCursor {
			cursor = CursorStyle.Render("▸ ")
			label = SelectedStyle.Render(c.label)
		}
		b.WriteString(fmt.Sprintf("  %s%s %s\n", cursor, label, DimStyle.Render(c.desc)))
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("  ↑/↓ to move • Enter to choose • Esc back"))
	return b.String()
}

func (m WizardModel) viewWalletPassword() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(TitleStyle.Render("  Wallet Password"))
	b.WriteString("\n\n")

	b.WriteString(DimStyle.Render("  This encrypts your wallet on disk.\n"))
	b.WriteString(DimStyle.Render(fmt.Sprintf("  Requirements: %d+ characters\n\n", minPasswordLength)))

	if m.passwordStep == 0 {
		b.WriteString("  ")
		b.WriteString(m.passwordInput.View())
		b.WriteString("\n")
	} else {
		b.WriteString(fmt.Sprintf("  Password: %s\n\n", SuccessStyle.Render("✓ set")))
		b.WriteString("  ")
		b.WriteString(m.confirmInput.View())
		b.WriteString("\n")
	}

	if m.savingWallet {
		b.WriteString(fmt.Sprintf("\n  %s Encrypting keystore...\n", m.spinner.View()))
	} else if m.inputError != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", ErrorStyle.Render("✗ "+m.inputError)))
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("  Enter to continue • Esc back"))
	return b.String()
}

func (m WizardModel) viewComplete() string {
	notSet := DimStyle.Render("unchanged")
	value := func(s string) string {
		if s == "" {
			return notSet
		}
		return s
	}

	walletInfo := notSet
	switch {
	case m.walletAddress != "":
		walletInfo = "local " + shortAddress(m.walletAddress)
	case m.walletRPCURL != "":
		walletInfo = m.walletRPCURL
	}

	content := fmt.Sprintf(
		"%s\n\n"+
			"Builder code: %s\n"+
			"Recipient:    %s\n"+
			"Wallet:       %s",
		TitleStyle.Render("✨ You're all set!"),
		value(m.builderCode),
		value(m.recipient),
		walletInfo,
	)

	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(BoxStyle.Render(content))
	b.WriteString("\n\n")
	b.WriteString(HelpStyle.Render("  Press Enter to save..."))
	return b.String()
}

func shortAddress(addr string) string {
	if len(addr) > 10 {
		return addr[:6] + "..." + addr[len(addr)-4:]
	}
	return addr
}

// RunWizard runs the setup wizard and returns the result
func RunWizard(status *SetupStatus) (*SetupResult, error) {
	m := NewWizard(status)

	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	return finalModel.(WizardModel).result, nil
}
