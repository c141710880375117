package cli

import (
	"context"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yolodolo42/basetip/internal/amount"
	"github.com/yolodolo42/basetip/internal/chain"
	"github.com/yolodolo42/basetip/internal/config"
	"github.com/yolodolo42/basetip/internal/mood"
	"github.com/yolodolo42/basetip/internal/tip"
	"github.com/yolodolo42/basetip/internal/ui"
	"github.com/yolodolo42/basetip/internal/wallet"
)

const (
	toastDuration = 2400 * time.Millisecond
	moodFrame     = 100 * time.Millisecond
)

type focusArea int

const (
	focusPresets focusArea = iota
	focusCustom
)

// Message types
type stateMsg tip.Change

type outcomeMsg struct {
	out tip.Outcome
	err error
}

type approvalMsg struct {
	approval wallet.Approval
	reply    chan bool
}

type moodTickMsg struct{}

type toastExpiredMsg struct {
	seq int
}

// sheetModel is the tip sheet. User intents become selection changes or a
// Send on the machine; the machine reports progress through events.
type sheetModel struct {
	ctx       context.Context
	machine   *tip.Machine
	events    chan tea.Msg
	mood      *mood.Engine
	chainName func(chain.ChainID) string

	presets   ui.PresetRow
	custom    ui.AmountInput
	selection amount.Selection
	focus     focusArea

	state     tip.State
	sending   bool
	settled   string // attempt id of the last finished attempt
	cancel    context.CancelFunc
	status    string
	statusErr bool
	toast     string
	toastSeq  int
	chain     string
	approval  *approvalMsg
	quitting  bool
}

func newSheetModel(ctx context.Context, m *tip.Machine, events chan tea.Msg, engine *mood.Engine, chainName func(chain.ChainID) string, presets []string) sheetModel {
	row := ui.NewPresetRow(presets, "USDC")
	row.Focus()
	return sheetModel{
		ctx:       ctx,
		machine:   m,
		events:    events,
		mood:      engine,
		chainName: chainName,
		presets:   row,
		custom:    ui.NewAmountInput("USDC"),
		state:     m.State(),
		chain:     "Base",
	}
}

func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

func moodTick() tea.Cmd {
	return tea.Tick(moodFrame, func(time.Time) tea.Msg { return moodTickMsg{} })
}

// Init starts listening for machine events
func (m sheetModel) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), moodTick())
}

// Update handles messages
func (m sheetModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)

	case stateMsg:
		if msg.Attempt != "" && msg.Attempt == m.settled {
			return m, waitForEvent(m.events)
		}
		m.state = msg.To
		if text := statusText(msg.To); text != "" {
			m.status = text
			m.statusErr = false
		}
		return m, waitForEvent(m.events)

	case approvalMsg:
		m.approval = &msg
		return m, waitForEvent(m.events)

	case outcomeMsg:
		model, cmd := m.finish(msg)
		return model, tea.Batch(cmd, waitForEvent(m.events))

	case moodTickMsg:
		return m, moodTick()

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil
	}
	return m, nil
}

func (m sheetModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.approval != nil {
		return m.updateApproval(msg)
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		m.cancelAttempt()
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEsc:
		if m.sending {
			m.cancelAttempt()
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit
	case tea.KeyTab, tea.KeyShiftTab:
		return m, m.toggleFocus()
	case tea.KeyEnter:
		if m.sending {
			return m, nil
		}
		// Enter picks the preset under the cursor only when nothing is chosen yet.
		if m.focus == focusPresets && m.selection.Resolve() == "" && m.presets.Update(msg) {
			m.choosePreset(m.presets.Active())
		}
		return m.send()
	}

	if m.sending {
		return m, nil
	}

	if m.focus == focusPresets {
		if m.presets.Update(msg) {
			m.choosePreset(m.presets.Active())
		}
		return m, nil
	}

	changed, cmd := m.custom.Update(msg)
	if changed {
		m.typeCustom(m.custom.Value())
	}
	return m, cmd
}

func (m sheetModel) updateApproval(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var ok bool
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		ok = true
	case "n", "esc":
		ok = false
	case "ctrl+c":
		m.approval.reply <- false
		m.approval = nil
		m.cancelAttempt()
		m.quitting = true
		return m, tea.Quit
	default:
		return m, nil
	}
	m.approval.reply <- ok
	m.approval = nil
	return m, nil
}

func (m *sheetModel) toggleFocus() tea.Cmd {
	if m.focus == focusPresets {
		m.focus = focusCustom
		m.presets.Blur()
		return m.custom.Focus()
	}
	m.focus = focusPresets
	m.custom.Blur()
	m.presets.Focus()
	return nil
}

func (m *sheetModel) choosePreset(value string) {
	if value == "" {
		return
	}
	m.selection.ChoosePreset(value)
	m.custom.Reset()
	m.backToSelect()
}

func (m *sheetModel) typeCustom(text string) {
	m.selection.Type(text)
	m.presets.Clear()
	m.backToSelect()
}

// backToSelect clears feedback and leaves done once the user edits the amount.
func (m *sheetModel) backToSelect() {
	m.status = ""
	m.statusErr = false
	if m.state == tip.StateDone && m.machine.Reset() == nil {
		m.state = tip.StateSelect
	}
}

func (m sheetModel) send() (tea.Model, tea.Cmd) {
	if m.sending || m.state.InFlight() {
		return m, nil
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.sending = true
	m.status = ""
	m.statusErr = false

	// The outcome follows the attempt's state changes on the same channel,
	// so it is never applied before them.
	machine, sel, events := m.machine, m.selection, m.events
	return m, func() tea.Msg {
		out, err := machine.Send(ctx, sel)
		events <- outcomeMsg{out: out, err: err}
		return nil
	}
}

func (m *sheetModel) cancelAttempt() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m sheetModel) finish(msg outcomeMsg) (tea.Model, tea.Cmd) {
	m.cancelAttempt()
	m.cancel = nil
	m.sending = false
	m.settled = msg.out.Attempt
	if msg.err != nil {
		m.status = msg.err.Error()
		m.statusErr = true
		return m, nil
	}

	out := msg.out
	switch {
	case out.Success():
		m.state = tip.StateDone
		m.status = ""
		m.chain = m.chainName(out.ChainID)
		return m, m.showToast(out.Message)
	case out.Kind == tip.KindUserCanceled:
		m.state = tip.StateSelect
		m.status = out.Message
		m.statusErr = false
		return m, m.showToast(MsgMaybeLater)
	case out.Kind == tip.KindConfig:
		m.state = tip.StateSelect
		m.status = ""
		return m, m.showToast(out.Message)
	default:
		m.state = tip.StateSelect
		m.status = out.Message
		m.statusErr = true
		return m, nil
	}
}

func (m *sheetModel) showToast(text string) tea.Cmd {
	m.toastSeq++
	m.toast = text
	seq := m.toastSeq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })
}

// View renders the sheet
func (m sheetModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	snap := m.mood.Snapshot()
	dot := ui.MoodStyle(snap.Mood == mood.Energized).Render(ui.SymbolBullet)
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		ui.TitleStyle.Render("basetip"),
		"  ", dot, " ", ui.DimStyle.Render(string(snap.Mood)),
		"  ", ui.DimStyle.Render(m.chain),
	)
	b.WriteString(header)
	b.WriteString("\n\n")

	b.WriteString(m.presets.View())
	b.WriteString("\n")
	b.WriteString(m.custom.View())
	b.WriteString("\n\n")

	button := ui.ButtonStyle
	if m.sending {
		button = ui.ButtonBusyStyle
	}
	b.WriteString(button.Render(sendLabel(m.state)))
	b.WriteString("\n")

	if m.status != "" {
		style := ui.StatusStyle
		if m.statusErr {
			style = ui.ErrorStyle
		}
		b.WriteString("\n" + style.Render(m.status) + "\n")
	}
	if m.toast != "" {
		b.WriteString("\n" + ui.ToastStyle.Render(m.toast) + "\n")
	}
	if m.approval != nil {
		b.WriteString("\n" + approvalText(m.approval.approval) + "\n")
		b.WriteString(ui.PromptStyle.Render("Approve? [y/n]") + "\n")
	}

	b.WriteString("\n")
	b.WriteString(ui.HelpStyle.Render("tab switch · ←/→ or 1-9 preset · enter send · esc cancel/quit"))

	return ui.SheetStyle.Render(b.String())
}

// sheetApprover hands local wallet approvals to the sheet and waits for the answer.
func sheetApprover(events chan<- tea.Msg) wallet.Approver {
	return func(ctx context.Context, ap wallet.Approval) (bool, error) {
		reply := make(chan bool, 1)
		select {
		case events <- approvalMsg{approval: ap, reply: reply}:
		case <-ctx.Done():
			return false, ctx.Err()
		}
		select {
		case ok := <-reply:
			return ok, nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

// cachedPassword asks once, before the sheet takes over the terminal.
func cachedPassword(a *app) (wallet.PasswordFunc, error) {
	if a.cfg.Provider != config.ProviderLocal {
		return terminalPassword(os.Stderr), nil
	}
	pw, ok := os.LookupEnv(PasswordEnv)
	if !ok {
		var err error
		pw, err = readPassword("Keystore password: ")
		if err != nil {
			return nil, err
		}
	}
	return func(context.Context, common.Address) (string, error) { return pw, nil }, nil
}

func runSheet(cmd *cobra.Command) error {
	a, err := newApp(viper.GetViper())
	if err != nil {
		return err
	}
	defer a.Close()

	password, err := cachedPassword(a)
	if err != nil {
		return err
	}

	events := make(chan tea.Msg, 32)
	connect, err := a.connector(password, sheetApprover(events))
	if err != nil {
		return err
	}

	machine := a.machine(connect, tip.WithObserver(func(c tip.Change) {
		select {
		case events <- stateMsg(c):
		default:
			a.log.Warn("sheet event dropped", map[string]any{"to": string(c.To)})
		}
	}))

	model := newSheetModel(cmd.Context(), machine, events, a.mood, a.chainName, a.cfg.Presets)
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
