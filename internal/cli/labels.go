package cli

import "github.com/yolodolo42/basetip/internal/tip"

// Texts shown by the sheet and the send command.
const (
	MsgWarmingUp     = "Warming up…"
	MsgConfirmWallet = "Confirm in wallet"
	MsgMaybeLater    = "No worries, maybe later ✨"
)

// sendLabel is the send button text for a state.
func sendLabel(s tip.State) string {
	switch s {
	case tip.StatePreparing:
		return "Preparing tip…"
	case tip.StateConfirm:
		return "Confirm in wallet"
	case tip.StateSending:
		return "Sending…"
	case tip.StateDone:
		return "Send again"
	default:
		return "Send USDC"
	}
}

// statusText is the status line entering a state, or "" to leave it unchanged.
func statusText(s tip.State) string {
	switch s {
	case tip.StatePreparing:
		return MsgWarmingUp
	case tip.StateConfirm:
		return MsgConfirmWallet
	default:
		return ""
	}
}
