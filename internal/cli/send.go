package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yolodolo42/basetip/internal/amount"
	"github.com/yolodolo42/basetip/internal/tip"
	"github.com/yolodolo42/basetip/internal/ui"
	"github.com/yolodolo42/basetip/internal/wallet"
)

// PasswordEnv supplies the keystore password when no terminal is attached.
const PasswordEnv = "BASETIP_KEYSTORE_PASSWORD"

var errTipNotSent = errors.New("tip not sent")

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send one tip without the interactive sheet",
	Example: `  basetip send --preset 5
  basetip send --amount 2.5 --provider local --yes`,
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().String("amount", "", "Custom tip amount in USDC")
	sendCmd.Flags().String("preset", "", "One of the configured preset amounts")
	sendCmd.Flags().Bool("yes", false, "Approve local wallet transfers without asking")
	sendCmd.MarkFlagsMutuallyExclusive("amount", "preset")
	sendCmd.MarkFlagsOneRequired("amount", "preset")
}

func runSend(cmd *cobra.Command, args []string) error {
	a, err := newApp(viper.GetViper())
	if err != nil {
		return err
	}
	defer a.Close()

	sel, err := selectionFromFlags(cmd, a.cfg.Presets)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	yes, _ := cmd.Flags().GetBool("yes")
	approve := promptApprover(cmd.InOrStdin(), out)
	if yes {
		approve = nil
	}

	connect, err := a.connector(terminalPassword(out), approve)
	if err != nil {
		return err
	}

	m := a.machine(connect, tip.WithObserver(func(c tip.Change) {
		if line := statusText(c.To); line != "" {
			fmt.Fprintln(out, ui.DimStyle.Render(ui.SymbolSpin+" "+line))
		}
	}))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	result, err := m.Send(ctx, sel)
	if err != nil {
		return err
	}
	return reportOutcome(out, a, result)
}

// selectionFromFlags builds the selection. A preset must be one of the
// configured amounts.
func selectionFromFlags(cmd *cobra.Command, presets []string) (amount.Selection, error) {
	if p, _ := cmd.Flags().GetString("preset"); p != "" {
		for _, known := range presets {
			if known == p {
				return amount.PresetSelection(p), nil
			}
		}
		return amount.Selection{}, fmt.Errorf("unknown preset %q (configured: %s)", p, strings.Join(presets, ", "))
	}
	text, _ := cmd.Flags().GetString("amount")
	return amount.CustomSelection(text), nil
}

func reportOutcome(w io.Writer, a *app, out tip.Outcome) error {
	if out.Success() {
		fmt.Fprintln(w, ui.SuccessStyle.Render(ui.SymbolCheck+" "+out.Message))
		token := a.token(out.ChainID)
		fmt.Fprintf(w, "  amount:   %s %s\n", amount.FormatBaseUnits(out.Amount, token.Decimals), token.Symbol)
		fmt.Fprintf(w, "  chain:    %s\n", a.chainName(out.ChainID))
		fmt.Fprintf(w, "  from:     %s\n", out.From)
		fmt.Fprintf(w, "  calls id: %s\n", out.CallsID)
		if link := a.explorerLink(out.ChainID, out.CallsID); link != "" {
			fmt.Fprintf(w, "  explorer: %s\n", link)
		}
		return nil
	}

	fmt.Fprintln(w, ui.ErrorStyle.Render(ui.SymbolCross+" "+out.Message))
	if out.Kind == tip.KindUserCanceled {
		fmt.Fprintln(w, ui.DimStyle.Render(MsgMaybeLater))
	}
	return fmt.Errorf("%w: %s", errTipNotSent, out.Kind)
}

// terminalPassword reads the keystore password from the environment or,
// failing that, from the terminal without echo.
func terminalPassword(w io.Writer) wallet.PasswordFunc {
	return func(ctx context.Context, account common.Address) (string, error) {
		if pw, ok := os.LookupEnv(PasswordEnv); ok {
			return pw, nil
		}
		if !IsInteractive() {
			return "", fmt.Errorf("no terminal to read the keystore password; set %s", PasswordEnv)
		}
		return readPassword(fmt.Sprintf("Password for %s: ", account.Hex()))
	}
}

// promptApprover asks on the terminal before the local wallet signs.
func promptApprover(in io.Reader, w io.Writer) wallet.Approver {
	reader := bufio.NewReader(in)
	return func(ctx context.Context, ap wallet.Approval) (bool, error) {
		fmt.Fprintln(w, approvalText(ap))
		fmt.Fprint(w, "Approve? [y/N] ")

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	}
}

func approvalText(ap wallet.Approval) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Send %s %s to %s on %s", ap.Amount, ap.Symbol, ap.Recipient.Hex(), ap.Chain)
	fmt.Fprintf(&b, "\n  from:  %s", ap.From.Hex())
	fmt.Fprintf(&b, "\n  token: %s", ap.Token.Hex())
	if len(ap.Attribution) > 0 {
		fmt.Fprintf(&b, "\n  builder codes: %s", strings.Join(ap.Attribution, ", "))
	}
	return b.String()
}
