package main

import (
	"context"
	"fmt"

	"github.com/Aidin1998/ethtransfer/api"
	"github.com/Aidin1998/ethtransfer/internal/ledger"
	"github.com/spf13/cobra"
)

func newAccountsCmd(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List the accounts managed by the node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			ctx, cancel := a.callContext(cmd.Context())
			defer cancel()

			accounts, err := a.wallet.ListAccounts(ctx)
			if err != nil {
				return err
			}
			for i, acc := range accounts {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i, acc)
			}
			return nil
		},
	}
}

func newBalanceCmd(appFn func() *app) *cobra.Command {
	var unitName string
	cmd := &cobra.Command{
		Use:   "balance <account>",
		Short: "Print the balance of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			unit, err := ledger.ParseUnit(unitName)
			if err != nil {
				return err
			}
			ctx, cancel := a.callContext(cmd.Context())
			defer cancel()

			bal, err := a.wallet.GetBalance(ctx, ledger.Account(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ledger.FromBase(bal.Amount, unit), unit.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&unitName, "unit", ledger.Ether.Name, "display unit (wei, gwei, ether, ...)")
	return cmd
}

func newTransferCmd(appFn func() *app) *cobra.Command {
	var unitName string
	cmd := &cobra.Command{
		Use:   "transfer <from> <to> <amount>",
		Short: "Transfer value between two node accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			unit, err := ledger.ParseUnit(unitName)
			if err != nil {
				return err
			}
			amount, err := ledger.ToBase(args[2], unit)
			if err != nil {
				return err
			}
			ctx, cancel := a.callContext(cmd.Context())
			defer cancel()

			res, err := a.wallet.Transfer(ctx, ledger.TransferRequest{
				From:   ledger.Account(args[0]),
				To:     ledger.Account(args[1]),
				Amount: amount,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Hash)
			return nil
		},
	}
	cmd.Flags().StringVar(&unitName, "unit", ledger.Ether.Name, "unit of <amount>")
	return cmd
}

// newDemoCmd reads the balances of two node accounts picked by index,
// moves an amount between them and prints the outcome.
func newDemoCmd(appFn func() *app) *cobra.Command {
	var (
		senderIdx   int
		receiverIdx int
		amount      string
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Transfer ether between two of the node's accounts and print their balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.Context(), appFn(), cmd, senderIdx, receiverIdx, amount)
		},
	}
	cmd.Flags().IntVar(&senderIdx, "sender", 5, "index of the sending account")
	cmd.Flags().IntVar(&receiverIdx, "receiver", 2, "index of the receiving account")
	cmd.Flags().StringVar(&amount, "amount", "1", "amount in ether")
	return cmd
}

func runDemo(ctx context.Context, a *app, cmd *cobra.Command, senderIdx, receiverIdx int, amount string) error {
	out := cmd.OutOrStdout()
	wei, err := ledger.ToBaseUnit(amount)
	if err != nil {
		return err
	}

	callCtx, cancel := a.callContext(ctx)
	accounts, err := a.wallet.ListAccounts(callCtx)
	cancel()
	if err != nil {
		return err
	}
	for _, idx := range []int{senderIdx, receiverIdx} {
		if idx < 0 || idx >= len(accounts) {
			return fmt.Errorf("account index %d out of range: node has %d accounts", idx, len(accounts))
		}
	}
	sender, receiver := accounts[senderIdx], accounts[receiverIdx]

	balances := func() (string, string, error) {
		callCtx, cancel := a.callContext(ctx)
		defer cancel()
		s, err := a.wallet.GetBalance(callCtx, sender)
		if err != nil {
			return "", "", err
		}
		r, err := a.wallet.GetBalance(callCtx, receiver)
		if err != nil {
			return "", "", err
		}
		return s.Ether, r.Ether, nil
	}

	senderBefore, receiverBefore, err := balances()
	if err != nil {
		return err
	}

	callCtx, cancel = a.callContext(ctx)
	res, err := a.wallet.Transfer(callCtx, ledger.TransferRequest{From: sender, To: receiver, Amount: wei})
	cancel()
	if err != nil {
		fmt.Fprintf(out, "Transfer of %s ether from %s to %s failed: %v\n", amount, sender, receiver, err)
		return err
	}

	senderAfter, receiverAfter, err := balances()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Transaction: %s\n", res.Hash)
	fmt.Fprintf(out, "Amount transferred: %s ether\n", ledger.ToDisplayUnit(res.Amount))
	fmt.Fprintf(out, "Sender:   %s\n  Balance: %s -> %s ether\n", sender, senderBefore, senderAfter)
	fmt.Fprintf(out, "Receiver: %s\n  Balance: %s -> %s ether\n", receiver, receiverBefore, receiverAfter)
	return nil
}

func newServeCmd(appFn func() *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the accounts, balance and transfer HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			return api.NewServer(a.logger, a.wallet, api.WithRequestTimeout(a.cfg.Ledger.RequestTimeout)).Start(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return cmd
}
