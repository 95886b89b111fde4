package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/campusfound/campusfound/internal/notify"
)

func newTestEmailCmd(a *app) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "test-email",
		Short: "Check the mail configuration by sending a test message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ncfg := a.cfg.Notify()
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "=== Testing Email Configuration ===")
			fmt.Fprintf(out, "Service:  %s\n", orUnset(ncfg.Service))
			fmt.Fprintf(out, "Username: %s\n", orUnset(ncfg.Username))
			if ncfg.Password != "" {
				fmt.Fprintln(out, "Password: set (hidden)")
			} else {
				fmt.Fprintln(out, "Password: not set")
			}
			fmt.Fprintln(out)

			mailer, err := notify.NewSMTPMailer(ncfg)
			if err != nil {
				return fmt.Errorf("email credentials are missing or invalid: %w", err)
			}
			dispatcher, err := notify.NewDispatcher(ncfg, mailer)
			if err != nil {
				return err
			}

			recipient := to
			if recipient == "" {
				recipient = ncfg.Username
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			fmt.Fprintf(out, "Sending test email via %s to %s...\n", mailer.Addr(), recipient)
			if err := dispatcher.SendTest(ctx, recipient); err != nil {
				return fmt.Errorf("%w (Gmail requires an app password when two-factor authentication is on)", err)
			}
			fmt.Fprintln(out, "Test email sent. Check the inbox (and spam folder).")
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "recipient (default: the sender account)")
	return cmd
}

func orUnset(s string) string {
	if s == "" {
		return "not set"
	}
	return s
}
