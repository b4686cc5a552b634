package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"pkt.systems/repostamp/internal/appdata"
	"pkt.systems/repostamp/internal/credential"
	"pkt.systems/repostamp/schema"
)

func newTokenCmd(cfgPath *string) *cobra.Command {
	var backend string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage stored GitHub tokens",
	}
	cmd.PersistentFlags().StringVar(&backend, "backend", "", "credential backend override")

	cmd.AddCommand(newTokenSetCmd(cfgPath, &backend))
	cmd.AddCommand(newTokenStatusCmd(cfgPath, &backend))
	cmd.AddCommand(newTokenUseCmd(cfgPath))
	cmd.AddCommand(newTokenClearCmd(cfgPath, &backend))
	return cmd
}

func newTokenSetCmd(cfgPath, backend *string) *cobra.Command {
	var slot string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store a token (prompted on a terminal, read from stdin otherwise)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, *cfgPath)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			normalized, err := schema.NormalizeSlot(schema.Slot(slot))
			if err != nil {
				return err
			}
			store, err := a.credentials(*backend)
			if err != nil {
				return err
			}
			token, err := readToken(cmd, normalized)
			if err != nil {
				return err
			}
			store.Set(normalized, token)
			if current, ok := store.Load(normalized); !ok || current != token {
				a.printLog(cmd.ErrOrStderr())
				return fmt.Errorf("%w: token for slot %s was not stored by the %s backend", schema.ErrCredentialUnavailable, normalized, store.Backend())
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "stored token in slot %s (%s backend)\n", normalized, store.Backend())
			return err
		},
	}
	cmd.Flags().StringVar(&slot, "slot", string(schema.DefaultSlot), "credential slot")
	return cmd
}

func newTokenStatusCmd(cfgPath, backend *string) *cobra.Command {
	var slot string
	var verify bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a slot holds a token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, *cfgPath)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			normalized, err := schema.NormalizeSlot(schema.Slot(slot))
			if err != nil {
				return err
			}
			store, err := a.credentials(*backend)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			token, ok := store.Load(normalized)
			state := "empty"
			if ok {
				state = "set"
			}
			_, _ = fmt.Fprintf(out, "backend: %s\nslot:    %s (%s)\n", store.Backend(), normalized, state)
			a.printLog(out)
			if !ok || !verify {
				return nil
			}
			remote, err := a.remote(token)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.GitHub.Timeout())
			defer cancel()
			login, err := remote.Authenticated(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "login:   %s\n", login)
			return err
		},
	}
	cmd.Flags().StringVar(&slot, "slot", string(schema.DefaultSlot), "credential slot")
	cmd.Flags().BoolVar(&verify, "verify", false, "check the token against GitHub")
	return cmd
}

func newTokenUseCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:       "use <backend>",
		Short:     "Remember the credential backend to use",
		Args:      cobra.ExactArgs(1),
		ValidArgs: credential.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend := strings.ToLower(strings.TrimSpace(args[0]))
			if !slices.Contains(credential.Names(), backend) {
				return fmt.Errorf("unknown credential backend %q (available: %s)", backend, strings.Join(credential.Names(), ", "))
			}
			a, err := openApp(cmd, *cfgPath)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			if err := a.data.Set(appdata.KeyCredentialBackend, backend); err != nil {
				return err
			}
			if err := a.data.Save(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "credential backend: %s\n", backend)
			return err
		},
	}
}

func newTokenClearCmd(cfgPath, backend *string) *cobra.Command {
	var slot string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget the token in a slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, *cfgPath)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			store, err := a.credentials(*backend)
			if err != nil {
				return err
			}
			remover, ok := store.(credential.Remover)
			if !ok {
				return errors.New("credential backend cannot remove tokens")
			}
			normalized, err := schema.NormalizeSlot(schema.Slot(slot))
			if err != nil {
				return err
			}
			if err := remover.Remove(normalized); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "cleared slot %s (%s backend)\n", normalized, store.Backend())
			return err
		},
	}
	cmd.Flags().StringVar(&slot, "slot", string(schema.DefaultSlot), "credential slot")
	return cmd
}
