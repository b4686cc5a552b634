package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/repostamp/internal/appconfig"
	"pkt.systems/repostamp/internal/appdata"
	"pkt.systems/repostamp/schema"
)

func newDoctorCmd(cfgPath *string) *cobra.Command {
	var slot string
	var offline bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check config, app data, credentials and GitHub access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			out := cmd.OutOrStdout()

			configPath := *cfgPath
			if strings.TrimSpace(configPath) == "" {
				path, err := appconfig.DefaultConfigPath()
				if err != nil {
					return err
				}
				configPath = path
			}
			logger.Info("doctor start", "config", configPath)

			a, err := openApp(cmd, *cfgPath)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			report(out, "config", configPath)
			report(out, "appdata", fmt.Sprintf("%s (%s)", a.cfg.AppData.Path, a.cfg.AppData.Backend))
			if backend, ok := a.recall(appdata.KeyCredentialBackend); ok {
				report(out, "remembered", "credential backend "+backend)
			}

			normalized, err := schema.NormalizeSlot(schema.Slot(slot))
			if err != nil {
				return err
			}
			store, err := a.credentials("")
			if err != nil {
				return err
			}
			token, ok := store.Load(normalized)
			if !ok {
				a.printLog(out)
				return fmt.Errorf("%w: slot %s is empty in the %s backend", schema.ErrCredentialUnavailable, normalized, store.Backend())
			}
			report(out, "credentials", fmt.Sprintf("slot %s set (%s)", normalized, store.Backend()))
			logger.Info("doctor credentials ok", "slot", normalized, "backend", store.Backend())

			if offline {
				logger.Info("doctor complete", "offline", true)
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
				if errors.Is(err, context.DeadlineExceeded) {
					return fmt.Errorf("doctor github check timed out after %s: %w", a.cfg.GitHub.Timeout(), err)
				}
				return err
			}
			endpoint := a.cfg.GitHub.BaseURL
			if endpoint == "" {
				endpoint = "github.com"
			}
			report(out, "github", fmt.Sprintf("authenticated as %s on %s", login, endpoint))
			logger.Info("doctor complete", "login", login)
			return nil
		},
	}
	cmd.Flags().StringVar(&slot, "slot", string(schema.DefaultSlot), "credential slot")
	cmd.Flags().BoolVar(&offline, "offline", false, "skip the GitHub check")
	return cmd
}

func report(out interface{ Write([]byte) (int, error) }, check, detail string) {
	_, _ = fmt.Fprintf(out, "ok  %-12s %s\n", check, detail)
}
