package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pkt.systems/kryptograf/keymgmt"
	"pkt.systems/pslog"
	"pkt.systems/repostamp/core"
	"pkt.systems/repostamp/internal/appconfig"
	"pkt.systems/repostamp/internal/appdata"
	"pkt.systems/repostamp/internal/credential"
	"pkt.systems/repostamp/internal/github"
	"pkt.systems/repostamp/schema"
)

// app bundles the state every command opens: config, app data and the run log.
type app struct {
	cfg    appconfig.Config
	data   appdata.Store
	log    *core.LogSink
	logger pslog.Logger
}

func openApp(cmd *cobra.Command, cfgPath string) (*app, error) {
	logger := pslog.Ctx(cmd.Context())
	cfg, err := appconfig.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	data, err := appdata.Open(cfg.AppData.Backend, cfg.AppData.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("open app data: %w", err)
	}
	return &app{
		cfg:    cfg,
		data:   data,
		log:    core.NewLogSink(cfg.Log.Capacity),
		logger: logger,
	}, nil
}

func (a *app) Close() error {
	return a.data.Close()
}

// credentialBackend picks the flag value, then the remembered choice, then config.
func (a *app) credentialBackend(override string) string {
	if backend := strings.TrimSpace(override); backend != "" {
		return backend
	}
	if backend, ok, err := a.data.Get(appdata.KeyCredentialBackend); err == nil && ok && backend != "" {
		return backend
	}
	return a.cfg.Credentials.Backend
}

func (a *app) credentials(override string) (credential.Store, error) {
	backend := a.credentialBackend(override)
	opts := credential.Options{
		Path:     a.cfg.Credentials.File,
		EnvVar:   a.cfg.Credentials.EnvVar,
		Recorder: a.log,
		Logger:   a.logger,
	}
	if backend == credential.BackendVault {
		opts.Path = a.cfg.Credentials.VaultFile
		opts.BundlePath = a.cfg.Credentials.VaultBundle
	}
	return credential.Open(backend, opts)
}

func (a *app) remote(token string) (*github.Client, error) {
	return github.New(github.Options{
		Token:     token,
		BaseURL:   a.cfg.GitHub.BaseURL,
		UploadURL: a.cfg.GitHub.UploadURL,
		Timeout:   a.cfg.GitHub.Timeout(),
	})
}

// remember stores a last-used value. Failures only reach the debug log.
func (a *app) remember(key, value string) {
	if err := a.data.Set(key, value); err != nil {
		a.logger.Debug("appdata remember failed", "key", key, "err", err)
	}
}

func (a *app) recall(key string) (string, bool) {
	value, ok, err := a.data.Get(key)
	if err != nil || !ok {
		return "", false
	}
	return value, true
}

// printLog writes the run log oldest first.
func (a *app) printLog(out io.Writer) {
	entries := a.log.Read(a.log.Cap())
	if len(entries) == 0 {
		return
	}
	_, _ = fmt.Fprintln(out, "log:")
	for i := len(entries) - 1; i >= 0; i-- {
		_, _ = fmt.Fprintf(out, "  [%s] %s\n", entries[i].Category, entries[i].Message)
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// readToken prompts without echo on a terminal and otherwise reads all of stdin.
func readToken(cmd *cobra.Command, slot schema.Slot) (string, error) {
	in := cmd.InOrStdin()
	var raw []byte
	var err error
	if isTerminal(in) {
		raw, err = keymgmt.PromptPassphrase(in, fmt.Sprintf("GitHub token for slot %s: ", slot), cmd.ErrOrStderr())
	} else {
		raw, err = io.ReadAll(io.LimitReader(in, 64<<10))
	}
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", errors.New("token is empty")
	}
	return token, nil
}

// ensureToken loads the slot, prompting on a terminal when it is empty.
func ensureToken(cmd *cobra.Command, store credential.Store, slot schema.Slot) (string, error) {
	if token, ok := store.Load(slot); ok {
		return token, nil
	}
	if !isTerminal(cmd.InOrStdin()) {
		return "", fmt.Errorf("%w: no token in slot %s (run repostamp token set)", schema.ErrCredentialUnavailable, slot)
	}
	token, err := readToken(cmd, slot)
	if err != nil {
		return "", err
	}
	store.Set(slot, token)
	if !store.Has(slot) {
		pslog.Ctx(cmd.Context()).Warn("credential token not persisted", "slot", slot, "backend", store.Backend())
	}
	return token, nil
}

func parseParams(values []string) (map[string]string, error) {
	params := make(map[string]string, len(values))
	for _, value := range values {
		key, val, ok := strings.Cut(value, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("parameter %q must be key=value", value)
		}
		params[key] = val
	}
	return params, nil
}
