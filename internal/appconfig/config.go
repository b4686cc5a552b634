package appconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"pkt.systems/repostamp/internal/appdata"
	"pkt.systems/repostamp/internal/credential"
	"pkt.systems/repostamp/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int               `mapstructure:"config_version" yaml:"config_version"`
	StateDir      string            `mapstructure:"state_dir" yaml:"state_dir"`
	GitHub        GitHubConfig      `mapstructure:"github" yaml:"github"`
	Credentials   CredentialsConfig `mapstructure:"credentials" yaml:"credentials"`
	AppData       AppDataConfig     `mapstructure:"appdata" yaml:"appdata"`
	Run           RunConfig         `mapstructure:"run" yaml:"run"`
	Log           LogConfig         `mapstructure:"log" yaml:"log"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// GitHubConfig selects the API endpoint. Empty URLs mean github.com.
type GitHubConfig struct {
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
	UploadURL      string `mapstructure:"upload_url" yaml:"upload_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// CredentialsConfig configures token storage.
type CredentialsConfig struct {
	Backend     string `mapstructure:"backend" yaml:"backend"`
	File        string `mapstructure:"file" yaml:"file"`
	VaultBundle string `mapstructure:"vault_bundle" yaml:"vault_bundle"`
	VaultFile   string `mapstructure:"vault_file" yaml:"vault_file"`
	EnvVar      string `mapstructure:"env_var" yaml:"env_var"`
}

// AppDataConfig configures the remembered settings store.
type AppDataConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// RunConfig holds creation defaults.
type RunConfig struct {
	MaxRepos        int    `mapstructure:"max_repos" yaml:"max_repos"`
	DefaultRole     string `mapstructure:"default_role" yaml:"default_role"`
	DefaultTemplate string `mapstructure:"default_template" yaml:"default_template"`
	Private         bool   `mapstructure:"private" yaml:"private"`
}

// LogConfig sizes the user-facing log.
type LogConfig struct {
	Capacity int `mapstructure:"capacity" yaml:"capacity"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	stateDir := filepath.Join(home, ".repostamp", "state")
	return Config{
		ConfigVersion: CurrentConfigVersion,
		StateDir:      stateDir,
		GitHub: GitHubConfig{
			TimeoutSeconds: 30,
		},
		Credentials: CredentialsConfig{
			Backend:     credential.BackendFile,
			File:        filepath.Join(stateDir, "tokens.json"),
			VaultBundle: filepath.Join(stateDir, "vault", "keys.bundle"),
			VaultFile:   filepath.Join(stateDir, "vault", "tokens.enc"),
			EnvVar:      credential.DefaultEnvVar,
		},
		AppData: AppDataConfig{
			Backend: appdata.BackendJSON,
			Path:    filepath.Join(stateDir, "appdata.json"),
		},
		Run: RunConfig{
			MaxRepos:        schema.DefaultMaxRepos,
			DefaultRole:     string(schema.DefaultRole),
			DefaultTemplate: schema.DefaultTemplate,
			Private:         true,
		},
		Log: LogConfig{
			Capacity: schema.DefaultLogCapacity,
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".repostamp", "config.yaml"), nil
}

// Validate checks every section.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.StateDir, validation.Required),
		validation.Field(&c.GitHub),
		validation.Field(&c.Credentials),
		validation.Field(&c.AppData),
		validation.Field(&c.Run),
		validation.Field(&c.Log),
	)
}

// Validate implements validation.Validatable.
func (g GitHubConfig) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.BaseURL, is.URL),
		validation.Field(&g.UploadURL, is.URL),
		validation.Field(&g.TimeoutSeconds, validation.By(positive)),
	)
}

// Timeout returns the HTTP timeout.
func (g GitHubConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// Validate implements validation.Validatable.
func (c CredentialsConfig) Validate() error {
	var fileRules, vaultRules []validation.Rule
	switch c.Backend {
	case credential.BackendFile:
		fileRules = append(fileRules, validation.Required)
	case credential.BackendVault:
		vaultRules = append(vaultRules, validation.Required)
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In(credential.BackendFile, credential.BackendVault, credential.BackendEnv)),
		validation.Field(&c.File, fileRules...),
		validation.Field(&c.VaultBundle, vaultRules...),
		validation.Field(&c.VaultFile, vaultRules...),
	)
}

// Validate implements validation.Validatable.
func (a AppDataConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Backend, validation.Required, validation.In(appdata.BackendJSON, appdata.BackendBolt)),
		validation.Field(&a.Path, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (r RunConfig) Validate() error {
	roles := make([]interface{}, 0, len(schema.Roles()))
	for _, role := range schema.Roles() {
		roles = append(roles, string(role))
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.MaxRepos, validation.By(positive)),
		validation.Field(&r.DefaultRole, validation.Required, validation.In(roles...)),
		validation.Field(&r.DefaultTemplate, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (l LogConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Capacity, validation.By(positive)),
	)
}

// CreatorConfig converts the run and log sections for the creator.
func (c Config) CreatorConfig() schema.RunConfig {
	return schema.RunConfig{
		MaxRepos:        c.Run.MaxRepos,
		DefaultRole:     schema.Role(c.Run.DefaultRole),
		DefaultTemplate: c.Run.DefaultTemplate,
		LogCapacity:     c.Log.Capacity,
	}
}

func positive(value interface{}) error {
	n, ok := value.(int)
	if !ok {
		return fmt.Errorf("must be an integer")
	}
	if n < 1 {
		return errors.New("must be at least 1")
	}
	return nil
}
