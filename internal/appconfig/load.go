package appconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from the provided path. If path is empty, uses DefaultConfigPath.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("state_dir", cfg.StateDir)
	v.SetDefault("github.base_url", cfg.GitHub.BaseURL)
	v.SetDefault("github.upload_url", cfg.GitHub.UploadURL)
	v.SetDefault("github.timeout_seconds", cfg.GitHub.TimeoutSeconds)
	v.SetDefault("credentials.backend", cfg.Credentials.Backend)
	v.SetDefault("credentials.file", cfg.Credentials.File)
	v.SetDefault("credentials.vault_bundle", cfg.Credentials.VaultBundle)
	v.SetDefault("credentials.vault_file", cfg.Credentials.VaultFile)
	v.SetDefault("credentials.env_var", cfg.Credentials.EnvVar)
	v.SetDefault("appdata.backend", cfg.AppData.Backend)
	v.SetDefault("appdata.path", cfg.AppData.Path)
	v.SetDefault("run.max_repos", cfg.Run.MaxRepos)
	v.SetDefault("run.default_role", cfg.Run.DefaultRole)
	v.SetDefault("run.default_template", cfg.Run.DefaultTemplate)
	v.SetDefault("run.private", cfg.Run.Private)
	v.SetDefault("log.capacity", cfg.Log.Capacity)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return Config{}, err
		}
	} else {
		if !v.IsSet("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	expandConfigEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.StateDir = expandEnv(cfg.StateDir)
	cfg.Credentials.File = expandEnv(cfg.Credentials.File)
	cfg.Credentials.VaultBundle = expandEnv(cfg.Credentials.VaultBundle)
	cfg.Credentials.VaultFile = expandEnv(cfg.Credentials.VaultFile)
	cfg.AppData.Path = expandEnv(cfg.AppData.Path)
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := lookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

func lookupEnv(key string) (string, bool) {
	if val, ok := os.LookupEnv(key); ok {
		return val, true
	}
	switch key {
	case "UID":
		return fmt.Sprintf("%d", os.Getuid()), true
	case "GID":
		return fmt.Sprintf("%d", os.Getgid()), true
	}
	return "", false
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
