package config

import (
	"path/filepath"
	"strings"
)

type Config struct {
	Server  ServerConfig
	OpenAI  OpenAIConfig
	Storage StorageConfig
	Clause  ClauseConfig
	Context ContextConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port int
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // "" means the public OpenAI endpoint
}

type StorageConfig struct {
	DataDir  string
	FilesDir string // knowledge base files; defaults to <DataDir>/files
}

type ClauseConfig struct {
	// ContractURL is the public page fetched when a referenced clause is
	// not in any ingested document. Empty disables the fallback.
	ContractURL string
}

type ContextConfig struct {
	MaxChars int
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4000,
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-3.5-turbo",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Context: ContextConfig{
			MaxChars: 4000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the platform-native backend, environment
// variables, and platform secret store.
//
// On macOS the backend is UserDefaults (domain: com.trcdesk.app) and the
// OpenAI API key falls back to macOS Keychain. On Linux the backend is a
// JSON file at $XDG_CONFIG_HOME/trcdesk/config.json and the key falls
// back to a secrets file.
//
// Environment variables (TRCDESK_*) override backend values on all
// platforms. A missing API key is not an error: the server starts and the
// query pipeline degrades to its deterministic routes.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), keychainReader{})
}

// keychain abstracts secret store access for testing.
type keychain interface {
	Get(service, account string) (string, error)
}

func loadWith(b ConfigBackend, kc keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	// Try the platform secret store for the API key if still empty.
	if cfg.OpenAI.APIKey == "" {
		if key, err := kc.Get("trcdesk", "openai_api_key"); err == nil && key != "" {
			cfg.OpenAI.APIKey = key
		}
	}

	if cfg.Storage.FilesDir == "" {
		cfg.Storage.FilesDir = filepath.Join(cfg.Storage.DataDir, "files")
	}

	return cfg, nil
}

// keychainReader reads from the platform secret store.
type keychainReader struct{}

func (keychainReader) Get(service, account string) (string, error) {
	out, err := keychainExec(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
