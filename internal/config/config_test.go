package config

import (
	"path/filepath"
	"testing"
)

// mockBackend is an in-memory ConfigBackend.
type mockBackend struct {
	strings map[string]string
	ints    map[string]int
}

func (m *mockBackend) GetString(key string) (string, bool, error) {
	v, ok := m.strings[key]
	return v, ok, nil
}

func (m *mockBackend) GetInt(key string) (int, bool, error) {
	v, ok := m.ints[key]
	return v, ok, nil
}

func (m *mockBackend) SetString(key, val string) error {
	if m.strings == nil {
		m.strings = map[string]string{}
	}
	m.strings[key] = val
	return nil
}

func (m *mockBackend) SetInt(key string, val int) error {
	if m.ints == nil {
		m.ints = map[string]int{}
	}
	m.ints[key] = val
	return nil
}

func (m *mockBackend) Delete(key string) error {
	delete(m.strings, key)
	delete(m.ints, key)
	return nil
}

// mockKeychain is a test double for the secret store.
type mockKeychain struct {
	value string
	err   error
}

func (m mockKeychain) Get(service, account string) (string, error) {
	return m.value, m.err
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		if s.env != "" {
			t.Setenv(s.env, "")
		}
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(&mockBackend{}, mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 4000 {
		t.Errorf("Server.Port = %d, want 4000", cfg.Server.Port)
	}
	if cfg.OpenAI.Model != "gpt-3.5-turbo" {
		t.Errorf("OpenAI.Model = %q", cfg.OpenAI.Model)
	}
	if cfg.Context.MaxChars != 4000 {
		t.Errorf("Context.MaxChars = %d, want 4000", cfg.Context.MaxChars)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Storage.DataDir == "" {
		t.Error("Storage.DataDir is empty")
	}
	if want := filepath.Join(cfg.Storage.DataDir, "files"); cfg.Storage.FilesDir != want {
		t.Errorf("Storage.FilesDir = %q, want %q", cfg.Storage.FilesDir, want)
	}
}

func TestMissingAPIKeyIsNotFatal(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(&mockBackend{}, mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OpenAI.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", cfg.OpenAI.APIKey)
	}
}

func TestBackendValues(t *testing.T) {
	clearEnv(t)

	b := &mockBackend{
		strings: map[string]string{
			"openai.model":        "gpt-4o",
			"storage.data_dir":    "/tmp/trcdesk-test",
			"clause.contract_url": "https://example.com/terms",
		},
		ints: map[string]int{
			"server.port":       5000,
			"context.max_chars": 2000,
		},
	}

	cfg, err := loadWith(b, mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("OpenAI.Model = %q", cfg.OpenAI.Model)
	}
	if cfg.Storage.DataDir != "/tmp/trcdesk-test" {
		t.Errorf("Storage.DataDir = %q", cfg.Storage.DataDir)
	}
	if cfg.Clause.ContractURL != "https://example.com/terms" {
		t.Errorf("Clause.ContractURL = %q", cfg.Clause.ContractURL)
	}
	if cfg.Context.MaxChars != 2000 {
		t.Errorf("Context.MaxChars = %d, want 2000", cfg.Context.MaxChars)
	}
}

func TestEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRCDESK_OPENAI_API_KEY", "env-key")
	t.Setenv("TRCDESK_SERVER_PORT", "8080")

	b := &mockBackend{ints: map[string]int{"server.port": 5000}}
	cfg, err := loadWith(b, mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.OpenAI.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want env-key", cfg.OpenAI.APIKey)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080 (env beats backend)", cfg.Server.Port)
	}
}

func TestKeychainFallback(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(&mockBackend{}, mockKeychain{value: "keychain-secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OpenAI.APIKey != "keychain-secret" {
		t.Errorf("APIKey = %q, want keychain-secret", cfg.OpenAI.APIKey)
	}
}

func TestEnvBeatsKeychain(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRCDESK_OPENAI_API_KEY", "env-key")

	cfg, err := loadWith(&mockBackend{}, mockKeychain{value: "keychain-secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OpenAI.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want env-key", cfg.OpenAI.APIKey)
	}
}

func TestShowAllHidesSecrets(t *testing.T) {
	cfg := defaults()
	cfg.OpenAI.APIKey = "sk-secret"

	for _, info := range ShowAll(cfg) {
		if info.Key == "openai.api_key" {
			t.Error("secret key listed by ShowAll")
		}
		if info.Value == "sk-secret" {
			t.Errorf("secret value leaked under key %s", info.Key)
		}
	}
}

func TestSetKeyRejectsSecrets(t *testing.T) {
	if err := SetKey("openai.api_key", "sk-x"); err == nil {
		t.Error("expected error setting a secret key")
	}
}
