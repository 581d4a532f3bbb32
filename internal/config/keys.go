package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "TRCDESK_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "openai.api_key", typ: kString, env: "TRCDESK_OPENAI_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.OpenAI.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.OpenAI.APIKey },
	},
	{
		key: "openai.model", typ: kString, env: "TRCDESK_OPENAI_MODEL",
		apply:   func(cfg *Config, v any) { cfg.OpenAI.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.OpenAI.Model },
	},
	{
		key: "openai.base_url", typ: kString, env: "TRCDESK_OPENAI_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.OpenAI.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.OpenAI.BaseURL },
	},
	{
		key: "storage.data_dir", typ: kString, env: "TRCDESK_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "storage.files_dir", typ: kString, env: "TRCDESK_STORAGE_FILES_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.FilesDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.FilesDir },
	},
	{
		key: "clause.contract_url", typ: kString, env: "TRCDESK_CLAUSE_CONTRACT_URL",
		apply:   func(cfg *Config, v any) { cfg.Clause.ContractURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Clause.ContractURL },
	},
	{
		key: "context.max_chars", typ: kInt, env: "TRCDESK_CONTEXT_MAX_CHARS",
		apply:   func(cfg *Config, v any) { cfg.Context.MaxChars = v.(int) },
		extract: func(cfg Config) any { return cfg.Context.MaxChars },
	},
	{
		key: "log.level", typ: kString, env: "TRCDESK_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
