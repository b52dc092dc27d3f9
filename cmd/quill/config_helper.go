package main

import (
	"os"

	"github.com/quillworks/quill/internal/config"
)

// applyConfigToEnv maps config file values onto the environment variables
// the provider factory reads. Only unset variables are filled in, so the
// environment keeps precedence over the config file.
func applyConfigToEnv(cfg *config.Config) {
	if cfg == nil {
		return
	}

	setIfUnset("LLM_PROVIDER", cfg.LLMProvider)

	provider := os.Getenv("LLM_PROVIDER")
	if provider == "" {
		provider = "openai"
	}

	switch provider {
	case "openai":
		setIfUnset("OPENAI_API_KEY", cfg.APIKey)
		setIfUnset("OPENAI_MODEL", cfg.Model)
		setIfUnset("OPENAI_BASE_URL", cfg.BaseURL)
	case "anthropic":
		setIfUnset("ANTHROPIC_API_KEY", cfg.APIKey)
		setIfUnset("ANTHROPIC_MODEL", cfg.Model)
	case "deepseek":
		setIfUnset("DEEPSEEK_API_KEY", cfg.APIKey)
		setIfUnset("DEEPSEEK_MODEL", cfg.Model)
	case "groq":
		setIfUnset("GROQ_API_KEY", cfg.APIKey)
		setIfUnset("GROQ_MODEL", cfg.Model)
	case "ollama":
		setIfUnset("OLLAMA_API_KEY", cfg.APIKey)
		setIfUnset("OLLAMA_MODEL", cfg.Model)
		setIfUnset("OLLAMA_BASE_URL", cfg.BaseURL)
	}
}

func setIfUnset(key, value string) {
	if value != "" && os.Getenv(key) == "" {
		os.Setenv(key, value)
	}
}
