package config

import (
	"strconv"
	"strings"
)

// ApplyKVOverrides applies free-form -c key=value overrides.
func ApplyKVOverrides(cfg Config, overrides []string) Config {
	if len(overrides) == 0 {
		return cfg
	}
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "backend":
			cfg.Backend = val
		case "url":
			cfg.URL = val
		case "token":
			cfg.Token = val
		case "model":
			cfg.Model = val
		case "log_path":
			cfg.LogPath = val
		case "reveal_speed":
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				cfg.RevealSpeed = n
			}
		case "preview_speed":
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				cfg.PreviewSpeed = n
			}
		}
	}
	return cfg
}
