package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the only persisted config file schema.
type Config struct {
	// Backend 选择流式后端：anthropic | openai | echo。空值按可用凭据自动推断。
	Backend string `toml:"backend"`
	URL     string `toml:"url"`
	Token   string `toml:"token"`
	Model   string `toml:"model"`

	// RevealSpeed 是会话主视图每帧揭示的字符数；PreviewSpeed 用于预览窗格。
	RevealSpeed  int `toml:"reveal_speed"`
	PreviewSpeed int `toml:"preview_speed"`

	LogPath string `toml:"log_path"`

	Source string `toml:"-"`
}

const (
	DefaultRevealSpeed  = 30
	DefaultPreviewSpeed = 2
)

func Default() Config {
	return Config{
		RevealSpeed:  DefaultRevealSpeed,
		PreviewSpeed: DefaultPreviewSpeed,
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".prism", "config.toml")
}

func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errors.New("config path is empty and $HOME is not set")
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg), nil
		}
		return cfg, err
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, err
	}
	if cfg.RevealSpeed <= 0 {
		cfg.RevealSpeed = DefaultRevealSpeed
	}
	if cfg.PreviewSpeed <= 0 {
		cfg.PreviewSpeed = DefaultPreviewSpeed
	}
	return applyEnv(cfg), nil
}

func applyEnv(cfg Config) Config {
	if env := strings.TrimSpace(os.Getenv("ANTHROPIC_BASE_URL")); env != "" {
		cfg.URL = env
	}
	if env := strings.TrimSpace(os.Getenv("ANTHROPIC_AUTH_TOKEN")); env != "" {
		cfg.Token = env
	}
	return cfg
}

func Save(path string, cfg Config) error {
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return errors.New("config path is empty and $HOME is not set")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
