package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"prism-cli/internal/config"
	"prism-cli/internal/events"
	"prism-cli/internal/history"
	"prism-cli/internal/logger"
	"prism-cli/internal/message"
	"prism-cli/internal/session"
	"prism-cli/internal/stream"
	streamanthropic "prism-cli/internal/stream/anthropic"
	streamopenai "prism-cli/internal/stream/openai"
	"prism-cli/internal/tui"
)

var log = logger.Named("main")

func main() {
	logger.Configure()

	root, rest, err := parseRootArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("parse args: %v", err)
	}
	if len(rest) > 0 {
		switch rest[0] {
		case "render":
			renderMain(root, rest[1:])
			return
		case "version":
			fmt.Println("prism-cli " + version)
			return
		}
	}

	runInteractive(root, rest)
}

const version = "0.3.0"

type rootArgs struct {
	cfgPath   string
	overrides []string
}

func parseRootArgs(args []string) (rootArgs, []string, error) {
	fs := flag.NewFlagSet("prism-cli", flag.ContinueOnError)
	var overrides stringSlice
	cfgPath := fs.String("config", "", "Path to config file (default ~/.prism/config.toml)")
	fs.Var(&overrides, "c", "Override config value key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return rootArgs{}, nil, err
	}
	return rootArgs{cfgPath: *cfgPath, overrides: overrides}, fs.Args(), nil
}

func runInteractive(root rootArgs, args []string) {
	fs := flag.NewFlagSet("prism-cli", flag.ContinueOnError)
	var overrides stringSlice
	fs.Var(&overrides, "c", "Override config value key=value (repeatable)")
	model := fs.String("model", "", "Model name override")
	resumeID := fs.String("resume", "", "Resume the session with the given ID")
	resumeLast := fs.Bool("resume-last", false, "Resume the most recently updated session")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parse args: %v", err)
	}

	cfg := loadConfig(root, overrides)
	if strings.TrimSpace(*model) != "" {
		cfg.Model = strings.TrimSpace(*model)
	}

	logPath := cfg.LogPath
	if logPath == "" {
		logPath = logger.DefaultLogPath
	}
	if logFile, _, err := logger.SetupFile(logPath); err != nil {
		log.Warnf("failed to initialize log file: %v", err)
	} else {
		defer logFile.Close()
	}

	sessionID, seed := loadSeed(*resumeID, *resumeLast)

	client := buildClient(cfg)
	bus := events.NewBus()
	defer bus.Close()
	streamSession := stream.NewSession(client, cfg.Model, bus)

	inputHistory, err := history.NewDefault()
	if err != nil {
		log.Warnf("input history unavailable: %v", err)
	}

	messages, err := tui.Run(tui.Options{
		Session:         streamSession,
		Bus:             bus,
		Config:          cfg,
		InitialMessages: seed,
		History:         inputHistory,
	})
	if err != nil {
		log.Fatalf("program exit: %v", err)
	}
	if len(messages) == 0 {
		return
	}
	savedID, err := session.Save(sessionID, messages)
	if err != nil {
		log.Warnf("failed to save session: %v", err)
		return
	}
	fmt.Printf("To continue this session, run prism-cli -resume %s\n", savedID)
}

func loadSeed(resumeID string, resumeLast bool) (string, []message.Message) {
	switch {
	case resumeID != "":
		rec, err := session.Load(resumeID)
		if err != nil {
			log.Fatalf("failed to resume session %s: %v", resumeID, err)
		}
		return rec.ID, rec.Messages
	case resumeLast:
		rec, err := session.Last()
		if err != nil {
			log.Warnf("no session to resume: %v", err)
			return "", nil
		}
		return rec.ID, rec.Messages
	default:
		return "", nil
	}
}

func loadConfig(root rootArgs, extra []string) config.Config {
	cfg, err := config.Load(root.cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg = config.ApplyKVOverrides(cfg, root.overrides)
	return config.ApplyKVOverrides(cfg, extra)
}

// buildClient 根据配置挑选后端：anthropic 令牌优先，其次 OPENAI_API_KEY，
// 都没有时退回本地回声模式以便离线演示。
func buildClient(cfg config.Config) stream.Client {
	backend := strings.TrimSpace(strings.ToLower(cfg.Backend))
	token := strings.TrimSpace(cfg.Token)

	if backend == "openai" || (backend == "" && token == "" && os.Getenv("OPENAI_API_KEY") != "") {
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			log.Warnf("openai backend selected but OPENAI_API_KEY is empty; falling back to echo mode")
			return stream.EchoClient{Prefix: "echo: "}
		}
		client, err := streamopenai.New(streamopenai.Options{
			APIKey:  key,
			BaseURL: cfg.URL,
			Model:   cfg.Model,
		})
		if err != nil {
			log.Fatalf("failed to init openai client: %v", err)
		}
		return client
	}

	if token == "" {
		return stream.EchoClient{Prefix: "echo: "}
	}
	client, err := streamanthropic.New(streamanthropic.Options{
		Token:   token,
		BaseURL: cfg.URL,
		Model:   cfg.Model,
	})
	if err != nil {
		log.Fatalf("failed to init anthropic client: %v", err)
	}
	return client
}
