package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"prism-cli/internal/markdown"
	"prism-cli/internal/message"
	"prism-cli/internal/reveal"
	"prism-cli/internal/tui/render"
)

// renderMain 一次性地把一段转录文本分段并打印到标准输出，
// 不进入交互界面。输入来自参数指定的文件或标准输入。
// -play 先以预览速度逐帧回放文本揭示，再打印分段结果。
func renderMain(root rootArgs, args []string) {
	fs := flag.NewFlagSet("prism-cli render", flag.ContinueOnError)
	width := fs.Int("w", 100, "Render width in columns")
	play := fs.Bool("play", false, "Animate the reveal at preview speed before printing")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parse args: %v", err)
	}

	text, err := readInput(fs.Args())
	if err != nil {
		log.Fatalf("read input: %v", err)
	}

	if *play {
		cfg := loadConfig(root, nil)
		playReveal(os.Stdout, markdown.Normalize(text), cfg.PreviewSpeed)
	}

	msg := message.NewAssistant()
	msg.Content = text

	transcript := render.NewTranscript(*width, render.NewRegistry())
	transcript.Sync([]message.Message{msg}, "", func(string) string { return "" })
	fmt.Println(transcript.String())
}

// playReveal 把已揭示前缀的增量逐帧写出，形成打字机效果。
func playReveal(w io.Writer, text string, speed int) {
	ctrl, err := reveal.NewController(speed, nil)
	if err != nil {
		log.Fatalf("invalid preview speed: %v", err)
	}
	ctrl.SetTarget(text, true)

	written := 0
	for {
		more := ctrl.Tick()
		visible := ctrl.Visible()
		fmt.Fprint(w, visible[written:])
		written = len(visible)
		if !more {
			break
		}
		time.Sleep(33 * time.Millisecond)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)
}

func readInput(args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", err
		}
		return string(content), nil
	}
	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(content), nil
}
