package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"

	"github.com/bbdragon2023/aiSDR/internal/agent"
	"github.com/bbdragon2023/aiSDR/internal/events"
	"github.com/bbdragon2023/aiSDR/internal/sessions"
	"github.com/bbdragon2023/aiSDR/internal/skills"
)

// NewChatCommand returns the chat subcommand.
func NewChatCommand() *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive chat with the SDR agent",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "plain",
				Usage: "Print raw markdown instead of rendered output",
			},
		},
		Action: runChat,
	}
}

func runChat(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	bus := events.NewBus(cfg.Gateway.EventLog)
	defer bus.Close()

	registry := skills.NewRegistry(cfg.Skills.Dir)
	found := registry.Discover()

	a, err := agent.NewFromConfig(ctx, cfg, sessions.NewSessionID(), registry, bus)
	if err != nil {
		return err
	}

	render := renderer(cmd.Bool("plain"))

	fmt.Printf("SDR Agent ready (%d skills loaded). Type 'quit' to exit, 'clear' to reset.\n\n", len(found))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "clear":
			a.Reset()
			fmt.Println("Conversation cleared.")
			continue
		}

		answer, err := a.Chat(ctx, input, printProgress)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		fmt.Println(render(answer))
	}
}

// printProgress narrates tool activity on stderr while the final
// answer goes to stdout.
func printProgress(e events.Event) {
	switch e.Type {
	case events.EventThinking:
		fmt.Fprintln(os.Stderr, "... thinking")
	case events.EventToolCall:
		if p, ok := events.GetToolCallPayload(e); ok {
			fmt.Fprintf(os.Stderr, "... using %s\n", p.Name)
		}
	case events.EventToolResult:
		if p, ok := events.GetToolResultPayload(e); ok && !p.Success {
			fmt.Fprintf(os.Stderr, "... %s failed\n", p.Name)
		}
	}
}

// renderer returns a markdown-to-terminal renderer, or the identity
// function when plain output is requested or the terminal renderer
// cannot be built.
func renderer(plain bool) func(string) string {
	if plain {
		return func(s string) string { return s }
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(s string) string { return s }
	}
	return func(s string) string {
		out, err := r.Render(s)
		if err != nil {
			return s
		}
		return strings.TrimRight(out, "\n")
	}
}
