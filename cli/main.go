// Command cli is a terminal client for a roundtable server.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"cdr.dev/slog/v3"
	"cdr.dev/slog/v3/sloggers/sloghuman"
	"github.com/joho/godotenv"
	"golang.org/x/xerrors"

	"github.com/xiaot623/gogo/roundtable/internal/domain"
	v1 "github.com/xiaot623/gogo/roundtable/internal/transport/http/v1"
	"github.com/xiaot623/gogo/roundtable/internal/transport/ws"
)

// parseBots turns "id:provider,id:provider" into roster entries. Credentials
// come from <PROVIDER>_API_KEY.
func parseBots(list string) ([]v1.BotRequest, error) {
	var bots []v1.BotRequest
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		id, provider, ok := strings.Cut(item, ":")
		if !ok || id == "" || provider == "" {
			return nil, xerrors.Errorf("bad bot %q, want id:provider", item)
		}
		bots = append(bots, v1.BotRequest{
			ID:       id,
			Name:     id,
			Provider: domain.Provider(provider),
			APIKey:   os.Getenv(strings.ToUpper(provider) + "_API_KEY"),
		})
	}
	if len(bots) == 0 {
		return nil, xerrors.New("no bots given")
	}
	return bots, nil
}

func printFrame(f ws.Frame) {
	switch f.Type {
	case ws.FrameSnapshot:
		if f.Session == nil {
			return
		}
		for _, m := range f.Session.Messages {
			printMessage(m)
		}
	case ws.FrameMessage:
		if f.Message != nil {
			printMessage(*f.Message)
		}
	}
}

func printMessage(m domain.Message) {
	who := "you"
	if m.Role == domain.RoleAssistant {
		who = m.BotName
	}
	fmt.Printf("\n[%s] %s\n> ", who, m.Content)
}

func main() {
	addr := flag.String("addr", "http://localhost:5000", "roundtable server address")
	botsFlag := flag.String("bots", "gpt:openai,claude:anthropic", "comma separated id:provider roster")
	topic := flag.String("topic", "", "opening topic")
	flag.Parse()

	_ = godotenv.Load()
	logger := slog.Make(sloghuman.Sink(os.Stderr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bots, err := parseBots(*botsFlag)
	if err != nil {
		logger.Fatal(ctx, "invalid roster", slog.Error(err))
	}

	client := NewClient(*addr)

	verdicts, err := client.Validate(ctx, bots)
	if err != nil {
		logger.Fatal(ctx, "validate failed", slog.Error(err))
	}
	for _, b := range bots {
		if !verdicts[b.ID] {
			logger.Warn(ctx, "credential looks invalid", slog.F("bot_id", b.ID), slog.F("provider", b.Provider))
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	if *topic == "" {
		fmt.Print("Topic: ")
		if !scanner.Scan() {
			return
		}
		*topic = strings.TrimSpace(scanner.Text())
	}

	session, err := client.Start(ctx, bots, *topic)
	if err != nil {
		logger.Fatal(ctx, "start failed", slog.Error(err))
	}

	fmt.Printf("Session %s started.\n", session.ID)
	fmt.Println("Commands: /next, /next <botId>, /quit. Anything else is sent as your message.")

	go func() {
		if err := client.Watch(ctx, session.ID, printFrame); err != nil {
			logger.Warn(ctx, "watch stopped", slog.Error(err))
		}
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
	}()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nInterrupted")
			return
		case input, ok := <-lines:
			if !ok {
				return
			}
			switch {
			case input == "":
			case input == "/quit":
				fmt.Println("Bye!")
				return
			case input == "/next" || strings.HasPrefix(input, "/next "):
				botID := strings.TrimSpace(strings.TrimPrefix(input, "/next"))
				if _, err := client.Next(ctx, session.ID, botID); err != nil {
					logger.Warn(ctx, "turn failed", slog.Error(err))
				}
			default:
				if err := client.Say(ctx, session.ID, input); err != nil {
					logger.Warn(ctx, "send failed", slog.Error(err))
				}
			}
		}
	}
}
