package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	adminx "github.com/shopco/support-agent/agent/admin"
	contractx "github.com/shopco/support-agent/agent/contract"
	"github.com/shopco/support-agent/agent/agents/support"
	ledgerx "github.com/shopco/support-agent/agent/ledger"
	promptx "github.com/shopco/support-agent/agent/prompt"
	statex "github.com/shopco/support-agent/agent/state"
	toolx "github.com/shopco/support-agent/agent/tool"
	configx "github.com/shopco/support-agent/pkg/config"
	_ "github.com/shopco/support-agent/pkg/logger/autoload"
	notifyx "github.com/shopco/support-agent/pkg/notify"
	openrouterx "github.com/shopco/support-agent/pkg/openrouter"
)

type AppConfig struct {
	SessionBackend string `envconfig:"SESSION_BACKEND" split_words:"true" default:"memory"`
	MaxToolRounds  int    `envconfig:"MAX_TOOL_ROUNDS" split_words:"true" default:"8"`
	SkipPing       bool   `envconfig:"SKIP_PING" split_words:"true" default:"false"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("AGENT")
	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")

	if !appCfg.SkipPing {
		client := openrouterx.NewClient(*openRouterCfg)
		if err := openrouterx.Ping(ctx, client, openRouterCfg.Timeout); err != nil {
			return fmt.Errorf("upstream check failed: %w", err)
		}
		log.Info().Str("model", openRouterCfg.Model).Msg("upstream reachable")
	}

	baseModel, err := openRouterCfg.New(ctx)
	if err != nil {
		return err
	}

	ledger := ledgerx.NewStore()

	// A typed nil *notifyx.Client must not reach the interface, or the
	// dispatcher's nil check stops working.
	var notifier contractx.Notifier
	if n := newNotifier(); n != nil {
		notifier = n
	}
	catalog := toolx.NewCatalog(ledger, notifier)

	toolModel, err := baseModel.WithTools(catalog.Infos())
	if err != nil {
		return fmt.Errorf("bind tools: %w", err)
	}

	sessions, err := newSessionStore(appCfg.SessionBackend)
	if err != nil {
		return err
	}
	console := adminx.NewConsole(ledger, catalog, sessions)

	agent, err := support.New(sessions, toolModel, baseModel, catalog, support.Config{
		SystemPrompt:  promptx.Support(),
		MaxToolRounds: appCfg.MaxToolRounds,
		CallTimeout:   openRouterCfg.Timeout,
	})
	if err != nil {
		return err
	}

	return shell(ctx, agent, console)
}

// newNotifier builds the refund webhook publisher. No NOTIFY_URL means
// publishing is disabled, which is the normal local setup.
func newNotifier() *notifyx.Client {
	cfg := configx.MustNew[notifyx.Config]("NOTIFY")
	if strings.TrimSpace(cfg.URL) == "" {
		return nil
	}
	return notifyx.MustNew(*cfg)
}

func newSessionStore(backend string) (statex.Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "memory":
		return statex.NewMemoryStore(), nil
	case "upstash":
		cfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		return statex.NewUpstashRedisStore(*cfg)
	default:
		return nil, fmt.Errorf("unknown session backend %q", backend)
	}
}

func shell(ctx context.Context, agent *support.Agent, console *adminx.Console) error {
	rl, err := readline.New("You: ")
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	sessionID := uuid.NewString()

	fmt.Println("ShopCo customer support. Type your message, or:")
	fmt.Println("  'reset'        start a new conversation")
	fmt.Println("  '/admin help'  list warehouse/supervisor commands")
	fmt.Println("  'quit'         exit")
	fmt.Println()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		switch {
		case input == "quit" || input == "exit":
			return nil

		case input == "reset":
			if err := agent.Reset(ctx, sessionID); err != nil {
				fmt.Printf("reset failed: %v\n", err)
				continue
			}
			sessionID = uuid.NewString()
			fmt.Println("Conversation reset.")

		case strings.HasPrefix(input, "/admin"):
			out, err := console.Execute(ctx, sessionID, strings.TrimSpace(strings.TrimPrefix(input, "/admin")))
			if err != nil {
				fmt.Printf("admin: %v\n", err)
				continue
			}
			fmt.Println(out)

		default:
			reply, err := agent.HandleMessage(ctx, sessionID, input)
			if err != nil {
				fmt.Printf("agent error: %v\n", err)
				continue
			}
			fmt.Printf("Agent: %s\n\n", reply)
		}
	}
}
