package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/GoMudEngine/npctalk/internal/configs"
	"github.com/GoMudEngine/npctalk/internal/conversations"
	"github.com/GoMudEngine/npctalk/internal/language"
	"github.com/GoMudEngine/npctalk/internal/llm"
	"github.com/GoMudEngine/npctalk/internal/monitor"
	"github.com/GoMudEngine/npctalk/internal/mudlog"
	"github.com/GoMudEngine/npctalk/internal/world"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	envPath    string
)

var rootCmd = &cobra.Command{
	Use:   `npctalk`,
	Short: `Interactive console for LLM-backed NPC conversations`,
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, `config`, ``, `path to a yaml config file`)
	rootCmd.Flags().StringVar(&envPath, `env`, `.env`, `path to an env file with credentials`)
}

func run(cmd *cobra.Command, args []string) error {

	// Missing env file is fine; the config layer reads the environment.
	_ = godotenv.Load(envPath)

	cfg := configs.DefaultConfig()
	if configPath != `` {
		loaded, err := configs.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	mudlog.Init(mudlog.FileConfig{
		Path:  string(cfg.LogFile),
		Level: slog.LevelInfo,
	})

	tracker := llm.NewTokenTracker()
	producer := llm.NewOpenAIProducer(cfg, tracker)

	var observers []conversations.Observer
	if cfg.MonitorAddress != `` {
		hub := monitor.NewHub()
		observers = append(observers, hub)
		go func() {
			if err := hub.ListenAndServe(string(cfg.MonitorAddress)); err != nil {
				mudlog.Error("Monitor", "error", err.Error())
			}
		}()
	}

	manager := conversations.NewManager(cfg, producer, demoEnvironment{}, world.SyncQueue{}, consoleExecutor{}, observers...)
	defer manager.Shutdown()

	player := &demoActor{
		id:   uuid.New(),
		name: `Player`,
		pos:  world.Position{X: 0, Y: 0, Z: 0, Partition: `overworld`},
	}

	village := demoVillage()

	fmt.Println(language.T(language.StartHint, nil))
	fmt.Println(`Commands: talk <name> | end | quit | anything else is said to your current partner.`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(`> `)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == `` {
			continue
		}

		switch {
		case line == `quit`:
			return nil

		case line == `end`:
			conv := manager.GetByActor(player.ID())
			if conv == nil {
				fmt.Println(language.T(language.NoActiveConversation, nil))
				continue
			}
			manager.EndConversation(conv)
			fmt.Println(language.T(language.ConversationEnded, map[string]any{`Entity`: conv.NPC().Name()}))

		case strings.HasPrefix(line, `talk `):
			startTalking(manager, player, village, strings.TrimSpace(line[len(`talk `):]))

		default:
			sayLine(manager, player, line)
		}
	}

	return scanner.Err()
}

func startTalking(manager *conversations.Manager, player *demoActor, village []*demoNPC, name string) {

	var target *demoNPC
	for _, npc := range village {
		if strings.EqualFold(npc.name, name) {
			target = npc
			break
		}
	}
	if target == nil {
		fmt.Printf("There is nobody called %q here.\n", name)
		return
	}

	conv, err := manager.StartConversation(player, target)
	switch err {
	case nil:
		fmt.Println(language.T(language.ConversationStarted, map[string]any{`Entity`: target.Name()}))
	case conversations.ErrAlreadyEngaged:
		fmt.Println(language.T(language.AlreadyTalking, map[string]any{`Entity`: conv.NPC().Name()}))
	case conversations.ErrEntityBusy:
		fmt.Println(language.T(language.EntityBusy, map[string]any{`Entity`: target.Name()}))
	case conversations.ErrNoProfession:
		fmt.Println(language.T(language.NoProfession, map[string]any{`Entity`: target.Name()}))
	default:
		fmt.Println(err.Error())
	}
}

func sayLine(manager *conversations.Manager, player *demoActor, line string) {

	conv := manager.GetByActor(player.ID())
	if conv == nil {
		fmt.Println(language.T(language.NoActiveConversation, nil))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := manager.HandleMessage(ctx, player, line); err != nil {
		switch err {
		case conversations.ErrPendingResponse:
			fmt.Println(language.T(language.PleaseWait, map[string]any{`Entity`: conv.NPC().Name()}))
		case conversations.ErrNoSession:
			fmt.Println(language.T(language.NoActiveConversation, nil))
		default:
			fmt.Println(language.T(language.ProducerFailed, map[string]any{`Entity`: conv.NPC().Name()}))
		}
	}
}
