// Command fetcharr runs the media request bot: it connects the configured
// media backends, opens the Discord gateway, and serves guided request
// flows until terminated.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fetcharr/fetcharr/pkg/backends/radarr"
	"github.com/fetcharr/fetcharr/pkg/backends/sonarr"
	"github.com/fetcharr/fetcharr/pkg/config"
	"github.com/fetcharr/fetcharr/pkg/discord"
	"github.com/fetcharr/fetcharr/pkg/flow"
	"github.com/fetcharr/fetcharr/pkg/session"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "fetcharr",
		Short:         "Discord bot for requesting media through Radarr and Sonarr",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the configuration file")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "fetcharr:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := buildLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	registry := session.NewRegistry(log)
	publicFollowup := cfg.PublicFollowupEnabled()

	// One starter per connected backend kind; the subcommand tree is
	// registered in the same order.
	starters := make(map[string]flow.StartFunc)
	var kinds []string

	if cfg.Radarr != nil {
		backend, err := radarr.Connect(ctx, cfg.Radarr, log)
		if err != nil {
			return fmt.Errorf("connecting radarr: %w", err)
		}
		starters[backend.Kind()] = flow.NewRunner[radarr.Movie](backend, registry, log, publicFollowup).Run
		kinds = append(kinds, backend.Kind())
	}
	if cfg.Sonarr != nil {
		backend, err := sonarr.Connect(ctx, cfg.Sonarr, log)
		if err != nil {
			return fmt.Errorf("connecting sonarr: %w", err)
		}
		starters[backend.Kind()] = flow.NewRunner[sonarr.Series](backend, registry, log, publicFollowup).Run
		kinds = append(kinds, backend.Kind())
	}
	log.Info("backends connected", zap.Strings("kinds", kinds))

	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("building discord client: %w", err)
	}
	// Interactions arrive without any privileged gateway intents.
	dg.Identify.Intents = discordgo.IntentsNone

	dispatcher := discord.NewDispatcher(ctx, registry, starters, log)
	dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info("connected to discord", zap.Int("guilds", len(r.Guilds)))
		discord.RegisterCommands(s, r.Guilds, kinds, log)
	})
	dg.AddHandler(dispatcher.HandleInteraction)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("opening discord gateway: %w", err)
	}
	defer dg.Close()

	go registry.Run(ctx)

	<-ctx.Done()
	log.Info("shutting down")
	return nil
}

func buildLogger(level string) (*zap.Logger, error) {
	if level == "" {
		level = "info"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log_level %q: %w", level, err)
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	return zapCfg.Build()
}
