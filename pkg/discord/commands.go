package discord

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	// CommandName is the top-level slash command.
	CommandName = "request"
	// queryOptionName is the required free-text option on each subcommand.
	queryOptionName = "query"
)

// Command builds the /request command with one subcommand per connected
// backend kind.
func Command(kinds []string) *discordgo.ApplicationCommand {
	options := make([]*discordgo.ApplicationCommandOption, len(kinds))
	for i, kind := range kinds {
		options[i] = &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        kind,
			Description: "Request a " + kind,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        queryOptionName,
					Description: "search query",
					Required:    true,
				},
			},
		}
	}
	return &discordgo.ApplicationCommand{
		Name:        CommandName,
		Description: "Request media",
		Options:     options,
	}
}

// RegisterCommands installs the command tree in every guild the bot is in.
// Guild commands propagate immediately, unlike global ones.
func RegisterCommands(s *discordgo.Session, guilds []*discordgo.Guild, kinds []string, log *zap.Logger) {
	cmd := Command(kinds)
	for _, guild := range guilds {
		if _, err := s.ApplicationCommandCreate(s.State.User.ID, guild.ID, cmd); err != nil {
			log.Error("failed to register commands",
				zap.String("guild", guild.ID), zap.Error(err))
			continue
		}
		log.Info("registered commands",
			zap.String("guild", guild.ID), zap.Int("kinds", len(kinds)))
	}
}

// parseCommand extracts the media kind and query from a command invocation.
func parseCommand(data discordgo.ApplicationCommandInteractionData) (kind, query string, ok bool) {
	if data.Name != CommandName || len(data.Options) == 0 {
		return "", "", false
	}
	sub := data.Options[0]
	if sub.Type != discordgo.ApplicationCommandOptionSubCommand {
		return "", "", false
	}
	for _, opt := range sub.Options {
		if opt.Name == queryOptionName && opt.Type == discordgo.ApplicationCommandOptionString {
			return sub.Name, opt.StringValue(), true
		}
	}
	return "", "", false
}
