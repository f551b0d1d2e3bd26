package discord

import (
	"context"
	"strconv"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/fetcharr/fetcharr/pkg/details"
	"github.com/fetcharr/fetcharr/pkg/flow"
	"github.com/fetcharr/fetcharr/pkg/media"
	"github.com/fetcharr/fetcharr/pkg/session"
)

const accentColor = 0xCE4A28

// Discord component limits.
const (
	maxLabelLength       = 100
	maxDescriptionLength = 4000
	// Five action rows per message; one is reserved for the submit button.
	maxChooserRows = 4
)

// renderer publishes one session's UI into its originating ephemeral
// interaction. All flow updates edit the deferred initial response; detail
// steps respond to the continuation's own interaction instead, which
// doubles as the acknowledgment Discord requires.
type renderer struct {
	s         *discordgo.Session
	origin    *discordgo.Interaction
	sessionID string
	channelID string
	userID    string
	log       *zap.Logger
}

var _ flow.Renderer = (*renderer)(nil)

func newRenderer(s *discordgo.Session, i *discordgo.InteractionCreate, sessionID string, log *zap.Logger) *renderer {
	userID := ""
	if i.Member != nil && i.Member.User != nil {
		userID = i.Member.User.ID
	} else if i.User != nil {
		userID = i.User.ID
	}
	return &renderer{
		s:         s,
		origin:    i.Interaction,
		sessionID: sessionID,
		channelID: i.ChannelID,
		userID:    userID,
		log:       log,
	}
}

func (r *renderer) Acknowledge(context.Context) error {
	return r.s.InteractionRespond(r.origin, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

func (r *renderer) ShowResults(_ context.Context, options []media.DropdownOption) error {
	content := "**Search Results**"
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				selectMenu(resultID(r.sessionID), "Select a result", options),
			},
		},
	}
	_, err := r.s.InteractionResponseEdit(r.origin, &discordgo.WebhookEdit{
		Content:    &content,
		Components: &components,
	})
	return err
}

func (r *renderer) ShowDetails(_ context.Context, info media.DisplayInfo, view details.View, ev session.ContinuationEvent) error {
	embed := &discordgo.MessageEmbed{
		Title:       clamp(info.Title, maxLabelLength),
		Description: clamp(info.Description, maxDescriptionLength),
		Color:       accentColor,
	}
	if info.Subtitle != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: info.Subtitle}
	}
	if info.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: info.ThumbnailURL}
	}

	var components []discordgo.MessageComponent
	for _, field := range view.Fields {
		if field.Chosen {
			// Completed choices render as review text on the embed.
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:  field.Title,
				Value: field.Options[0].Title,
			})
			continue
		}
		if len(components) >= maxChooserRows {
			// Row budget exhausted; remaining choosers appear as
			// earlier fields resolve.
			continue
		}
		components = append(components, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				selectMenu(detailID(r.sessionID, field.Title), field.Title, field.Options),
			},
		})
	}

	components = append(components, discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Request",
				Style:    discordgo.PrimaryButton,
				CustomID: submitID(r.sessionID),
				Disabled: !view.SubmitEnabled,
			},
		},
	})

	return r.s.InteractionRespond(
		&discordgo.Interaction{ID: ev.OriginID, Token: ev.OriginToken},
		&discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Flags:      discordgo.MessageFlagsEphemeral,
				Embeds:     []*discordgo.MessageEmbed{embed},
				Components: components,
			},
		},
	)
}

func (r *renderer) ShowText(_ context.Context, text string) error {
	components := []discordgo.MessageComponent{}
	embeds := []*discordgo.MessageEmbed{}
	_, err := r.s.InteractionResponseEdit(r.origin, &discordgo.WebhookEdit{
		Content:    &text,
		Components: &components,
		Embeds:     &embeds,
	})
	return err
}

func (r *renderer) ShowCompletion(_ context.Context, msg media.SuccessMessage) error {
	content := ""
	components := []discordgo.MessageComponent{}
	embeds := []*discordgo.MessageEmbed{{
		Title:       "Request Submitted",
		Description: clamp(msg.Description, maxDescriptionLength),
		Color:       accentColor,
	}}
	_, err := r.s.InteractionResponseEdit(r.origin, &discordgo.WebhookEdit{
		Content:    &content,
		Components: &components,
		Embeds:     &embeds,
	})
	return err
}

func (r *renderer) BroadcastSuccess(_ context.Context, msg media.SuccessMessage) error {
	embed := &discordgo.MessageEmbed{
		Title:       "New Request",
		Description: clamp(msg.Description, maxDescriptionLength) + "\n\nRequested by <@" + r.userID + ">",
		Color:       accentColor,
	}
	if msg.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: msg.ThumbnailURL}
	}
	_, err := r.s.ChannelMessageSendComplex(r.channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
	return err
}

func selectMenu(customID, placeholder string, options []media.DropdownOption) discordgo.SelectMenu {
	menuOptions := make([]discordgo.SelectMenuOption, len(options))
	for i, opt := range options {
		menuOptions[i] = discordgo.SelectMenuOption{
			Label:       clamp(opt.Title, maxLabelLength),
			Value:       strconv.Itoa(i),
			Description: clamp(opt.Description, maxLabelLength),
		}
	}
	return discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    customID,
		Placeholder: clamp(placeholder, maxLabelLength),
		Options:     menuOptions,
	}
}

// clamp truncates to max characters. Discord limits count characters, not
// bytes, and a cut inside a rune would make the payload invalid UTF-8.
func clamp(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}
