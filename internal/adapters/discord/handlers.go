package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/xlsrln/cat-bot/internal/app"
	"github.com/xlsrln/cat-bot/internal/domain/standings"
	"github.com/xlsrln/cat-bot/internal/domain/validate"
	"github.com/xlsrln/cat-bot/pkg/logger"
)

const maxAutocompleteChoices = 25

// faultReply is shown when an error is an operator problem, not something
// the member can correct.
const faultReply = "Something went wrong talking to the spreadsheet. Please ping an admin."

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(s, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		b.handleAutocomplete(s, i)
	}
}

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if data.Name != "event" || len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]

	ctx := b.requestContext()
	trace := uuid.NewString()
	start := time.Now()
	log := b.log.Named(sub.Name)
	log.Debug(ctx, "command received",
		logger.String("trace", trace),
		logger.String("user", callerName(i)))

	var reply string
	var err error
	switch sub.Name {
	case "add":
		reply, err = b.handleAdd(ctx, i, sub)
	case "submit":
		reply, err = b.handleSubmit(ctx, i, sub)
	case "standings":
		reply, err = b.handleStandings(ctx, sub)
	case "spreadsheet":
		reply = "Spreadsheet available at: " + b.deps.SpreadsheetURL()
	default:
		return
	}

	outcome := "ok"
	if err != nil {
		if rejection(err) {
			outcome = "rejected"
			reply = err.Error()
		} else {
			outcome = "fault"
			reply = faultReply
			log.Error(ctx, "command failed",
				logger.String("trace", trace),
				logger.Error(err))
		}
	}
	if b.metrics != nil {
		b.metrics.ObserveCommand(sub.Name, outcome, time.Since(start))
	}

	respondErr := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: reply,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if respondErr != nil {
		// No rollback: the append already happened, only the reply was lost.
		log.Error(ctx, "failed to send response",
			logger.String("trace", trace),
			logger.Error(respondErr))
	}
}

func (b *Bot) handleAdd(ctx context.Context, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) (string, error) {
	if !b.hasEventMasterRole(i) {
		return "Only event masters can register events.", nil
	}
	name := stringOption(sub, "name")
	hasPowerstage := boolOption(sub, "powerstage")
	event, err := b.deps.AddEvent(ctx, name, hasPowerstage)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Added '%s' as an event", event.Name), nil
}

func (b *Bot) handleSubmit(ctx context.Context, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) (string, error) {
	submission, err := b.deps.Submit(ctx, app.SubmitRequest{
		UserName:       callerName(i),
		EventName:      stringOption(sub, "event"),
		Time:           stringOption(sub, "time"),
		VideoLink:      stringOption(sub, "video_link"),
		PowerstageTime: stringOption(sub, "powerstage_time"),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Submitted %s for event '%s'. Good luck!", submission.Time, submission.EventName), nil
}

func (b *Bot) handleStandings(ctx context.Context, sub *discordgo.ApplicationCommandInteractionDataOption) (string, error) {
	eventName := stringOption(sub, "event")
	entries, err := b.deps.Standings(ctx, eventName)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return fmt.Sprintf("No submissions yet for '%s'.", eventName), nil
	}
	return renderStandings(eventName, entries), nil
}

// renderStandings formats entries as a monospace table.
func renderStandings(eventName string, entries []standings.Entry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Standings for '%s':\n```\n", eventName)
	fmt.Fprintf(&sb, "%4s  %-20s  %-16s  %s\n", "rank", "driver", "time", "powerstage")
	for _, e := range entries {
		ps := e.Submission.PowerstageTime
		if ps == "" {
			ps = "-"
		}
		fmt.Fprintf(&sb, "%4d  %-20s  %-16s  %s\n", e.Rank, e.Submission.UserName, e.Submission.Time, ps)
	}
	sb.WriteString("```")
	return sb.String()
}

func (b *Bot) handleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if data.Name != "event" || len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]

	prefix := ""
	for _, opt := range sub.Options {
		if opt.Name == "event" && opt.Focused {
			prefix = strings.ToLower(opt.StringValue())
		}
	}

	ctx := b.requestContext()
	names, err := b.deps.EventNames(ctx)
	if err != nil {
		b.log.Warn(ctx, "autocomplete lookup failed", logger.Error(err))
		names = nil
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, maxAutocompleteChoices)
	for _, name := range names {
		if !strings.HasPrefix(strings.ToLower(name), prefix) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name})
		if len(choices) == maxAutocompleteChoices {
			break
		}
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	}); err != nil {
		b.log.Warn(ctx, "failed to send autocomplete choices", logger.Error(err))
	}
}

// rejection reports whether err is user-correctable and safe to relay
// verbatim. Anything else is an operator fault.
func rejection(err error) bool {
	return errors.Is(err, validate.ErrInvalidDuration) ||
		errors.Is(err, validate.ErrInvalidTimestamp) ||
		errors.Is(err, validate.ErrInvalidURL) ||
		errors.Is(err, app.ErrEventNotRegistered) ||
		errors.Is(err, app.ErrEventExists) ||
		errors.Is(err, app.ErrDuplicateSubmission) ||
		errors.Is(err, app.ErrPowerstageRequired) ||
		errors.Is(err, app.ErrPowerstageNotAccepted)
}

func (b *Bot) hasEventMasterRole(i *discordgo.InteractionCreate) bool {
	if b.eventMasterRole == "" || i.Member == nil {
		return false
	}
	for _, role := range i.Member.Roles {
		if role == b.eventMasterRole {
			return true
		}
	}
	return false
}

// callerName resolves the authenticated member's name, falling back to the
// direct-message user.
func callerName(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.Username
	}
	if i.User != nil {
		return i.User.Username
	}
	return ""
}

func stringOption(sub *discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range sub.Options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func boolOption(sub *discordgo.ApplicationCommandInteractionDataOption, name string) bool {
	for _, opt := range sub.Options {
		if opt.Name == name {
			return opt.BoolValue()
		}
	}
	return false
}
