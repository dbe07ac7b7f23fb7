// Package discord wires the /event slash-command group to the domain rules.
// The adapter owns all presentation: rejection wording reaches the member
// verbatim and ephemerally, and domain errors never crash a handler.
package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/xlsrln/cat-bot/internal/app"
	"github.com/xlsrln/cat-bot/internal/domain/schema"
	"github.com/xlsrln/cat-bot/internal/domain/standings"
	"github.com/xlsrln/cat-bot/pkg/logger"
	"github.com/xlsrln/cat-bot/pkg/metrics"
)

// Dependencies required by the command handlers. The interface bundle keeps
// the adapter loosely coupled to the service implementation.
type Dependencies interface {
	AddEvent(ctx context.Context, name string, hasPowerstage bool) (schema.Event, error)
	Submit(ctx context.Context, req app.SubmitRequest) (schema.Submission, error)
	Standings(ctx context.Context, eventName string) ([]standings.Entry, error)
	EventNames(ctx context.Context) ([]string, error)
	SpreadsheetURL() string
}

// Bot owns the Discord session and command registration.
type Bot struct {
	session         *discordgo.Session
	deps            Dependencies
	eventMasterRole string
	guildID         string
	log             logger.Logger
	metrics         *metrics.Manager

	// Lifetime context for interaction handlers; cancelled by Stop so
	// in-flight sheet round trips stop on shutdown.
	ctx    context.Context
	cancel context.CancelFunc
}

// Option applies a configuration option to the Bot.
type Option func(*Bot)

// WithLogger sets a custom logger for the bot.
func WithLogger(log logger.Logger) Option {
	return func(b *Bot) {
		if log != nil {
			b.log = log
		}
	}
}

// WithMetrics enables command metrics on the given manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(b *Bot) {
		b.metrics = m
	}
}

// WithGuildID scopes command registration to one guild.
func WithGuildID(id string) Option {
	return func(b *Bot) {
		b.guildID = id
	}
}

// WithEventMasterRole sets the role ID allowed to run /event add.
func WithEventMasterRole(roleID string) Option {
	return func(b *Bot) {
		b.eventMasterRole = roleID
	}
}

// New creates a Bot over an authenticated token.
func New(token string, deps Dependencies, opts ...Option) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	b := &Bot{
		session: session,
		deps:    deps,
		log:     logger.Get().Named("discord"),
	}
	for _, opt := range opts {
		opt(b)
	}
	session.AddHandler(b.handleInteraction)
	return b, nil
}

// commandDefinitions declares the /event command group.
func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{{
		Name:        "event",
		Description: "Actions related to an event",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "add",
				Description: "Register a new event",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "name",
						Description: "Enter the name of the event",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Name:        "powerstage",
						Description: "Whether the event has a powerstage",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "submit",
				Description: "Submit an entry to an event",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:         discordgo.ApplicationCommandOptionString,
						Name:         "event",
						Description:  "Enter the name of the event",
						Required:     true,
						Autocomplete: true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "time",
						Description: "Enter your time in format [H:]MM:SS.fff",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "video_link",
						Description: "Enter a HTTP/HTTPS URL to your recording",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "powerstage_time",
						Description: "Powerstage time, only for events that define one",
						Required:    false,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "standings",
				Description: "Show the ranked standings of an event",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:         discordgo.ApplicationCommandOptionString,
						Name:         "event",
						Description:  "Enter the name of the event",
						Required:     true,
						Autocomplete: true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "spreadsheet",
				Description: "Get a link to the spreadsheet",
			},
		},
	}}
}

// Start opens the gateway connection and registers the command group.
// Handlers run under a context derived from ctx.
func (b *Bot) Start(ctx context.Context) error {
	b.bindLifetime(ctx)
	if err := b.session.Open(); err != nil {
		return err
	}
	_, err := b.session.ApplicationCommandBulkOverwrite(
		b.session.State.User.ID, b.guildID, commandDefinitions())
	if err != nil {
		return err
	}
	b.log.Info(ctx, "commands registered",
		logger.String("user", b.session.State.User.Username),
		logger.String("guild", b.guildID))
	return nil
}

// Stop cancels in-flight handlers and closes the gateway connection.
func (b *Bot) Stop() error {
	if b.cancel != nil {
		b.cancel()
	}
	return b.session.Close()
}

func (b *Bot) bindLifetime(ctx context.Context) {
	b.ctx, b.cancel = context.WithCancel(ctx)
}

// requestContext is the base context for one interaction.
func (b *Bot) requestContext() context.Context {
	if b.ctx != nil {
		return b.ctx
	}
	return context.Background()
}
