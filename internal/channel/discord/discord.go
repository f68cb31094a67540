// Package discord implements a channel Sink posting to a Discord channel.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// session abstracts the discordgo.Session methods we use, enabling test mocks.
type session interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Sink posts alerts to a single configured Discord channel. The recipient
// id is Telegram-scoped and is ignored here; the channel is the audience.
type Sink struct {
	sess      session
	channelID string
}

// Opts holds parameters for creating a Sink.
type Opts struct {
	BotToken  string
	ChannelID string
	// For testing: inject a mock session instead of the real Discord API.
	Session session
}

// New creates a Discord Sink.
func New(opts Opts) (*Sink, error) {
	if opts.Session == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("discord: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("discord: channel id is required")
	}

	s := &Sink{channelID: opts.ChannelID}
	if opts.Session != nil {
		s.sess = opts.Session
		return s, nil
	}

	dg, err := discordgo.New("Bot " + opts.BotToken)
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}
	s.sess = dg
	return s, nil
}

// Name identifies this channel in delivery-failure reports.
func (s *Sink) Name() string { return "discord" }

// Deliver posts text to the configured channel.
func (s *Sink) Deliver(ctx context.Context, _ int64, text string) error {
	if _, err := s.sess.ChannelMessageSend(s.channelID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: send to %s: %w", s.channelID, err)
	}
	return nil
}
