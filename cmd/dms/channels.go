package main

import (
	"github.com/AminRahimi/deadman-switch/internal/channel"
	"github.com/AminRahimi/deadman-switch/internal/channel/discord"
	"github.com/AminRahimi/deadman-switch/internal/channel/github"
	"github.com/AminRahimi/deadman-switch/internal/channel/slack"
	"github.com/AminRahimi/deadman-switch/internal/channel/telegram"
	"github.com/AminRahimi/deadman-switch/internal/config"
)

// buildChannels constructs the check-in source, the per-recipient sink,
// and the optional announce fanout from configuration. Telegram is both
// the source and the per-recipient sink (the config's recipient ids are
// Telegram chat ids); Discord, Slack, and GitHub fire once per alert.
func buildChannels(cfg *config.Config) (channel.Source, channel.Sink, channel.Sink, error) {
	tg, err := telegram.New(telegram.Opts{
		Token:   cfg.Channels.Telegram.Token,
		Timeout: cfg.TelegramTimeout(),
		BaseURL: cfg.Channels.Telegram.BaseURL,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	var announce []channel.Sink

	if dc := cfg.Channels.Discord; dc.Token != "" {
		sink, err := discord.New(discord.Opts{BotToken: dc.Token, ChannelID: dc.ChannelID})
		if err != nil {
			return nil, nil, nil, err
		}
		announce = append(announce, sink)
	}

	if sl := cfg.Channels.Slack; sl.BotToken != "" {
		sink, err := slack.New(slack.Opts{BotToken: sl.BotToken, ChannelID: sl.ChannelID})
		if err != nil {
			return nil, nil, nil, err
		}
		announce = append(announce, sink)
	}

	if gh := cfg.Channels.GitHub; gh.Token != "" {
		sink, err := github.New(github.Opts{Token: gh.Token, Owner: gh.Owner, Repo: gh.Repo})
		if err != nil {
			return nil, nil, nil, err
		}
		announce = append(announce, sink)
	}

	if len(announce) == 0 {
		return tg, tg, nil, nil
	}
	return tg, tg, channel.NewFanout(announce...), nil
}
