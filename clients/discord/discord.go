package discord

import (
	"fincsops/clients/notifier"
	"fincsops/config"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// DiscordClient sends operator alerts to a Discord channel.
// Implements notifier.Notifier interface.
type DiscordClient struct {
	logger    *zap.Logger
	session   *discordgo.Session
	channelID string
}

func NewDiscordClient(logger *zap.Logger, cfg *config.Config) *DiscordClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	channelID := cfg.Discord.ChannelID

	token := cfg.Discord.BotToken
	if token == "" {
		logger.Warn("DISCORD_BOT_TOKEN not set, Discord alerts disabled")
		return &DiscordClient{
			logger:    logger,
			channelID: channelID,
		}
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		logger.Error("failed to create discord session", zap.Error(err))
		return &DiscordClient{
			logger:    logger,
			channelID: channelID,
		}
	}

	logger.Info("discord notifier initialized",
		zap.String("channelID", channelID),
	)

	return &DiscordClient{
		logger:    logger,
		session:   session,
		channelID: channelID,
	}
}

// SendOpsAlert sends an operator alert notification.
// Implements notifier.Notifier interface.
func (dc *DiscordClient) SendOpsAlert(alert notifier.OpsAlert) {
	if dc.session == nil || dc.channelID == "" {
		dc.logger.Warn("discord not configured, skipping alert")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       alert.Title,
		Description: alert.Detail,
		Color:       embedColor(alert.Severity),
		Timestamp:   alert.Timestamp.Format(time.RFC3339),
	}

	if _, err := dc.session.ChannelMessageSendEmbed(dc.channelID, embed); err != nil {
		dc.logger.Error("failed to send discord alert", zap.Error(err))
		return
	}

	dc.logger.Info("sent discord ops alert",
		zap.String("severity", string(alert.Severity)),
		zap.String("title", alert.Title),
	)
}

func embedColor(severity notifier.Severity) int {
	switch severity {
	case notifier.SeverityCritical:
		return 0xf85149 // red
	default:
		return 0xd29922 // yellow
	}
}

// Close cleans up the Discord session.
func (dc *DiscordClient) Close() error {
	if dc.session == nil {
		return nil
	}
	return dc.session.Close()
}
