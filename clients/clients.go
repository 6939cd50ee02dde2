package clients

import (
	"fincsops/clients/botapi"
	"fincsops/clients/discord"
	"fincsops/clients/notifier"
	"fincsops/clients/telegram"
	"fincsops/config"

	"go.uber.org/zap"
)

type Clients struct {
	Logger *zap.Logger

	Bot      *botapi.Client
	Discord  *discord.DiscordClient
	Telegram *telegram.TelegramClient
	Notifier notifier.Notifier // Combined notifier for all channels
}

func NewClients(logger *zap.Logger, cfg *config.Config) *Clients {
	discordClient := discord.NewDiscordClient(logger, cfg)
	telegramClient := telegram.NewTelegramClient(logger, cfg)

	// Create combined notifier for all channels
	multiNotifier := notifier.NewMultiNotifier(discordClient, telegramClient)

	return &Clients{
		Logger:   logger,
		Bot:      botapi.NewClient(logger, cfg),
		Discord:  discordClient,
		Telegram: telegramClient,
		Notifier: multiNotifier,
	}
}
