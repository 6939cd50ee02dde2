package telegram

import (
	"bytes"
	"encoding/json"
	"fincsops/clients/notifier"
	"fincsops/config"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const telegramAPIURL = "https://api.telegram.org/bot%s/%s"

// TelegramClient sends operator alerts to Telegram.
// Implements notifier.Notifier interface.
type TelegramClient struct {
	logger   *zap.Logger
	botToken string
	chatID   string
	client   *http.Client
}

func NewTelegramClient(logger *zap.Logger, cfg *config.Config) *TelegramClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	chatID := cfg.Telegram.ChatID

	token := cfg.Telegram.BotToken
	if token == "" {
		logger.Warn("TELEGRAM_BOT_KEY not set, Telegram alerts disabled")
		return &TelegramClient{
			logger: logger,
			chatID: chatID,
		}
	}

	logger.Info("telegram notifier initialized",
		zap.String("chatID", chatID),
	)

	return &TelegramClient{
		logger:   logger,
		botToken: token,
		chatID:   chatID,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// SendOpsAlert sends an operator alert notification.
// Implements notifier.Notifier interface.
func (tc *TelegramClient) SendOpsAlert(alert notifier.OpsAlert) {
	if tc.botToken == "" || tc.chatID == "" {
		tc.logger.Warn("telegram not configured, skipping alert")
		return
	}

	if err := tc.sendMessage(buildAlertMessage(alert)); err != nil {
		tc.logger.Error("failed to send telegram message", zap.Error(err))
		return
	}

	tc.logger.Info("sent telegram ops alert",
		zap.String("severity", string(alert.Severity)),
		zap.String("title", alert.Title),
	)
}

func buildAlertMessage(alert notifier.OpsAlert) string {
	var sb strings.Builder

	marker := "⚠️" // warning sign
	if alert.Severity == notifier.SeverityCritical {
		marker = "\U0001f6a8" // rotating light
	}

	sb.WriteString(fmt.Sprintf("%s %s\n", marker, alert.Title))
	if alert.Detail != "" {
		sb.WriteString(alert.Detail)
		sb.WriteString("\n")
	}
	sb.WriteString(alert.Timestamp.UTC().Format(time.RFC3339))

	return sb.String()
}

func (tc *TelegramClient) sendMessage(text string) error {
	url := fmt.Sprintf(telegramAPIURL, tc.botToken, "sendMessage")

	payload := map[string]string{
		"chat_id": tc.chatID,
		"text":    text,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := tc.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}
	return nil
}

// Close cleans up resources. Telegram uses one-shot HTTP calls, nothing held.
func (tc *TelegramClient) Close() error {
	return nil
}
