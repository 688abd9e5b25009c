package notify

import (
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Intervalo mínimo entre mensagens para o mesmo chat, para não esbarrar no
// rate limit do Telegram (~30/min).
const telegramSendInterval = 2 * time.Second

// Telegram envia avisos de liquidação para um chat de operação.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *zap.Logger

	mu       sync.Mutex
	lastSend time.Time
}

// NewTelegram cria o notificador; retorna erro se o token for inválido.
func NewTelegram(token string, chatID int64, log *zap.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	bot.Debug = false
	return &Telegram{bot: bot, chatID: chatID, log: log}, nil
}

// Send envia uma mensagem respeitando o intervalo mínimo entre envios.
// Melhor esforço: erro é logado e engolido.
func (t *Telegram) Send(text string) {
	t.mu.Lock()
	if wait := telegramSendInterval - time.Since(t.lastSend); wait > 0 {
		time.Sleep(wait)
	}
	t.lastSend = time.Now()
	t.mu.Unlock()

	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		t.log.Warn("telegram send failed", zap.Error(err))
	}
}
