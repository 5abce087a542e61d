package bot

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"market-pulse/internal/cache"
	"market-pulse/internal/domain"
	"market-pulse/internal/service"

	tele "gopkg.in/telebot.v3"
)

func StartTelegramBot(token string, indicatorCache *cache.IndicatorCache, alertService *service.AlertService) *Notifier {
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/indicators", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send(fmt.Sprintf("Usage: /indicators BTCUSDT\nSupported: %s", strings.Join(domain.SupportedSymbols, ", ")))
		}
		symbol := strings.ToUpper(args[0])
		entry, ok := indicatorCache.Indicators()[symbol].(map[string]any)
		if !ok || len(entry) == 0 {
			return c.Send(fmt.Sprintf("No indicators cached for %s\nSupported: %s", symbol, strings.Join(domain.SupportedSymbols, ", ")))
		}
		return c.Send(formatIndicators(symbol, entry))
	})

	b.Handle("/alerts", func(c tele.Context) error {
		alerts, err := alertService.CheckAlerts(context.Background())
		if err != nil {
			return c.Send(fmt.Sprintf("Error checking alerts: %v", err))
		}
		if len(alerts) == 0 {
			return c.Send("No new alerts")
		}
		var sb strings.Builder
		for symbol, fields := range alerts {
			sb.WriteString(formatIndicators(symbol, anyFields(fields)))
			sb.WriteString("\n")
		}
		return c.Send(strings.TrimRight(sb.String(), "\n"))
	})

	log.Println("Telegram bot started")
	go b.Start()
	return &Notifier{bot: b}
}

func formatIndicators(symbol string, fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(symbol)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("\n%s: %v", k, fields[k]))
	}
	return sb.String()
}

func anyFields(fields map[string]string) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

type sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Notifier pushes merged alert batches to a fixed chat. A nil Notifier
// or a zero chat ID makes NotifyAlerts a no-op.
type Notifier struct {
	bot    sender
	chatID int64
}

func (n *Notifier) SetChatID(chatID int64) {
	if n != nil {
		n.chatID = chatID
	}
}

func (n *Notifier) NotifyAlerts(alerts map[string]map[string]string) {
	if n == nil || n.bot == nil || n.chatID == 0 || len(alerts) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString("Indicator updates\n")
	for symbol, fields := range alerts {
		sb.WriteString(formatIndicators(symbol, anyFields(fields)))
		sb.WriteString("\n")
	}
	if _, err := n.bot.Send(&tele.Chat{ID: n.chatID}, strings.TrimRight(sb.String(), "\n")); err != nil {
		log.Printf("Telegram alert notification failed: %v", err)
	}
}
