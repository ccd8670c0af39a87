package mylog

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"campusbot/app/config"

	"github.com/phsym/console-slog"
	slogmulti "github.com/samber/slog-multi"
	slogtelegram "github.com/samber/slog-telegram/v2"
)

// TelegramKey marks a record for delivery to the telegram sink regardless of level.
const TelegramKey = "telegram"

func Preinit() {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelDebug,
	})))
}

func Init(cfg *config.Config) error {
	consoleLevel, err := ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	router := slogmulti.Router()

	router = router.Add(console.NewHandler(os.Stderr, &console.HandlerOptions{
		AddSource: true,
		Level:     consoleLevel,
	}))

	if cfg.Log.Telegram.Token != "" {
		telegramLevel, err := ParseLevel(cfg.Log.Telegram.Level)
		if err != nil {
			return err
		}

		router = router.Add(
			slogtelegram.Option{
				Level:     slog.LevelDebug,
				Token:     cfg.Log.Telegram.Token,
				Username:  cfg.Log.Telegram.ChatID,
				AddSource: true,
			}.NewTelegramHandler(),
			telegramFilter(telegramLevel),
		)
	}

	slog.SetDefault(slog.New(router.Handler()))

	return nil
}

// ParseLevel accepts debug, info, warn and error. Empty means info.
func ParseLevel(value string) (slog.Level, error) {
	var level slog.Level

	if value == "" {
		return slog.LevelInfo, nil
	}

	if err := level.UnmarshalText([]byte(value)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", value, err)
	}

	return level, nil
}

// telegramFilter forwards records at or above minLevel and records tagged with TelegramKey.
func telegramFilter(minLevel slog.Level) func(context.Context, slog.Record) bool {
	return func(_ context.Context, r slog.Record) bool {
		if r.Level >= minLevel {
			return true
		}

		tagged := false
		r.Attrs(func(attr slog.Attr) bool {
			if attr.Key == TelegramKey {
				tagged = true
				return false
			}

			return true
		})

		return tagged
	}
}
