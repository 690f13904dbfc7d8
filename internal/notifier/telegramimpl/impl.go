package telegramimpl

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/insta-feed-harvester/internal/domain"
	"github.com/orgball2608/insta-feed-harvester/internal/notifier"
	"github.com/orgball2608/insta-feed-harvester/internal/ratelimit"
	"github.com/orgball2608/insta-feed-harvester/pkg/config"
	"github.com/orgball2608/insta-feed-harvester/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config  *config.Config
	Logger  logger.Logger
	Limiter ratelimit.Limiter
}

type TelegramImpl struct {
	TgBot   *tgbotapi.BotAPI
	Logger  logger.Logger
	Config  *config.Config
	Limiter ratelimit.Limiter
}

// New builds the Telegram notifier. When notifications are disabled in the
// configuration a no-op client is returned instead, so the rest of the
// pipeline never has to care.
func New(opts Opts) (notifier.Client, error) {
	if !opts.Config.Telegram.Enabled {
		opts.Logger.Info("Telegram notifications disabled")
		return &NopImpl{Logger: opts.Logger.WithComponent("Notifier")}, nil
	}

	tgBot, err := tgbotapi.NewBotAPI(opts.Config.Telegram.Token)
	if err != nil {
		opts.Logger.Error("Error creating bot", "error", err)
		return nil, err
	}

	return &TelegramImpl{
		TgBot:   tgBot,
		Logger:  opts.Logger.WithComponent("Notifier"),
		Config:  opts.Config,
		Limiter: opts.Limiter,
	}, nil
}

var _ notifier.Client = (*TelegramImpl)(nil)

// NotifyPost announces a freshly harvested post to the configured channel.
func (tg *TelegramImpl) NotifyPost(ctx context.Context, post domain.Post) error {
	if err := tg.Limiter.Wait(ctx, "telegram"); err != nil {
		return err
	}

	text := FormatPostMessage(post)

	var msg tgbotapi.Chattable
	if len(post.ImageURLs) > 0 {
		photo := tgbotapi.NewPhoto(tg.Config.Telegram.Channel, tgbotapi.FileURL(post.ImageURLs[0]))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeMarkdownV2
		msg = photo
	} else {
		textMsg := tgbotapi.NewMessage(tg.Config.Telegram.Channel, text)
		textMsg.ParseMode = tgbotapi.ModeMarkdownV2
		msg = textMsg
	}

	if _, err := tg.TgBot.Send(msg); err != nil {
		tg.Logger.Error("Error sending post notification",
			"channel", tg.Config.Telegram.Channel,
			"profile", post.Profile,
			"error", err)
		return err
	}

	tg.Logger.Info("Post notification sent", "profile", post.Profile, "url", post.URL)
	return nil
}

// NotifyError reports an operational failure to the channel.
func (tg *TelegramImpl) NotifyError(ctx context.Context, message string) {
	if err := tg.Limiter.Wait(ctx, "telegram"); err != nil {
		return
	}

	msg := tgbotapi.NewMessage(tg.Config.Telegram.Channel, message)
	if _, err := tg.TgBot.Send(msg); err != nil {
		tg.Logger.Error("Error sending error notification", "error", err)
	}
}

// NopImpl is the notifier used when Telegram is disabled.
type NopImpl struct {
	Logger logger.Logger
}

var _ notifier.Client = (*NopImpl)(nil)

func (n *NopImpl) NotifyPost(_ context.Context, post domain.Post) error {
	n.Logger.Debug("Notification suppressed", "profile", post.Profile, "url", post.URL)
	return nil
}

func (n *NopImpl) NotifyError(context.Context, string) {}
