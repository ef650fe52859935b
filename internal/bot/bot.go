// Package bot connects the lookup service to Discord.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/codyseavey/jeeves/internal/metrics"
	"github.com/codyseavey/jeeves/internal/models"
	"github.com/codyseavey/jeeves/internal/services"
)

const commandForceReload = "force_reload"

// sender is the slice of the Discord session the bot replies through.
type sender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// MessageHandler answers chat messages.
type MessageHandler interface {
	HandleMessage(ctx context.Context, channel, content string) ([]models.Document, error)
}

// Settings holds the parts of the bot that can change while it runs.
type Settings struct {
	OwnerID string
	Prefix  string
	Links   map[string]string
}

type Options struct {
	Token            string
	RepliesPerSecond float64
	ReplyBurst       int
}

type Bot struct {
	session  *discordgo.Session
	lookup   MessageHandler
	reloader services.CatalogReloader
	logger   *zap.Logger

	settings atomic.Pointer[Settings]

	limit    rate.Limit
	burst    int
	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc
}

func New(opts Options, settings Settings, lookup MessageHandler, reloader services.CatalogReloader, logger *zap.Logger) (*Bot, error) {
	if opts.Token == "" {
		return nil, errors.New("discord token is required")
	}
	session, err := discordgo.New("Bot " + opts.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentGuildMessages | discordgo.IntentDirectMessages | discordgo.IntentMessageContent

	b := newBot(opts, settings, lookup, reloader, logger)
	b.session = session
	session.AddHandler(b.onMessageCreate)
	session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		b.logger.Info("logged in", zap.String("user", r.User.Username))
	})
	return b, nil
}

func newBot(opts Options, settings Settings, lookup MessageHandler, reloader services.CatalogReloader, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if opts.RepliesPerSecond > 0 {
		limit = rate.Limit(opts.RepliesPerSecond)
	}
	burst := opts.ReplyBurst
	if burst <= 0 {
		burst = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Bot{
		lookup:   lookup,
		reloader: reloader,
		logger:   logger,
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
		ctx:      ctx,
		cancel:   cancel,
	}
	b.UpdateSettings(settings)
	return b
}

// UpdateSettings swaps the owner, prefix and link table.
func (b *Bot) UpdateSettings(s Settings) {
	if s.Prefix == "" {
		s.Prefix = "!"
	}
	links := make(map[string]string, len(s.Links))
	for name, url := range s.Links {
		links[strings.ToLower(name)] = url
	}
	s.Links = links
	b.settings.Store(&s)
}

func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	return nil
}

// Close cancels in-flight replies and disconnects.
func (b *Bot) Close() error {
	b.cancel()
	if b.session == nil {
		return nil
	}
	return b.session.Close()
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}
	b.handle(b.ctx, s, m.Author.ID, m.ChannelID, m.Content)
}

func (b *Bot) handle(ctx context.Context, out sender, authorID, channelID, content string) {
	settings := b.settings.Load()

	if name, ok := strings.CutPrefix(strings.TrimSpace(content), settings.Prefix); ok {
		if fields := strings.Fields(name); len(fields) > 0 {
			if b.runCommand(ctx, out, settings, authorID, channelID, strings.ToLower(fields[0])) {
				return
			}
		}
	}

	docs, err := b.lookup.HandleMessage(ctx, channelID, content)
	if len(docs) > 0 || err != nil {
		metrics.MessagesHandledTotal.Inc()
	}
	if err != nil {
		b.logger.Warn("some queries failed", zap.String("channel", channelID), zap.Error(err))
	}
	for _, doc := range docs {
		if err := b.wait(ctx, channelID); err != nil {
			return
		}
		_, err := out.ChannelMessageSendEmbed(channelID, toEmbed(doc))
		b.observeSend("embed", err)
	}
}

// runCommand reports whether content was a known command.
func (b *Bot) runCommand(ctx context.Context, out sender, settings *Settings, authorID, channelID, name string) bool {
	if name == commandForceReload {
		// Non-owners are ignored silently.
		if settings.OwnerID == "" || authorID != settings.OwnerID {
			return true
		}
		metrics.CommandsTotal.WithLabelValues(name).Inc()
		b.forceReload(ctx, out, channelID)
		return true
	}

	url, ok := settings.Links[name]
	if !ok {
		return false
	}
	metrics.CommandsTotal.WithLabelValues(name).Inc()
	if err := b.wait(ctx, channelID); err != nil {
		return true
	}
	_, err := out.ChannelMessageSend(channelID, url)
	b.observeSend("text", err)
	return true
}

func (b *Bot) forceReload(ctx context.Context, out sender, channelID string) {
	count, err := b.reloader.Reload(ctx)
	var reply string
	if err != nil {
		b.logger.Error("forced reload failed", zap.Error(err))
		reply = "I'm afraid the reload failed, sir. The previous catalog remains in service."
	} else {
		b.logger.Info("forced reload complete", zap.Int("cards", count))
		reply = fmt.Sprintf("Very good sir, I've loaded %d cards into memory now.", count)
	}
	_, err = out.ChannelMessageSend(channelID, reply)
	b.observeSend("text", err)
}

func (b *Bot) wait(ctx context.Context, channelID string) error {
	return b.limiter(channelID).Wait(ctx)
}

func (b *Bot) limiter(channelID string) *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()

	l, ok := b.limiters[channelID]
	if !ok {
		l = rate.NewLimiter(b.limit, b.burst)
		b.limiters[channelID] = l
	}
	return l
}

func (b *Bot) observeSend(kind string, err error) {
	if err != nil {
		metrics.RepliesSentTotal.WithLabelValues(kind, "failed").Inc()
		b.logger.Warn("failed to send reply", zap.String("type", kind), zap.Error(err))
		return
	}
	metrics.RepliesSentTotal.WithLabelValues(kind, "success").Inc()
}
