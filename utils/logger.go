package utils

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

const (
	ColorInfo  = 0x00ff00 // Green
	ColorWarn  = 0xffff00 // Yellow
	ColorError = 0xff0000 // Red
)

// embedFieldLimit is Discord's maximum length of an embed field value.
const embedFieldLimit = 1024

const (
	adminQueueSize    = 64
	adminDrainTimeout = 5 * time.Second
)

// InitLogger configures the standard logrus logger and routes discordgo's own log lines into it.
func InitLogger(level string) error {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.DateTime,
	})
	logrus.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	logrus.SetLevel(lvl)

	discordgo.Logger = func(msgL, caller int, format string, a ...interface{}) {
		entry := logrus.WithField("module", "discordgo")
		msg := fmt.Sprintf(format, a...)
		switch msgL {
		case discordgo.LogError:
			entry.Error(msg)
		case discordgo.LogWarning:
			entry.Warn(msg)
		case discordgo.LogInformational:
			entry.Info(msg)
		default:
			entry.Debug(msg)
		}
	}
	return nil
}

// EmbedSender is the part of a Discord session used to mirror log entries.
type EmbedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// AdminChannelHook sends warnings and errors to the admin channel as embeds.
// Embeds are queued and sent from a background goroutine so that logging
// never waits on the REST API. A full queue drops the entry.
type AdminChannelHook struct {
	session   EmbedSender
	channelID string
	queue     chan *discordgo.MessageEmbed
	done      chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewAdminChannelHook creates a hook posting to channelID and starts its sender.
func NewAdminChannelHook(session EmbedSender, channelID string) *AdminChannelHook {
	h := &AdminChannelHook{
		session:   session,
		channelID: channelID,
		queue:     make(chan *discordgo.MessageEmbed, adminQueueSize),
		done:      make(chan struct{}),
	}
	go h.run()
	return h
}

// Levels implements logrus.Hook.
func (h *AdminChannelHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel}
}

// Fire implements logrus.Hook. Failures are written to stderr, never back through logrus.
func (h *AdminChannelHook) Fire(entry *logrus.Entry) error {
	embed := Embed(entry)

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return nil
	}
	select {
	case h.queue <- embed:
	default:
		fmt.Fprintln(os.Stderr, "Admin channel log queue is full, dropping entry")
	}
	return nil
}

// Close stops accepting entries and waits a bounded time for queued ones to be sent.
func (h *AdminChannelHook) Close() {
	h.mu.Lock()
	if !h.closed {
		h.closed = true
		close(h.queue)
	}
	h.mu.Unlock()

	select {
	case <-h.done:
	case <-time.After(adminDrainTimeout):
		fmt.Fprintln(os.Stderr, "Timed out sending queued log messages to Discord")
	}
}

func (h *AdminChannelHook) run() {
	defer close(h.done)
	for embed := range h.queue {
		if _, err := h.session.ChannelMessageSendEmbed(h.channelID, embed); err != nil {
			fmt.Fprintf(os.Stderr, "Error sending log message to Discord: %v\n", err)
		}
	}
}

// Embed renders a log entry the way it is shown in the admin channel.
func Embed(entry *logrus.Entry) *discordgo.MessageEmbed {
	color := ColorInfo
	switch entry.Level {
	case logrus.WarnLevel:
		color = ColorWarn
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		color = ColorError
	}

	module := "-"
	details := make([]string, 0, len(entry.Data))
	for k, v := range entry.Data {
		if k == "module" {
			module = fmt.Sprint(v)
			continue
		}
		details = append(details, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(details)

	fields := []*discordgo.MessageEmbedField{
		{Name: "Module", Value: module, Inline: true},
		{Name: "Operation", Value: truncate(entry.Message), Inline: true},
	}
	if len(details) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Details",
			Value: truncate(strings.Join(details, "\n")),
		})
	}

	return &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("Log Level: %s", strings.ToUpper(entry.Level.String())),
		Color:     color,
		Timestamp: entry.Time.Format(time.RFC3339),
		Fields:    fields,
	}
}

func truncate(s string) string {
	if s == "" {
		return "-"
	}
	r := []rune(s)
	if len(r) <= embedFieldLimit {
		return s
	}
	return string(r[:embedFieldLimit-1]) + "…"
}
