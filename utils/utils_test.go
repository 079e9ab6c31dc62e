package utils

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

func TestNewAuth(t *testing.T) {
	t.Run("valid id", func(t *testing.T) {
		auth, err := NewAuth(" 123456789012345678 ")
		if err != nil {
			t.Fatalf("Unexpected error: %+v", err)
		}
		if !auth.Configured() {
			t.Fatal("Expected auth to be configured")
		}
		if !auth.IsAuthor(123456789012345678) {
			t.Error("Expected author to be authorized")
		}
		if auth.IsAuthor(1) {
			t.Error("Expected other user to be refused")
		}
	})

	t.Run("empty id", func(t *testing.T) {
		auth, err := NewAuth("")
		if err != nil {
			t.Fatalf("Unexpected error: %+v", err)
		}
		if auth.Configured() {
			t.Error("Expected auth to be unconfigured")
		}
		if auth.IsAuthor(0) {
			t.Error("Unconfigured auth must refuse everyone, including id 0")
		}
	})

	for _, raw := range []string{"abc", "-5", "0", "1.5"} {
		t.Run("invalid "+raw, func(t *testing.T) {
			auth, err := NewAuth(raw)
			if !errors.Is(err, ErrInvalidAuthorID) {
				t.Errorf("Expected ErrInvalidAuthorID, got %v", err)
			}
			if auth.Configured() {
				t.Error("Expected auth to be unconfigured")
			}
		})
	}
}

type mockEmbedSender struct {
	channelMessageSendEmbedFunc func(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

func (m *mockEmbedSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if m.channelMessageSendEmbedFunc != nil {
		return m.channelMessageSendEmbedFunc(channelID, embed, options...)
	}
	return &discordgo.Message{}, nil
}

func TestAdminChannelHook(t *testing.T) {
	var gotChannels []string
	var gotEmbeds []*discordgo.MessageEmbed
	sender := &mockEmbedSender{
		channelMessageSendEmbedFunc: func(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
			gotChannels = append(gotChannels, channelID)
			gotEmbeds = append(gotEmbeds, embed)
			return &discordgo.Message{}, nil
		},
	}

	hook := NewAdminChannelHook(sender, "admin")
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.AddHook(hook)

	logger.WithField("module", "reconciler").WithField("guild_id", "42").Info("quiet")
	logger.WithField("module", "reconciler").WithField("guild_id", "42").Error("Cannot synchronize slash commands")
	hook.Close()

	if len(gotEmbeds) != 1 {
		t.Fatalf("Expected only the error to be mirrored, got %d embeds", len(gotEmbeds))
	}
	if gotChannels[0] != "admin" {
		t.Errorf("Expected channel admin, got %q", gotChannels[0])
	}
	embed := gotEmbeds[0]
	if embed.Color != ColorError {
		t.Errorf("Expected error colour, got %x", embed.Color)
	}
	if embed.Fields[0].Value != "reconciler" {
		t.Errorf("Expected module field, got %q", embed.Fields[0].Value)
	}
	if !strings.Contains(embed.Fields[2].Value, "guild_id=42") {
		t.Errorf("Expected details to contain guild id, got %q", embed.Fields[2].Value)
	}

	logger.Error("after close")
	if len(gotEmbeds) != 1 {
		t.Errorf("Entries after Close must be ignored, got %d embeds", len(gotEmbeds))
	}
}

func TestAdminChannelHookSendFailure(t *testing.T) {
	sender := &mockEmbedSender{
		channelMessageSendEmbedFunc: func(string, *discordgo.MessageEmbed, ...discordgo.RequestOption) (*discordgo.Message, error) {
			return nil, errors.New("Missing Permissions")
		},
	}
	hook := NewAdminChannelHook(sender, "admin")

	entry := logrus.NewEntry(logrus.New())
	entry.Level = logrus.WarnLevel
	entry.Time = time.Now()
	if err := hook.Fire(entry); err != nil {
		t.Errorf("Fire must swallow send errors, got %v", err)
	}
	hook.Close()
}

func TestAdminChannelHookDoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	var sent int
	sender := &mockEmbedSender{
		channelMessageSendEmbedFunc: func(string, *discordgo.MessageEmbed, ...discordgo.RequestOption) (*discordgo.Message, error) {
			<-release
			sent++
			return &discordgo.Message{}, nil
		},
	}
	hook := NewAdminChannelHook(sender, "admin")

	entry := logrus.NewEntry(logrus.New())
	entry.Level = logrus.ErrorLevel
	entry.Time = time.Now()

	fired := make(chan struct{})
	go func() {
		for i := 0; i < adminQueueSize*2; i++ {
			hook.Fire(entry)
		}
		close(fired)
	}()

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("Fire blocked while the admin channel was stalled")
	}

	close(release)
	hook.Close()
	if sent == 0 || sent > adminQueueSize+1 {
		t.Errorf("Expected between 1 and %d sends, got %d", adminQueueSize+1, sent)
	}
}

func TestEmbedTruncatesLongDetails(t *testing.T) {
	entry := logrus.NewEntry(logrus.New()).WithField("payload", strings.Repeat("x", 5000))
	entry.Level = logrus.WarnLevel
	entry.Message = "big"

	embed := Embed(entry)
	if n := len([]rune(embed.Fields[2].Value)); n > embedFieldLimit {
		t.Errorf("Expected details truncated to %d runes, got %d", embedFieldLimit, n)
	}
	if embed.Color != ColorWarn {
		t.Errorf("Expected warn colour, got %x", embed.Color)
	}
}

func TestInitLogger(t *testing.T) {
	if err := InitLogger("debug"); err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Errorf("Expected debug level, got %v", logrus.GetLevel())
	}
	if err := InitLogger("loud"); err == nil {
		t.Error("Expected error for unknown level")
	}
	logrus.SetLevel(logrus.InfoLevel)
}
