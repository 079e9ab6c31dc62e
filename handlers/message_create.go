package handlers

import (
	"strings"
	"unicode"

	"mian-bot/models"
	"mian-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// DefaultPrefix is used when no text-command prefix is configured.
const DefaultPrefix = "!"

// MessageSender is the part of the session used to answer text commands.
type MessageSender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// TextHandler answers prefixed text commands such as "!ping" or "!echo hello".
type TextHandler struct {
	dispatcher *Dispatcher
	sender     MessageSender
	auth       utils.AuthorizationContext
	terminator Terminator
	prefix     string
	log        *logrus.Entry
}

// NewTextHandler creates a TextHandler. An empty prefix falls back to DefaultPrefix.
func NewTextHandler(d *Dispatcher, s MessageSender, auth utils.AuthorizationContext, t Terminator, prefix string) *TextHandler {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &TextHandler{
		dispatcher: d,
		sender:     s,
		auth:       auth,
		terminator: t,
		prefix:     prefix,
		log:        logrus.WithField("module", "message"),
	}
}

// Serve is registered with the session as the MessageCreate handler.
func (h *TextHandler) Serve(_ *discordgo.Session, m *discordgo.MessageCreate) {
	h.Handle(m)
}

// Handle dispatches one message if it carries a known command.
func (h *TextHandler) Handle(m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	in, ok := ParseTextCommand(m.Content, h.prefix)
	if !ok {
		return
	}
	// An unparsable id stays 0, which never matches a configured author.
	in.InvokingUserID, _ = utils.ParseSnowflake(m.Author.ID)

	resp, ok := h.dispatcher.Dispatch(in, h.auth)
	if !ok {
		return
	}

	if err := h.send(m, resp); err != nil {
		h.log.WithFields(logrus.Fields{
			"command":    in.CommandName,
			"channel_id": m.ChannelID,
			"user_id":    m.Author.ID,
		}).WithError(err).Error("Cannot respond to text command")
	}

	act(h.terminator, resp.Action, in, h.log)
}

// send replies in the channel, or in the author's DMs when the response is private.
func (h *TextHandler) send(m *discordgo.MessageCreate, resp models.Response) error {
	msg := &discordgo.MessageSend{
		Content:         resp.Content,
		AllowedMentions: noMentions(),
	}
	if !resp.Ephemeral {
		msg.Reference = m.Reference()
		msg.AllowedMentions.RepliedUser = true
		_, err := h.sender.ChannelMessageSendComplex(m.ChannelID, msg)
		return err
	}

	ch, err := h.sender.UserChannelCreate(m.Author.ID)
	if err != nil {
		return err
	}
	_, err = h.sender.ChannelMessageSendComplex(ch.ID, msg)
	return err
}

// ParseTextCommand splits "<prefix><name> <rest>" into an Interaction. The trimmed
// rest, when non-empty, becomes the single "text" option.
func ParseTextCommand(content, prefix string) (models.Interaction, bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return models.Interaction{}, false
	}

	body := strings.TrimPrefix(content, prefix)
	name, rest := body, ""
	if idx := strings.IndexFunc(body, unicode.IsSpace); idx >= 0 {
		name, rest = body[:idx], body[idx:]
	}
	if name == "" {
		return models.Interaction{}, false
	}

	in := models.Interaction{CommandName: name}
	if rest = strings.TrimSpace(rest); rest != "" {
		in.Options = []models.InteractionOption{{Name: "text", Value: rest, Present: true}}
	}
	return in, true
}
