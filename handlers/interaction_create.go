package handlers

import (
	"fmt"

	"mian-bot/models"
	"mian-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// Terminator ends the process once a privileged command has been answered.
type Terminator interface {
	Shutdown()
	Restart()
}

// InteractionResponder sends interaction responses. *discordgo.Session satisfies it.
type InteractionResponder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

// SlashHandler answers application command interactions.
type SlashHandler struct {
	dispatcher *Dispatcher
	responder  InteractionResponder
	auth       utils.AuthorizationContext
	terminator Terminator
	log        *logrus.Entry
}

// NewSlashHandler creates a SlashHandler.
func NewSlashHandler(d *Dispatcher, r InteractionResponder, auth utils.AuthorizationContext, t Terminator) *SlashHandler {
	return &SlashHandler{
		dispatcher: d,
		responder:  r,
		auth:       auth,
		terminator: t,
		log:        logrus.WithField("module", "interaction"),
	}
}

// Serve is registered with the session as the InteractionCreate handler.
func (h *SlashHandler) Serve(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	h.Handle(i)
}

// Handle dispatches one interaction, sends the response and then performs its action.
func (h *SlashHandler) Handle(i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	in := interactionFromEvent(i)
	resp, ok := h.dispatcher.Dispatch(in, h.auth)
	if !ok {
		h.log.WithField("command", in.CommandName).Warn("Ignoring interaction for unknown command")
		return
	}

	data := &discordgo.InteractionResponseData{
		Content:         resp.Content,
		AllowedMentions: noMentions(),
	}
	if resp.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := h.responder.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		h.log.WithFields(logrus.Fields{
			"command": in.CommandName,
			"user_id": in.InvokingUserID,
		}).WithError(err).Error("Cannot respond to interaction")
	}

	act(h.terminator, resp.Action, in, h.log)
}

// noMentions renders mentions in echoed text without notifying anyone.
func noMentions() *discordgo.MessageAllowedMentions {
	return &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}}
}

func interactionFromEvent(i *discordgo.InteractionCreate) models.Interaction {
	data := i.ApplicationCommandData()
	in := models.Interaction{CommandName: data.Name}

	var user *discordgo.User
	if i.Member != nil && i.Member.User != nil {
		user = i.Member.User
	} else {
		user = i.User
	}
	if user != nil {
		// An unparsable id stays 0, which never matches a configured author.
		in.InvokingUserID, _ = utils.ParseSnowflake(user.ID)
	}

	for _, opt := range data.Options {
		o := models.InteractionOption{Name: opt.Name}
		if opt.Value != nil {
			o.Value = fmt.Sprint(opt.Value)
			o.Present = true
		}
		in.Options = append(in.Options, o)
	}
	return in
}

// act runs the response's side effect. It must only be called after the response was sent.
func act(t Terminator, action models.Action, in models.Interaction, log *logrus.Entry) {
	if action == models.ActionNone {
		return
	}
	log.WithFields(logrus.Fields{
		"action":  action.String(),
		"user_id": in.InvokingUserID,
	}).Warn("Privileged command accepted, terminating")

	switch action {
	case models.ActionShutdown:
		t.Shutdown()
	case models.ActionRestart:
		t.Restart()
	}
}
