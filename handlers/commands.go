package handlers

import (
	"fmt"
	"strings"
	"time"

	"mian-bot/models"
	"mian-bot/utils"
)

// LatencyReader reports the current gateway latency. *discordgo.Session satisfies it.
type LatencyReader interface {
	HeartbeatLatency() time.Duration
}

// Dispatcher routes an Interaction to the handler for its command name.
// It only builds the response; delivering it and acting on it is left to the caller.
type Dispatcher struct {
	latency LatencyReader
}

// NewDispatcher creates a Dispatcher reading latency from the given transport.
func NewDispatcher(latency LatencyReader) *Dispatcher {
	return &Dispatcher{latency: latency}
}

// Dispatch returns the response for the interaction. The boolean is false for
// commands outside the catalog, which are ignored.
func (d *Dispatcher) Dispatch(in models.Interaction, auth utils.AuthorizationContext) (models.Response, bool) {
	switch in.CommandName {
	case "ping":
		return d.handlePing(), true
	case "echo":
		return handleEcho(in), true
	case "shutdown":
		return handlePrivileged(in, auth, models.ActionShutdown, "👋 Shutting down."), true
	case "restart":
		return handlePrivileged(in, auth, models.ActionRestart, "🔄 Restarting."), true
	default:
		return models.Response{}, false
	}
}

func (d *Dispatcher) handlePing() models.Response {
	ms := d.latency.HeartbeatLatency().Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return models.Response{
		Content: fmt.Sprintf("🏓 Pong! Gateway latency: %dms", ms),
	}
}

func handleEcho(in models.Interaction) models.Response {
	opt, ok := in.FirstOption()
	if !ok || !opt.Present || strings.TrimSpace(opt.Value) == "" {
		return models.Response{
			Content:   "❌ Please provide some text to echo.",
			Ephemeral: true,
		}
	}
	return models.Response{Content: opt.Value}
}

func handlePrivileged(in models.Interaction, auth utils.AuthorizationContext, action models.Action, confirmation string) models.Response {
	if !auth.Configured() {
		return models.Response{
			Content:   "❌ No author is configured, this command is disabled.",
			Ephemeral: true,
		}
	}
	if !auth.IsAuthor(in.InvokingUserID) {
		return models.Response{
			Content:   "🚫 You do not have permission to run this command.",
			Ephemeral: true,
		}
	}
	return models.Response{
		Content:   confirmation,
		Ephemeral: true,
		Action:    action,
	}
}
