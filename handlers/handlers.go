package handlers

import (
	"mian-bot/bot"
)

// Register builds the event-to-handler table once and adds it to the session.
func Register(b *bot.Bot) {
	dispatcher := NewDispatcher(b.Session)

	events := []interface{}{
		Ready(b.Reconciler, b.Guilds),
		GuildCreate(b.Reconciler, b.Guilds),
		GuildDelete(b.Guilds),
		NewSlashHandler(dispatcher, b.Session, b.Auth, b.Lifecycle).Serve,
	}
	if b.Config.TextCommands {
		events = append(events, NewTextHandler(dispatcher, b.Session, b.Auth, b.Lifecycle, b.Config.Prefix).Serve)
	}
	for _, h := range events {
		b.Session.AddHandler(h)
	}
}
