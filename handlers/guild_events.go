package handlers

import (
	"mian-bot/bot"
	"mian-bot/command"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// Ready synchronizes the commands of every guild listed in the Ready payload.
func Ready(r *command.Reconciler, guilds *bot.GuildTracker) func(s *discordgo.Session, e *discordgo.Ready) {
	return func(_ *discordgo.Session, e *discordgo.Ready) {
		if e.User != nil {
			logrus.WithField("module", "gateway").Infof("Logged in as: %v", e.User.Username)
		}

		ids := make([]string, 0, len(e.Guilds))
		for _, g := range e.Guilds {
			ids = append(ids, g.ID)
		}
		guilds.Reset(ids)

		errs := r.Sweep(ids, command.Catalog())
		logrus.WithFields(logrus.Fields{
			"module": "gateway",
			"guilds": len(ids),
			"failed": len(errs),
		}).Info("Startup command sync finished")
	}
}

// GuildCreate synchronizes a guild that became available and was not covered since the last Ready.
func GuildCreate(r *command.Reconciler, guilds *bot.GuildTracker) func(s *discordgo.Session, e *discordgo.GuildCreate) {
	return func(_ *discordgo.Session, e *discordgo.GuildCreate) {
		if e.Guild == nil || e.Unavailable || !guilds.MarkAvailable(e.ID) {
			return
		}

		if err := r.Synchronize(e.ID, command.Catalog()); err != nil {
			logrus.WithFields(logrus.Fields{
				"module":   "gateway",
				"guild_id": e.ID,
			}).WithError(err).Error("Cannot synchronize slash commands")
		}
	}
}

// GuildDelete forgets a guild that went unavailable or removed the bot, so its return is synchronized again.
func GuildDelete(guilds *bot.GuildTracker) func(s *discordgo.Session, e *discordgo.GuildDelete) {
	return func(_ *discordgo.Session, e *discordgo.GuildDelete) {
		if e.Guild == nil {
			return
		}
		guilds.Forget(e.ID)
		logrus.WithFields(logrus.Fields{
			"module":      "gateway",
			"guild_id":    e.ID,
			"unavailable": e.Unavailable,
		}).Info("Guild is gone")
	}
}
