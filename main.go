package main

import (
	"mian-bot/bot"
	"mian-bot/config"
	"mian-bot/handlers"
	"mian-bot/utils"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithField("module", "config").WithError(err).Error("Cannot start bot")
		return
	}

	if err := utils.InitLogger(cfg.LogLevel); err != nil {
		logrus.WithError(err).Warn("Falling back to info log level")
	}

	bot.Run(cfg, handlers.Register)
}
