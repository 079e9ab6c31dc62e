package bot

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mian-bot/command"
	"mian-bot/config"
	statusgrpc "mian-bot/grpc"
	"mian-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Bot encapsulates the bot's state.
type Bot struct {
	Session    *discordgo.Session
	Config     *config.Config
	Auth       utils.AuthorizationContext
	Reconciler *command.Reconciler
	Guilds     *GuildTracker
	Lifecycle  *Lifecycle

	cron      *cron.Cron
	status    *statusgrpc.StatusServer
	adminHook *utils.AdminChannelHook
	log       *logrus.Entry
}

// NewBot creates and initializes a new Bot instance. It performs no network activity.
func NewBot(cfg *config.Config) (*Bot, error) {
	if cfg.Token == "" {
		return nil, config.ErrMissingToken
	}

	log := logrus.WithField("module", "bot")

	auth, err := utils.NewAuth(cfg.AuthorID)
	if err != nil {
		log.WithError(err).Warn("AUTHOR_ID is invalid, privileged commands are disabled")
	} else if !auth.Configured() {
		log.Warn("AUTHOR_ID is not set, privileged commands are disabled")
	}

	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = gatewayIntents(cfg)

	return &Bot{
		Session:    dg,
		Config:     cfg,
		Auth:       auth,
		Reconciler: command.NewReconciler(sessionCommandService{session: dg}),
		Guilds:     NewGuildTracker(),
		Lifecycle:  NewLifecycle(SpawnSelf),
		log:        log,
	}, nil
}

// gatewayIntents returns the intents to identify with. Message content is a
// privileged intent, so it is only requested when text commands are enabled.
func gatewayIntents(cfg *config.Config) discordgo.Intent {
	if !cfg.TextCommands {
		return discordgo.IntentsGuilds
	}
	return discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent
}

// Start registers handlers, opens the gateway and starts the background services.
func (b *Bot) Start(registerHandlers func(*Bot)) error {
	registerHandlers(b)

	if b.Config.AdminChannelID != "" {
		b.adminHook = utils.NewAdminChannelHook(b.Session, b.Config.AdminChannelID)
		logrus.AddHook(b.adminHook)
	} else {
		b.log.Info("bot.adminChannelId is not set, logging to channel is disabled")
	}

	if b.Config.GRPCAddress != "" {
		b.status = statusgrpc.NewStatusServer(b.Config.GRPCAddress)
		if err := b.status.Start(); err != nil {
			return err
		}
	}

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	if err := b.startScheduler(); err != nil {
		return err
	}
	b.checkStatus()

	b.log.Info("Bot is now running. Press CTRL-C to exit.")
	return nil
}

// Stop gracefully closes the bot's session.
func (b *Bot) Stop() {
	b.stopScheduler()
	if b.status != nil {
		b.status.Stop()
	}
	if b.Session != nil {
		if err := b.Session.Close(); err != nil {
			b.log.WithError(err).Error("Error closing Discord session")
		}
	}
	b.log.Info("Bot stopped gracefully.")
	if b.adminHook != nil {
		b.adminHook.Close()
	}
}

// servingSetter hides a nil status server behind a nil interface.
func (b *Bot) servingSetter() ServingSetter {
	if b.status == nil {
		return nil
	}
	return b.status
}

// Run is the main entry point for the bot application. It returns once the
// process received a signal or a privileged command asked it to terminate.
func Run(cfg *config.Config, registerHandlers func(*Bot)) {
	bot, err := NewBot(cfg)
	if err != nil {
		logrus.Fatalf("Error initializing bot: %v", err)
	}

	if err := bot.Start(registerHandlers); err != nil {
		logrus.Fatalf("Error starting bot: %v", err)
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	bot.wait(sc)
}

// wait blocks until a signal arrives or termination is requested, then stops the bot.
func (b *Bot) wait(sc <-chan os.Signal) {
	select {
	case sig := <-sc:
		b.log.WithField("signal", sig.String()).Info("Received signal, shutting down")
	case <-b.Lifecycle.Done():
		b.log.WithField("reason", b.Lifecycle.Reason().String()).Info("Termination requested")
	}

	b.Stop()
}
