package command

import (
	"mian-bot/models"

	"github.com/bwmarrin/discordgo"
)

// Command is an interface for application commands.
type Command interface {
	Spec() models.CommandSpec
}

// AllCommands holds all the command instances, in registration order.
var AllCommands = []Command{
	&PingCommand{},
	&EchoCommand{},
	&ShutdownCommand{},
	&RestartCommand{},
}

// Catalog returns the desired command set for every guild.
func Catalog() []models.CommandSpec {
	specs := make([]models.CommandSpec, len(AllCommands))
	for i, cmd := range AllCommands {
		specs[i] = cmd.Spec()
	}
	return specs
}

// ApplicationCommands converts specs into the definitions sent to Discord.
func ApplicationCommands(specs []models.CommandSpec) []*discordgo.ApplicationCommand {
	defs := make([]*discordgo.ApplicationCommand, len(specs))
	for i, spec := range specs {
		defs[i] = applicationCommand(spec)
	}
	return defs
}

func applicationCommand(spec models.CommandSpec) *discordgo.ApplicationCommand {
	cmd := &discordgo.ApplicationCommand{
		Type:        discordgo.ChatApplicationCommand,
		Name:        spec.Name,
		Description: spec.Description,
	}
	for _, opt := range spec.Options {
		cmd.Options = append(cmd.Options, &discordgo.ApplicationCommandOption{
			Name:        opt.Name,
			Description: opt.Description,
			Type:        opt.Type.ApplicationCommandOptionType(),
			Required:    opt.Required,
		})
	}
	return cmd
}
