package command

import "mian-bot/models"

// PingCommand defines the structure for the /ping command.
type PingCommand struct{}

// Spec returns the command specification.
func (c *PingCommand) Spec() models.CommandSpec {
	return models.CommandSpec{
		Name:        "ping",
		Description: "Check whether the bot is online",
	}
}

// EchoCommand defines the structure for the /echo command.
type EchoCommand struct{}

// Spec returns the command specification.
func (c *EchoCommand) Spec() models.CommandSpec {
	return models.CommandSpec{
		Name:        "echo",
		Description: "Reply with the text you provide",
		Options: []models.OptionSpec{
			{
				Name:        "text",
				Type:        models.OptionString,
				Description: "The text to reply with",
				Required:    true,
			},
		},
	}
}

// ShutdownCommand defines the structure for the /shutdown command.
type ShutdownCommand struct{}

// Spec returns the command specification.
func (c *ShutdownCommand) Spec() models.CommandSpec {
	return models.CommandSpec{
		Name:        "shutdown",
		Description: "Shut the bot down (author only)",
	}
}

// RestartCommand defines the structure for the /restart command.
type RestartCommand struct{}

// Spec returns the command specification.
func (c *RestartCommand) Spec() models.CommandSpec {
	return models.CommandSpec{
		Name:        "restart",
		Description: "Restart the bot (author only)",
	}
}
