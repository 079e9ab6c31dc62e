package models

import "github.com/bwmarrin/discordgo"

// OptionType is the value type of a command option.
type OptionType int

const (
	OptionString OptionType = iota + 1
	OptionInteger
	OptionBoolean
)

// ApplicationCommandOptionType maps the option type onto its discordgo counterpart.
func (t OptionType) ApplicationCommandOptionType() discordgo.ApplicationCommandOptionType {
	switch t {
	case OptionInteger:
		return discordgo.ApplicationCommandOptionInteger
	case OptionBoolean:
		return discordgo.ApplicationCommandOptionBoolean
	default:
		return discordgo.ApplicationCommandOptionString
	}
}

func (t OptionType) String() string {
	switch t {
	case OptionString:
		return "string"
	case OptionInteger:
		return "integer"
	case OptionBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// CommandSpec describes one desired slash command.
type CommandSpec struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Options     []OptionSpec `json:"options,omitempty"`
}

// OptionSpec describes one option of a CommandSpec. The first option is positional option 0.
type OptionSpec struct {
	Name        string     `json:"name"`
	Type        OptionType `json:"type"`
	Description string     `json:"description"`
	Required    bool       `json:"required"`
}
