package models

// Interaction is a single command invocation, either from a slash command or a prefixed message.
type Interaction struct {
	CommandName    string
	InvokingUserID uint64
	Options        []InteractionOption
}

// InteractionOption is one (name, value) pair supplied with an Interaction.
// Present is false when the platform delivered the option without a value.
type InteractionOption struct {
	Name    string
	Value   string
	Present bool
}

// FirstOption returns option 0, if any.
func (i Interaction) FirstOption() (InteractionOption, bool) {
	if len(i.Options) == 0 {
		return InteractionOption{}, false
	}
	return i.Options[0], true
}

// Action is the side effect a Response asks for once it has been delivered.
type Action int

const (
	ActionNone Action = iota
	ActionShutdown
	ActionRestart
)

func (a Action) String() string {
	switch a {
	case ActionShutdown:
		return "shutdown"
	case ActionRestart:
		return "restart"
	default:
		return "none"
	}
}

// Response is what the dispatcher produces for an Interaction.
type Response struct {
	Content   string
	Ephemeral bool
	Action    Action
}
