package bot

import (
	"errors"

	"github.com/bwmarrin/discordgo"
)

var errNoApplication = errors.New("session has no application user yet")

// sessionCommandService implements command.CommandService on top of a live session.
type sessionCommandService struct {
	session *discordgo.Session
}

func (s sessionCommandService) HasGuild(guildID string) bool {
	_, err := s.session.State.Guild(guildID)
	return err == nil
}

func (s sessionCommandService) BulkOverwrite(guildID string, cmds []*discordgo.ApplicationCommand) ([]*discordgo.ApplicationCommand, error) {
	if s.session.State.User == nil {
		return nil, errNoApplication
	}
	return s.session.ApplicationCommandBulkOverwrite(s.session.State.User.ID, guildID, cmds)
}
