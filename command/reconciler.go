package command

import (
	"errors"
	"fmt"
	"strings"

	"mian-bot/models"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidCatalog is returned when the desired set has empty, uppercase or duplicate names.
	ErrInvalidCatalog = errors.New("invalid command catalog")
	// ErrCommandSetMismatch is returned when the set Discord reports back differs from the desired set.
	ErrCommandSetMismatch = errors.New("registered commands differ from catalog")
)

const maxCommandNameLength = 32

// ReconcileError reports a failed synchronization of one guild.
type ReconcileError struct {
	GuildID string
	Cause   error
}

func (e *ReconcileError) Error() string {
	return fmt.Sprintf("synchronizing commands for guild %s: %v", e.GuildID, e.Cause)
}

func (e *ReconcileError) Unwrap() error {
	return e.Cause
}

// CommandService is the slice of the Discord API the reconciler needs.
type CommandService interface {
	// HasGuild reports whether the guild is currently known to the session.
	HasGuild(guildID string) bool
	// BulkOverwrite replaces the guild's whole command set and returns what was registered.
	BulkOverwrite(guildID string, cmds []*discordgo.ApplicationCommand) ([]*discordgo.ApplicationCommand, error)
}

// Reconciler keeps a guild's slash commands equal to a desired set.
type Reconciler struct {
	service CommandService
	log     *logrus.Entry
}

// NewReconciler creates a Reconciler backed by the given service.
func NewReconciler(service CommandService) *Reconciler {
	return &Reconciler{
		service: service,
		log:     logrus.WithField("module", "reconciler"),
	}
}

// Synchronize overwrites the guild's commands with desired in a single bulk write.
// A guild the session does not know is skipped without error. Failures are not retried.
func (r *Reconciler) Synchronize(guildID string, desired []models.CommandSpec) error {
	if err := validateCatalog(desired); err != nil {
		return &ReconcileError{GuildID: guildID, Cause: err}
	}

	if !r.service.HasGuild(guildID) {
		r.log.WithField("guild_id", guildID).Debug("Guild is no longer available, skipping command sync")
		return nil
	}

	registered, err := r.service.BulkOverwrite(guildID, ApplicationCommands(desired))
	if err != nil {
		return &ReconcileError{GuildID: guildID, Cause: err}
	}

	if err := compareNames(desired, registered); err != nil {
		return &ReconcileError{GuildID: guildID, Cause: err}
	}

	r.log.WithFields(logrus.Fields{
		"guild_id": guildID,
		"commands": len(registered),
	}).Info("Slash commands synchronized")
	return nil
}

// Sweep synchronizes every guild in order. A failing guild is logged and the sweep moves on.
func (r *Reconciler) Sweep(guildIDs []string, desired []models.CommandSpec) []error {
	var errs []error
	for _, guildID := range guildIDs {
		if err := r.Synchronize(guildID, desired); err != nil {
			r.log.WithField("guild_id", guildID).WithError(err).Error("Cannot synchronize slash commands")
			errs = append(errs, err)
		}
	}
	return errs
}

func validateCatalog(desired []models.CommandSpec) error {
	seen := make(map[string]bool, len(desired))
	for _, spec := range desired {
		switch {
		case spec.Name == "":
			return fmt.Errorf("%w: empty command name", ErrInvalidCatalog)
		case len(spec.Name) > maxCommandNameLength:
			return fmt.Errorf("%w: command name %q is too long", ErrInvalidCatalog, spec.Name)
		case strings.ToLower(spec.Name) != spec.Name:
			return fmt.Errorf("%w: command name %q is not lowercase", ErrInvalidCatalog, spec.Name)
		case seen[spec.Name]:
			return fmt.Errorf("%w: duplicate command name %q", ErrInvalidCatalog, spec.Name)
		}
		seen[spec.Name] = true
	}
	return nil
}

func compareNames(desired []models.CommandSpec, registered []*discordgo.ApplicationCommand) error {
	want := make(map[string]bool, len(desired))
	for _, spec := range desired {
		want[spec.Name] = true
	}

	got := make(map[string]bool, len(registered))
	for _, cmd := range registered {
		if cmd == nil {
			continue
		}
		switch {
		case got[cmd.Name]:
			return fmt.Errorf("%w: duplicate %q", ErrCommandSetMismatch, cmd.Name)
		case !want[cmd.Name]:
			return fmt.Errorf("%w: unexpected %q", ErrCommandSetMismatch, cmd.Name)
		}
		got[cmd.Name] = true
	}

	for name := range want {
		if !got[name] {
			return fmt.Errorf("%w: missing %q", ErrCommandSetMismatch, name)
		}
	}
	return nil
}
