package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/banker/internal/cli"
	"github.com/theirongolddev/banker/internal/controller"
)

const (
	choiceSave    = "save"
	choiceDiscard = "discard"
	choiceCancel  = "cancel"
)

// onDirtyExit asks what to do with unsaved changes. Without a terminal the
// changes are saved.
func (a *app) onDirtyExit(_ string, payload any) {
	ev, ok := payload.(*controller.DirtyExit)
	if !ok {
		return
	}

	choice := choiceSave
	if a.interactive() {
		options := []huh.Option[string]{
			huh.NewOption("Save", choiceSave),
			huh.NewOption("Discard", choiceDiscard),
		}
		// Only the shell has somewhere to go back to.
		if a.ctrl != nil {
			options = append(options, huh.NewOption("Keep editing", choiceCancel))
		}
		err := huh.NewSelect[string]().
			Title("You have unsaved changes").
			Options(options...).
			Value(&choice).
			Run()
		if errors.Is(err, huh.ErrUserAborted) && a.ctrl != nil {
			choice = choiceCancel
		} else if err != nil {
			a.log.Warn().Err(err).Msg("dirty-exit prompt failed, saving")
			choice = choiceSave
		}
	} else {
		a.log.Warn().Msg("closing with unsaved changes, saving")
	}

	switch choice {
	case choiceSave:
		if err := ev.Model.Save(); err != nil {
			fmt.Fprintln(a.err, cli.Warn(fmt.Sprintf("  Save failed: %v", err)))
			ev.Cancel = a.ctrl != nil
		}
	case choiceCancel:
		ev.Cancel = true
	case choiceDiscard:
		a.log.Info().Msg("unsaved changes discarded")
	}
}
