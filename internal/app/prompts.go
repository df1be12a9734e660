package app

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

func confirmRun(opts Options) (bool, error) {
	var ok bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Scrape %s into %s?", opts.StartURL, opts.OutputDir)).
			Affirmative("Start").
			Negative("Cancel").
			Value(&ok),
	))
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}
