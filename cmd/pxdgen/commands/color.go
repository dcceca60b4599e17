package commands

import (
	"os"

	"github.com/pterm/pterm"
	"golang.org/x/term"

	"github.com/teranos/pxdgen/errors"
)

// ApplyColor configures pterm for --color: "on", "off", or "auto" (color
// only when stdout is a terminal).
func ApplyColor(mode string) error {
	switch mode {
	case "on":
		pterm.EnableColor()
	case "off":
		pterm.DisableColor()
	case "auto", "":
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			pterm.DisableColor()
		}
	default:
		return errors.Newf("invalid --color %q (use auto, on or off)", mode)
	}
	return nil
}
