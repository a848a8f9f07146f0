package cli

import (
	"github.com/harperreed/dealerdesk/tui"
)

// TUICommand opens the interactive dealer browser.
func TUICommand(app *App) error {
	return tui.Run(app.Store)
}
