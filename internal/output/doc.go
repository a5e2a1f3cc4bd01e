// Package output renders dailyagi results in the terminal.
//
// Messages, tables and the live agent reply are styled with lipgloss when
// stdout is a terminal and NO_COLOR is unset, and fall back to plain text
// otherwise:
//
//	printer := output.NewPrinter()
//	printer.Success("Wallet connected: %s", addr)
//	view := printer.StartStream()
//	view.Update(partial)
//	view.Finish(final)
package output
