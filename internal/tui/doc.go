// Package tui is the interactive console: a catalog browser, a request test
// form with a response panel, and a telemetry monitor, sharing one modal
// dialog slot.
//
// Long-running work (catalog loads, test dispatches, telemetry pulls, docs
// downloads) runs in tea.Cmd goroutines and reports back as messages.
// Confirm and prompt dialogs resolve futures that a waiting command turns
// into confirmResultMsg and promptResultMsg.
package tui
