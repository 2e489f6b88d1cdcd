package ui

import (
	"coachtui/model"
)

// Message type aliases - these are defined in the model package
type Message = model.Message

type stateChangedMsg = model.StateChangedMsg
type sendFinishedMsg = model.SendFinishedMsg
type directoryLoadedMsg = model.DirectoryLoadedMsg
type historyDeletedMsg = model.HistoryDeletedMsg
type historyExportedMsg = model.HistoryExportedMsg
type flashTickMsg = model.FlashTickMsg

// highlightTickMsg drives the search result flash in the transcript.
type highlightTickMsg struct{}
