package model

import "coachtui/coachapi"

// StateChangedMsg is sent when a background task changed the transcript or
// presence of any coach.
type StateChangedMsg struct{}

type SendFinishedMsg struct {
	PartnerID string
	Result    Result
}

type DirectoryLoadedMsg struct {
	Coaches     []coachapi.Coach
	Focus       string
	NotLoggedIn bool
	Err         error
}

type HistoryDeletedMsg struct {
	CoachID string
	Err     error
}

type HistoryExportedMsg struct {
	Path string
	Err  error
}

// FlashTickMsg clears the status notice with the same sequence number.
type FlashTickMsg struct {
	Seq int
}
