package fsm

// Conversation states of a questionnaire session. They track what the bot
// expects from the user next, not the questionnaire's own progress.
const (
	StateBrowsing     = "browsing"
	StateAwaitingItem = "awaiting_item"
	StateSubmitted    = "submitted"
)
