package models

type ChatState struct {
	UserID          int64
	ScreenMessageID int
	Layout          Layout
}
