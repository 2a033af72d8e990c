package entity

// SessionState is the state of a chat conversation with the bot.
type SessionState string

const (
	StateIdle          SessionState = "idle"           // waiting for anything
	StateAwaitingPhoto SessionState = "awaiting_photo" // /check was sent
	StateProcessing    SessionState = "processing"     // a photo is being classified
)

// Session is the per-user chat state kept by the Telegram front end.
type Session struct {
	UserID int64
	ChatID int64
	State  SessionState

	// Last classified photo, kept so /describe can reuse it.
	LastPhoto   []byte
	LastVerdict *ClassificationVerdict
}

// NewSession creates an idle session.
func NewSession(userID, chatID int64) *Session {
	return &Session{
		UserID: userID,
		ChatID: chatID,
		State:  StateIdle,
	}
}

// SetState updates the conversation state.
func (s *Session) SetState(state SessionState) {
	s.State = state
}

// Remember stores the photo and its verdict for follow-up commands.
func (s *Session) Remember(photo []byte, verdict *ClassificationVerdict) {
	s.LastPhoto = photo
	s.LastVerdict = verdict
}

// DescribableIssue returns the issue code of the last photo when it was accepted.
func (s *Session) DescribableIssue() (IssueType, bool) {
	if s.LastVerdict == nil || !s.LastVerdict.IsValid || s.LastVerdict.IssueType == nil || len(s.LastPhoto) == 0 {
		return "", false
	}
	return *s.LastVerdict.IssueType, true
}
