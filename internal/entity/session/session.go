package session

// Session is the explicit per-chat state that replaces ambient login
// globals: who is authenticated and the monthly income they entered.
// A zero User means the chat is not logged in.
type Session struct {
	User   string  `json:"user"`
	Income float64 `json:"income"`
}

func (s Session) LoggedIn() bool {
	return s.User != ""
}
