package model

// Session 每個 request 明確傳入 service, 不使用全域狀態
type Session struct {
	SessionID string
	UserID    int64
}

func (s Session) Authenticated() bool {
	return s.UserID > 0
}
