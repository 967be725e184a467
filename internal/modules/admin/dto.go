package admin

type ReplayResult struct {
	SessionID string `json:"session_id"`
	Outcome   string `json:"outcome"`
	Resolved  bool   `json:"resolved"`
	BookingID int64  `json:"booking_id,omitempty"`
	Error     string `json:"error,omitempty"`
}
