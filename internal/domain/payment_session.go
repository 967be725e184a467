package domain

type SessionStatus string

const (
	SessionCompleted SessionStatus = "complete"
	SessionOpen      SessionStatus = "open"
	SessionExpired   SessionStatus = "expired"
)

// PaymentSession is a read-only view of a provider-hosted checkout session.
type PaymentSession struct {
	ID            string
	Status        SessionStatus
	CustomerEmail string
	ItemReference string
	// AmountTotal is in minor units; zero when the provider omitted it.
	AmountTotal int64
}

func (s PaymentSession) IsCompleted() bool {
	return s.Status == SessionCompleted
}

// Price converts the minor-unit total to major units.
func (s PaymentSession) Price() float64 {
	return float64(s.AmountTotal) / 100
}
