package events

const (
	// KindConnectionLost identifies remote session loss without a local close.
	KindConnectionLost Kind = "connection.lost"
)

// ConnectionLost marks the remote session ending without a local close. The
// controller has already torn its resources down when this is emitted.
type ConnectionLost struct {
	Base
	Reason string
}

// NewConnectionLost creates a connection lost event.
func NewConnectionLost(reason string) ConnectionLost {
	return ConnectionLost{Base: NewBase(KindConnectionLost), Reason: reason}
}
