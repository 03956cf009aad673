package session

// State is the controller's finite-state-machine state. Exactly one State is
// active at any instant and it is owned exclusively by the controller's event
// loop.
type State string

const (
	// StateConnecting covers microphone acquisition and the remote handshake,
	// and is also the resting state after a failed or lost connection while
	// the caller decides whether to retry.
	StateConnecting State = "connecting"
	// StateListening means the session is open and capture frames stream out.
	StateListening State = "listening"
	// StateProcessing is the transient state while a remote reply is pending.
	StateProcessing State = "processing"
	// StateSpeaking means at least one playback buffer is scheduled or
	// playing.
	StateSpeaking State = "speaking"
	// StateClosed is terminal after a local Close.
	StateClosed State = "closed"
	// StateErrored is the transient error state before the controller
	// returns to StateConnecting.
	StateErrored State = "errored"
)

func (s State) String() string { return string(s) }
