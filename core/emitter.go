package session

import "github.com/souschef/voice-core/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(opts ConnectOptions) eventEmitter {
	return func(event events.Event) {
		if opts.onEvent != nil {
			opts.onEvent(event)
		}

		switch typedEvent := event.(type) {
		case events.StateChanged:
			if opts.onStateChanged != nil {
				opts.onStateChanged(State(typedEvent.Current))
			}
		case events.UserTranscriptUpdated:
			if opts.onUserTranscript != nil {
				opts.onUserTranscript(typedEvent.Transcript)
			}
		case events.ModelTranscriptUpdated:
			if opts.onModelTranscript != nil {
				opts.onModelTranscript(typedEvent.Transcript)
			}
		case events.TurnCompleted:
			if opts.onTurnCompleted != nil {
				opts.onTurnCompleted(typedEvent.Turn)
			}
		case events.TimerStarted:
			if opts.onTimerStarted != nil {
				opts.onTimerStarted(Timer{ID: typedEvent.ID, Label: typedEvent.Label, RemainingSeconds: typedEvent.RemainingSeconds})
			}
		case events.TimerUpdated:
			if opts.onTimerUpdated != nil {
				opts.onTimerUpdated(Timer{ID: typedEvent.ID, Label: typedEvent.Label, RemainingSeconds: typedEvent.RemainingSeconds})
			}
		case events.TimerFinished:
			if opts.onTimerFinished != nil {
				opts.onTimerFinished(Timer{ID: typedEvent.ID, Label: typedEvent.Label})
			}
		case events.StepChanged:
			if opts.onStepChanged != nil {
				opts.onStepChanged(typedEvent.StepIndex)
			}
		case events.ConnectionLost:
			if opts.onConnectionLost != nil {
				opts.onConnectionLost(typedEvent.Reason)
			}
		}
	}
}
