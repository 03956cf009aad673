package events

const (
	// KindStepChanged identifies recipe step navigation.
	KindStepChanged Kind = "recipe.step_changed"
)

// StepChanged marks navigation to a different recipe step. StepIndex is
// zero-based.
type StepChanged struct {
	Base
	StepIndex  int
	TotalSteps int
}

// NewStepChanged creates a step changed event.
func NewStepChanged(stepIndex, totalSteps int) StepChanged {
	return StepChanged{Base: NewBase(KindStepChanged), StepIndex: stepIndex, TotalSteps: totalSteps}
}
