// Package events defines the typed cooking-session event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - session_state.*
//   - transcript.*
//   - turn.*
//   - tool_call.*
//   - timer.*
//   - recipe.*
//   - connection.*
//
// Semantics used across the package:
//
//   - Updated: mutable point-in-time snapshot that can change as more
//     fragments stream in.
//   - Completed/Finished: terminal immutable state for the current
//     turn/timer; emitted exactly once.
//
// session_state events
//
//   - StateChanged (session_state.changed): the controller moved to a new
//     state.
//
// transcript events
//
//   - UserTranscriptUpdated (transcript.user_updated): accumulated user
//     speech-to-text snapshot for live display.
//   - ModelTranscriptUpdated (transcript.model_updated): accumulated model
//     speech transcript snapshot for live display.
//
// turn events
//
//   - TurnCompleted (turn.completed): one full exchange was delimited by the
//     remote turn boundary; carries the immutable conversation turn.
//
// tool_call events
//
//   - ToolCallStarted (tool_call.started): tool execution started.
//   - ToolCallCompleted (tool_call.completed): tool execution completed.
//   - ToolCallFailed (tool_call.failed): tool execution failed; a result is
//     still reported to the remote model.
//
// timer events
//
//   - TimerStarted (timer.started): a countdown timer was created.
//   - TimerUpdated (timer.updated): a timer's remaining seconds changed.
//   - TimerFinished (timer.finished): a timer reached zero and was removed.
//
// recipe events
//
//   - StepChanged (recipe.step_changed): the current recipe step index moved.
//
// connection events
//
//   - ConnectionLost (connection.lost): the remote session ended without a
//     local close.
package events
