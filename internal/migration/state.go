package migration

// RunState identifies where a migration run currently stands. States advance
// strictly forward; RollingBack and Failed are reachable from any state after
// the first structural change.
type RunState string

const (
	RunStateStart           RunState = "Start"
	RunStateSettingsFetched RunState = "SettingsFetched"
	RunStateValidated       RunState = "Validated"
	RunStateTempCreated     RunState = "TempCreated"
	RunStateDrainedToTemp   RunState = "DrainedToTemp"
	RunStateOriginalDeleted RunState = "OriginalDeleted"
	RunStateFinalCreated    RunState = "FinalCreated"
	RunStateDrainedBack     RunState = "DrainedBack"
	RunStateTempDeleted     RunState = "TempDeleted"
	RunStateCompleted       RunState = "Completed"
	RunStateRollingBack     RunState = "RollingBack"
	RunStateFailed          RunState = "Failed"
)
