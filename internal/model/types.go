package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunParams is the full configuration of one simulation run.
type RunParams struct {
	NumAgents     int     `json:"num_agents"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	DirtyFraction float64 `json:"dirty_fraction"`
	MaxSteps      int     `json:"max_steps"`
	Seed          uint64  `json:"seed"`
}

// StepSample is one point of the per-tick metric series.
type StepSample struct {
	Step         int     `json:"step"`
	CleanPercent float64 `json:"clean_percent"`
}

// RunRecord is the persisted outcome of a completed run. AllCleanedStep
// is -1 when the run hit MaxSteps without reaching 100% clean.
type RunRecord struct {
	VersionedRecord
	ID                string    `json:"id"`
	CreatedAtUTC      string    `json:"created_at_utc"`
	Params            RunParams `json:"params"`
	FinalStep         int       `json:"final_step"`
	FinalCleanPercent float64   `json:"final_clean_percent"`
	AllCleanedStep    int       `json:"all_cleaned_step"`
	CleanedByAgent    []int     `json:"cleaned_by_agent"`
}

// SweepPoint summarizes the run executed for one agent count.
type SweepPoint struct {
	AgentCount        int       `json:"agent_count"`
	RunID             string    `json:"run_id"`
	StepsToAllClean   int       `json:"steps_to_all_clean"` // -1 if never reached
	FinalCleanPercent float64   `json:"final_clean_percent"`
	Milestones        []float64 `json:"milestones"` // clean percent at MilestoneSteps
}

// MilestoneSteps are the step indexes reported by sweep summaries.
var MilestoneSteps = []int{500, 1000, 1500}

// SweepRecord is the persisted outcome of an agent-count sweep.
type SweepRecord struct {
	VersionedRecord
	ID           string       `json:"id"`
	CreatedAtUTC string       `json:"created_at_utc"`
	Base         RunParams    `json:"base"`
	AgentCounts  []int        `json:"agent_counts"`
	Points       []SweepPoint `json:"points"`
}
