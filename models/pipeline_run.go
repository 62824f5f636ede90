package models

// Run statuses for PipelineRun.Status.
const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run triggers for PipelineRun.Trigger.
const (
	RunTriggerAPI       = "api"
	RunTriggerScheduler = "scheduler"
)

// PipelineRun is the bookkeeping record for one execution of the
// reconciliation pipeline. It corresponds to the 'pipeline_runs' table.
type PipelineRun struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID    string `gorm:"uniqueIndex;not null" json:"uuid"`
	Status  string `gorm:"not null;default:pending" json:"status"`
	Trigger string `gorm:"not null" json:"trigger"`

	PeopleTotal     int `json:"people_total"`
	PartnersMatched int `json:"partners_matched"`
	NameOnlyMatched int `json:"name_only_matched"`
	FoundersFound   int `json:"founders_found"`
	PartnerRecords  int `json:"partner_records"`
	CompanyRecords  int `json:"company_records"`

	Error *string `json:"error,omitempty"`

	StartedAt  *int64 `json:"started_at,omitempty"`  // Unix timestamp, nullable
	FinishedAt *int64 `json:"finished_at,omitempty"` // Unix timestamp, nullable
	CreatedAt  int64  `gorm:"not null" json:"created_at"`
	UpdatedAt  int64  `gorm:"not null" json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (PipelineRun) TableName() string {
	return "pipeline_runs"
}
