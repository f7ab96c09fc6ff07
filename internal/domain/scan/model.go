package scan

// Status of a scan requested through the API.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// Scan tracks the lifecycle of one server-side scan.
type Scan struct {
	ID             uint    `json:"id" gorm:"primaryKey;autoIncrement"`
	RepositoryName *string `json:"repositoryName"`
	Profile        string  `json:"profile"`
	Region         string  `json:"region"`
	StartedAt      string  `json:"startedAt"`
	CompletedAt    *string `json:"completedAt"`
	Status         Status  `json:"status" gorm:"default:pending"`
	ErrorMessage   *string `json:"errorMessage"`
}

func (Scan) TableName() string {
	return "scans"
}

// Finished reports whether the scan reached a terminal status.
func (s *Scan) Finished() bool {
	return s.Status == StatusSuccess || s.Status == StatusError
}
