package scanerror

// UnknownRepository is recorded when a failing entry has no usable name.
const UnknownRepository = "unknown"

// ErrorRecord is one entry of the append-only scan error log.
type ErrorRecord struct {
	ID             uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	RepositoryName string `json:"repository_name" gorm:"column:repository_name"`
	ErrorMessage   string `json:"error_message" gorm:"column:error_message"`
	Timestamp      string `json:"timestamp" gorm:"column:timestamp"`
}

func (ErrorRecord) TableName() string {
	return "errors"
}
