package repo

// Repository is one registry repository as last seen by a scan.
// The name is unique across every region that has been scanned.
type Repository struct {
	RepositoryName string `json:"repository_name" gorm:"column:repository_name;primaryKey"`
	RepositoryURI  string `json:"repository_uri" gorm:"column:repository_uri"`
	CreatedAt      string `json:"created_at" gorm:"column:created_at"`
	LastUpdated    string `json:"last_updated" gorm:"column:last_updated"`
	Region         string `json:"region" gorm:"column:region"`
}

func (Repository) TableName() string {
	return "repositories"
}
