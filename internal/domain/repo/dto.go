package repo

// RepositoryWithCount is a repository row joined with the number of images stored for it.
type RepositoryWithCount struct {
	Repository
	ImageCount int64 `json:"image_count"`
}

// RepositorySize ranks repositories by the summed size of their images.
type RepositorySize struct {
	RepositoryName string `json:"repository_name"`
	Region         string `json:"region"`
	TotalSize      int64  `json:"total_size"`
}

// RepositoryImageCount ranks repositories by how many images they hold.
type RepositoryImageCount struct {
	RepositoryName string `json:"repository_name"`
	Region         string `json:"region"`
	ImageCount     int64  `json:"image_count"`
}
