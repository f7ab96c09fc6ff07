package image

// NeverPulledSummary groups the never-pulled images of one repository.
type NeverPulledSummary struct {
	RepositoryName   string `json:"repository_name"`
	Region           string `json:"region"`
	ImageCount       int64  `json:"image_count"`
	ImageSizeInBytes int64  `json:"image_size_in_bytes"`
}

// TagGroupCount is how many tags of a repository fell into one bucket.
type TagGroupCount struct {
	RepositoryName string `json:"repository_name"`
	Group          string `json:"group"`
	Count          int    `json:"count"`
}
