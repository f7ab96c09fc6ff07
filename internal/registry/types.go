package registry

import "encoding/json"

// RepositorySummary is one repository as reported by the registry.
// LastUpdated is stamped by the client when the page was fetched.
type RepositorySummary struct {
	Name        string `json:"repositoryName"`
	URI         string `json:"repositoryUri"`
	CreatedAt   string `json:"createdAt"`
	LastUpdated string `json:"lastUpdated"`
	Region      string `json:"region"`
}

// ImageSummary is one image of a repository. Time fields are ISO-8601 strings,
// empty when the registry did not report them.
type ImageSummary struct {
	RegistryID           string          `json:"registryId"`
	Digest               string          `json:"imageDigest"`
	Tags                 []string        `json:"imageTags"`
	SizeInBytes          int64           `json:"imageSizeInBytes"`
	PushedAt             string          `json:"imagePushedAt"`
	ScanStatus           json.RawMessage `json:"imageScanStatus,omitempty"`
	ScanFindingsSummary  json.RawMessage `json:"imageScanFindingsSummary,omitempty"`
	ManifestMediaType    string          `json:"imageManifestMediaType"`
	ArtifactMediaType    string          `json:"artifactMediaType"`
	LastRecordedPullTime string          `json:"lastRecordedPullTime"`
}

type DeleteFailure struct {
	Digest string `json:"imageDigest"`
	Code   string `json:"failureCode"`
	Reason string `json:"failureReason"`
}

// DeleteResult reports which digests one batch delete removed and which it could not.
type DeleteResult struct {
	Deleted  []string        `json:"deleted"`
	Failures []DeleteFailure `json:"failures"`
}

// FailedDigests lists the digests of every failure.
func (r *DeleteResult) FailedDigests() []string {
	out := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		out = append(out, f.Digest)
	}
	return out
}
