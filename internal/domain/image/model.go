package image

import (
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var jsonNull = datatypes.JSON("null")

// TagSeparator joins the ordered tag list into the image_tags column.
const TagSeparator = ","

// Image is one image of a repository, keyed by (repository name, digest).
// LastRecordedPullTime is nil or empty when the registry never recorded a pull.
type Image struct {
	ID                       uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	RepositoryName           string         `json:"repository_name" gorm:"column:repository_name;uniqueIndex:idx_images_repository_digest"`
	RegistryID               string         `json:"registry_id" gorm:"column:registry_id"`
	ImageDigest              string         `json:"image_digest" gorm:"column:image_digest;uniqueIndex:idx_images_repository_digest"`
	ImageTags                string         `json:"image_tags" gorm:"column:image_tags"`
	ImageSizeInBytes         int64          `json:"image_size_in_bytes" gorm:"column:image_size_in_bytes"`
	ImagePushedAt            string         `json:"image_pushed_at" gorm:"column:image_pushed_at"`
	ImageScanStatus          datatypes.JSON `json:"image_scan_status" gorm:"column:image_scan_status"`
	ImageScanFindingsSummary datatypes.JSON `json:"image_scan_findings_summary" gorm:"column:image_scan_findings_summary"`
	ImageManifestMediaType   string         `json:"image_manifest_media_type" gorm:"column:image_manifest_media_type"`
	ArtifactMediaType        string         `json:"artifact_media_type" gorm:"column:artifact_media_type"`
	LastRecordedPullTime     *string        `json:"last_recorded_pull_time" gorm:"column:last_recorded_pull_time"`
}

func (Image) TableName() string {
	return "images"
}

// BeforeSave stores absent scan blobs as JSON null rather than SQL NULL.
func (i *Image) BeforeSave(*gorm.DB) error {
	if len(i.ImageScanStatus) == 0 {
		i.ImageScanStatus = jsonNull
	}
	if len(i.ImageScanFindingsSummary) == 0 {
		i.ImageScanFindingsSummary = jsonNull
	}
	return nil
}

// NeverPulled follows the canonical rule: a nil or empty pull time means no pull was recorded.
func (i *Image) NeverPulled() bool {
	return i.LastRecordedPullTime == nil || *i.LastRecordedPullTime == ""
}

// Tags returns the stored tag list in order.
func (i *Image) Tags() []string {
	return SplitTags(i.ImageTags)
}

func JoinTags(tags []string) string {
	return strings.Join(tags, TagSeparator)
}

func SplitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, TagSeparator)
}
