package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/linskybing/regscan/internal/config"
	"github.com/linskybing/regscan/pkg/utils"
	minioSDK "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"k8s.io/klog/v2"
)

// ObjectStore is the part of the minio client the uploader needs.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minioSDK.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minioSDK.PutObjectOptions) (minioSDK.UploadInfo, error)
}

// NewMinioClient connects to the S3-compatible endpoint from cfg.
func NewMinioClient(cfg *config.Config) (*minioSDK.Client, error) {
	client, err := minioSDK.New(cfg.MinioEndpoint, &minioSDK.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to object store %s: %w", cfg.MinioEndpoint, err)
	}
	return client, nil
}

// Uploader copies the store file into a bucket under a timestamped key.
type Uploader struct {
	client ObjectStore
	bucket string
}

func NewUploader(client ObjectStore, bucket string) *Uploader {
	return &Uploader{client: client, bucket: bucket}
}

// ObjectName is the key a snapshot of path is stored under.
func ObjectName(path string) string {
	return fmt.Sprintf("snapshots/%s/%s", utils.Now().UTC().Format("20060102T150405Z"), filepath.Base(path))
}

func (u *Uploader) ensureBucket(ctx context.Context) error {
	exists, err := u.client.BucketExists(ctx, u.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", u.bucket, err)
	}
	if exists {
		klog.V(2).Infof("Bucket already exists: %s", u.bucket)
		return nil
	}
	if err := u.client.MakeBucket(ctx, u.bucket, minioSDK.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", u.bucket, err)
	}
	klog.Infof("Bucket created: %s", u.bucket)
	return nil
}

// Upload stores the file at path and returns the object key.
func (u *Uploader) Upload(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat snapshot %s: %w", path, err)
	}
	if info.IsDir() {
		return "", errors.New("snapshot path is a directory: " + path)
	}
	if err := u.ensureBucket(ctx); err != nil {
		return "", err
	}
	name := ObjectName(path)
	up, err := u.client.FPutObject(ctx, u.bucket, name, path, minioSDK.PutObjectOptions{
		ContentType: "application/vnd.sqlite3",
	})
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}
	klog.Infof("Uploaded %s to %s/%s (%d bytes)", path, u.bucket, name, up.Size)
	return name, nil
}
