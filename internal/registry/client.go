package registry

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/private/protocol/json/jsonutil"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	"github.com/aws/aws-sdk-go/service/ecr"
	"github.com/aws/aws-sdk-go/service/ecr/ecriface"
	"github.com/linskybing/regscan/pkg/utils"
	"k8s.io/klog/v2"
)

const (
	opListRegions      = "list regions"
	opListRepositories = "list repositories"
	opListImages       = "list images"
	opDeleteImages     = "delete images"
)

//go:generate mockgen -source=client.go -destination=mock_registry/mock_client.go -package=mock_registry

// Client is the registry surface the scanner and cleanup depend on.
type Client interface {
	ListRegions(ctx context.Context, profile, region string) ([]string, error)
	ListRepositories(ctx context.Context, profile, region string) (RepositoryPager, error)
	ListImages(ctx context.Context, profile, region, repositoryName string) ([]ImageSummary, error)
	DeleteImages(ctx context.Context, profile, region, repositoryName string, digests []string) (*DeleteResult, error)
}

// RepositoryPager walks repositories one registry page at a time.
type RepositoryPager interface {
	More() bool
	NextPage(ctx context.Context) ([]RepositorySummary, error)
}

type ECRFactory func(profile, region string) (ecriface.ECRAPI, error)
type EC2Factory func(profile, region string) (ec2iface.EC2API, error)

type Option func(*ECRClient)

func WithECRFactory(f ECRFactory) Option {
	return func(c *ECRClient) { c.newECR = f }
}

func WithEC2Factory(f EC2Factory) Option {
	return func(c *ECRClient) { c.newEC2 = f }
}

// ECRClient implements Client over the AWS SDK.
type ECRClient struct {
	defaultRegion string
	newECR        ECRFactory
	newEC2        EC2Factory
}

// NewECRClient returns a client whose region discovery calls go to defaultRegion.
func NewECRClient(defaultRegion string, opts ...Option) *ECRClient {
	cache := newSessionCache()
	c := &ECRClient{
		defaultRegion: defaultRegion,
		newECR: func(profile, region string) (ecriface.ECRAPI, error) {
			sess, err := cache.get(profile, region)
			if err != nil {
				return nil, err
			}
			return ecr.New(sess), nil
		},
		newEC2: func(profile, region string) (ec2iface.EC2API, error) {
			sess, err := cache.get(profile, region)
			if err != nil {
				return nil, err
			}
			return ec2.New(sess), nil
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListRegions returns the regions enabled for the account. A non-empty region
// narrows the call to that region, which also validates it.
func (c *ECRClient) ListRegions(ctx context.Context, profile, region string) ([]string, error) {
	target := region
	if target == "" {
		target = c.defaultRegion
	}
	api, err := c.newEC2(profile, target)
	if err != nil {
		return nil, classify(opListRegions, profile, target, err)
	}

	input := &ec2.DescribeRegionsInput{}
	if region != "" {
		input.RegionNames = aws.StringSlice([]string{region})
	}
	out, err := api.DescribeRegionsWithContext(ctx, input)
	if err != nil {
		return nil, classify(opListRegions, profile, target, err)
	}

	regions := make([]string, 0, len(out.Regions))
	for _, r := range out.Regions {
		regions = append(regions, aws.StringValue(r.RegionName))
	}
	klog.V(2).Infof("Discovered %d regions", len(regions))
	return regions, nil
}

// ListRepositories returns a pager positioned before the first page.
func (c *ECRClient) ListRepositories(ctx context.Context, profile, region string) (RepositoryPager, error) {
	api, err := c.newECR(profile, region)
	if err != nil {
		return nil, classify(opListRepositories, profile, region, err)
	}
	return &repositoryPager{api: api, profile: profile, region: region}, nil
}

// ListImages fetches every page of the repository's images. A failed page
// discards what was fetched before it.
func (c *ECRClient) ListImages(ctx context.Context, profile, region, repositoryName string) ([]ImageSummary, error) {
	api, err := c.newECR(profile, region)
	if err != nil {
		return nil, classify(opListImages, profile, region, err)
	}

	var (
		images []ImageSummary
		next   *string
	)
	for {
		out, err := api.DescribeImagesWithContext(ctx, &ecr.DescribeImagesInput{
			RepositoryName: aws.String(repositoryName),
			NextToken:      next,
		})
		if err != nil {
			return nil, classify(opListImages, profile, region, err)
		}
		for _, d := range out.ImageDetails {
			images = append(images, toImageSummary(d))
		}
		next = out.NextToken
		if aws.StringValue(next) == "" {
			return images, nil
		}
	}
}

// DeleteImages removes up to MaxDeleteBatch digests in one call.
func (c *ECRClient) DeleteImages(ctx context.Context, profile, region, repositoryName string, digests []string) (*DeleteResult, error) {
	if len(digests) == 0 {
		return &DeleteResult{}, nil
	}
	if len(digests) > MaxDeleteBatch {
		return nil, ErrBatchTooLarge
	}
	api, err := c.newECR(profile, region)
	if err != nil {
		return nil, classify(opDeleteImages, profile, region, err)
	}

	ids := make([]*ecr.ImageIdentifier, 0, len(digests))
	for _, d := range digests {
		ids = append(ids, &ecr.ImageIdentifier{ImageDigest: aws.String(d)})
	}
	out, err := api.BatchDeleteImageWithContext(ctx, &ecr.BatchDeleteImageInput{
		RepositoryName: aws.String(repositoryName),
		ImageIds:       ids,
	})
	if err != nil {
		return nil, classify(opDeleteImages, profile, region, err)
	}

	res := &DeleteResult{}
	for _, id := range out.ImageIds {
		res.Deleted = append(res.Deleted, aws.StringValue(id.ImageDigest))
	}
	for _, f := range out.Failures {
		failure := DeleteFailure{
			Code:   aws.StringValue(f.FailureCode),
			Reason: aws.StringValue(f.FailureReason),
		}
		if f.ImageId != nil {
			failure.Digest = aws.StringValue(f.ImageId.ImageDigest)
		}
		res.Failures = append(res.Failures, failure)
	}
	return res, nil
}

func toImageSummary(d *ecr.ImageDetail) ImageSummary {
	return ImageSummary{
		RegistryID:           aws.StringValue(d.RegistryId),
		Digest:               aws.StringValue(d.ImageDigest),
		Tags:                 aws.StringValueSlice(d.ImageTags),
		SizeInBytes:          aws.Int64Value(d.ImageSizeInBytes),
		PushedAt:             utils.ISOTimePtr(d.ImagePushedAt),
		ScanStatus:           rawJSON(d.ImageScanStatus),
		ScanFindingsSummary:  rawJSON(d.ImageScanFindingsSummary),
		ManifestMediaType:    aws.StringValue(d.ImageManifestMediaType),
		ArtifactMediaType:    aws.StringValue(d.ArtifactMediaType),
		LastRecordedPullTime: utils.ISOTimePtr(d.LastRecordedPullTime),
	}
}

// rawJSON encodes an SDK shape with its wire field names, omitting unset fields.
func rawJSON(v any) json.RawMessage {
	switch t := v.(type) {
	case *ecr.ImageScanStatus:
		if t == nil {
			return nil
		}
	case *ecr.ImageScanFindingsSummary:
		if t == nil {
			return nil
		}
	}
	raw, err := jsonutil.BuildJSON(v)
	if err != nil {
		klog.V(4).Infof("Dropping unencodable scan blob: %v", err)
		return nil
	}
	return raw
}
