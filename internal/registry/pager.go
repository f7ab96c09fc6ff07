package registry

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ecr"
	"github.com/aws/aws-sdk-go/service/ecr/ecriface"
	"github.com/linskybing/regscan/pkg/utils"
)

var errNoMorePages = errors.New("no more pages")

// repositoryPager issues exactly one DescribeRepositories call per page and
// keeps only the continuation token between calls.
type repositoryPager struct {
	api     ecriface.ECRAPI
	profile string
	region  string
	next    *string
	done    bool
}

func (p *repositoryPager) More() bool {
	return !p.done
}

func (p *repositoryPager) NextPage(ctx context.Context) ([]RepositorySummary, error) {
	if p.done {
		return nil, errNoMorePages
	}
	out, err := p.api.DescribeRepositoriesWithContext(ctx, &ecr.DescribeRepositoriesInput{
		NextToken: p.next,
	})
	if err != nil {
		return nil, classify(opListRepositories, p.profile, p.region, err)
	}

	stamp := utils.NowISO()
	page := make([]RepositorySummary, 0, len(out.Repositories))
	for _, r := range out.Repositories {
		page = append(page, RepositorySummary{
			Name:        aws.StringValue(r.RepositoryName),
			URI:         aws.StringValue(r.RepositoryUri),
			CreatedAt:   utils.ISOTimePtr(r.CreatedAt),
			LastUpdated: stamp,
			Region:      p.region,
		})
	}

	p.next = out.NextToken
	p.done = aws.StringValue(p.next) == ""
	return page, nil
}
