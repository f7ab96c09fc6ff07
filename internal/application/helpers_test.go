package application_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/linskybing/regscan/internal/config"
	"github.com/linskybing/regscan/internal/config/db"
	"github.com/linskybing/regscan/internal/domain/image"
	"github.com/linskybing/regscan/internal/domain/repo"
	"github.com/linskybing/regscan/internal/progress"
	"github.com/linskybing/regscan/internal/registry"
	"github.com/linskybing/regscan/internal/repository"
	"github.com/stretchr/testify/require"
)

func newTestRepos(t *testing.T) *repository.Repos {
	t.Helper()
	conn, err := db.Open(&config.Config{
		DBDriver: config.DriverSQLite,
		DBPath:   filepath.Join(t.TempDir(), "ecr-repos.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(conn) })
	return repository.NewRepositories(conn)
}

func summaryFor(name, region string) registry.RepositorySummary {
	return registry.RepositorySummary{
		Name:        name,
		URI:         "123456789012.dkr.ecr." + region + ".amazonaws.com/" + name,
		CreatedAt:   "2024-01-01T00:00:00.000Z",
		LastUpdated: "2024-06-01T00:00:00.000Z",
		Region:      region,
	}
}

// recorder captures every bus event in order.
type recorder struct {
	events []progress.Event
}

func (r *recorder) listen(ev progress.Event) error {
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) kinds() []progress.Kind {
	out := make([]progress.Kind, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

func (r *recorder) progress() []progress.Event {
	var out []progress.Event
	for _, ev := range r.events {
		if ev.Kind == progress.KindProgress {
			out = append(out, progress.Event{Kind: ev.Kind, RepositoryName: ev.RepositoryName, Progress: ev.Progress})
		}
	}
	return out
}

func seedNeverPulled(t *testing.T, repos *repository.Repos, name, region string, n int) []string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repos.Repository.Upsert(ctx, &repo.Repository{
		RepositoryName: name,
		RepositoryURI:  "uri/" + name,
		CreatedAt:      "2024-01-01T00:00:00.000Z",
		LastUpdated:    "2024-06-01T00:00:00.000Z",
		Region:         region,
	}))
	digests := make([]string, 0, n)
	for i := 0; i < n; i++ {
		d := digestFor(name, i)
		require.NoError(t, repos.Image.Upsert(ctx, &image.Image{
			RepositoryName:   name,
			ImageDigest:      d,
			ImageSizeInBytes: 1 << 20,
		}))
		digests = append(digests, d)
	}
	return digests
}
