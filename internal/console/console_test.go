package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/linskybing/regscan/internal/application"
	"github.com/linskybing/regscan/internal/domain/image"
	"github.com/linskybing/regscan/internal/domain/report"
	"github.com/linskybing/regscan/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "0 B", FormatBytes(0))
	assert.Contains(t, FormatBytes(3<<30), "GB")
}

func TestPromptConfirm(t *testing.T) {
	plan := []image.NeverPulledSummary{{RepositoryName: "app", Region: "us-east-1", ImageCount: 3, ImageSizeInBytes: 1 << 20}}

	cases := map[string]bool{
		"y\n":   true,
		" Y \n": true,
		"yes\n": false,
		"n\n":   false,
		"":      false,
	}
	for input, want := range cases {
		var out bytes.Buffer
		ok, err := NewPrompt(strings.NewReader(input), &out).Confirm(plan)
		require.NoError(t, err)
		assert.Equal(t, want, ok, "input %q", input)
		assert.Contains(t, out.String(), "app")
		assert.Contains(t, out.String(), "(y/n)")
	}
}

func TestPrinterStats(t *testing.T) {
	var out bytes.Buffer
	NewPrinter(&out).Stats(&report.Stats{
		Repositories:   2,
		Images:         5,
		TotalSize:      2 << 30,
		MonthlySavings: 0.2,
		NeverPulled:    []image.NeverPulledSummary{{RepositoryName: "stale", Region: "eu-west-1", ImageCount: 4}},
	})
	s := out.String()
	assert.Contains(t, s, "$0.20")
	assert.Contains(t, s, "stale")
	assert.Contains(t, s, "Largest repositories")
}

func TestPrinterCleanupCancelled(t *testing.T) {
	var out bytes.Buffer
	NewPrinter(&out).CleanupResult(&application.CleanupResult{})
	assert.Contains(t, out.String(), "cancelled")
}

func TestPrinterProgress(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out)
	require.NoError(t, p.Progress(progress.Progress("team/api", 50)))
	require.NoError(t, p.Progress(progress.Complete()))
	assert.Equal(t, "[ 50%] team/api\n", out.String())
}
