package image

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupFirstKeywordWins(t *testing.T) {
	g, err := NewTagGrouper(nil)
	require.NoError(t, err)

	groups := g.Group([]string{"v1.2.3", "dev-build", "randomname"})
	assert.Equal(t, map[string]int{
		`v\d+\.\d+\.\d+`: 1,
		"dev":            1,
		"other":          1,
	}, groups)
}

func TestClassify(t *testing.T) {
	g, err := NewTagGrouper(nil)
	require.NoError(t, err)

	cases := map[string]string{
		"develop-42":    "dev",
		"QC-2024":       "qc",
		"latest":        "test",
		"release-1.0":   "release",
		"hotfix_login":  "hotfix",
		"v2.1":          `v\d+\.\d+`,
		"v10.20.30-rc1": `v\d+\.\d+\.\d+`,
		"sha-abcdef":    OtherGroup,
		"":              OtherGroup,
	}
	for tag, want := range cases {
		assert.Equal(t, want, g.Classify(tag), "tag %q", tag)
	}
}

func TestCustomKeywords(t *testing.T) {
	g, err := NewTagGrouper([]string{"rc", `^\d+$`})
	require.NoError(t, err)
	assert.Equal(t, "rc", g.Classify("1.0-RC2"))
	assert.Equal(t, `^\d+$`, g.Classify("1234"))
	assert.Equal(t, OtherGroup, g.Classify("dev"))

	_, err = NewTagGrouper([]string{"("})
	assert.Error(t, err)
}

func TestGroupByRepositoryOrdering(t *testing.T) {
	g, err := NewTagGrouper(nil)
	require.NoError(t, err)

	rows := g.GroupByRepository(map[string][]string{
		"web": {"misc", "release-1", "dev-1", "dev-2"},
		"api": {"v1.0.0"},
		"old": nil,
	})
	assert.Equal(t, []TagGroupCount{
		{RepositoryName: "api", Group: `v\d+\.\d+\.\d+`, Count: 1},
		{RepositoryName: "web", Group: "dev", Count: 2},
		{RepositoryName: "web", Group: "release", Count: 1},
		{RepositoryName: "web", Group: OtherGroup, Count: 1},
	}, rows)
}

func TestTagsRoundTrip(t *testing.T) {
	assert.Nil(t, SplitTags(""))
	assert.Equal(t, "a,b", JoinTags([]string{"a", "b"}))
	img := Image{ImageTags: "latest,v1"}
	assert.Equal(t, []string{"latest", "v1"}, img.Tags())

	empty := ""
	assert.True(t, (&Image{}).NeverPulled())
	assert.True(t, (&Image{LastRecordedPullTime: &empty}).NeverPulled())
	pulled := "2024-01-01T00:00:00.000Z"
	assert.False(t, (&Image{LastRecordedPullTime: &pulled}).NeverPulled())
}
