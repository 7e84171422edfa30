package shared_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/git-statuses/internal/repos/shared"
)

func TestRepositoryStatusHasUnpushed(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		ahead    int
		behind   int
		expected bool
	}{
		{name: "in_sync", ahead: 0, behind: 0, expected: false},
		{name: "behind_only", ahead: 0, behind: 3, expected: false},
		{name: "ahead_only", ahead: 1, behind: 0, expected: true},
		{name: "diverged", ahead: 2, behind: 1, expected: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			status := shared.RepositoryStatus{Ahead: testCase.ahead, Behind: testCase.behind}
			require.Equal(t, testCase.expected, status.HasUnpushed())
			require.Equal(t, status.Ahead > 0, status.HasUnpushed())
		})
	}
}

func TestRepositoryStatusRemoteURLOrDefault(t *testing.T) {
	t.Parallel()

	remoteURL := "git@github.com:temirov/git-statuses.git"

	withRemote := shared.RepositoryStatus{RemoteURL: &remoteURL}
	require.Equal(t, remoteURL, withRemote.RemoteURLOrDefault("-"))

	withoutRemote := shared.RepositoryStatus{}
	require.Equal(t, "-", withoutRemote.RemoteURLOrDefault("-"))
}

func TestSortRepositoryStatusesIgnoresCase(t *testing.T) {
	t.Parallel()

	statuses := []shared.RepositoryStatus{
		{Name: "zeta", Path: "/work/zeta"},
		{Name: "Alpha", Path: "/work/Alpha"},
		{Name: "beta", Path: "/work/nested/beta"},
		{Name: "Beta", Path: "/work/Beta"},
	}

	sorted := shared.SortRepositoryStatuses(statuses)

	sortedNames := make([]string, 0, len(sorted))
	for _, status := range sorted {
		sortedNames = append(sortedNames, status.Path)
	}
	require.Equal(t, []string{"/work/Alpha", "/work/Beta", "/work/nested/beta", "/work/zeta"}, sortedNames)
	require.Equal(t, "zeta", statuses[0].Name)
}
