package gitref

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spachava753/cargo-install/internal/models"
)

const testRepo = "https://github.com/example/tool.git"

type fakeLister struct {
	refs  *RefSet
	err   error
	calls int
}

func (f *fakeLister) ListRefs(ctx context.Context, repository string) (*RefSet, error) {
	f.calls++
	return f.refs, f.err
}

func testRefs() *RefSet {
	return &RefSet{
		Head:     "headsha",
		Tags:     map[string]string{"v1.0.0": "tagsha"},
		Branches: map[string]string{"main": "headsha", "dev": "devsha"},
	}
}

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name      string
		selector  models.GitSelector
		want      string
		wantCalls int
		wantErr   error
	}{
		{
			name:      "explicit commit wins over tag",
			selector:  models.GitSelector{Repository: testRepo, Commit: "0123456789abcdef", Tag: "v1.0.0"},
			want:      "0123456789abcdef",
			wantCalls: 0,
		},
		{
			name:      "explicit commit is not verified",
			selector:  models.GitSelector{Repository: testRepo, Commit: "doesnotexist"},
			want:      "doesnotexist",
			wantCalls: 0,
		},
		{
			name:      "tag wins over branch",
			selector:  models.GitSelector{Repository: testRepo, Tag: "v1.0.0", Branch: "dev"},
			want:      "tagsha",
			wantCalls: 1,
		},
		{
			name:      "branch",
			selector:  models.GitSelector{Repository: testRepo, Branch: "dev"},
			want:      "devsha",
			wantCalls: 1,
		},
		{
			name:      "head",
			selector:  models.GitSelector{Repository: testRepo},
			want:      "headsha",
			wantCalls: 1,
		},
		{
			name:      "missing tag",
			selector:  models.GitSelector{Repository: testRepo, Tag: "v9.9.9"},
			wantCalls: 1,
			wantErr:   models.ErrNotFound,
		},
		{
			name:      "missing branch",
			selector:  models.GitSelector{Repository: testRepo, Branch: "gone"},
			wantCalls: 1,
			wantErr:   models.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := &fakeLister{refs: testRefs()}
			got, err := NewResolver(lister).Resolve(context.Background(), tt.selector)

			assert.Equal(t, tt.wantCalls, lister.calls)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.GitCommit{Repository: testRepo, Commit: tt.want}, got)
		})
	}
}

func TestResolver_ErrorNamesRef(t *testing.T) {
	lister := &fakeLister{refs: testRefs()}
	_, err := NewResolver(lister).Resolve(context.Background(), models.GitSelector{Repository: testRepo, Tag: "v9.9.9"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "v9.9.9")
	assert.Contains(t, err.Error(), testRepo)
}

func TestResolver_ListerFailure(t *testing.T) {
	listErr := models.NewError(models.KindFetch, testRepo, "git ls-remote failed")
	lister := &fakeLister{err: listErr}

	_, err := NewResolver(lister).Resolve(context.Background(), models.GitSelector{Repository: testRepo})
	assert.True(t, errors.Is(err, models.ErrFetch))
}

func TestNewLister(t *testing.T) {
	l, err := NewLister(BackendCLI, "/usr/bin/git")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/git", l.(*CommandLister).Git)

	l, err = NewLister(BackendGoGit, "")
	require.NoError(t, err)
	assert.IsType(t, &RemoteLister{}, l)

	_, err = NewLister("svn", "")
	assert.Error(t, err)
}
