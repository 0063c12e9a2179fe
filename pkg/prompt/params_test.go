package prompt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListParamsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		params   ListParams
		wantSort string
		wantErr  error
	}{
		{
			name:     "default sort",
			params:   ListParams{ProjectID: "p1"},
			wantSort: SortUpdatedDesc,
		},
		{
			name:     "created sort kept",
			params:   ListParams{ProjectID: "p1", Sort: SortCreatedDesc},
			wantSort: SortCreatedDesc,
		},
		{
			name:    "missing project",
			params:  ListParams{},
			wantErr: ErrProjectIDEmpty,
		},
		{
			name:    "unknown sort",
			params:  ListParams{ProjectID: "p1", Sort: "title_asc"},
			wantErr: ErrInvalidSort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := tt.params
			err := p.Validate()
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantSort, p.Sort)
		})
	}
}

func TestUpsertEntryParamsValidate(t *testing.T) {
	t.Parallel()

	p := UpsertEntryParams{BodyMarkdown: "hi"}
	assert.ErrorIs(t, p.Validate(), ErrProjectIDEmpty)

	p.ID = "e1"
	assert.NoError(t, p.Validate(), "updates do not need a project id")

	p.BodyMarkdown = ""
	assert.ErrorIs(t, p.Validate(), ErrBodyEmpty)
}

func TestUniqueIDs(t *testing.T) {
	t.Parallel()

	got := UniqueIDs([]string{"a", "", "b", "a", "c", "b"})
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Empty(t, UniqueIDs(nil))
}

func TestEntryDisplayTitle(t *testing.T) {
	t.Parallel()

	e := &Entry{}
	assert.Equal(t, "untitled", e.DisplayTitle())

	e.Title = StrPtr("")
	assert.Equal(t, "untitled", e.DisplayTitle())

	e.Title = StrPtr("Review")
	assert.Equal(t, "Review", e.DisplayTitle())
}

func TestNullIfEmpty(t *testing.T) {
	t.Parallel()

	assert.Nil(t, NullIfEmpty(nil))
	assert.Nil(t, NullIfEmpty(StrPtr("")))
	assert.Equal(t, "x", *NullIfEmpty(StrPtr("x")))
}
