package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kordat/lazyref/pkg/record"
)

func TestRegister(t *testing.T) {
	t.Run("remote column defaults to field name", func(t *testing.T) {
		r := New()
		require.NoError(t, r.Register("Post", "author", "Author", ""))

		d, ok := r.Lookup("Post", "author")
		require.True(t, ok)
		assert.Equal(t, "author", d.RemoteColumn)
		assert.Equal(t, "Author", d.Target)
	})

	t.Run("identical re-registration is a no-op", func(t *testing.T) {
		r := New()
		require.NoError(t, r.Register("Post", "author", "Author", "author_id"))
		assert.NoError(t, r.Register("Post", "author", "Author", "author_id"))
	})

	t.Run("conflicting target is rejected, prior state retained", func(t *testing.T) {
		r := New()
		require.NoError(t, r.Register("Post", "author", "Author", "author_id"))

		err := r.Register("Post", "author", "Editor", "author_id")
		assert.ErrorIs(t, err, ErrRegistrationConflict)

		d, _ := r.Lookup("Post", "author")
		assert.Equal(t, "Author", d.Target)
	})

	t.Run("column aliased by another field is rejected", func(t *testing.T) {
		r := New()
		require.NoError(t, r.Register("Post", "author", "Author", "author_id"))

		err := r.Register("Post", "editor", "Author", "author_id")
		assert.ErrorIs(t, err, ErrRegistrationConflict)

		_, ok := r.Lookup("Post", "editor")
		assert.False(t, ok)
	})

	t.Run("same column name on different classes is fine", func(t *testing.T) {
		r := New()
		require.NoError(t, r.Register("Post", "author", "Author", "author_id"))
		assert.NoError(t, r.Register("Comment", "author", "Author", "author_id"))
	})
}

func TestColumnTranslation(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("Post", "author", "Author", "author_id"))

	assert.Equal(t, "author", r.FieldFor("Post", "author_id"))
	assert.Equal(t, "author_id", r.ColumnFor("Post", "author"))

	// unmapped names pass through
	assert.Equal(t, "title", r.FieldFor("Post", "title"))
	assert.Equal(t, "title", r.ColumnFor("Post", "title"))
}

type fakeResolver struct {
	resolved []string
	assigned []string
}

func (f *fakeResolver) Resolve(ctx context.Context, r *record.Record, field string) (any, error) {
	f.resolved = append(f.resolved, field)
	v, _ := r.Value(field)
	return v, nil
}

func (f *fakeResolver) Assign(ctx context.Context, r *record.Record, field string, v any, track bool) error {
	f.assigned = append(f.assigned, field)
	r.Set(field, v)
	return nil
}

func TestModelAccessors(t *testing.T) {
	reg := New()
	m, err := reg.RegisterModel("Post",
		Association{Field: "author", Target: "Author", RemoteColumn: "author_id"},
		Association{Field: "editor", Target: "Author"},
	)
	require.NoError(t, err)

	resolver := &fakeResolver{}

	acc, ok := m.Accessor("author", resolver)
	require.True(t, ok)

	rec := record.NewFull("Post", "p1", map[string]any{"author": "x"})

	v, err := acc.Get(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "x", v)
	assert.Equal(t, []string{"author"}, resolver.resolved)

	require.NoError(t, acc.Set(context.Background(), rec, "y"))
	assert.Equal(t, []string{"author"}, resolver.assigned)

	_, ok = m.Accessor("title", resolver)
	assert.False(t, ok)
}

func TestRegisterModelConflict(t *testing.T) {
	reg := New()
	_, err := reg.RegisterModel("Post",
		Association{Field: "author", Target: "Author"},
		Association{Field: "author", Target: "Editor"},
	)
	assert.ErrorIs(t, err, ErrRegistrationConflict)
}
