package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStates(t *testing.T) {
	t.Run("unfetched needs fetch for every field", func(t *testing.T) {
		r := NewUnfetched("Post", "p1")
		assert.Equal(t, StateUnfetched, r.State())
		assert.True(t, r.FetchNeeded("title"))
		assert.False(t, r.Knows("title"))
	})

	t.Run("selective knows only its field set", func(t *testing.T) {
		r := NewSelective("Post", "p1", map[string]any{"title": "hello"})
		assert.True(t, r.Knows("title"))
		assert.False(t, r.FetchNeeded("title"))
		assert.True(t, r.FetchNeeded("author"))
		assert.Equal(t, []string{"title"}, r.Known())
	})

	t.Run("full never needs a fetch", func(t *testing.T) {
		r := NewFull("Post", "p1", map[string]any{"title": "hello"})
		assert.False(t, r.FetchNeeded("anything"))
		assert.True(t, r.Knows("anything"))
	})

	t.Run("mark known extends the selective set", func(t *testing.T) {
		r := NewSelective("Post", "p1", map[string]any{"title": "hello"})
		r.MarkKnown("author")
		assert.False(t, r.FetchNeeded("author"))
	})
}

func TestFetchStateTransitions(t *testing.T) {
	r := NewUnfetched("Post", "p1")
	require.NoError(t, r.SetState(StateSelective))
	require.NoError(t, r.SetState(StateFull))

	// never less fetched than before
	err := r.SetState(StateSelective)
	assert.Error(t, err)
	assert.Equal(t, StateFull, r.State())
}

func TestReferenceMaterialize(t *testing.T) {
	t.Run("bare pointer materializes unfetched", func(t *testing.T) {
		ref := NewReference("Author", "a1")
		assert.False(t, ref.HasData())

		rec := ref.Materialize()
		assert.Equal(t, StateUnfetched, rec.State())
		assert.Equal(t, "Author", rec.Class())
		assert.Equal(t, "a1", rec.ID())

		// cached; repeated reads observe one instance
		assert.Same(t, rec, ref.Materialize())
	})

	t.Run("embedded snapshot is returned as typed record", func(t *testing.T) {
		snap := NewSelective("Author", "a1", map[string]any{"name": "X"})
		ref := NewReferenceWithSnapshot("Author", "a1", snap)
		assert.True(t, ref.HasData())

		rec := ref.Materialize()
		v, ok := rec.Value("name")
		require.True(t, ok)
		assert.Equal(t, "X", v)
	})
}

func TestReferenceFromPayload(t *testing.T) {
	t.Run("bare identity payload", func(t *testing.T) {
		ref, ok := ReferenceFromPayload(map[string]any{
			"__type": "reference",
			"class":  "Author",
			"id":     "a1",
		}, "")
		require.True(t, ok)
		assert.Equal(t, "Author/a1", ref.Identity().String())
		assert.False(t, ref.HasData())
	})

	t.Run("class tag overrides declared target", func(t *testing.T) {
		ref, ok := ReferenceFromPayload(map[string]any{
			"class": "Editor",
			"id":    "a1",
		}, "Author")
		require.True(t, ok)
		assert.Equal(t, "Editor", ref.Class())
	})

	t.Run("declared target fills missing class", func(t *testing.T) {
		ref, ok := ReferenceFromPayload(map[string]any{"id": "a1"}, "Author")
		require.True(t, ok)
		assert.Equal(t, "Author", ref.Class())
	})

	t.Run("embedded fields become a selective snapshot", func(t *testing.T) {
		ref, ok := ReferenceFromPayload(map[string]any{
			"id":     "a1",
			"fields": map[string]any{"name": "X"},
		}, "Author")
		require.True(t, ok)
		require.True(t, ref.HasData())
		assert.Equal(t, StateSelective, ref.Materialize().State())
	})

	t.Run("non identity shapes are rejected", func(t *testing.T) {
		_, ok := ReferenceFromPayload("a1", "Author")
		assert.False(t, ok)

		_, ok = ReferenceFromPayload(map[string]any{"name": "X"}, "Author")
		assert.False(t, ok)

		_, ok = ReferenceFromPayload(map[string]any{"id": "a1"}, "")
		assert.False(t, ok)
	})
}

func TestUnsetSentinel(t *testing.T) {
	assert.True(t, IsUnset(Unset))
	assert.True(t, IsUnset(map[string]any{"__op": "unset"}))
	assert.False(t, IsUnset(nil))
	assert.False(t, IsUnset(map[string]any{"id": "a1"}))
}
