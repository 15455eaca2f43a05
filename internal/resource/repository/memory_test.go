package repository

import (
	"context"
	"testing"

	"github.com/rdhub/rdhub/backend/go-services/internal/resource"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepoCRUD(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	res := &resource.Resource{Title: "Seismic Survey 2024", Publisher: "GFZ"}
	id, err := r.Create(ctx, res)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Equal(t, resource.StateDraft, res.State)

	got, err := r.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Seismic Survey 2024", got.Title)

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	got.Title = "Seismic Survey 2024 (rev)"
	require.NoError(t, r.Update(ctx, got))
	got2, err := r.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Seismic Survey 2024 (rev)", got2.Title)

	require.NoError(t, r.Delete(ctx, id))
	_, err = r.Get(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepo_FindByDOI(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	res := &resource.Resource{Title: "Borehole Logs", DOI: "10.5880/test.001"}
	id, err := r.Create(ctx, res)
	require.NoError(t, err)

	got, err := r.FindByDOI(ctx, "10.5880/test.001", "")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, id, got.ID)

	// excluding the holder makes the DOI look free
	got, err = r.FindByDOI(ctx, "10.5880/test.001", id)
	require.NoError(t, err)
	require.Nil(t, got)

	// comparison is exact, not case-folded
	got, err = r.FindByDOI(ctx, "10.5880/TEST.001", "")
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = r.FindByDOI(ctx, "10.5880/test.999", "")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestMemoryRepo_MaxDOI(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()

	max, err := r.MaxDOI(ctx)
	require.NoError(t, err)
	require.Empty(t, max)

	_, err = r.Create(ctx, &resource.Resource{Title: "a", DOI: "10.5880/gfz.2024.001"})
	require.NoError(t, err)
	_, err = r.Create(ctx, &resource.Resource{Title: "b", DOI: "10.5880/gfz.2024.005"})
	require.NoError(t, err)
	_, err = r.Create(ctx, &resource.Resource{Title: "draft without doi"})
	require.NoError(t, err)

	max, err = r.MaxDOI(ctx)
	require.NoError(t, err)
	require.Equal(t, "10.5880/gfz.2024.005", max)
}

func TestMemoryRepo_UpdateKeepsDOIAndSlugWhenEmpty(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	id, err := r.Create(ctx, &resource.Resource{
		Title: "Pub",
		DOI:   "10.5880/keep.001",
		Slug:  "pub",
		State: resource.StatePublished,
	})
	require.NoError(t, err)

	// an update that omits doi/slug must not strip the stored values,
	// matching the Mongo repo's conditional $set
	require.NoError(t, r.Update(ctx, &resource.Resource{ID: id, Title: "Pub (rev)", State: resource.StatePublished}))

	got, err := r.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Pub (rev)", got.Title)
	require.Equal(t, "10.5880/keep.001", got.DOI)
	require.Equal(t, "pub", got.Slug)
}

func TestMemoryRepo_DuplicateDOIRejected(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	_, err := r.Create(ctx, &resource.Resource{Title: "a", DOI: "10.5880/dup.001"})
	require.NoError(t, err)

	_, err = r.Create(ctx, &resource.Resource{Title: "b", DOI: "10.5880/dup.001"})
	require.ErrorIs(t, err, ErrDuplicateDOI)

	// updating a record to a taken DOI fails the same way
	id, err := r.Create(ctx, &resource.Resource{Title: "c"})
	require.NoError(t, err)
	got, err := r.Get(ctx, id)
	require.NoError(t, err)
	got.DOI = "10.5880/dup.001"
	require.ErrorIs(t, r.Update(ctx, got), ErrDuplicateDOI)

	// re-saving a record with its own DOI is fine
	first, err := r.FindByDOI(ctx, "10.5880/dup.001", "")
	require.NoError(t, err)
	first.Title = "a (rev)"
	require.NoError(t, r.Update(ctx, first))
}
