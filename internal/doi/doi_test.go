package doi

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeFinder implements ResourceFinder over a fixed doi -> resource map.
type fakeFinder struct {
	byDOI  map[string]*ResourceRef
	max    string
	calls  int
	failOn string
}

func (f *fakeFinder) FindByDOI(ctx context.Context, doi string, excludeID string) (*ResourceRef, error) {
	f.calls++
	if f.failOn != "" && doi == f.failOn {
		return nil, errors.New("store unavailable")
	}
	r, ok := f.byDOI[doi]
	if !ok {
		return nil, nil
	}
	if excludeID != "" && r.ID == excludeID {
		return nil, nil
	}
	return r, nil
}

func (f *fakeFinder) MaxDOI(ctx context.Context) (string, error) {
	return f.max, nil
}

func taken(dois ...string) *fakeFinder {
	m := map[string]*ResourceRef{}
	for i, d := range dois {
		m[d] = &ResourceRef{ID: string(rune('a' + i)), Title: "Dataset " + d}
	}
	return &fakeFinder{byDOI: m}
}

func TestIsValidFormat(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"10.5880/test.001", true},
		{"10.5880/gfz.2024.001", true},
		{"10.1/x", true},
		{"not-a-doi", false},
		{"10.5880", false},  // missing suffix
		{"10.5880/", false}, // empty suffix
		{"", false},
		{"11.5880/test", false},
		{"10.abc/test", false},
	}
	for _, c := range cases {
		require.Equal(t, c.want, IsValidFormat(c.in), "input %q", c.in)
	}
}

func TestIsValidFormat_Idempotent(t *testing.T) {
	// pure check: repeated calls agree
	require.Equal(t, IsValidFormat("10.5880/test.001"), IsValidFormat("10.5880/test.001"))
	require.Equal(t, IsValidFormat("nope"), IsValidFormat("nope"))
}

func TestSuggestNext_SkipsTakenSuffixes(t *testing.T) {
	f := taken("10.5880/gfz.2024.001", "10.5880/gfz.2024.002")
	c := NewChecker(f, 0)
	got, err := c.SuggestNext(context.Background(), "10.5880/gfz.2024.001")
	require.NoError(t, err)
	require.Equal(t, "10.5880/gfz.2024.003", got)
}

func TestSuggestNext_PreservesZeroPadding(t *testing.T) {
	f := taken("10.5880/gfz.2024.007")
	c := NewChecker(f, 0)
	got, err := c.SuggestNext(context.Background(), "10.5880/gfz.2024.007")
	require.NoError(t, err)
	require.Equal(t, "10.5880/gfz.2024.008", got)
}

func TestSuggestNext_WidthGrowsOnOverflow(t *testing.T) {
	f := taken("10.5880/gfz.2024.999")
	c := NewChecker(f, 0)
	got, err := c.SuggestNext(context.Background(), "10.5880/gfz.2024.999")
	require.NoError(t, err)
	require.Equal(t, "10.5880/gfz.2024.1000", got)
}

func TestSuggestNext_NoTrailingDigits(t *testing.T) {
	f := taken("10.5880/gfz.no-numeric-suffix")
	c := NewChecker(f, 0)
	got, err := c.SuggestNext(context.Background(), "10.5880/gfz.no-numeric-suffix")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSuggestNext_MalformedInput(t *testing.T) {
	c := NewChecker(taken(), 0)
	got, err := c.SuggestNext(context.Background(), "not-a-doi")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSuggestNext_ProbeCapExhausted(t *testing.T) {
	// every candidate in the series is taken and the cap is tiny
	f := taken(
		"10.5880/x.1", "10.5880/x.2", "10.5880/x.3", "10.5880/x.4", "10.5880/x.5",
	)
	c := NewChecker(f, 3)
	got, err := c.SuggestNext(context.Background(), "10.5880/x.1")
	require.NoError(t, err)
	require.Empty(t, got)
	// never probes past the cap
	require.LessOrEqual(t, f.calls, 3)
}

func TestSuggestNext_Deterministic(t *testing.T) {
	f := taken("10.5880/gfz.2024.001", "10.5880/gfz.2024.002")
	c := NewChecker(f, 0)
	first, err := c.SuggestNext(context.Background(), "10.5880/gfz.2024.001")
	require.NoError(t, err)
	second, err := c.SuggestNext(context.Background(), "10.5880/gfz.2024.001")
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestSuggestNext_StoreErrorPropagates(t *testing.T) {
	f := taken("10.5880/x.1")
	f.failOn = "10.5880/x.2"
	c := NewChecker(f, 0)
	_, err := c.SuggestNext(context.Background(), "10.5880/x.1")
	require.Error(t, err)
}

func TestResourceByDOI_ExcludeSelf(t *testing.T) {
	f := &fakeFinder{byDOI: map[string]*ResourceRef{
		"10.5880/test.001": {ID: "5", Title: "Borehole Logs"},
	}}
	c := NewChecker(f, 0)

	got, err := c.ResourceByDOI(context.Background(), "10.5880/test.001", "5")
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = c.ResourceByDOI(context.Background(), "10.5880/test.001", "")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "5", got.ID)
}

func TestLastAssignedDOI(t *testing.T) {
	c := NewChecker(&fakeFinder{byDOI: map[string]*ResourceRef{}}, 0)
	last, err := c.LastAssignedDOI(context.Background())
	require.NoError(t, err)
	require.Empty(t, last)

	f := taken("10.5880/a.1")
	f.max = "10.5880/a.1"
	c = NewChecker(f, 0)
	last, err = c.LastAssignedDOI(context.Background())
	require.NoError(t, err)
	require.Equal(t, "10.5880/a.1", last)
}

func TestCheck_InvalidFormatShortCircuits(t *testing.T) {
	f := taken("10.5880/test.001")
	c := NewChecker(f, 0)
	res, err := c.Check(context.Background(), "garbage", "")
	require.NoError(t, err)
	require.False(t, res.IsValidFormat)
	require.False(t, res.Exists)
	// no store reads for malformed input
	require.Zero(t, f.calls)
}

func TestCheck_FreeDOI(t *testing.T) {
	c := NewChecker(taken(), 0)
	res, err := c.Check(context.Background(), "10.5880/free.001", "")
	require.NoError(t, err)
	require.True(t, res.IsValidFormat)
	require.False(t, res.Exists)
	require.Nil(t, res.ExistingResource)
	require.Empty(t, res.SuggestedDOI)
}

func TestCheck_CollisionEndToEnd(t *testing.T) {
	f := &fakeFinder{byDOI: map[string]*ResourceRef{
		"10.5880/gfz.2024.001": {ID: "7", Title: "Seismic Survey 2024"},
		"10.5880/gfz.2024.002": {ID: "8", Title: "b"},
		"10.5880/gfz.2024.003": {ID: "9", Title: "c"},
		"10.5880/gfz.2024.004": {ID: "10", Title: "d"},
		"10.5880/gfz.2024.005": {ID: "11", Title: "e"},
	}}
	f.max = "10.5880/gfz.2024.005"
	c := NewChecker(f, 0)

	res, err := c.Check(context.Background(), "10.5880/gfz.2024.001", "")
	require.NoError(t, err)
	require.True(t, res.IsValidFormat)
	require.True(t, res.Exists)
	require.Equal(t, &ResourceRef{ID: "7", Title: "Seismic Survey 2024"}, res.ExistingResource)
	require.Equal(t, "10.5880/gfz.2024.005", res.LastAssignedDOI)
	require.Equal(t, "10.5880/gfz.2024.006", res.SuggestedDOI)
}
