package queryparams

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateNormalizesWindow(t *testing.T) {
	p := ListParams{Page: 0, PerPage: -5}
	p.Validate()
	require.Equal(t, DefaultPage, p.Page)
	require.Equal(t, DefaultPerPage, p.PerPage)

	p = ListParams{Page: 3, PerPage: 500}
	p.Validate()
	require.Equal(t, 3, p.Page)
	require.Equal(t, MaxPerPage, p.PerPage)
}

func TestOffset(t *testing.T) {
	p := ListParams{Page: 1, PerPage: 20}
	require.Equal(t, 0, p.Offset())

	p = ListParams{Page: 4, PerPage: 25}
	require.Equal(t, 75, p.Offset())
}

func TestOrderDirectionDefaultsToAsc(t *testing.T) {
	require.Equal(t, "asc", (&ListParams{}).OrderDirection())
	require.Equal(t, "asc", (&ListParams{OrderBy: "sideways"}).OrderDirection())
	require.Equal(t, "desc", (&ListParams{OrderBy: "desc"}).OrderDirection())
	require.Equal(t, "desc", (&ListParams{OrderBy: "DESC"}).OrderDirection())
}

func TestCalculateTotalPages(t *testing.T) {
	require.Equal(t, 0, CalculateTotalPages(0, 20))
	require.Equal(t, 1, CalculateTotalPages(1, 20))
	require.Equal(t, 1, CalculateTotalPages(20, 20))
	require.Equal(t, 2, CalculateTotalPages(21, 20))
	require.Equal(t, 0, CalculateTotalPages(10, 0))
}
