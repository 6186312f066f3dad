package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedDataset(n int) *Dataset {
	return &Dataset{
		Columns: []Column{{Name: "n", Label: "N", Transform: TransformNumber, Processors: []ProcessorKind{ProcessorMax}}},
		Records: numbered(n),
	}
}

func TestNewView_RejectsBadPageSize(t *testing.T) {
	_, err := NewView(numberedDataset(3), 0)
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	_, err = NewView(nil, 10)
	require.ErrorAs(t, err, &ce)
}

func TestView_SearchClearsSort(t *testing.T) {
	v, err := NewView(fundingDataset(t), 2)
	require.NoError(t, err)

	v, err = v.ClickHeader("numEmps")
	require.NoError(t, err)
	v, err = v.GoTo(1)
	require.NoError(t, err)
	assert.True(t, v.Sort.Active())

	v = v.Search("az")
	assert.False(t, v.Sort.Active())
	assert.Equal(t, 0, v.Page)
	assert.Equal(t, []int{0, 3}, indexes(v.Filtered))
	assert.Equal(t, 2, v.Filter.Matched)
	assert.Len(t, v.All, 4, "All is never narrowed")
}

func TestView_ClickHeaderToggles(t *testing.T) {
	v, err := NewView(fundingDataset(t), 10)
	require.NoError(t, err)

	v, err = v.ClickHeader("numEmps")
	require.NoError(t, err)
	assert.Equal(t, Ascending, v.Sort.Direction)
	assert.Equal(t, []int{2, 1, 3, 0}, indexes(v.Filtered))

	v, err = v.ClickHeader("numEmps")
	require.NoError(t, err)
	assert.Equal(t, Descending, v.Sort.Direction)
	assert.Equal(t, []int{0, 3, 1, 2}, indexes(v.Filtered))

	v, err = v.ClickHeader("numEmps")
	require.NoError(t, err)
	assert.Equal(t, Ascending, v.Sort.Direction)

	_, err = v.ClickHeader("nope")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	v = v.ClearSort()
	assert.Equal(t, []int{0, 1, 2, 3}, indexes(v.Filtered))
}

func TestView_GoToOutOfRangeKeepsPage(t *testing.T) {
	v, err := NewView(numberedDataset(25), 10)
	require.NoError(t, err)
	v, err = v.GoTo(2)
	require.NoError(t, err)
	assert.Len(t, v.Visible(), 5)

	same, err := v.GoTo(3)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
	assert.Equal(t, 2, same.Page)

	same, err = v.GoTo(-5)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
	assert.Equal(t, 2, same.Page)

	same, err = v.GoTo(AllPages)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
	assert.Equal(t, 2, same.Page)

	all := v.ShowAll()
	assert.Len(t, all.Visible(), 25)
	assert.Empty(t, all.Current().Window)
}

func TestView_GoToBeforeFirstPage(t *testing.T) {
	v, err := NewView(numberedDataset(25), 10)
	require.NoError(t, err)
	require.Equal(t, 0, v.Page)

	prev := v.Current().Window[0]
	require.Equal(t, LinkPrev, prev.Kind)
	assert.True(t, prev.Disabled)

	same, err := v.GoTo(prev.Page)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
	assert.Equal(t, 0, same.Page)
	assert.Len(t, same.Visible(), 10)
}

func TestView_GoToEmptyResult(t *testing.T) {
	v, err := NewView(numberedDataset(25), 10)
	require.NoError(t, err)
	v = v.Search("no such value")
	require.Empty(t, v.Filtered)

	v, err = v.GoTo(0)
	require.NoError(t, err)
	assert.Empty(t, v.Visible())

	_, err = v.GoTo(-1)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
	_, err = v.GoTo(1)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
}

func TestView_DisabledLinksAreRejected(t *testing.T) {
	tests := []struct {
		name string
		rows int
		page int
	}{
		{"first of many", 25, 0},
		{"last of many", 25, 2},
		{"single page", 7, 0},
		{"no rows", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewView(numberedDataset(tt.rows), 10)
			require.NoError(t, err)
			v, err = v.GoTo(tt.page)
			require.NoError(t, err)

			disabled := 0
			for _, link := range v.Current().Window {
				if !link.Disabled {
					continue
				}
				disabled++
				same, err := v.GoTo(link.Page)
				assert.ErrorIs(t, err, ErrPageOutOfRange, "link %s to page %d", link.Kind, link.Page)
				assert.Equal(t, tt.page, same.Page)
			}
			assert.Positive(t, disabled)
		})
	}
}

func TestView_WithPageSize(t *testing.T) {
	v, err := NewView(numberedDataset(25), 10)
	require.NoError(t, err)
	v, _ = v.GoTo(1)
	v, err = v.WithPageSize(5)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Page)
	assert.Equal(t, 5, v.TotalPages())
	_, err = v.WithPageSize(-1)
	assert.Error(t, err)
}

func TestView_Snapshot(t *testing.T) {
	v, err := NewView(fundingDataset(t), 2)
	require.NoError(t, err)
	v = v.Search("a")
	v, err = v.ClickHeader("raisedAmt")
	require.NoError(t, err)
	v, err = v.ClickHeader("raisedAmt")
	require.NoError(t, err)

	s := v.Snapshot(FormatContext{HTML: true})
	require.Len(t, s.Rows, 2)
	assert.Equal(t, 3, s.Rows[0].Index, "largest raise first")
	assert.Equal(t, "Amount Raised", s.SortLabel())
	assert.Equal(t, PageStats{Number: 1, TotalPages: 2, First: 1, Last: 2, Total: 4}, s.Page)
	assert.Equal(t, "a", s.Filter.Query)

	var sorted []string
	for _, h := range s.Columns {
		if h.Sorted != Unsorted {
			sorted = append(sorted, h.Name)
		}
	}
	assert.Equal(t, []string{"raisedAmt"}, sorted)

	bar := s.Rows[0].Cells[4].Bar
	require.NotNil(t, bar)
	assert.Equal(t, 100.0, bar.Percent)
	assert.Contains(t, s.Rows[0].Cells[0].Display, "<mark>")
}
