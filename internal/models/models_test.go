package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryRank(t *testing.T) {
	t.Parallel()

	tests := []struct {
		category string
		rank     int
	}{
		{CategoryTodo, 1},
		{CategoryInProgress, 2},
		{CategoryDone, 3},
		{"", 4},
		{"archived", 4},
		{"TODO", 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.rank, CategoryRank(tt.category), "category %q", tt.category)
	}
}

func TestValidCategory(t *testing.T) {
	t.Parallel()

	for _, c := range Categories {
		assert.True(t, ValidCategory(c), "category %q", c)
	}
	assert.False(t, ValidCategory("later"))
	assert.False(t, ValidCategory(""))
}

func TestCategoriesDisplayOrder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"todo", "inprogress", "done"}, Categories)
}
