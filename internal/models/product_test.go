package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCategory(t *testing.T) {
	tests := []struct {
		keyword string
		name    string
	}{
		{"jordan", "jordan"},
		{"air force", "airforce"},
		{"air%20force", "airforce"},
		{"Nike Stussy", "nikestussy"},
	}

	for _, tt := range tests {
		c := NewCategory(tt.keyword)
		assert.Equal(t, tt.name, c.Name, tt.keyword)
		assert.Equal(t, Collection(tt.name+"_on"), c.On)
		assert.Equal(t, Collection(tt.name+"_off"), c.Off)
	}
}

func TestCategoriesFromKeywordsSkipsDuplicates(t *testing.T) {
	categories := CategoriesFromKeywords([]string{"jordan", "air force", "air%20force", " ", "dunk"})

	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"jordan", "airforce", "dunk"}, names)
}

func TestDefaultCategories(t *testing.T) {
	categories := DefaultCategories()
	assert.Len(t, categories, 5)
	assert.Equal(t, "air force", categories[3].Keyword)
	assert.Equal(t, Collection("nikestussy_off"), categories[4].Off)
}
