package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequestNormalize(t *testing.T) {
	p := PageRequest{}.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageLimit, p.Limit)

	p = PageRequest{Page: 3, Limit: 500}.Normalize()
	assert.Equal(t, MaxPageLimit, p.Limit)
	assert.Equal(t, 200, PageRequest{Page: 3, Limit: 500}.Offset())
}

func TestNewPaginationMeta(t *testing.T) {
	meta := NewPaginationMeta(PageRequest{Page: 2, Limit: 10}, 21)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, 2, meta.CurrentPage)

	empty := NewPage[string](nil, PageRequest{}, 0)
	assert.NotNil(t, empty.Data)
	assert.Equal(t, 0, empty.Meta.TotalPages)
}
