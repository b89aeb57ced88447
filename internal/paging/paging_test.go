package paging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, Params{Page: 1, Limit: DefaultLimit}, Params{}.Normalize())
	assert.Equal(t, Params{Page: 3, Limit: MaxLimit}, Params{Page: 3, Limit: 500}.Normalize())
	assert.Equal(t, Params{Page: 1, Limit: 5}, Params{Page: -2, Limit: 5}.Normalize())
}

func TestSkip(t *testing.T) {
	assert.Equal(t, int64(0), Params{Page: 1, Limit: 10}.Skip())
	assert.Equal(t, int64(20), Params{Page: 3, Limit: 10}.Skip())
}

func TestNewResult(t *testing.T) {
	r := NewResult([]string{"a", "b"}, 21, Params{Page: 2, Limit: 10})
	assert.Equal(t, int64(3), r.Pages)
	assert.Equal(t, 2, r.Page)

	empty := NewResult[int](nil, 0, Params{})
	assert.NotNil(t, empty.Items)
	assert.Equal(t, int64(0), empty.Pages)
}
