package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimitClamping(t *testing.T) {
	assert.Equal(t, DefaultPageSize, Pagination{}.Limit())
	assert.Equal(t, 25, Pagination{PageSize: 25}.Limit())
	assert.Equal(t, MaxPageSize, Pagination{PageSize: 10000}.Limit())
	assert.Equal(t, DefaultPageSize, Pagination{PageSize: -1}.Limit())
}

func TestOffsetFromToken(t *testing.T) {
	assert.Equal(t, 0, Pagination{}.Offset())
	assert.Equal(t, 0, Pagination{PageToken: "garbage!"}.Offset())

	first := Pagination{PageSize: 10}
	token := first.NextToken(10)
	assert.NotEmpty(t, token)

	second := Pagination{PageSize: 10, PageToken: token}
	assert.Equal(t, 10, second.Offset())

	third := Pagination{PageSize: 10, PageToken: second.NextToken(10)}
	assert.Equal(t, 20, third.Offset())
}

func TestNextTokenShortPage(t *testing.T) {
	// A short page is the last one.
	assert.Empty(t, Pagination{PageSize: 10}.NextToken(4))
}
