package knownsenders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestCheckerIsKnown(t *testing.T) {
	checker := NewChecker([]string{"Netflix.com", " spotify.com "}, zap.NewNop())

	assert.True(t, checker.IsKnown("info@netflix.com"))
	assert.True(t, checker.IsKnown("BILLING@NETFLIX.COM"))
	assert.True(t, checker.IsKnown("Netflix <info@netflix.com>"))
	assert.True(t, checker.IsKnown("no-reply@spotify.com"))

	assert.False(t, checker.IsKnown("friend@gmail.com"))
	assert.False(t, checker.IsKnown("not an address"))
	assert.False(t, checker.IsKnown(""))
}

func TestCheckerEmptyList(t *testing.T) {
	checker := NewChecker(nil, nil)
	assert.False(t, checker.IsKnown("info@netflix.com"))
}
