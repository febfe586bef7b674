package rfc9111

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntryCurrentValidators(t *testing.T) {
	lastModified := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e := Entry{
		ETag:            `"v1"`,
		HasETag:         true,
		LastModified:    lastModified,
		HasLastModified: true,
	}
	v := e.CurrentValidators()
	assert.Equal(t, `"v1"`, v.ETag)
	assert.True(t, v.HasETag)
	assert.True(t, v.HasLastModified)
	assert.True(t, v.LastModified.Equal(lastModified))
}

func TestEntryCurrentValidatorsAbsent(t *testing.T) {
	e := Entry{}
	v := e.CurrentValidators()
	assert.False(t, v.HasETag)
	assert.False(t, v.HasLastModified)
}
