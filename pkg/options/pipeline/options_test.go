package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	o := NewOptions()
	assert.Empty(t, o.Validate())

	o.Overlap = o.ChunkSize
	assert.Len(t, o.Validate(), 1)

	o = NewOptions()
	o.ChunkSize = 0
	o.TopK = 0
	// overlap 50 is also out of range once chunk size is 0
	assert.Len(t, o.Validate(), 3)
}
