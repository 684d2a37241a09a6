package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMeters(t *testing.T) {
	// Seoul City Hall to Gwanghwamun, roughly 1.1 km
	d := DistanceMeters(37.5663, 126.9779, 37.5759, 126.9769)
	assert.InDelta(t, 1070, d, 30)

	assert.Zero(t, DistanceMeters(37.5, 127.0, 37.5, 127.0))
}

func TestBoundingBoxContainsRadius(t *testing.T) {
	box := BoundingBox(37.5, 127.0, 500)

	assert.True(t, box.Contains(37.5, 127.0))
	// 400 m north is inside, 600 m north is outside
	assert.True(t, box.Contains(37.5+400/111320.0, 127.0))
	assert.False(t, box.Contains(37.5+600/111320.0, 127.0))
}
