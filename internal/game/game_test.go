package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatedWithin(t *testing.T) {
	g := &Game{WhiteElo: 1500, BlackElo: 1800}

	assert.True(t, g.RatedWithin(1500, 1800))
	assert.True(t, g.RatedWithin(500, 2500))
	assert.False(t, g.RatedWithin(1600, 2500))
	assert.False(t, g.RatedWithin(500, 1700))
}
