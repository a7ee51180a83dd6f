package score

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreDeterministicAndBounded(t *testing.T) {
	s := NewDeterministic(70, 97)

	for i := 0; i < 50; i++ {
		mint := fmt.Sprintf("Mint%03d", i)
		v := s.Score(mint)
		assert.GreaterOrEqual(t, v, 70.0)
		assert.Less(t, v, 97.0)
		assert.Equal(t, v, s.Score(mint), "same mint must score identically")
	}

	assert.NotEqual(t, s.Score("MintA"), s.Score("MintB"))
}

func TestScoreDegenerateRange(t *testing.T) {
	s := NewDeterministic(5, 5)
	v := s.Score("x")
	assert.GreaterOrEqual(t, v, 5.0)
	assert.Less(t, v, 6.0)
}
