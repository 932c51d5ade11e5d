package challenge

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogIsWellFormed(t *testing.T) {
	ids := map[string]bool{}
	for _, c := range All() {
		assert.False(t, ids[c.ID], "duplicate id %s", c.ID)
		ids[c.ID] = true

		assert.NotEmpty(t, c.Title)
		assert.NotEmpty(t, c.BuggyCode)
		assert.NotEmpty(t, c.ExpectedOutput)
		assert.True(t, c.Difficulty.Valid())
		assert.Contains(t, []int{10, 15, 20}, c.XPReward)
	}
	assert.Len(t, ids, 10)
}

func TestByID(t *testing.T) {
	c, ok := ByID("off-by-one")
	require.True(t, ok)
	assert.Equal(t, "15", c.ExpectedOutput)

	_, ok = ByID("missing")
	assert.False(t, ok)
}

func TestRandomHonoursExclusions(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	var exclude []string
	for _, c := range All() {
		if c.ID != "promise-all" {
			exclude = append(exclude, c.ID)
		}
	}
	for i := 0; i < 20; i++ {
		assert.Equal(t, "promise-all", Random(exclude, rng).ID)
	}
}

func TestRandomResetsWhenAllExcluded(t *testing.T) {
	var all []string
	for _, c := range All() {
		all = append(all, c.ID)
	}

	c := Random(all, nil)
	_, ok := ByID(c.ID)
	assert.True(t, ok)
}

func TestAllReturnsCopy(t *testing.T) {
	list := All()
	list[0].Title = "changed"
	assert.Equal(t, "The Off-By-One Error", All()[0].Title)
}
