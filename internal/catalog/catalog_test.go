package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tahcohcat/ramadan-tracker/internal/models"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	all := c.All()
	require.Len(t, all, 10)

	for _, e := range all {
		assert.Positive(t, e.PointValue, e.ID)
		assert.NotEmpty(t, e.Image, e.ID)
	}

	e, ok := c.Get("quran-memorization")
	require.True(t, ok)
	assert.Equal(t, int64(300), e.PointValue)
	assert.Equal(t, "images/quran.png", e.Image)

	_, ok = c.Get("unknown")
	assert.False(t, ok)
}

func TestAllReturnsCopy(t *testing.T) {
	c := Default()
	all := c.All()
	all[0].PointValue = 1

	e, _ := c.Get(all[0].ID)
	assert.NotEqual(t, int64(1), e.PointValue)
}

func TestImageFallsBackToDefault(t *testing.T) {
	assert.Equal(t, "images/taraweeh.png", ImageFor("@/assets/images/taraweeh.png"))
	assert.Equal(t, DefaultImage, ImageFor("@/assets/images/missing.png"))
	assert.Equal(t, DefaultImage, ImageFor(""))

	c, err := New([]models.Activity{{ID: "x", Title: "X", PointValue: 5, ImagePath: "nope"}})
	require.NoError(t, err)
	e, _ := c.Get("x")
	assert.Equal(t, DefaultImage, e.Image)
}

func TestNewRejectsBadEntries(t *testing.T) {
	_, err := New([]models.Activity{{ID: "a", Title: "A", PointValue: 0}})
	assert.Error(t, err)

	_, err = New([]models.Activity{{ID: "a", Title: "A", PointValue: 1}, {ID: "a", Title: "B", PointValue: 1}})
	assert.Error(t, err)

	_, err = New([]models.Activity{{Title: "A", PointValue: 1}})
	assert.Error(t, err)
}

func TestFind(t *testing.T) {
	c := Default()

	e, ok := c.Find("Dhikr")
	require.True(t, ok)
	assert.Equal(t, "dhikr", e.ID)

	e, ok = c.Find("sadaqa")
	require.True(t, ok)
	assert.Equal(t, "sadaqah", e.ID)

	_, ok = c.Find("   ")
	assert.False(t, ok)
}
