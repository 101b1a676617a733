package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func points(n int64) *int64 { return &n }

func TestParseGender(t *testing.T) {
	g, err := ParseGender(" Male ")
	require.NoError(t, err)
	assert.Equal(t, GenderMale, g)

	g, err = ParseGender("FEMALE")
	require.NoError(t, err)
	assert.Equal(t, GenderFemale, g)

	for _, raw := range []string{"", "unspecified", "m", "other"} {
		_, err := ParseGender(raw)
		assert.ErrorIs(t, err, ErrInvalidGender, raw)
	}
}

func TestProfileRecordValidate(t *testing.T) {
	rec := &ProfileRecord{ID: "u1", Gender: "male", Points: points(50)}
	gender, pts, err := rec.Validate()
	require.NoError(t, err)
	assert.Equal(t, GenderMale, gender)
	assert.Equal(t, int64(50), pts)

	_, _, err = (&ProfileRecord{Gender: "male"}).Validate()
	assert.ErrorIs(t, err, ErrInvalidPoints, "nil points")

	_, _, err = (&ProfileRecord{Gender: "female", Points: points(-1)}).Validate()
	assert.ErrorIs(t, err, ErrInvalidPoints)

	_, _, err = (&ProfileRecord{Gender: "unspecified", Points: points(0)}).Validate()
	assert.ErrorIs(t, err, ErrInvalidGender)
}

func TestProfileRecordProfile(t *testing.T) {
	rec := &ProfileRecord{ID: "u1", FirstName: "Amina", LastName: "K", Gender: "Female", Points: points(300)}
	p, err := rec.Profile()
	require.NoError(t, err)
	assert.Equal(t, GenderFemale, p.Gender)
	assert.Equal(t, int64(300), p.Points)
	assert.Equal(t, "Amina", p.FirstName)
}

func TestCreateProfileRequestValidate(t *testing.T) {
	req := CreateProfileRequest{FirstName: "Omar", LastName: "S", Gender: "male", PhoneNumber: "555"}
	assert.NoError(t, req.Validate())

	missing := req
	missing.PhoneNumber = "  "
	assert.Error(t, missing.Validate())

	badGender := req
	badGender.Gender = "robot"
	assert.ErrorIs(t, badGender.Validate(), ErrInvalidGender)
}

func TestLeaderboardColumns(t *testing.T) {
	col, err := ColumnFor(GenderMale)
	require.NoError(t, err)
	assert.Equal(t, ColumnMalePoints, col)

	col, err = ColumnFor(GenderFemale)
	require.NoError(t, err)
	assert.Equal(t, ColumnFemalePoints, col)

	_, err = ColumnFor("x")
	assert.Error(t, err)

	agg := LeaderboardAggregate{}
	require.NoError(t, agg.Add(ColumnMalePoints, 100))
	require.NoError(t, agg.Add(ColumnFemalePoints, 50))
	assert.Error(t, agg.Add("total_points", 1))
	assert.Equal(t, LeaderboardAggregate{MalePoints: 100, FemalePoints: 50}, agg)
	assert.False(t, LeaderboardColumn("points; DROP TABLE").Valid())
}
