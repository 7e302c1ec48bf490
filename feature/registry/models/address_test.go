package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevels(t *testing.T) {
	levels := Levels()
	assert.Len(t, levels, 8)
	assert.Equal(t, LevelStreet, levels[0])
	assert.Equal(t, LevelRegion, levels[7])

	ranks := make(map[int]bool)
	for _, l := range levels {
		assert.False(t, ranks[l.Rank()], "rank %d used twice", l.Rank())
		ranks[l.Rank()] = true
	}
	assert.Len(t, ranks, 8)
}

func TestLevelForRank(t *testing.T) {
	tests := []struct {
		rank   int
		want   Level
		column string
		ok     bool
	}{
		{1, LevelRegion, "region", true},
		{2, LevelAdminRegion, "admr", true},
		{3, LevelMunicipalRegion, "munr", true},
		{6, LevelSettlement, "place", true},
		{8, LevelStreet, "street", true},
		{9, 0, "", false},
		{0, 0, "", false},
	}

	for _, tt := range tests {
		l, ok := LevelForRank(tt.rank)
		assert.Equal(t, tt.ok, ok, "rank %d", tt.rank)
		if tt.ok {
			assert.Equal(t, tt.want, l)
			assert.Equal(t, tt.column, l.Column())
		}
	}
	assert.True(t, LevelAdminRegion.Reserved())
	assert.False(t, LevelRegion.Reserved())
}

func TestHouseParam_IsCurrent(t *testing.T) {
	assert.True(t, HouseParam{ChangeIDEnd: 0}.IsCurrent())
	assert.False(t, HouseParam{ChangeIDEnd: 17}.IsCurrent())
}
