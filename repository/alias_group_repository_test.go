package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showlog/showlogbackend/database"
)

// seedGroupFixture: A has 3 appearances, B 2, C 1, D 1.
func seedGroupFixture(t *testing.T, repo *AliasGroupRepository) (a, b, c, d uint) {
	t.Helper()
	seedShows(t, repo.DB,
		[]string{"A", "B"},
		[]string{"A", "C"},
		[]string{"A"},
		[]string{"B", "D"},
	)
	return bandID(t, repo.DB, "A"), bandID(t, repo.DB, "B"), bandID(t, repo.DB, "C"), bandID(t, repo.DB, "D")
}

func TestCreateGroupRollsUpCounts(t *testing.T) {
	repo := NewAliasGroupRepository(newTestDB(t))
	a, b, _, _ := seedGroupFixture(t, repo)

	require.NoError(t, repo.CreateGroup(a, []uint{b}))

	count, err := repo.EffectiveShowCount(a)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	// an alias resolves to its primary
	count, err = repo.EffectiveShowCount(b)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	sqlDB, err := repo.DB.DB()
	require.NoError(t, err)
	ranked, err := database.ListBandStats(sqlDB, database.BandFilter{})
	require.NoError(t, err)
	for _, row := range ranked {
		assert.NotEqual(t, "B", row.Name, "alias must not be a top-level row")
	}
	require.NotEmpty(t, ranked)
	assert.Equal(t, "A", ranked[0].Name)
	assert.Equal(t, 5, ranked[0].TimesSeen)

	groups, err := repo.ListGroups()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, GroupMember{ID: a, Name: "A", ShowCount: 3}, groups[0].Primary)
	assert.Equal(t, []GroupMember{{ID: b, Name: "B", ShowCount: 2}}, groups[0].Aliases)
	assert.Equal(t, 5, groups[0].EffectiveShowCount)
}

func TestCreateGroupRejectsAliasAsPrimary(t *testing.T) {
	repo := NewAliasGroupRepository(newTestDB(t))
	a, b, c, _ := seedGroupFixture(t, repo)
	require.NoError(t, repo.CreateGroup(a, []uint{b}))
	before := allBands(t, repo.DB)

	err := repo.CreateGroup(b, []uint{c})

	var invalid *InvalidGroupError
	require.True(t, errors.As(err, &invalid), "got %v", err)
	assert.ErrorIs(t, err, ErrInvalidGroup)
	assert.Equal(t, before, allBands(t, repo.DB))
}

func TestCreateGroupValidation(t *testing.T) {
	repo := NewAliasGroupRepository(newTestDB(t))
	a, b, c, d := seedGroupFixture(t, repo)
	require.NoError(t, repo.CreateGroup(c, []uint{d}))
	before := allBands(t, repo.DB)

	tests := []struct {
		name    string
		primary uint
		aliases []uint
		want    error
	}{
		{"no aliases", a, nil, ErrInvalidGroup},
		{"alias equals primary", a, []uint{b, a}, ErrInvalidGroup},
		{"alias is a primary", a, []uint{b, c}, ErrInvalidGroup},
		{"unknown primary", 999, []uint{b}, ErrNotFound},
		{"unknown alias", a, []uint{b, 999}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.CreateGroup(tt.primary, tt.aliases)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, allBands(t, repo.DB), "no partial mutation")
		})
	}
}

func TestDisbandGroupRestoresStandalone(t *testing.T) {
	repo := NewAliasGroupRepository(newTestDB(t))
	a, b, c, _ := seedGroupFixture(t, repo)

	require.NoError(t, repo.CreateGroup(a, []uint{b, c}))
	standalone, err := repo.ListStandalone()
	require.NoError(t, err)
	assert.Len(t, standalone, 2) // A and D

	require.NoError(t, repo.DisbandGroup(a))

	standalone, err = repo.ListStandalone()
	require.NoError(t, err)
	names := make([]string, len(standalone))
	for i, bnd := range standalone {
		names[i] = bnd.Name
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, names)
	assert.Nil(t, reloadBand(t, repo.DB, a).PrimaryBandID)

	groups, err := repo.ListGroups()
	require.NoError(t, err)
	assert.Empty(t, groups)

	assert.ErrorIs(t, repo.DisbandGroup(999), ErrNotFound)
}

func TestAddAndRemoveAlias(t *testing.T) {
	repo := NewAliasGroupRepository(newTestDB(t))
	a, b, c, d := seedGroupFixture(t, repo)

	require.NoError(t, repo.CreateGroup(a, []uint{b}))
	require.NoError(t, repo.AddAlias(a, c))
	assert.ErrorIs(t, repo.AddAlias(b, d), ErrInvalidGroup)
	assert.ErrorIs(t, repo.AddAlias(a, a), ErrInvalidGroup)

	count, err := repo.EffectiveShowCount(a)
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	require.NoError(t, repo.RemoveAlias(b))
	assert.Nil(t, reloadBand(t, repo.DB, b).PrimaryBandID)
	require.NotNil(t, reloadBand(t, repo.DB, c).PrimaryBandID)

	count, err = repo.EffectiveShowCount(a)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestRemoveAliasIsIdempotent(t *testing.T) {
	repo := NewAliasGroupRepository(newTestDB(t))
	a, _, _, d := seedGroupFixture(t, repo)
	before := allBands(t, repo.DB)

	assert.NoError(t, repo.RemoveAlias(d))
	assert.NoError(t, repo.RemoveAlias(a))
	assert.Equal(t, before, allBands(t, repo.DB))
	assert.ErrorIs(t, repo.RemoveAlias(999), ErrNotFound)
}

func TestAddAliasMovesBetweenGroups(t *testing.T) {
	repo := NewAliasGroupRepository(newTestDB(t))
	a, b, c, _ := seedGroupFixture(t, repo)

	require.NoError(t, repo.CreateGroup(a, []uint{c}))
	require.NoError(t, repo.AddAlias(b, c))

	graph, err := repo.Snapshot()
	require.NoError(t, err)
	primary, ok := graph.PrimaryOf(c)
	require.True(t, ok)
	assert.Equal(t, b, primary)
	assert.False(t, graph.IsPrimary(a))
	assert.True(t, graph.IsPrimary(b))
	assert.Equal(t, b, graph.Canonical(c))
	assert.Equal(t, a, graph.Canonical(a))
	assert.Equal(t, []uint{c}, graph.AliasesOf(b))
}

func TestEffectiveShowCountUnknownBand(t *testing.T) {
	repo := NewAliasGroupRepository(newTestDB(t))
	_, err := repo.EffectiveShowCount(42)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, uint(42), nf.ID)
}

func TestListGroupsCountsUnbilledAlias(t *testing.T) {
	db := newTestDB(t)
	seedShows(t, db, []string{"Frank Turner"}, []string{"Frank Turner", "Chuck Ragan"})
	bands := NewBandRepository(db)
	solo, err := bands.GetOrCreate("Frank Turner & the Sleeping Souls")
	require.NoError(t, err)
	repo := NewAliasGroupRepository(db)
	frank := bandID(t, db, "Frank Turner")
	require.NoError(t, repo.CreateGroup(frank, []uint{solo.ID}))

	groups, err := repo.ListGroups()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, GroupMember{ID: frank, Name: "Frank Turner", ShowCount: 2}, groups[0].Primary)
	assert.Equal(t, []GroupMember{{ID: solo.ID, Name: "Frank Turner & the Sleeping Souls", ShowCount: 0}}, groups[0].Aliases)
	assert.Equal(t, 2, groups[0].EffectiveShowCount)

	require.NoError(t, repo.DisbandGroup(frank))
	groups, err = repo.ListGroups()
	require.NoError(t, err)
	assert.Empty(t, groups)
	assert.NotNil(t, groups)
}
