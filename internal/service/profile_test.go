package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/shadow-rank/internal/apperror"
	"github.com/sakif/shadow-rank/internal/model"
)

func TestProfileGet(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	userID := seedHunter(store, 1, 175)
	svc := NewProfileService(store, testLogger())

	view, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, model.RankD, view.Profile.Rank)
	assert.Equal(t, 50, view.Progress.Percent)
	assert.Equal(t, 75, view.Progress.XPToNext)
	require.NotNil(t, view.Progress.NextRank)
	assert.Equal(t, model.RankC, *view.Progress.NextRank)

	_, err = svc.Get(ctx, newUser(t, store, 2))
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedHunter(store, 1, 40)
	top := seedHunter(store, 2, 600)
	seedHunter(store, 3, 260)
	require.NoError(t, store.SetResumeData(ctx, top, &model.ResumeData{Source: model.SourceResume, RawText: "private"}))
	svc := NewProfileService(store, testLogger())

	views, err := svc.Leaderboard(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, 600, views[0].Profile.XP)
	assert.Equal(t, model.RankB, views[0].Profile.Rank)
	assert.Nil(t, views[0].Profile.ResumeData, "resume data is never exposed publicly")
	assert.Equal(t, 260, views[1].Profile.XP)
}

func TestRanks(t *testing.T) {
	table := Ranks()
	require.Len(t, table, 5)
	assert.Equal(t, model.RankE, table[0].Rank)
	assert.Equal(t, 1000, table[4].Threshold)
}
