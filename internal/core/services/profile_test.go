package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/weldsafe/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

func TestProfileService_History(t *testing.T) {
	ctx := context.Background()
	chatLog := memory.NewChatLog()
	for _, e := range []domain.ChatEntry{
		{UserID: testUser, Role: domain.RoleQuestion, Content: "перше"},
		{UserID: 7, Role: domain.RoleQuestion, Content: "чуже"},
		{UserID: testUser, Role: domain.RoleAnswer, Content: "друге"},
		{UserID: testUser, Role: domain.RoleQuestion, Content: "третє"},
	} {
		require.NoError(t, chatLog.Append(ctx, e))
	}
	svc := NewProfileService(memory.NewProfileStore(), chatLog)

	entries, err := svc.History(ctx, testUser, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "друге", entries[0].Content)
	assert.Equal(t, "третє", entries[1].Content)

	entries, err = svc.History(ctx, testUser, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, "перше", entries[0].Content)
}

func TestProfileService_HistoryWithoutLog(t *testing.T) {
	svc := NewProfileService(memory.NewProfileStore(), nil)

	entries, err := svc.History(context.Background(), testUser, 5)

	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = svc.Get(context.Background(), testUser)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
