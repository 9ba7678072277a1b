package businessflow

import (
	"context"
	"fmt"
	"testing"

	"github.com/eventdesk/eventdesk/repository"
	"github.com/eventdesk/eventdesk/storage"
	"github.com/eventdesk/eventdesk/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestShortLinkFlow() (*ShortLinkFlowImpl, repository.ShortLinkRepository) {
	repo := repository.NewShortLinkRepository(storage.NewMemoryProperties())
	flow := NewShortLinkFlow(repo, "https://go.test/s").(*ShortLinkFlowImpl)
	return flow, repo
}

func TestSetMintsTokenOnce(t *testing.T) {
	flow, _ := newTestShortLinkFlow()
	ctx := context.Background()

	token, err := flow.Set(ctx, "event-1-public", "https://pages.test/one", "event-1", nil)
	require.NoError(t, err)
	assert.Len(t, token, utils.LinkTokenLength)

	// Re-setting the same key keeps the token but overwrites the target.
	again, err := flow.Set(ctx, "event-1-public", "https://pages.test/two", "event-1", nil)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	target, err := flow.Resolve(ctx, token, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://pages.test/two", target)
}

func TestSetDistinctKeysGetDistinctTokens(t *testing.T) {
	flow, _ := newTestShortLinkFlow()
	ctx := context.Background()

	first, err := flow.Set(ctx, "key-a", "https://pages.test/a", "", nil)
	require.NoError(t, err)
	second, err := flow.Set(ctx, "key-b", "https://pages.test/b", "", nil)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestSetValidation(t *testing.T) {
	flow, _ := newTestShortLinkFlow()
	ctx := context.Background()

	_, err := flow.Set(ctx, "", "https://pages.test/a", "", nil)
	assert.ErrorIs(t, err, ErrLinkKeyRequired)

	_, err = flow.Set(ctx, "key", "   ", "", nil)
	assert.ErrorIs(t, err, ErrTargetURLRequired)
}

func TestMintTokenCollisionGuard(t *testing.T) {
	flow, _ := newTestShortLinkFlow()

	// A mint function that always returns the same value exhausts after the
	// first token is taken.
	flow.mintFunc = func() string { return "fixed0token0" }

	ctx := context.Background()
	token, err := flow.Set(ctx, "key-a", "https://pages.test/a", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "fixed0token0", token)

	_, err = flow.Set(ctx, "key-b", "https://pages.test/b", "", nil)
	assert.ErrorIs(t, err, ErrTokenSpaceExhausted)
}

func TestResolveUnknownToken(t *testing.T) {
	flow, _ := newTestShortLinkFlow()

	_, err := flow.Resolve(context.Background(), "nosuchtoken0", nil)
	assert.ErrorIs(t, err, ErrShortLinkNotFound)
}

func TestResolveRecordsClick(t *testing.T) {
	flow, repo := newTestShortLinkFlow()
	ctx := context.Background()

	token, err := flow.Set(ctx, "key", "https://pages.test/a", "", nil)
	require.NoError(t, err)

	click := NewClickContext("agent/1.0", "https://ref.test", "10.0.0.1")
	target, err := flow.Resolve(ctx, token, click)
	require.NoError(t, err)
	assert.Equal(t, "https://pages.test/a", target)

	analytics, err := repo.LoadAnalytics(ctx)
	require.NoError(t, err)
	require.Len(t, analytics[token], 1)
	event := analytics[token][0]
	assert.Equal(t, "agent/1.0", event.UserAgent)
	assert.Equal(t, "https://ref.test", event.Referrer)
	assert.Equal(t, "10.0.0.1", event.SourceIP)
	assert.NotEmpty(t, event.Timestamp)
}

func TestResolveClickCapEvictsOldest(t *testing.T) {
	flow, repo := newTestShortLinkFlow()
	ctx := context.Background()

	token, err := flow.Set(ctx, "key", "https://pages.test/a", "", nil)
	require.NoError(t, err)

	for i := 0; i < utils.MaxClickEvents+25; i++ {
		click := NewClickContext(fmt.Sprintf("agent/%d", i), "", "")
		_, err := flow.Resolve(ctx, token, click)
		require.NoError(t, err)
	}

	analytics, err := repo.LoadAnalytics(ctx)
	require.NoError(t, err)
	clicks := analytics[token]
	require.Len(t, clicks, utils.MaxClickEvents)
	// The oldest 25 entries were evicted.
	assert.Equal(t, "agent/25", clicks[0].UserAgent)
	assert.Equal(t, fmt.Sprintf("agent/%d", utils.MaxClickEvents+24), clicks[len(clicks)-1].UserAgent)
}

func TestVerify(t *testing.T) {
	flow, repo := newTestShortLinkFlow()
	ctx := context.Background()

	token, err := flow.Set(ctx, "key", "https://pages.test/a", "owner-1", nil)
	require.NoError(t, err)

	active, err := flow.Verify(ctx, token)
	require.NoError(t, err)
	assert.True(t, active)

	active, err = flow.Verify(ctx, "nosuchtoken0")
	require.NoError(t, err)
	assert.False(t, active)

	// A token present in targets but missing from metadata counts as active.
	metadata, err := repo.LoadMetadata(ctx)
	require.NoError(t, err)
	delete(metadata, token)
	require.NoError(t, repo.SaveMetadata(ctx, metadata))

	active, err = flow.Verify(ctx, token)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestExpireByOwner(t *testing.T) {
	flow, _ := newTestShortLinkFlow()
	ctx := context.Background()

	mine, err := flow.Set(ctx, "key-mine", "https://pages.test/mine", "owner-1", nil)
	require.NoError(t, err)
	other, err := flow.Set(ctx, "key-other", "https://pages.test/other", "owner-2", nil)
	require.NoError(t, err)

	require.NoError(t, flow.ExpireByOwner(ctx, "owner-1"))

	// Expired token resolves to not found; the other owner is untouched.
	_, err = flow.Resolve(ctx, mine, nil)
	assert.ErrorIs(t, err, ErrShortLinkInactive)

	target, err := flow.Resolve(ctx, other, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://pages.test/other", target)

	active, err := flow.Verify(ctx, mine)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestExpireByOwnerRequiresOwner(t *testing.T) {
	flow, _ := newTestShortLinkFlow()
	err := flow.ExpireByOwner(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrOwnerKeyRequired)
}

func TestGetByKeyIsPure(t *testing.T) {
	flow, repo := newTestShortLinkFlow()
	ctx := context.Background()

	token, err := flow.Set(ctx, "key", "https://pages.test/a", "", nil)
	require.NoError(t, err)

	info, err := flow.GetByKey(ctx, "key")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, token, info.Token)
	assert.Equal(t, "https://pages.test/a", info.URL)
	assert.Equal(t, "https://go.test/s/"+token, info.ShortURL)

	// No click was recorded.
	analytics, err := repo.LoadAnalytics(ctx)
	require.NoError(t, err)
	assert.Empty(t, analytics[token])

	missing, err := flow.GetByKey(ctx, "unknown-key")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
