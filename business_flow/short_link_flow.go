package businessflow

import (
	"context"
	"strings"

	"github.com/eventdesk/eventdesk/models"
	"github.com/eventdesk/eventdesk/repository"
	"github.com/eventdesk/eventdesk/utils"
)

// tokenMintAttempts bounds collision retries when minting a token. The token
// space (12 alphanumeric chars from a random UUID) makes even one retry
// unlikely; the bound exists so a corrupted target table cannot loop forever.
const tokenMintAttempts = 5

// ShortLinkFlow is the shortlink registry: stable application keys map to
// opaque tokens, tokens map to target URLs, and every resolution is recorded
// as a click event.
//
// Set is idempotent per key: the token survives re-sets, the target and
// metadata are last-write-wins. Resolve is the public redirect path and the
// only operation with a side effect on read. GetByKey and Verify are pure.
type ShortLinkFlow interface {
	Set(ctx context.Context, key, targetURL, ownerKey string, extra map[string]string) (string, error)
	Resolve(ctx context.Context, token string, click *ClickContext) (string, error)
	GetByKey(ctx context.Context, key string) (*LinkInfo, error)
	Verify(ctx context.Context, token string) (bool, error)
	ExpireByOwner(ctx context.Context, ownerKey string) error
}

type ShortLinkFlowImpl struct {
	repo     repository.ShortLinkRepository
	baseURL  string
	mintFunc func() string
}

// NewShortLinkFlow creates the registry flow. baseURL is the public prefix
// short URLs are built from, e.g. "https://go.example.com/s".
func NewShortLinkFlow(repo repository.ShortLinkRepository, baseURL string) ShortLinkFlow {
	return &ShortLinkFlowImpl{
		repo:     repo,
		baseURL:  strings.TrimRight(baseURL, "/"),
		mintFunc: utils.NewLinkToken,
	}
}

func (f *ShortLinkFlowImpl) shortURL(token string) string {
	return f.baseURL + "/" + token
}

func (f *ShortLinkFlowImpl) Set(ctx context.Context, key, targetURL, ownerKey string, extra map[string]string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", ErrLinkKeyRequired
	}
	if strings.TrimSpace(targetURL) == "" {
		return "", ErrTargetURLRequired
	}

	lockShortLinkRegistry()
	defer unlockShortLinkRegistry()

	keyMap, err := f.repo.LoadKeyMap(ctx)
	if err != nil {
		return "", NewBusinessError("SHORT_LINK_LOAD_FAILED", "Failed to load shortlink key map", err)
	}
	targets, err := f.repo.LoadTargets(ctx)
	if err != nil {
		return "", NewBusinessError("SHORT_LINK_LOAD_FAILED", "Failed to load shortlink targets", err)
	}
	metadata, err := f.repo.LoadMetadata(ctx)
	if err != nil {
		return "", NewBusinessError("SHORT_LINK_LOAD_FAILED", "Failed to load shortlink metadata", err)
	}

	token, existed := keyMap[key]
	if !existed {
		token, err = f.mintToken(targets)
		if err != nil {
			return "", err
		}
		keyMap[key] = token
	}

	targets[token] = targetURL
	metadata[token] = &models.LinkMetadata{
		CreatedAt: utils.UTCNowRFC3339(),
		Active:    true,
		OwnerKey:  ownerKey,
		Extra:     extra,
	}

	// Targets before the key map: a key must never point at a missing target.
	if err := f.repo.SaveTargets(ctx, targets); err != nil {
		return "", NewBusinessError("SHORT_LINK_SAVE_FAILED", "Failed to save shortlink targets", err)
	}
	if err := f.repo.SaveMetadata(ctx, metadata); err != nil {
		return "", NewBusinessError("SHORT_LINK_SAVE_FAILED", "Failed to save shortlink metadata", err)
	}
	if !existed {
		if err := f.repo.SaveKeyMap(ctx, keyMap); err != nil {
			return "", NewBusinessError("SHORT_LINK_SAVE_FAILED", "Failed to save shortlink key map", err)
		}
	}

	return token, nil
}

// mintToken draws fresh candidates until one is absent from the target
// table. The caller holds the registry lock.
func (f *ShortLinkFlowImpl) mintToken(targets models.TokenTargetMap) (string, error) {
	for attempt := 0; attempt < tokenMintAttempts; attempt++ {
		token := f.mintFunc()
		if _, taken := targets[token]; !taken {
			return token, nil
		}
	}
	return "", ErrTokenSpaceExhausted
}

func (f *ShortLinkFlowImpl) Resolve(ctx context.Context, token string, click *ClickContext) (string, error) {
	targets, err := f.repo.LoadTargets(ctx)
	if err != nil {
		return "", NewBusinessError("SHORT_LINK_LOOKUP_FAILED", "Failed to lookup short link", err)
	}
	target, ok := targets[token]
	if !ok {
		return "", ErrShortLinkNotFound
	}

	metadata, err := f.repo.LoadMetadata(ctx)
	if err != nil {
		return "", NewBusinessError("SHORT_LINK_LOOKUP_FAILED", "Failed to load shortlink metadata", err)
	}
	// A token with no metadata record counts as active; only the target
	// table is load-bearing for existence.
	if meta, ok := metadata[token]; ok && !meta.Active {
		return "", ErrShortLinkInactive
	}

	f.recordClick(ctx, token, click)

	return target, nil
}

// recordClick appends one click event, evicting the oldest entries past the
// cap. Failures are swallowed: losing a click must not fail a redirect.
func (f *ShortLinkFlowImpl) recordClick(ctx context.Context, token string, click *ClickContext) {
	lockShortLinkRegistry()
	defer unlockShortLinkRegistry()

	analytics, err := f.repo.LoadAnalytics(ctx)
	if err != nil {
		return
	}

	event := models.ClickEvent{Timestamp: utils.UTCNowRFC3339()}
	if click != nil {
		event.UserAgent = click.UserAgent
		event.Referrer = click.Referrer
		event.SourceIP = click.IPAddress
	}

	clicks := append(analytics[token], event)
	if len(clicks) > utils.MaxClickEvents {
		clicks = clicks[len(clicks)-utils.MaxClickEvents:]
	}
	analytics[token] = clicks

	_ = f.repo.SaveAnalytics(ctx, analytics)
}

func (f *ShortLinkFlowImpl) GetByKey(ctx context.Context, key string) (*LinkInfo, error) {
	keyMap, err := f.repo.LoadKeyMap(ctx)
	if err != nil {
		return nil, NewBusinessError("SHORT_LINK_LOOKUP_FAILED", "Failed to load shortlink key map", err)
	}
	token, ok := keyMap[key]
	if !ok {
		return nil, nil
	}

	targets, err := f.repo.LoadTargets(ctx)
	if err != nil {
		return nil, NewBusinessError("SHORT_LINK_LOOKUP_FAILED", "Failed to load shortlink targets", err)
	}

	return &LinkInfo{
		Token:    token,
		URL:      targets[token],
		ShortURL: f.shortURL(token),
	}, nil
}

func (f *ShortLinkFlowImpl) Verify(ctx context.Context, token string) (bool, error) {
	targets, err := f.repo.LoadTargets(ctx)
	if err != nil {
		return false, NewBusinessError("SHORT_LINK_LOOKUP_FAILED", "Failed to load shortlink targets", err)
	}
	if _, ok := targets[token]; !ok {
		return false, nil
	}

	metadata, err := f.repo.LoadMetadata(ctx)
	if err != nil {
		return false, NewBusinessError("SHORT_LINK_LOOKUP_FAILED", "Failed to load shortlink metadata", err)
	}
	if meta, ok := metadata[token]; ok {
		return meta.Active, nil
	}
	return true, nil
}

func (f *ShortLinkFlowImpl) ExpireByOwner(ctx context.Context, ownerKey string) error {
	if strings.TrimSpace(ownerKey) == "" {
		return ErrOwnerKeyRequired
	}

	lockShortLinkRegistry()
	defer unlockShortLinkRegistry()

	metadata, err := f.repo.LoadMetadata(ctx)
	if err != nil {
		return NewBusinessError("SHORT_LINK_LOAD_FAILED", "Failed to load shortlink metadata", err)
	}

	changed := false
	for _, meta := range metadata {
		if meta.OwnerKey == ownerKey && meta.Active {
			meta.Active = false
			changed = true
		}
	}
	if !changed {
		return nil
	}

	// One write for the whole scan; per-key atomicity makes it all-or-nothing.
	if err := f.repo.SaveMetadata(ctx, metadata); err != nil {
		return NewBusinessError("SHORT_LINK_SAVE_FAILED", "Failed to save shortlink metadata", err)
	}
	return nil
}
