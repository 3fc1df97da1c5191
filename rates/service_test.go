package rates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Fetch(ctx context.Context, base string, codes []string) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, base, codes)
	quotes, _ := args.Get(0).(map[string]decimal.Decimal)
	return quotes, args.Error(1)
}

type memoryStore struct {
	snaps map[string]*Snapshot
}

func (m *memoryStore) SaveSnapshot(_ context.Context, snap *Snapshot) error {
	m.snaps[snap.Base] = snap
	return nil
}

func (m *memoryStore) LatestSnapshot(_ context.Context, base string) (*Snapshot, error) {
	snap, ok := m.snaps[base]
	if !ok {
		return nil, errors.New("not found")
	}
	return snap, nil
}

func quotes(kv ...string) map[string]decimal.Decimal {
	out := map[string]decimal.Decimal{}
	for i := 0; i < len(kv); i += 2 {
		out[kv[i]] = decimal.RequireFromString(kv[i+1])
	}
	return out
}

func newTestService(t *testing.T, provider Provider, store SnapshotStore) (*Service, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	svc, err := NewService(Config{Provider: provider, Store: store, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(svc.Stop)
	return svc, hook
}

func rateOf(t *testing.T, snap *Snapshot, code string) string {
	t.Helper()
	q, ok := snap.Quote(code)
	require.True(t, ok, "quote %s missing", code)
	return q.Rate.String()
}

func TestService_FallbackBeforeFirstRefresh(t *testing.T) {
	svc, _ := newTestService(t, new(mockProvider), nil)

	snap := svc.Current(context.Background())
	assert.Equal(t, SourceFallback, snap.Source)
	assert.Equal(t, "BRL", snap.Base)
	assert.Equal(t, "5.2", rateOf(t, snap, "USD"))
	assert.Equal(t, "5.65", rateOf(t, snap, "EUR"))
	assert.Equal(t, "6.45", rateOf(t, snap, "GBP"))
}

func TestService_RefreshThenFailureKeepsLastGood(t *testing.T) {
	provider := new(mockProvider)
	provider.On("Fetch", mock.Anything, "BRL", []string{"USD", "EUR", "GBP"}).
		Return(quotes("USD", "5", "EUR", "5.5", "GBP", "6.4"), nil).Once()
	provider.On("Fetch", mock.Anything, "BRL", mock.Anything).
		Return(nil, errors.New("timeout")).Once()

	svc, hook := newTestService(t, provider, nil)

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceLive, snap.Source)
	assert.Equal(t, "mock", snap.Provider)
	usd, _ := snap.Quote("USD")
	assert.Equal(t, "US Dollar", usd.Name)
	assert.Nil(t, usd.Change, "no change against the static table")

	snap, err = svc.Refresh(context.Background())
	assert.ErrorContains(t, err, "timeout")
	assert.Equal(t, SourceLive, snap.Source)
	assert.Equal(t, "5", rateOf(t, svc.Current(context.Background()), "USD"))
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	provider.AssertExpectations(t)
}

func TestService_ChangeAgainstPreviousSnapshot(t *testing.T) {
	provider := new(mockProvider)
	provider.On("Fetch", mock.Anything, "BRL", mock.Anything).
		Return(quotes("USD", "5", "EUR", "5.5", "GBP", "6.4"), nil).Once()
	provider.On("Fetch", mock.Anything, "BRL", mock.Anything).
		Return(quotes("USD", "5.1", "EUR", "5.5", "GBP", "6.32"), nil).Once()

	svc, _ := newTestService(t, provider, nil)
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	usd, _ := snap.Quote("USD")
	require.NotNil(t, usd.Change)
	assert.Equal(t, "2", usd.Change.String())
	gbp, _ := snap.Quote("GBP")
	assert.Equal(t, "-1.25", gbp.Change.String())
	eur, _ := snap.Quote("EUR")
	assert.True(t, eur.Change.IsZero())
}

func TestService_StoredSnapshotSurvivesRestart(t *testing.T) {
	store := &memoryStore{snaps: map[string]*Snapshot{}}

	provider := new(mockProvider)
	provider.On("Fetch", mock.Anything, "BRL", mock.Anything).
		Return(quotes("USD", "4.9", "EUR", "5.3", "GBP", "6.1"), nil).Once()
	first, _ := newTestService(t, provider, store)
	_, err := first.Refresh(context.Background())
	require.NoError(t, err)

	down := new(mockProvider)
	down.On("Fetch", mock.Anything, "BRL", mock.Anything).Return(nil, errors.New("dns"))
	second, _ := newTestService(t, down, store)

	snap := second.Current(context.Background())
	assert.Equal(t, SourceStored, snap.Source)
	assert.Equal(t, "4.9", rateOf(t, snap, "USD"))

	_, err = second.Refresh(context.Background())
	assert.Error(t, err)
	assert.Equal(t, "4.9", rateOf(t, second.Current(context.Background()), "USD"))
}

func TestService_StartRejectsBadSchedule(t *testing.T) {
	logger, _ := test.NewNullLogger()
	svc, err := NewService(Config{Provider: new(mockProvider), Schedule: "every now and then", Logger: logger})
	require.NoError(t, err)
	defer svc.Stop()

	assert.ErrorContains(t, svc.Start(), "invalid rates schedule")
}

func TestNewService_RequiresProvider(t *testing.T) {
	_, err := NewService(Config{})
	assert.Error(t, err)
}

func TestFallbackSnapshot_OtherBase(t *testing.T) {
	snap := FallbackSnapshot("USD", []string{"EUR"})
	assert.Empty(t, snap.Quotes)
	assert.Equal(t, SourceFallback, snap.Source)
}

type blockingProvider struct {
	started chan struct{}
	release chan struct{}
}

func (p *blockingProvider) Name() string { return "blocking" }

func (p *blockingProvider) Fetch(context.Context, string, []string) (map[string]decimal.Decimal, error) {
	close(p.started)
	<-p.release
	return quotes("USD", "5.01", "EUR", "5.50", "GBP", "6.40"), nil
}

func TestService_StopWaitsForInitialRefresh(t *testing.T) {
	provider := &blockingProvider{started: make(chan struct{}), release: make(chan struct{})}
	store := &memoryStore{snaps: map[string]*Snapshot{}}
	svc, _ := newTestService(t, provider, store)

	require.NoError(t, svc.Start())
	<-provider.started

	stopped := make(chan struct{})
	go func() {
		svc.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while the initial refresh was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(provider.release)
	<-stopped
	require.Contains(t, store.snaps, "BRL")
	assert.Equal(t, "5.01", rateOf(t, store.snaps["BRL"], "USD"))
}
