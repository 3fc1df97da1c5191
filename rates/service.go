package rates

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// DefaultSchedule refreshes rates every five minutes.
const DefaultSchedule = "@every 5m"

const refreshTimeout = 30 * time.Second

var hundred = decimal.NewFromInt(100)

// Config configures a Service.
type Config struct {
	Provider Provider
	// Store is optional. Without it a restart loses the last good snapshot.
	Store SnapshotStore
	Base  string
	Codes []string
	// Schedule is a cron spec, DefaultSchedule when empty.
	Schedule string
	Logger   *logrus.Logger
}

// Service serves the current exchange-rate snapshot. Current never fails:
// it falls back from the last live snapshot to the stored one, then to the
// static table.
type Service struct {
	provider Provider
	store    SnapshotStore
	base     string
	codes    []string
	schedule string
	log      *logrus.Logger

	cache *ristretto.Cache

	mu      sync.Mutex // serializes refreshes
	cron    *cron.Cron
	initial sync.WaitGroup
}

// NewService creates a Service. It does not fetch anything until Refresh
// or Start is called.
func NewService(cfg Config) (*Service, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("rates provider is required")
	}
	if cfg.Base == "" {
		cfg.Base = DefaultBase
	}
	if len(cfg.Codes) == 0 {
		for _, c := range DefaultCurrencies {
			cfg.Codes = append(cfg.Codes, c.Code)
		}
	}
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        100,
		MaxCost:            10,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create rates cache: %w", err)
	}

	return &Service{
		provider: cfg.Provider,
		store:    cfg.Store,
		base:     cfg.Base,
		codes:    cfg.Codes,
		schedule: cfg.Schedule,
		log:      cfg.Logger,
		cache:    cache,
	}, nil
}

// Base returns the currency quotes are expressed in.
func (s *Service) Base() string { return s.base }

// Current returns the best snapshot available.
func (s *Service) Current(ctx context.Context) *Snapshot {
	if v, ok := s.cache.Get(s.base); ok {
		return v.(*Snapshot)
	}
	if s.store != nil {
		stored, err := s.store.LatestSnapshot(ctx, s.base)
		if err != nil {
			s.log.WithError(err).Debug("No stored rate snapshot")
		} else if stored != nil {
			snap := *stored
			snap.Source = SourceStored
			return &snap
		}
	}
	return FallbackSnapshot(s.base, s.codes)
}

// Refresh fetches live rates. On failure the previous snapshot stays
// current and the error is returned.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fetched, err := s.provider.Fetch(ctx, s.base, s.codes)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"provider": s.provider.Name(),
			"base":     s.base,
		}).WithError(err).Warn("Rate refresh failed, keeping previous rates")
		return s.Current(ctx), fmt.Errorf("refresh rates from %s: %w", s.provider.Name(), err)
	}

	previous := s.Current(ctx)
	snap := &Snapshot{
		Base:      s.base,
		Quotes:    make([]Quote, 0, len(s.codes)),
		Provider:  s.provider.Name(),
		Source:    SourceLive,
		UpdatedAt: time.Now().UTC(),
	}
	for _, code := range s.codes {
		q := Quote{Currency: LookupCurrency(code), Rate: fetched[code]}
		if prev, ok := previous.Quote(code); ok && previous.Source != SourceFallback && prev.Rate.IsPositive() {
			change := q.Rate.Sub(prev.Rate).Div(prev.Rate).Mul(hundred).Round(2)
			q.Change = &change
		}
		snap.Quotes = append(snap.Quotes, q)
	}

	s.cache.Set(s.base, snap, 1)
	s.cache.Wait()

	if s.store != nil {
		if err := s.store.SaveSnapshot(ctx, snap); err != nil {
			s.log.WithError(err).Warn("Failed to store rate snapshot")
		}
	}

	s.log.WithFields(logrus.Fields{
		"provider": snap.Provider,
		"base":     snap.Base,
		"quotes":   len(snap.Quotes),
	}).Info("Exchange rates refreshed")
	return snap, nil
}

// Start refreshes once in the background and then on the configured
// schedule.
func (s *Service) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(s.schedule, s.scheduledRefresh); err != nil {
		return fmt.Errorf("invalid rates schedule %q: %w", s.schedule, err)
	}
	s.cron = c
	c.Start()
	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.scheduledRefresh()
	}()

	s.log.WithField("schedule", s.schedule).Info("Exchange rate refresh scheduled")
	return nil
}

// Stop halts the schedule and waits for running refreshes, the initial one
// included, to finish.
func (s *Service) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.initial.Wait()
	s.cache.Close()
}

func (s *Service) scheduledRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	_, _ = s.Refresh(ctx)
}
