package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flavian-jumba/peerly-BE/internal/events"

	"github.com/rs/zerolog/log"
)

// Presence statuses.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusAway    = "away"
)

// TTL is the inactivity window after which a user counts as offline. Active
// clients are expected to heartbeat every minute or two to keep it alive.
const TTL = 5 * time.Minute

const keyPrefix = "user_status_"

// Key returns the cache key for one user's presence record.
func Key(userID uint) string {
	return fmt.Sprintf("%s%d", keyPrefix, userID)
}

// Record is one user's live presence. LastSeen is nil only on synthesized
// offline records.
type Record struct {
	UserID   uint       `json:"user_id"`
	Name     string     `json:"name"`
	Status   string     `json:"status"`
	LastSeen *time.Time `json:"last_seen"`
}

// UserRef is the (id, name) pair ListOnline scans over.
type UserRef struct {
	ID   uint
	Name string
}

// ProfileMirror maintains the denormalized online_status flag on user
// profiles. The flag is a best-effort mirror of the cache, never a source of
// truth; SetOnline writes it, ClearOnline heals it when a lookup finds the
// cache entry gone.
type ProfileMirror interface {
	SetOnline(ctx context.Context, userID uint, online bool) error
}

// Tracker maintains ephemeral per-user presence in an expiring store.
// Existence of an unexpired record is the sole truth of "is online".
type Tracker struct {
	store       Store
	mirror      ProfileMirror
	broadcaster events.Broadcaster
	now         func() time.Time
	ttl         time.Duration
}

func NewTracker(store Store, mirror ProfileMirror, broadcaster events.Broadcaster) *Tracker {
	return &Tracker{
		store:       store,
		mirror:      mirror,
		broadcaster: broadcaster,
		now:         time.Now,
		ttl:         TTL,
	}
}

// WithClock overrides the tracker clock for tests.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// SetStatus writes the user's presence record with a fresh TTL and
// broadcasts the change. The broadcast is fire-and-forget.
func (t *Tracker) SetStatus(ctx context.Context, userID uint, name, status string) (Record, error) {
	seen := t.now()
	rec := Record{
		UserID:   userID,
		Name:     name,
		Status:   status,
		LastSeen: &seen,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("marshal presence record: %w", err)
	}
	if err := t.store.Put(ctx, Key(userID), data, t.ttl); err != nil {
		return Record{}, fmt.Errorf("store presence record: %w", err)
	}

	events.Emit(ctx, t.broadcaster, events.New(events.UserStatusChanged, events.ChannelUserStatus, map[string]interface{}{
		"user_id":   userID,
		"name":      name,
		"status":    status,
		"last_seen": seen,
	}))

	return rec, nil
}

// Heartbeat refreshes the TTL with status online and opportunistically sets
// the denormalized profile flag. Called periodically by active clients.
func (t *Tracker) Heartbeat(ctx context.Context, userID uint, name string) (Record, error) {
	if t.mirror != nil {
		if err := t.mirror.SetOnline(ctx, userID, true); err != nil {
			log.Warn().Err(err).Uint("user_id", userID).Msg("presence mirror update failed")
		}
	}
	return t.SetStatus(ctx, userID, name, StatusOnline)
}

// GetStatus returns the live record, or a synthesized offline record with a
// null last_seen when the cache entry is absent or expired. The denormalized
// profile flag is never consulted as a fallback; instead, a miss triggers
// lazy reconciliation that clears a stale flag.
func (t *Tracker) GetStatus(ctx context.Context, userID uint, name string) Record {
	data, ok, err := t.store.Get(ctx, Key(userID))
	if err != nil {
		// store unavailable degrades to offline rather than erroring the caller
		log.Warn().Err(err).Uint("user_id", userID).Msg("presence store unavailable")
		return offline(userID, name)
	}
	if !ok {
		t.reconcile(ctx, userID)
		return offline(userID, name)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		log.Warn().Err(err).Uint("user_id", userID).Msg("corrupt presence record")
		return offline(userID, name)
	}
	return rec
}

// ListOnline scans the given users and returns those with a live record.
// Cost is linear in total user count; presence keeps no online-set index.
func (t *Tracker) ListOnline(ctx context.Context, users []UserRef) []Record {
	online := make([]Record, 0)
	for _, u := range users {
		data, ok, err := t.store.Get(ctx, Key(u.ID))
		if err != nil || !ok {
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		online = append(online, rec)
	}
	return online
}

// IsOnline reports whether a live record exists for the user, reconciling
// the profile flag on a miss.
func (t *Tracker) IsOnline(ctx context.Context, userID uint) bool {
	_, ok, err := t.store.Get(ctx, Key(userID))
	if err != nil {
		return false
	}
	if !ok {
		t.reconcile(ctx, userID)
	}
	return ok
}

// reconcile clears the denormalized flag after a cache miss, so the mirror
// cannot drift to a permanent "online".
func (t *Tracker) reconcile(ctx context.Context, userID uint) {
	if t.mirror == nil {
		return
	}
	if err := t.mirror.SetOnline(ctx, userID, false); err != nil {
		log.Warn().Err(err).Uint("user_id", userID).Msg("presence reconciliation failed")
	}
}

func offline(userID uint, name string) Record {
	return Record{
		UserID:   userID,
		Name:     name,
		Status:   StatusOffline,
		LastSeen: nil,
	}
}
