// Package cartsync keeps an optimistic local mirror of the server-side cart.
// Quantity edits apply to the mirror at once, so the storefront can render
// instantly, while writes to the commerce API are debounced per line item.
// Failed writes roll the mirror back to the last server-acknowledged value,
// and responses that were superseded by a newer write are discarded.
package cartsync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dstrand/vitrine/internal/commerce"
	"github.com/dstrand/vitrine/internal/domain"
)

// DefaultDebounce is the quiet period before a quantity change is written to
// the commerce API. Rapid edits to the same line within the window coalesce
// into a single write carrying the final quantity.
const DefaultDebounce = 500 * time.Millisecond

// MinQuantity is the floor for any cart line. Decrements clamp here; removal
// is an explicit, separate operation.
const MinQuantity = 1

// Config configures a Synchronizer.
type Config struct {
	// Client is the commerce API the mirror writes through to.
	Client commerce.Client

	// Session scopes cart operations to one customer session.
	Session string

	// Debounce is the per-item coalescing window. Zero means DefaultDebounce.
	Debounce time.Duration

	// Logger receives write failures and discarded stale responses.
	// Nil means slog.Default().
	Logger *slog.Logger

	// OnWriteResult, when set, is invoked after every completed (non-stale)
	// server write with the outcome. Used for metrics.
	OnWriteResult func(itemID int64, err error)
}

// itemState is the per-line synchronization bookkeeping.
type itemState struct {
	// qty is the optimistic local quantity.
	qty int

	// acked is the last server-acknowledged quantity, restored on a failed
	// write. Only meaningful while dirty.
	acked int

	// dirty marks a local edit that has not been acknowledged yet.
	dirty bool

	// seq numbers issued writes; a response is stale unless it carries the
	// newest sequence for the item.
	seq uint64

	// inflight counts outstanding server writes.
	inflight int

	// timer is the pending debounce timer, if any.
	timer *time.Timer
}

// Synchronizer mirrors server cart quantities with optimistic local state.
// All methods are safe for concurrent use.
type Synchronizer struct {
	client   commerce.Client
	session  string
	debounce time.Duration
	logger   *slog.Logger
	onWrite  func(itemID int64, err error)

	mu    sync.Mutex
	cart  *domain.Cart
	items map[int64]*itemState
}

// New creates a Synchronizer. Call SetCart with a server snapshot before
// editing quantities.
func New(cfg Config) *Synchronizer {
	debounce := cfg.Debounce
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Synchronizer{
		client:   cfg.Client,
		session:  cfg.Session,
		debounce: debounce,
		logger:   logger,
		onWrite:  cfg.OnWriteResult,
		items:    make(map[int64]*itemState),
	}
}

// SetCart replaces the mirror with a fresh server snapshot. Pending debounce
// timers are cancelled and local edits discarded: the snapshot is newer
// truth than anything queued before it.
func (s *Synchronizer) SetCart(cart *domain.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.items {
		if st.timer != nil {
			st.timer.Stop()
		}
		// Invalidate in-flight responses.
		st.seq++
	}

	s.cart = cart
	s.items = make(map[int64]*itemState, len(cart.Items))
	for _, item := range cart.Items {
		s.items[item.ID] = &itemState{qty: item.Quantity, acked: item.Quantity}
	}
}

// Cart returns the last server snapshot with local quantities overlaid.
func (s *Synchronizer) Cart() *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cart == nil {
		return nil
	}

	cart := *s.cart
	cart.Items = append([]domain.CartItem(nil), s.cart.Items...)
	total := decimal.Zero
	count := 0
	for i := range cart.Items {
		if st, ok := s.items[cart.Items[i].ID]; ok {
			cart.Items[i].Quantity = st.qty
		}
		total = total.Add(cart.Items[i].LineSubtotal())
		count += cart.Items[i].Quantity
	}
	cart.CartTotal = total
	cart.CartCount = count
	return &cart
}

// Quantity returns the local quantity for a line, or 0 when the line is not
// in the mirror.
func (s *Synchronizer) Quantity(itemID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.items[itemID]; ok {
		return st.qty
	}
	return 0
}

// Updating reports whether a server write for the line is in flight.
func (s *Synchronizer) Updating(itemID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.items[itemID]
	return ok && st.inflight > 0
}

// UpdateQuantity applies a quantity delta to a line: the mirror changes
// immediately (clamped to MinQuantity) and a debounced write is scheduled.
// Returns the new local quantity.
func (s *Synchronizer) UpdateQuantity(itemID int64, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.items[itemID]
	if !ok {
		return 0, domain.ErrCartItemNotFound
	}

	next := st.qty + delta
	if next < MinQuantity {
		next = MinQuantity
	}

	if !st.dirty {
		st.acked = st.qty
		st.dirty = true
	}
	st.qty = next

	if st.timer != nil {
		st.timer.Stop()
	}
	st.timer = time.AfterFunc(s.debounce, func() { s.flush(itemID) })

	return next, nil
}

// flush writes the current local quantity for a line to the commerce API.
// Runs on the debounce timer goroutine.
func (s *Synchronizer) flush(itemID int64) {
	s.mu.Lock()
	st, ok := s.items[itemID]
	if !ok || !st.dirty {
		s.mu.Unlock()
		return
	}
	qty := st.qty
	prior := st.acked
	st.seq++
	seq := st.seq
	st.inflight++
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), commerce.DefaultTimeout)
	defer cancel()

	cart, err := s.client.UpdateItemQuantity(ctx, s.session, itemID, qty)

	s.mu.Lock()
	st.inflight--

	if seq != st.seq {
		// A newer write was issued while this one was in flight. Whatever
		// this response says is no longer the freshest truth; drop it.
		s.mu.Unlock()
		s.logger.Debug("cartsync: discarded stale response", "item_id", itemID, "qty", qty)
		return
	}

	// A local edit made while this write was in flight supersedes it. The
	// edit's own debounce timer carries the fresh quantity, so this response
	// must not roll back or overwrite the newer local state.
	superseded := st.qty != qty

	if err != nil {
		if superseded {
			s.mu.Unlock()
			s.logger.Debug("cartsync: superseded write failed, newer edit pending", "item_id", itemID, "qty", qty)
			return
		}

		// Compensating action: the optimistic value diverged from the
		// server, restore the last acknowledged quantity.
		st.qty = prior
		st.dirty = false
		s.mu.Unlock()

		s.logger.Warn("cartsync: quantity update failed, rolled back",
			"item_id", itemID,
			"qty", qty,
			"restored", prior,
			"error", err,
		)
		if s.onWrite != nil {
			s.onWrite(itemID, err)
		}
		return
	}

	st.acked = qty
	if !superseded {
		st.dirty = false
	}
	if cart != nil {
		s.adoptSnapshotLocked(cart)
	}
	s.mu.Unlock()

	if s.onWrite != nil {
		s.onWrite(itemID, nil)
	}
}

// adoptSnapshotLocked replaces the server snapshot while preserving local
// state for lines that still have unflushed edits.
func (s *Synchronizer) adoptSnapshotLocked(cart *domain.Cart) {
	s.cart = cart
	for _, item := range cart.Items {
		st, ok := s.items[item.ID]
		if !ok {
			s.items[item.ID] = &itemState{qty: item.Quantity, acked: item.Quantity}
			continue
		}
		if !st.dirty && st.inflight == 0 {
			st.qty = item.Quantity
			st.acked = item.Quantity
		}
	}
}

// RemoveItem deletes a line, immediately and without debouncing. On success
// the line leaves both server and mirror; on failure the mirror is left
// untouched and the error is returned for the caller to surface.
func (s *Synchronizer) RemoveItem(ctx context.Context, itemID int64) error {
	s.mu.Lock()
	st, ok := s.items[itemID]
	if !ok {
		s.mu.Unlock()
		return domain.ErrCartItemNotFound
	}
	if st.timer != nil {
		st.timer.Stop()
	}
	// Invalidate any in-flight quantity write for the line.
	st.seq++
	s.mu.Unlock()

	if err := s.client.RemoveItem(ctx, s.session, itemID); err != nil {
		// The line stays in the mirror. Any quantity edit whose timer was
		// stopped above still needs a write, so re-arm the debounce.
		s.mu.Lock()
		if st, ok := s.items[itemID]; ok && st.dirty {
			st.timer = time.AfterFunc(s.debounce, func() { s.flush(itemID) })
		}
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, itemID)
	if s.cart != nil {
		for i, item := range s.cart.Items {
			if item.ID == itemID {
				s.cart.Items = append(s.cart.Items[:i], s.cart.Items[i+1:]...)
				break
			}
		}
	}
	return nil
}

// Flush forces any pending debounced writes out immediately. Used on
// checkout entry so totals are computed against settled quantities.
func (s *Synchronizer) Flush() {
	s.mu.Lock()
	var pending []int64
	for id, st := range s.items {
		if st.timer != nil && st.timer.Stop() {
			pending = append(pending, id)
		}
	}
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, id := range pending {
		wg.Add(1)
		go func(itemID int64) {
			defer wg.Done()
			s.flush(itemID)
		}(id)
	}
	wg.Wait()
}

// Stop cancels all pending debounce timers without flushing.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.items {
		if st.timer != nil {
			st.timer.Stop()
		}
		st.seq++
	}
}
