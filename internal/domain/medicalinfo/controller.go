package medicalinfo

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Controller keeps the edit form, the cached record list and the remote
// store in agreement. Operations block only while the store call is in
// flight; the mutex is never held across a store call, so a presentation
// layer may run operations on their own goroutines. Failures never escape:
// they are mapped to a message in the single error slot.
type Controller struct {
	store  Store
	logger zerolog.Logger

	mu        sync.Mutex
	form      Form
	assets    []*Record
	currentID string
	errMsg    string
}

// NewController creates a controller bound to store.
func NewController(store Store, logger zerolog.Logger) *Controller {
	return &Controller{
		store:  store,
		logger: logger.With().Str("component", "medicalinfo.controller").Logger(),
	}
}

// Init performs the first list load.
func (c *Controller) Init(ctx context.Context) {
	c.LoadAll(ctx)
}

// LoadAll fetches every record and replaces the cache with the result, in the
// order received. On failure the cache is left as it was.
func (c *Controller) LoadAll(ctx context.Context) {
	c.logger.Debug().Msg("listing records")
	records, err := c.store.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.settle(opLoad, err) {
		c.assets = cloneRecords(records)
		c.logger.Debug().Int("count", len(records)).Msg("record cache replaced")
	}
}

// AddAsset submits the form as a new record. The form is cleared before the
// store call and is not restored if the call fails. On success the form is
// cleared again and the list reloaded.
func (c *Controller) AddAsset(ctx context.Context) {
	c.mu.Lock()
	payload := c.form.createPayload()
	c.form.Reset()
	c.mu.Unlock()

	c.logger.Debug().Str("med_id", strVal(payload.MedID)).Msg("creating record")
	err := c.store.Create(ctx, payload)

	c.mu.Lock()
	ok := c.settle(opCreate, err)
	if ok {
		c.form.Reset()
	}
	c.mu.Unlock()

	if ok {
		c.LoadAll(ctx)
	}
}

// UpdateAsset writes the form's mutable fields to the record identified by id.
// The identifier comes from the caller, not from the form's medId field. The
// form is kept as is.
func (c *Controller) UpdateAsset(ctx context.Context, id string) {
	c.mu.Lock()
	payload := c.form.updatePayload()
	c.mu.Unlock()

	c.logger.Debug().Str("med_id", id).Msg("updating record")
	err := c.store.Update(ctx, id, payload)

	c.mu.Lock()
	ok := c.settle(opUpdate, err)
	c.mu.Unlock()

	if ok {
		c.LoadAll(ctx)
	}
}

// DeleteAsset deletes the record designated by the current selection.
func (c *Controller) DeleteAsset(ctx context.Context) {
	c.mu.Lock()
	id := c.currentID
	c.mu.Unlock()

	c.logger.Debug().Str("med_id", id).Msg("deleting record")
	err := c.store.Delete(ctx, id)

	c.mu.Lock()
	ok := c.settle(opDelete, err)
	c.mu.Unlock()

	if ok {
		c.LoadAll(ctx)
	}
}

// GetForm fetches one record and populates the form from it. On failure the
// form keeps whatever it held before the call.
func (c *Controller) GetForm(ctx context.Context, id string) {
	c.logger.Debug().Str("med_id", id).Msg("fetching record for edit")
	rec, err := c.store.Get(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.settle(opGet, err) {
		if rec == nil {
			rec = &Record{}
		}
		c.form.PopulateFrom(rec)
	}
}

// SetID designates the record targeted by DeleteAsset. It is not validated.
func (c *Controller) SetID(id string) {
	c.mu.Lock()
	c.currentID = id
	c.mu.Unlock()
}

// ResetForm sets the form to the empty snapshot.
func (c *Controller) ResetForm() {
	c.mu.Lock()
	c.form.Reset()
	c.mu.Unlock()
}

// SetField assigns a single form field.
func (c *Controller) SetField(f Field, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.Set(f, v)
}

// EditForm runs fn with exclusive access to the form.
func (c *Controller) EditForm(fn func(*Form)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.form)
}

// ToggleArrayMember toggles v in the named sequence field.
func (c *Controller) ToggleArrayMember(a ArrayField, v string) {
	c.mu.Lock()
	c.form.ToggleArrayMember(a, v)
	c.mu.Unlock()
}

// HasArrayMember reports whether v is in the named sequence field.
func (c *Controller) HasArrayMember(a ArrayField, v string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.HasArrayMember(a, v)
}

// Form returns a copy of the current form snapshot.
func (c *Controller) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.Clone()
}

// Assets returns a deep copy of the cached record list.
func (c *Controller) Assets() []*Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneRecords(c.assets)
}

// ErrorMessage returns the current error message, or "" when the last
// operation succeeded.
func (c *Controller) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// CurrentID returns the identifier set by SetID.
func (c *Controller) CurrentID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentID
}

// settle is the only writer of the error slot: success clears it, failure
// overwrites it with the mapped message. Callers hold c.mu.
func (c *Controller) settle(op operation, err error) bool {
	if err == nil {
		c.errMsg = ""
		return true
	}
	se := AsStoreError(err)
	c.errMsg = message(op, se)
	c.logger.Warn().
		Str("op", string(op)).
		Str("kind", se.Kind.String()).
		Str("reason", se.Reason).
		Msg("store call failed")
	return false
}
