// Package manager is the event manager view-model: it owns the event
// collection, the form, and the session, and mediates every exchange with
// the remote events API.
//
// Remote operations are split in three steps so a UI loop never blocks:
// Prepare* reserves the operation and captures its inputs, Request.Run does
// the HTTP call on any goroutine, and Apply folds the Result back into
// state and emits the notification. Load, Submit, Delete and Login chain
// the three for callers that can block.
//
// A ViewModel is not safe for concurrent use; only Request.Run may run
// off the owning goroutine.
package manager

import (
	"context"
	"fmt"
	"log"
	"slices"

	"github.com/google/uuid"

	"github.com/nixlim/evman/internal/api"
	"github.com/nixlim/evman/internal/events"
	"github.com/nixlim/evman/internal/notify"
	"github.com/nixlim/evman/internal/session"
)

// Remote is the subset of the API client the view-model uses.
type Remote interface {
	ListEvents(ctx context.Context) ([]events.Event, error)
	CreateEvent(ctx context.Context, sess session.Session, attrs events.Attributes) (events.Event, error)
	UpdateEvent(ctx context.Context, sess session.Session, id events.ID, attrs events.Attributes) (events.Event, error)
	DeleteEvent(ctx context.Context, sess session.Session, id events.ID) error
	Login(ctx context.Context, creds api.Credentials) (string, error)
}

// Notifier reports operation outcomes to the user.
type Notifier interface {
	Success(messageID string)
	Failure(messageID string, err error)
}

type ViewModel struct {
	remote   Remote
	cache    session.Cache
	slot     string
	creds    api.Credentials
	notifier Notifier
	newToken func() string

	session session.Session
	events  events.Collection
	form    Form
	loaded  bool
	loadErr error
	pending map[string]pending
}

type Option func(*ViewModel)

// WithNotifier sets where outcome notifications go.
func WithNotifier(n Notifier) Option {
	return func(vm *ViewModel) { vm.notifier = n }
}

// WithCredentials sets the identifier and password Login posts.
func WithCredentials(c api.Credentials) Option {
	return func(vm *ViewModel) { vm.creds = c }
}

// WithTokenSlot sets the cache slot holding the bearer token.
func WithTokenSlot(slot string) Option {
	return func(vm *ViewModel) { vm.slot = slot }
}

// WithRequestTokens replaces the request token generator.
func WithRequestTokens(fn func() string) Option {
	return func(vm *ViewModel) { vm.newToken = fn }
}

// New creates a view-model and restores the session from cache.
func New(remote Remote, cache session.Cache, opts ...Option) *ViewModel {
	vm := &ViewModel{
		remote:   remote,
		cache:    cache,
		slot:     session.DefaultSlot,
		newToken: uuid.NewString,
		pending:  make(map[string]pending),
	}
	for _, opt := range opts {
		opt(vm)
	}

	sess, err := session.Restore(cache, vm.slot)
	if err != nil {
		log.Printf("WARNING: %v", err)
	}
	vm.session = sess

	return vm
}

// Events returns a copy of the current collection.
func (vm *ViewModel) Events() events.Collection { return slices.Clone(vm.events) }

// Form returns the current form.
func (vm *ViewModel) Form() Form { return vm.form }

// Session returns the current session.
func (vm *ViewModel) Session() session.Session { return vm.session }

// Authenticated reports whether a token is held. It is not re-validated
// against the server.
func (vm *ViewModel) Authenticated() bool { return vm.session.Authenticated() }

// Loaded reports whether a load has ever succeeded.
func (vm *ViewModel) Loaded() bool { return vm.loaded }

// LoadErr returns the error of the most recent load, or nil.
func (vm *ViewModel) LoadErr() error { return vm.loadErr }

// Busy reports whether any request of op is pending.
func (vm *ViewModel) Busy(op Op) bool {
	for _, p := range vm.pending {
		if p.op == op {
			return true
		}
	}
	return false
}

// Pending returns the number of outstanding requests.
func (vm *ViewModel) Pending() int { return len(vm.pending) }

// SetFields updates the form's text fields and keeps its mode.
func (vm *ViewModel) SetFields(name, description string) {
	vm.form.Name = name
	vm.form.Description = description
}

// BeginEdit fills the form from e and switches it to Edit(e.ID).
func (vm *ViewModel) BeginEdit(e events.Event) {
	vm.form = formFor(e)
}

// CancelEdit clears the form back to Create mode.
func (vm *ViewModel) CancelEdit() {
	vm.form = Form{}
}

// Logout forgets the cached token. It always succeeds locally; a cache
// failure is logged.
func (vm *ViewModel) Logout() {
	if err := vm.cache.Delete(vm.slot); err != nil {
		log.Printf("WARNING: clearing cached token: %v", err)
	}
	vm.session = session.Anonymous()
	vm.notify(notify.MsgLoggedOut, nil)
}

func (vm *ViewModel) reserve(slot string, op Op) (string, error) {
	if _, busy := vm.pending[slot]; busy {
		return "", fmt.Errorf("%s: %w", op, ErrInFlight)
	}
	token := vm.newToken()
	vm.pending[slot] = pending{op: op, token: token}
	return token, nil
}

// PrepareLoad reserves a fetch of the whole collection.
func (vm *ViewModel) PrepareLoad() (Request, error) {
	token, err := vm.reserve(slotLoad, OpLoad)
	if err != nil {
		return Request{}, err
	}
	remote := vm.remote
	return Request{
		Op:    OpLoad,
		Token: token,
		slot:  slotLoad,
		run: func(ctx context.Context) Result {
			evts, err := remote.ListEvents(ctx)
			return Result{Events: evts, Err: err}
		},
	}, nil
}

// PrepareSubmit reserves a create or update of form, chosen by form.Mode.
// The current session is captured for the Authorization header; an
// anonymous session is sent as is.
func (vm *ViewModel) PrepareSubmit(form Form) (Request, error) {
	op := form.Mode.Op()
	token, err := vm.reserve(slotSubmit, op)
	if err != nil {
		return Request{}, err
	}

	remote := vm.remote
	sess := vm.session
	attrs := form.Attributes()
	target := form.Mode.Target()

	run := func(ctx context.Context) Result {
		e, err := remote.CreateEvent(ctx, sess, attrs)
		return Result{Event: e, Err: err}
	}
	if form.Mode.Editing() {
		run = func(ctx context.Context) Result {
			e, err := remote.UpdateEvent(ctx, sess, target, attrs)
			return Result{Event: e, Err: err}
		}
	}

	return Request{Op: op, Token: token, slot: slotSubmit, run: run}, nil
}

// PrepareDelete reserves a delete of event id. Deletes of different events
// may be pending at once.
func (vm *ViewModel) PrepareDelete(id events.ID) (Request, error) {
	slot := deleteSlot(id)
	token, err := vm.reserve(slot, OpDelete)
	if err != nil {
		return Request{}, err
	}
	remote := vm.remote
	sess := vm.session
	return Request{
		Op:    OpDelete,
		Token: token,
		slot:  slot,
		run: func(ctx context.Context) Result {
			return Result{ID: id, Err: remote.DeleteEvent(ctx, sess, id)}
		},
	}, nil
}

// PrepareLogin reserves a login with the configured credentials.
func (vm *ViewModel) PrepareLogin() (Request, error) {
	token, err := vm.reserve(slotLogin, OpLogin)
	if err != nil {
		return Request{}, err
	}
	remote := vm.remote
	creds := vm.creds
	return Request{
		Op:    OpLogin,
		Token: token,
		slot:  slotLogin,
		run: func(ctx context.Context) Result {
			jwt, err := remote.Login(ctx, creds)
			return Result{JWT: jwt, Err: err}
		},
	}, nil
}

// Apply folds res into state and emits its notification. It returns false
// and changes nothing when res does not answer the pending request of its
// slot.
func (vm *ViewModel) Apply(res Result) bool {
	p, ok := vm.pending[res.slot]
	if !ok || p.token != res.Token {
		return false
	}
	delete(vm.pending, res.slot)

	switch res.Op {
	case OpLoad:
		vm.applyLoad(res)
	case OpCreate:
		vm.applyCreate(res)
	case OpUpdate:
		vm.applyUpdate(res)
	case OpDelete:
		vm.applyDelete(res)
	case OpLogin:
		vm.applyLogin(res)
	default:
		log.Printf("WARNING: result for unknown operation %q ignored", res.Op)
		return false
	}
	return true
}

// applyLoad never notifies: a failed load is only logged and the previous
// collection, empty on first load, stays in place.
func (vm *ViewModel) applyLoad(res Result) {
	if res.Err != nil {
		log.Printf("ERROR: fetching events: %v", res.Err)
		vm.loadErr = res.Err
		return
	}
	vm.events = events.Collection(res.Events)
	vm.loaded = true
	vm.loadErr = nil
}

func (vm *ViewModel) applyCreate(res Result) {
	if res.Err != nil {
		log.Printf("ERROR: creating event: %v", res.Err)
		vm.notify(notify.MsgEventCreateFailed, res.Err)
		return
	}
	vm.events = vm.events.Append(res.Event)
	vm.form = Form{}
	vm.notify(notify.MsgEventCreated, nil)
}

// applyUpdate matches on the ID the server returned.
func (vm *ViewModel) applyUpdate(res Result) {
	if res.Err != nil {
		log.Printf("ERROR: updating event: %v", res.Err)
		vm.notify(notify.MsgEventUpdateFailed, res.Err)
		return
	}
	vm.events = vm.events.Replace(res.Event)
	vm.form = Form{}
	vm.notify(notify.MsgEventUpdated, nil)
}

func (vm *ViewModel) applyDelete(res Result) {
	if res.Err != nil {
		log.Printf("ERROR: deleting event %s: %v", res.ID, res.Err)
		vm.notify(notify.MsgEventDeleteFailed, res.Err)
		return
	}
	vm.events = vm.events.Remove(res.ID)
	if vm.form.Mode.Target() == res.ID {
		vm.form = Form{}
	}
	vm.notify(notify.MsgEventDeleted, nil)
}

func (vm *ViewModel) applyLogin(res Result) {
	if res.Err != nil {
		log.Printf("ERROR: logging in: %v", res.Err)
		vm.notify(notify.MsgLoginFailed, res.Err)
		return
	}
	if err := vm.cache.Set(vm.slot, res.JWT); err != nil {
		log.Printf("WARNING: caching token: %v", err)
	}
	vm.session = session.New(res.JWT)
	vm.notify(notify.MsgLoggedIn, nil)
}

func (vm *ViewModel) notify(messageID string, err error) {
	if vm.notifier == nil {
		return
	}
	if err != nil {
		vm.notifier.Failure(messageID, err)
		return
	}
	vm.notifier.Success(messageID)
}

// Load fetches the collection and applies it.
func (vm *ViewModel) Load(ctx context.Context) error {
	return vm.do(ctx, vm.PrepareLoad)
}

// Submit creates or updates according to form.Mode and applies the result.
func (vm *ViewModel) Submit(ctx context.Context, form Form) error {
	return vm.do(ctx, func() (Request, error) { return vm.PrepareSubmit(form) })
}

// Delete removes event id and applies the result.
func (vm *ViewModel) Delete(ctx context.Context, id events.ID) error {
	return vm.do(ctx, func() (Request, error) { return vm.PrepareDelete(id) })
}

// Login authenticates and applies the result.
func (vm *ViewModel) Login(ctx context.Context) error {
	return vm.do(ctx, vm.PrepareLogin)
}

func (vm *ViewModel) do(ctx context.Context, prepare func() (Request, error)) error {
	req, err := prepare()
	if err != nil {
		return err
	}
	res := req.Run(ctx)
	vm.Apply(res)
	return res.Err
}
