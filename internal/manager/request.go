package manager

import (
	"context"
	"errors"

	"github.com/nixlim/evman/internal/events"
)

// Op names a remote or local operation of the view-model.
type Op string

const (
	OpLoad   Op = "load"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpLogin  Op = "login"
	OpLogout Op = "logout"
)

// ErrInFlight is returned when an identical operation is still pending.
var ErrInFlight = errors.New("request already in flight")

// Request is a prepared remote call. It captures its inputs when prepared
// and touches no view-model state while running, so Run may execute on
// any goroutine.
type Request struct {
	Op    Op
	Token string

	slot string
	run  func(ctx context.Context) Result
}

// Run performs the call and returns its Result for Apply.
func (r Request) Run(ctx context.Context) Result {
	res := r.run(ctx)
	res.Op = r.Op
	res.Token = r.Token
	res.slot = r.slot
	return res
}

// Result is the outcome of a Request. Only the fields relevant to Op are set.
type Result struct {
	Op    Op
	Token string
	Err   error

	Events []events.Event // OpLoad
	Event  events.Event   // OpCreate, OpUpdate
	ID     events.ID      // OpDelete
	JWT    string         // OpLogin

	slot string
}

// in-flight slot keys
const (
	slotLoad   = "load"
	slotSubmit = "submit"
	slotLogin  = "login"
)

func deleteSlot(id events.ID) string { return "delete:" + id.String() }

type pending struct {
	op    Op
	token string
}
