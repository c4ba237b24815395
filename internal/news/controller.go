package news

import (
	"context"
	"fmt"
	"time"

	"github.com/pders01/newsdesk/internal/debuglog"
)

// DefaultTimeout bounds a single fetch when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Request is a started fetch. Seq is the sequence token the outcome has to
// present to be committed.
type Request struct {
	Seq    uint64
	Query  Query
	Params RequestParams
}

// Outcome is the result of executing a Request.
type Outcome struct {
	Seq      uint64
	Articles []Article
	Err      error
}

// Controller owns the fetch state. It is driven from a single goroutine (the
// UI event loop): Begin, Retry and Commit must not be called concurrently.
// Execute only reads fields that never change after construction and may
// run on any goroutine.
type Controller struct {
	fetcher Fetcher
	timeout time.Duration

	seq     uint64
	state   State
	last    Query
	started bool
}

func NewController(fetcher Fetcher, timeout time.Duration) *Controller {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Controller{fetcher: fetcher, timeout: timeout}
}

// State returns a copy of the current fetch state.
func (c *Controller) State() State { return c.state }

// Query returns the query of the most recent Begin.
func (c *Controller) Query() Query { return c.last }

// Begin starts a new fetch cycle: the state becomes loading, any previous
// error or result is cleared and every earlier request becomes stale.
func (c *Controller) Begin(q Query) Request {
	c.seq++
	c.last = q
	c.started = true
	c.state = State{Phase: PhaseLoading, Seq: c.seq, Query: q}

	req := Request{Seq: c.seq, Query: q, Params: q.Params()}
	debuglog.WithFields(map[string]interface{}{
		"seq":    req.Seq,
		"params": req.Params.String(),
	}).Debugf("fetch started")
	return req
}

// Retry begins again with the last used query.
func (c *Controller) Retry() Request {
	return c.Begin(c.last)
}

// Started reports whether Begin has been called at least once.
func (c *Controller) Started() bool { return c.started }

// Execute performs the network call for req. It never returns an error or
// panics; failures are carried in the Outcome.
func (c *Controller) Execute(ctx context.Context, req Request) (out Outcome) {
	out.Seq = req.Seq
	defer func() {
		if r := recover(); r != nil {
			out.Articles = nil
			out.Err = fmt.Errorf("fetch panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	articles, err := c.fetcher.Fetch(ctx, req.Params)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && ctxErr != err {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		out.Err = err
		return out
	}
	if articles == nil {
		articles = []Article{}
	}
	out.Articles = articles
	return out
}

// Commit applies an outcome when it belongs to the latest request. Stale
// outcomes are dropped and Commit reports false.
func (c *Controller) Commit(out Outcome) bool {
	if out.Seq != c.seq {
		debuglog.Debugf("dropping stale fetch result seq=%d current=%d", out.Seq, c.seq)
		return false
	}
	if out.Err != nil {
		c.state = State{
			Phase: PhaseFailed,
			Err:   ErrorMessage(out.Err),
			Seq:   out.Seq,
			Query: c.last,
		}
		debuglog.Warnf("fetch %d failed: %v", out.Seq, out.Err)
		return true
	}
	c.state = State{
		Phase:    PhaseLoaded,
		Articles: out.Articles,
		Seq:      out.Seq,
		Query:    c.last,
	}
	debuglog.Infof("fetch %d loaded %d articles", out.Seq, len(out.Articles))
	return true
}

// Load runs a whole cycle synchronously and returns the resulting state.
func (c *Controller) Load(ctx context.Context, q Query) State {
	req := c.Begin(q)
	c.Commit(c.Execute(ctx, req))
	return c.state
}
