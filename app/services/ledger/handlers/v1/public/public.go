// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/powledger/business/sys/validate"
	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	h.Log.Infow("events", "traceid", v.TraceID, "status", "subscribed", "subscribers", h.Evts.Count())

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// AddBlock mines the posted payload into the next block of the chain.
func (h Handlers) AddBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var nb newBlock
	if err := web.Decode(r, &nb); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(nb); err != nil {
		return err
	}

	h.Log.Infow("add block", "traceid", v.TraceID, "index", h.State.NextIndex(), "difficulty", h.State.Difficulty())

	blk, sol, err := h.State.Append(ctx, *nb.Payload)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return errs.NewTrusted(err, http.StatusServiceUnavailable)
		}
		return errs.Ledger(err)
	}

	return web.Respond(ctx, w, toAppended(blk, sol), http.StatusCreated)
}

// QueryBlock returns the block for the specified index.
func (h Handlers) QueryBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	index, err := parseIndex(web.Param(r, "index"))
	if err != nil {
		return err
	}

	blk, err := h.State.QueryBlock(index)
	if err != nil {
		return errs.Ledger(err)
	}

	return web.Respond(ctx, w, toBlock(blk), http.StatusOK)
}

// BlocksByNumber returns all the blocks based on the specified to/from values.
func (h Handlers) BlocksByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	fromStr := web.Param(r, "from")
	if fromStr == "latest" || fromStr == "" {
		fromStr = fmt.Sprintf("%d", state.QueryLatest)
	}

	toStr := web.Param(r, "to")
	if toStr == "latest" || toStr == "" {
		toStr = fmt.Sprintf("%d", state.QueryLatest)
	}

	from, err := strconv.ParseUint(fromStr, 10, 64)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}
	to, err := strconv.ParseUint(toStr, 10, 64)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if from > to {
		return errs.NewTrusted(errors.New("from greater than to"), http.StatusBadRequest)
	}

	blocks, err := h.State.QueryBlocksByNumber(from, to)
	if err != nil {
		return errs.Ledger(err)
	}

	if len(blocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	out := make([]block, len(blocks))
	for i, blk := range blocks {
		out[i] = toBlock(blk)
	}

	return web.Respond(ctx, w, out, http.StatusOK)
}

// Tip returns the index and hash of the most recent block.
func (h Handlers) Tip(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	t := tip{
		Index:      h.State.Height(),
		Hash:       h.State.Tip(),
		Difficulty: h.State.Difficulty(),
	}

	return web.Respond(ctx, w, t, http.StatusOK)
}

// Verify audits the chain from genesis to the tip.
func (h Handlers) Verify(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	mode, err := chain.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		return errs.Ledger(err)
	}

	rpt, err := h.State.VerifyAll(ctx, mode)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, toReport(rpt), http.StatusOK)
}

// =============================================================================

func parseIndex(s string) (uint64, error) {
	if s == "latest" {
		return state.QueryLatest, nil
	}

	index, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errs.NewTrusted(fmt.Errorf("invalid block index %q", s), http.StatusBadRequest)
	}

	return index, nil
}
