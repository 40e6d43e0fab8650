package pow

import (
	"context"
	"math"
	"strconv"
	"sync/atomic"

	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
	"golang.org/x/sync/errgroup"
)

// sealParallel splits the nonce space into o.workers strides. Worker w
// checks w, w+n, w+2n and so on. A worker stops once its next nonce is
// larger than the best solution found so far, which guarantees every
// nonce below the final answer has been checked by someone.
func sealParallel(ctx context.Context, hash digest.Func, payload string, prevHash string, difficulty int, o options) (Solution, error) {
	var best atomic.Uint64
	best.Store(math.MaxUint64)

	var attempts atomic.Uint64

	prefix := payload + prevHash
	stride := uint64(o.workers)

	g, ctx := errgroup.WithContext(ctx)

	for w := 0; w < o.workers; w++ {
		start := uint64(w)

		g.Go(func() error {
			buf := make([]byte, 0, len(prefix)+20)

			for nonce := start; nonce <= best.Load(); nonce += stride {
				if ctx.Err() != nil {
					return ctx.Err()
				}

				if n := attempts.Add(1); n%progressInterval == 0 {
					o.evHandler("pow: Seal: MINING: attempts[%d]", n)
				}

				buf = strconv.AppendUint(append(buf[:0], prefix...), nonce, 10)
				if !IsSolved(difficulty, hash(buf)) {
					continue
				}

				// Keep the smallest nonce reported by any worker.
				for {
					cur := best.Load()
					if nonce >= cur || best.CompareAndSwap(cur, nonce) {
						break
					}
				}

				return nil
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Solution{}, err
	}

	nonce := best.Load()

	sol := Solution{
		Hash:     hash(Candidate(payload, prevHash, nonce)),
		Nonce:    nonce,
		Attempts: attempts.Load(),
	}

	return sol, nil
}
