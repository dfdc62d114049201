package chess

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Perft counts the leaf nodes of the legal move tree to the given depth.
// Terminal draws by counter are ignored; only move legality matters.
func Perft(p *Position, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := p.AllLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		p.applyLegal(m)
		nodes += Perft(p, depth-1)
		p.undoLegal()
	}
	return nodes
}

// undoLegal is Undo without the pending-promotion guard.
func (p *Position) undoLegal() {
	if err := p.Undo(); err != nil {
		panic(err)
	}
}

// PerftDivide returns the node count below each root move, keyed by UCI.
func PerftDivide(p *Position, depth int) map[string]uint64 {
	out := make(map[string]uint64)
	if depth <= 0 {
		return out
	}
	for _, m := range p.AllLegalMoves() {
		p.applyLegal(m)
		out[m.String()] = Perft(p, depth-1)
		p.undoLegal()
	}
	return out
}

// ParallelPerft runs Perft with one cloned position per root move, at most
// workers at a time. The receiver is left untouched.
func ParallelPerft(ctx context.Context, p *Position, depth, workers int) (uint64, error) {
	if depth <= 1 {
		return Perft(p.Clone(), depth), nil
	}
	var nodes atomic.Uint64
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for _, m := range p.AllLegalMoves() {
		m := m
		branch := p.Clone()
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			branch.applyLegal(m)
			nodes.Add(Perft(branch, depth-1))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return nodes.Load(), nil
}
