package refcheck

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/justinabrahms/chesscore/internal/chess"
)

// Mismatch describes a position where the engine and a reference disagree.
type Mismatch struct {
	Reference string   `json:"reference"`
	FEN       string   `json:"fen"`
	Missing   []string `json:"missing,omitempty"` // reference moves the engine lacks
	Extra     []string `json:"extra,omitempty"`   // engine moves the reference lacks
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s disagrees on %s: missing %v, extra %v", m.Reference, m.FEN, m.Missing, m.Extra)
}

// EngineMoves returns the legal moves of p in sorted UCI form.
func EngineMoves(p *chess.Position) []string {
	moves := p.AllLegalMoves()
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.String())
	}
	sort.Strings(out)
	return out
}

// Compare checks the legal move set of p against ref. It returns nil when
// both agree.
func Compare(p *chess.Position, ref Reference) (*Mismatch, error) {
	fen := p.FEN()
	want, err := ref.LegalMoves(fen)
	if err != nil {
		return nil, err
	}
	missing, extra := diff(want, EngineMoves(p))
	if len(missing) == 0 && len(extra) == 0 {
		return nil, nil
	}
	return &Mismatch{Reference: ref.Name(), FEN: fen, Missing: missing, Extra: extra}, nil
}

// Walk compares every node of the move tree below p down to depth and
// collects the disagreements. Finished positions are compared but not
// expanded. p is left unchanged.
func Walk(p *chess.Position, depth int, ref Reference) ([]Mismatch, error) {
	var out []Mismatch
	err := walk(p.Clone(), depth, ref, &out)
	return out, err
}

func walk(p *chess.Position, depth int, ref Reference, out *[]Mismatch) error {
	mm, err := Compare(p, ref)
	if err != nil {
		return err
	}
	if mm != nil {
		log.Warn().Str("reference", mm.Reference).Str("fen", mm.FEN).
			Strs("missing", mm.Missing).Strs("extra", mm.Extra).
			Msg("Move generation mismatch")
		*out = append(*out, *mm)
		// children of a broken node would only repeat the error
		return nil
	}
	if depth <= 0 || p.Ended() {
		return nil
	}
	for _, m := range p.AllLegalMoves() {
		child := p.Clone()
		if err := child.Apply(m); err != nil {
			return fmt.Errorf("apply %s on %s: %w", m, p.FEN(), err)
		}
		if err := walk(child, depth-1, ref, out); err != nil {
			return err
		}
	}
	return nil
}

// PerftResult is one engine/reference node count comparison.
type PerftResult struct {
	Reference string `json:"reference"`
	Depth     int    `json:"depth"`
	Engine    uint64 `json:"engine"`
	Expected  uint64 `json:"expected"`
}

func (r PerftResult) Agrees() bool { return r.Engine == r.Expected }

// ComparePerft counts nodes with the engine and with ref.
func ComparePerft(p *chess.Position, depth int, ref Reference) (PerftResult, error) {
	expected, err := ref.Perft(p.FEN(), depth)
	if err != nil {
		return PerftResult{}, err
	}
	return PerftResult{
		Reference: ref.Name(),
		Depth:     depth,
		Engine:    chess.Perft(p.Clone(), depth),
		Expected:  expected,
	}, nil
}

// diff returns the entries of want missing from got and the entries of got
// missing from want. Both inputs must be sorted.
func diff(want, got []string) (missing, extra []string) {
	i, j := 0, 0
	for i < len(want) && j < len(got) {
		switch {
		case want[i] == got[j]:
			i++
			j++
		case want[i] < got[j]:
			missing = append(missing, want[i])
			i++
		default:
			extra = append(extra, got[j])
			j++
		}
	}
	missing = append(missing, want[i:]...)
	extra = append(extra, got[j:]...)
	return missing, extra
}
