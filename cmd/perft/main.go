package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/justinabrahms/chesscore/internal/chess"
	"github.com/justinabrahms/chesscore/internal/refcheck"
)

func main() {
	fen := flag.String("fen", chess.StartFEN, "FEN string (defaults to initial position)")
	depth := flag.Int("depth", 0, "Perft depth (required)")
	divide := flag.Bool("divide", false, "Print per-move node counts at root")
	workers := flag.Int("workers", runtime.NumCPU(), "Root moves searched in parallel")
	verify := flag.String("verify", "", "Compare node counts against a reference move generator (notnil, dragontoothmg, all)")
	walk := flag.Bool("walk", false, "With -verify, compare legal move lists at every node instead of counts")
	cpuProf := flag.String("cpuprofile", "", "Write CPU profile to file during run")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *depth <= 0 {
		fmt.Fprintln(os.Stderr, "-depth must be > 0")
		os.Exit(2)
	}

	pos, err := chess.ParseFEN(*fen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ParseFEN error: %v\n", err)
		os.Exit(2)
	}

	if *verify != "" {
		os.Exit(runVerify(pos, *depth, *verify, *walk))
	}

	if *divide {
		div := chess.PerftDivide(pos, *depth)
		moves := make([]string, 0, len(div))
		var sum uint64
		for m, n := range div {
			moves = append(moves, m)
			sum += n
		}
		sort.Strings(moves)
		for _, m := range moves {
			fmt.Printf("%s: %d\n", m, div[m])
		}
		fmt.Printf("Total: %d\n", sum)
		return
	}

	if *cpuProf != "" {
		f, err := os.Create(*cpuProf)
		if err != nil {
			log.Fatal().Err(err).Str("path", *cpuProf).Msg("Failed to create CPU profile")
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("Failed to start CPU profile")
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	start := time.Now()
	nodes, err := chess.ParallelPerft(context.Background(), pos, *depth, *workers)
	if err != nil {
		log.Fatal().Err(err).Msg("Perft failed")
	}
	elapsed := time.Since(start)
	nps := float64(nodes) / elapsed.Seconds()

	fmt.Printf("%d \t\t%d \t\t%s \t%.0f\n", *depth, nodes, elapsed, nps)
}

func references(name string) ([]refcheck.Reference, error) {
	if name == "all" {
		return refcheck.All(), nil
	}
	ref, err := refcheck.Named(name)
	if err != nil {
		return nil, err
	}
	return []refcheck.Reference{ref}, nil
}

// runVerify checks the position against each requested reference and
// returns the process exit code.
func runVerify(pos *chess.Position, depth int, name string, walk bool) int {
	refs, err := references(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	code := 0
	for _, ref := range refs {
		if walk {
			mismatches, err := refcheck.Walk(pos, depth, ref)
			if err != nil {
				log.Error().Err(err).Str("reference", ref.Name()).Msg("Walk failed")
				return 1
			}
			for _, m := range mismatches {
				fmt.Println(m.String())
				code = 1
			}
			if len(mismatches) == 0 {
				log.Info().Str("reference", ref.Name()).Int("depth", depth).Msg("Move lists agree")
			}
			continue
		}

		res, err := refcheck.ComparePerft(pos, depth, ref)
		if err != nil {
			log.Error().Err(err).Str("reference", ref.Name()).Msg("Perft comparison failed")
			return 1
		}
		event := log.Info()
		if !res.Agrees() {
			event = log.Error()
			code = 1
		}
		event.Str("reference", res.Reference).
			Int("depth", res.Depth).
			Uint64("engine", res.Engine).
			Uint64("expected", res.Expected).
			Msg("Perft comparison")
	}
	return code
}
