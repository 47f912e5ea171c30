// Package keygen builds the proving and verifying keys the folding core
// consumes from a set of source gates and the concrete column data circuit
// synthesis produced. Commitment-key / SRS loading is an external
// collaborator and has no presence here; this package only compiles gates
// and assembles the resulting shapes.
package keygen

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/giuliop/protofold/foldfrerr"
	"github.com/giuliop/protofold/gate"
	"github.com/giuliop/protofold/internal/logging"
	"github.com/giuliop/protofold/pk"
)

// Columns bundles the concrete per-column data circuit synthesis and
// floor planning produced: selector booleans and fixed-column values,
// indexed [column][row].
type Columns struct {
	Selectors [][]bool
	Fixed     [][]fr.Element
}

// Build compiles every source gate in gates via gate.Compile, aggregates
// the per-challenge maximum power referenced across all of them into
// shape.MaxChallengePower, and assembles the resulting ProvingKey. Callers
// should pass shape with every field populated except MaxChallengePower,
// which Build computes.
func Build(gates []gate.SourceGate, shape pk.ConstraintShape, cols Columns) (*pk.ProvingKey, error) {
	if len(gates) == 0 {
		return nil, fmt.Errorf("keygen: no gates supplied: %w", foldfrerr.ErrInvalidInstances)
	}
	log := logging.Logger()
	log.Debug().Int("numGates", len(gates)).Int("domainSize", shape.DomainSize).Msg("compiling gates")

	compiled := make([]*gate.CompiledGate, len(gates))
	for i, g := range gates {
		cg, err := gate.Compile(g)
		if err != nil {
			return nil, fmt.Errorf("keygen: compiling gate %d: %w", i, err)
		}
		compiled[i] = cg
	}

	maxPower := make([]int, shape.NumChallenges)
	for _, cg := range compiled {
		for _, c := range cg.Query.Challenges {
			if c.Index >= len(maxPower) {
				return nil, fmt.Errorf("keygen: gate references challenge %d, shape has %d: %w",
					c.Index, len(maxPower), foldfrerr.ErrInternalInvariantViolated)
			}
			if c.Power > maxPower[c.Index] {
				maxPower[c.Index] = c.Power
			}
		}
	}
	shape.MaxChallengePower = maxPower
	log.Info().Int("numGates", len(compiled)).Ints("maxChallengePower", maxPower).Msg("keygen: proving key assembled")

	return &pk.ProvingKey{
		Shape:     shape,
		Gates:     compiled,
		Selectors: cols.Selectors,
		Fixed:     cols.Fixed,
	}, nil
}
