// Package alignment holds the in-memory multiple sequence alignment shown by
// the viewer: a consensus secondary-structure row plus named sequence rows
// that all share the same column count.
package alignment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jpsank/breaker/internal/stockholm"
)

// Alignment symbols.
const (
	Gap       = '-'
	PairOpen  = '<'
	PairClose = '>'
)

var (
	ErrNoConsensus    = errors.New("alignment has no SS_cons row")
	ErrColumnMismatch = errors.New("sequence length differs from SS_cons length")
)

// Sequence is one aligned row.
type Sequence struct {
	Name     string
	Start    int
	End      int
	Reverse  bool
	Residues string
}

// Label returns the row label shown next to the residues.
func (s Sequence) Label() string {
	return s.Name
}

// Alignment is a consensus structure and its aligned sequences.
type Alignment struct {
	ConsensusStructure string
	Sequences          []Sequence
}

// Columns returns the number of alignment columns.
func (a *Alignment) Columns() int {
	return len(a.ConsensusStructure)
}

// Validate checks that every row spans the same columns as SS_cons.
func (a *Alignment) Validate() error {
	if a.ConsensusStructure == "" {
		return ErrNoConsensus
	}
	for _, s := range a.Sequences {
		if len(s.Residues) != a.Columns() {
			return fmt.Errorf("%w: %s has %d columns, SS_cons has %d",
				ErrColumnMismatch, s.Name, len(s.Residues), a.Columns())
		}
	}
	return nil
}

// IsGap reports whether ch marks a missing residue.
func IsGap(ch byte) bool {
	return ch == Gap
}

// IsPaired reports whether column carries a base-pair marker in SS_cons.
// Columns outside the alignment are never paired.
func (a *Alignment) IsPaired(column int) bool {
	if column < 0 || column >= len(a.ConsensusStructure) {
		return false
	}
	ch := a.ConsensusStructure[column]
	return ch == PairOpen || ch == PairClose
}

// Residue returns the character of sequence i at column.
func (a *Alignment) Residue(i, column int) (byte, bool) {
	if i < 0 || i >= len(a.Sequences) {
		return 0, false
	}
	res := a.Sequences[i].Residues
	if column < 0 || column >= len(res) {
		return 0, false
	}
	return res[column], true
}

// FromStockholm builds an alignment from a parsed Stockholm file, keeping the
// file's row order.
func FromStockholm(f *stockholm.File) (*Alignment, error) {
	ss, ok := f.SSCons()
	if !ok {
		return nil, ErrNoConsensus
	}
	a := &Alignment{ConsensusStructure: ss}
	for _, rec := range f.Records {
		a.Sequences = append(a.Sequences, parseSequence(rec))
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// LoadFile reads and validates a Stockholm alignment from disk.
func LoadFile(path string) (*Alignment, error) {
	f, err := stockholm.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	a, err := FromStockholm(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return a, nil
}

// parseSequence splits a "name/start-end" identifier. Identifiers without
// coordinates are used as-is. A start above the end marks the reverse
// strand; residues stay in alignment order either way.
func parseSequence(rec stockholm.Record) Sequence {
	s := Sequence{Name: rec.Name, Residues: rec.Text}

	name, coords, ok := strings.Cut(rec.Name, "/")
	if !ok {
		return s
	}
	from, to, ok := strings.Cut(coords, "-")
	if !ok {
		return s
	}
	start, err := strconv.Atoi(from)
	if err != nil {
		return s
	}
	end, err := strconv.Atoi(to)
	if err != nil {
		return s
	}
	if start > end {
		start, end = end, start
		s.Reverse = true
	}
	s.Name, s.Start, s.End = name, start, end
	return s
}
