// Package stockholm reads and writes alignments in the Stockholm 1.0 format.
//
// Sequence lines may be split across several blocks; the pieces are joined
// by sequence name in the order the names first appear. Markup lines
// (#=GF, #=GC, #=GS, #=GR) are kept. A repeated #=GF line is free text and
// is joined to the earlier one with a newline; the other kinds continue a
// row across blocks and are joined directly.
package stockholm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"unicode"
)

// Header is the required first line of a Stockholm file.
const Header = "# STOCKHOLM 1.0"

// Feature kinds.
const (
	KindFile     = "GF"
	KindColumn   = "GC"
	KindSequence = "GS"
	KindResidue  = "GR"
)

var (
	ErrHeader    = errors.New("missing '# STOCKHOLM 1.0' header")
	ErrNoRecords = errors.New("alignment has no sequences")
)

// ParseError reports a malformed line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("stockholm: line %d: %s", e.Line, e.Msg)
}

// Record is one aligned sequence.
type Record struct {
	Name string
	Text string
}

// File is a parsed Stockholm alignment.
type File struct {
	Records []Record

	// GF and GC features keyed by feature name.
	GF map[string]string
	GC map[string]string
	// GS and GR features keyed by sequence name, then feature name.
	GS map[string]map[string]string
	GR map[string]map[string]string

	gfOrder []string
	gcOrder []string
}

// New returns an empty file ready for records and features.
func New() *File {
	return &File{
		GF: make(map[string]string),
		GC: make(map[string]string),
		GS: make(map[string]map[string]string),
		GR: make(map[string]map[string]string),
	}
}

// Feature returns a file-level (GF) or column (GC) feature.
func (f *File) Feature(kind, name string) (string, bool) {
	var v string
	var ok bool
	switch kind {
	case KindFile:
		v, ok = f.GF[name]
	case KindColumn:
		v, ok = f.GC[name]
	}
	return v, ok
}

// SSCons returns the consensus secondary structure, if present.
func (f *File) SSCons() (string, bool) {
	return f.Feature(KindColumn, "SS_cons")
}

// AddRecord appends text to the named record, creating it on first use.
func (f *File) AddRecord(name, text string) {
	for i := range f.Records {
		if f.Records[i].Name == name {
			f.Records[i].Text += text
			return
		}
	}
	f.Records = append(f.Records, Record{Name: name, Text: text})
}

// AddFeature appends text to a feature. seq is ignored for GF and GC.
func (f *File) AddFeature(kind, seq, name, text string) error {
	switch kind {
	case KindFile:
		if prev, ok := f.GF[name]; ok {
			f.GF[name] = prev + "\n" + text
		} else {
			f.gfOrder = append(f.gfOrder, name)
			f.GF[name] = text
		}
	case KindColumn:
		if _, ok := f.GC[name]; !ok {
			f.gcOrder = append(f.gcOrder, name)
		}
		f.GC[name] += text
	case KindSequence:
		addNested(f.GS, seq, name, text)
	case KindResidue:
		addNested(f.GR, seq, name, text)
	default:
		return fmt.Errorf("invalid feature kind %q", kind)
	}
	return nil
}

func addNested(m map[string]map[string]string, seq, name, text string) {
	inner, ok := m[seq]
	if !ok {
		inner = make(map[string]string)
		m[seq] = inner
	}
	inner[name] += text
}

// ReadFile parses the Stockholm file at path.
func ReadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Read(fh)
}

// Read parses a single Stockholm alignment. Reading stops at the "//"
// terminator or at EOF.
func Read(r io.Reader) (*File, error) {
	f := New()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	lineNo := 0
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, ErrHeader
	}
	lineNo++
	if !strings.EqualFold(strings.TrimSpace(scanner.Text()), Header) {
		return nil, ErrHeader
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "//":
			return finish(f)
		case strings.HasPrefix(line, "#="):
			if err := parseFeature(f, line, lineNo); err != nil {
				return nil, err
			}
		case strings.HasPrefix(line, "#"):
			continue
		default:
			fields := strings.Fields(line)
			if len(fields) != 2 {
				return nil, &ParseError{Line: lineNo, Msg: "sequence line is not in 'name residues' form"}
			}
			f.AddRecord(fields[0], fields[1])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return finish(f)
}

func finish(f *File) (*File, error) {
	if len(f.Records) == 0 {
		return nil, ErrNoRecords
	}
	return f, nil
}

func parseFeature(f *File, line string, lineNo int) error {
	kind := line[2:min(4, len(line))]
	rest := strings.TrimSpace(line[min(4, len(line)):])

	var seq string
	switch kind {
	case KindFile, KindColumn:
	case KindSequence, KindResidue:
		var ok bool
		seq, rest, ok = cutField(rest)
		if !ok {
			return &ParseError{Line: lineNo, Msg: fmt.Sprintf("#=%s line has no sequence name", kind)}
		}
	default:
		return &ParseError{Line: lineNo, Msg: fmt.Sprintf("invalid feature kind %q", kind)}
	}

	name, value, ok := cutField(rest)
	if !ok {
		return &ParseError{Line: lineNo, Msg: "feature is not in 'name value' form"}
	}
	return f.AddFeature(kind, seq, name, value)
}

// cutField splits off the first whitespace-delimited field of s.
func cutField(s string) (head, tail string, ok bool) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, "", false
	}
	return s[:i], strings.TrimSpace(s[i:]), true
}

// Write writes f in Stockholm format. File features come first, sequence
// features sit above the alignment, per-residue features follow their
// sequence and column features close the block.
func Write(w io.Writer, f *File) error {
	width := 0
	for _, rec := range f.Records {
		width = max(width, len(rec.Name))
	}

	var err error
	pf := func(format string, v ...any) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, format, v...)
	}

	pf("%s\n", Header)
	for _, name := range orderedKeys(f.gfOrder, f.GF) {
		for _, line := range strings.Split(f.GF[name], "\n") {
			pf("#=GF %s %s\n", name, line)
		}
	}
	for _, rec := range f.Records {
		for _, name := range sortedKeys(f.GS[rec.Name]) {
			pf("#=GS %-*s %s %s\n", width, rec.Name, name, f.GS[rec.Name][name])
		}
	}
	for _, rec := range f.Records {
		pf("%-*s %s\n", width+8, rec.Name, rec.Text)
		for _, name := range sortedKeys(f.GR[rec.Name]) {
			pf("#=GR %-*s %s %s\n", width, rec.Name, name, f.GR[rec.Name][name])
		}
	}
	for _, name := range orderedKeys(f.gcOrder, f.GC) {
		pf("#=GC %-*s %s\n", width+3, name, f.GC[name])
	}
	pf("//\n")
	return err
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}

// orderedKeys returns keys in insertion order, followed by any keys that
// were set directly on the map.
func orderedKeys(order []string, m map[string]string) []string {
	keys := make([]string, 0, len(m))
	seen := make(map[string]bool, len(order))
	for _, k := range order {
		if _, ok := m[k]; ok && !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	for _, k := range sortedKeys(m) {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	return keys
}
