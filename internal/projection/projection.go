// Package projection implements the activity projection: a canonical
// compression of a case-centric log into integer-sequence trace variants
// with multiplicities over a shared activity alphabet.
package projection

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/pmlab-io/pmcore/internal/eventlog"
)

// Variant is one canonical trace: a sequence of activity ordinals and the
// number of traces in the source log that collapse to this sequence.
type Variant struct {
	Sequence     []int
	Multiplicity int
}

// Projection is the case-centric log's compact form.
type Projection struct {
	Activities []string
	ActToIndex map[string]int
	Traces     []Variant
}

// FromLog builds a Projection from log using classifier to derive each
// event's class identity. The alphabet is built in first-seen order;
// identical canonical sequences are grouped and their multiplicities
// summed. Empty sequences are kept.
func FromLog(log *eventlog.Log, classifier eventlog.Classifier) *Projection {
	p := &Projection{ActToIndex: make(map[string]int)}

	sequences := make([][]int, len(log.Traces))

	for i, tr := range log.Traces {
		seq := make([]int, len(tr.Events))

		for j, ev := range tr.Events {
			identity := classifier.ClassIdentityWithDefaults(ev, log.GlobalEventAttrs)
			seq[j] = p.internActivity(identity)
		}

		sequences[i] = seq
	}

	p.Traces = groupVariants(sequences)

	return p
}

func (p *Projection) internActivity(name string) int {
	if idx, ok := p.ActToIndex[name]; ok {
		return idx
	}

	idx := len(p.Activities)
	p.Activities = append(p.Activities, name)
	p.ActToIndex[name] = idx

	return idx
}

func groupVariants(sequences [][]int) []Variant {
	type key = string

	order := make([]key, 0, len(sequences))
	counts := make(map[key]int)
	seqByKey := make(map[key][]int)

	for _, seq := range sequences {
		k := sequenceKey(seq)
		if _, ok := counts[k]; !ok {
			order = append(order, k)
			seqByKey[k] = seq
		}

		counts[k]++
	}

	variants := make([]Variant, 0, len(order))
	for _, k := range order {
		variants = append(variants, Variant{Sequence: seqByKey[k], Multiplicity: counts[k]})
	}

	return variants
}

func sequenceKey(seq []int) string {
	var sb strings.Builder

	for _, a := range seq {
		sb.WriteByte(',')
		// Fixed-width-free encoding is fine: uniqueness, not readability,
		// is all that's required of this key.
		sb.WriteString(itoa(a))
		sb.WriteByte(';')
	}

	return sb.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	neg := n < 0
	if neg {
		n = -n
	}

	var buf [20]byte

	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}

	if neg {
		i--
		buf[i] = '-'
	}

	return string(buf[i:])
}

// StartSymbol / EndSymbol are the synthetic boundary markers AddStartEnd
// wraps each trace in.
const (
	StartSymbol = eventlog.StartSymbol
	EndSymbol   = eventlog.EndSymbol
)

// AddStartEnd prepends StartSymbol and appends EndSymbol to every
// canonical sequence, returning a new Projection. If either symbol
// already exists in the alphabet, that boundary is skipped with a warning
// logged — the operation is idempotent: calling it twice in a row is a
// no-op on the second call.
func AddStartEnd(p *Projection, logger *slog.Logger) *Projection {
	if logger == nil {
		logger = slog.Default()
	}

	out := &Projection{
		Activities: append([]string(nil), p.Activities...),
		ActToIndex: make(map[string]int, len(p.ActToIndex)),
	}

	for k, v := range p.ActToIndex {
		out.ActToIndex[k] = v
	}

	addStart := true
	if _, ok := out.ActToIndex[StartSymbol]; ok {
		logger.Warn("add_start_end_acts: start symbol already present, skipping", "symbol", StartSymbol)

		addStart = false
	}

	addEnd := true
	if _, ok := out.ActToIndex[EndSymbol]; ok {
		logger.Warn("add_start_end_acts: end symbol already present, skipping", "symbol", EndSymbol)

		addEnd = false
	}

	startIdx := -1
	if addStart {
		startIdx = len(out.Activities)
		out.Activities = append(out.Activities, StartSymbol)
		out.ActToIndex[StartSymbol] = startIdx
	} else {
		startIdx = out.ActToIndex[StartSymbol]
	}

	endIdx := -1
	if addEnd {
		endIdx = len(out.Activities)
		out.Activities = append(out.Activities, EndSymbol)
		out.ActToIndex[EndSymbol] = endIdx
	} else {
		endIdx = out.ActToIndex[EndSymbol]
	}

	out.Traces = make([]Variant, len(p.Traces))
	for i, variant := range p.Traces {
		seq := make([]int, 0, len(variant.Sequence)+2)

		if addStart {
			seq = append(seq, startIdx)
		}

		seq = append(seq, variant.Sequence...)

		if addEnd {
			seq = append(seq, endIdx)
		}

		out.Traces[i] = Variant{Sequence: seq, Multiplicity: variant.Multiplicity}
	}

	return out
}

// ActivityNames returns the alphabet names for each ordinal in seq, for
// debugging and export.
func (p *Projection) ActivityNames(seq []int) []string {
	names := make([]string, len(seq))
	for i, a := range seq {
		if a >= 0 && a < len(p.Activities) {
			names[i] = p.Activities[a]
		}
	}

	return names
}

// sortedActivityIndices returns all activity ordinals in ascending order.
func (p *Projection) sortedActivityIndices() []int {
	idx := make([]int, len(p.Activities))
	for i := range idx {
		idx[i] = i
	}

	sort.Ints(idx)

	return idx
}
