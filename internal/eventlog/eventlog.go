// Package eventlog implements the case-centric event log model: traces of
// events, classifiers, and log-level metadata.
package eventlog

import (
	"strings"

	"github.com/pmlab-io/pmcore/internal/attribute"
)

// Activity name constants recognized across components.
const (
	ConceptName         = "concept:name"
	TimeTimestamp       = "time:timestamp"
	LifecycleTransition = "lifecycle:transition"
	TracePrefix         = "case:"
	PrefixedTraceID     = TracePrefix + ConceptName
	StartSymbol         = "__START__"
	EndSymbol           = "__END__"

	classifierDelimiter = "+"
)

// Event is an attribute bag; activity identity is conventionally under
// ConceptName but is resolved by a Classifier rather than hardcoded here.
type Event struct {
	Attributes attribute.Attributes
}

// Trace is an ordered sequence of events plus its own attribute bag. Trace
// identity is conventionally under ConceptName; missing identities fall
// through to the log's global fallback table.
type Trace struct {
	Attributes attribute.Attributes
	Events     []Event
}

// Extension records an XES <extension> declaration.
type Extension struct {
	Name   string
	Prefix string
	URI    string
}

// Classifier is {name, keys}; class identity of an event is the
// delimiter("+")-joined string of attribute values (or empty when
// missing/non-string) at each key.
type Classifier struct {
	Name string
	Keys []string
}

// ClassIdentity returns the classifier's primary class identity for ev:
// the "+"-joined string of ev's attribute values at each of c's keys (an
// empty segment for a missing or non-string value at a key).
func (c Classifier) ClassIdentity(ev Event) string {
	return c.classIdentity(ev, nil)
}

// ClassIdentityWithDefaults is the alternate form: missing keys fall back
// to globalDefaults[key] (or "" if absent from that map too) rather than
// an unconditional empty segment.
func (c Classifier) ClassIdentityWithDefaults(ev Event, globalDefaults attribute.Attributes) string {
	return c.classIdentity(ev, globalDefaults)
}

func (c Classifier) classIdentity(ev Event, globalDefaults attribute.Attributes) string {
	segments := make([]string, len(c.Keys))

	for i, key := range c.Keys {
		if attr, ok := ev.Attributes.Get(key); ok {
			segments[i] = attr.Value.StringOrEmpty()

			continue
		}

		if globalDefaults != nil {
			if attr, ok := globalDefaults.Get(key); ok {
				segments[i] = attr.Value.StringOrEmpty()

				continue
			}
		}

		segments[i] = ""
	}

	return strings.Join(segments, classifierDelimiter)
}

// DefaultClassifier extracts the concept:name string, the classifier
// implicitly used by activity projection when none is supplied.
var DefaultClassifier = Classifier{Name: "__DEFAULT__", Keys: []string{ConceptName}}

// Log is the case-centric log root: attributes, traces, and optional
// extensions/classifiers/global fallback attribute tables.
type Log struct {
	Attributes       attribute.Attributes
	Traces           []Trace
	Extensions       []Extension
	Classifiers      []Classifier
	GlobalTraceAttrs attribute.Attributes
	GlobalEventAttrs attribute.Attributes
}

// NewLog returns an empty log with initialized attribute maps.
func NewLog() *Log {
	return &Log{
		Attributes:       attribute.NewAttributes(),
		GlobalTraceAttrs: attribute.NewAttributes(),
		GlobalEventAttrs: attribute.NewAttributes(),
	}
}

// TraceIdentity returns the trace's concept:name value, or the log's
// global trace-attribute fallback for concept:name when the trace itself
// lacks one.
func (l *Log) TraceIdentity(tr Trace) string {
	if attr, ok := tr.Attributes.Get(ConceptName); ok {
		return attr.Value.StringOrEmpty()
	}

	if l.GlobalTraceAttrs != nil {
		if attr, ok := l.GlobalTraceAttrs.Get(ConceptName); ok {
			return attr.Value.StringOrEmpty()
		}
	}

	return ""
}

// ClassifierByName returns the named classifier and whether it was found.
func (l *Log) ClassifierByName(name string) (Classifier, bool) {
	for _, c := range l.Classifiers {
		if c.Name == name {
			return c, true
		}
	}

	return Classifier{}, false
}
