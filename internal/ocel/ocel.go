// Package ocel implements the object-centric event log in-memory model:
// typed events and objects linked by qualified directed relationships.
package ocel

import (
	"errors"
	"time"

	"github.com/pmlab-io/pmcore/internal/attribute"
)

// Sentinel errors for OCEL construction.
var (
	ErrDuplicateEventID  = errors.New("ocel: duplicate event id")
	ErrDuplicateObjectID = errors.New("ocel: duplicate object id")
)

// ValueType names a declared attribute value type, as carried on an
// EventType/ObjectType's attribute declarations.
type ValueType string

const (
	ValueTypeString  ValueType = "string"
	ValueTypeTime    ValueType = "time"
	ValueTypeInteger ValueType = "integer"
	ValueTypeFloat   ValueType = "float"
	ValueTypeBoolean ValueType = "boolean"
	ValueTypeNull    ValueType = "null"
)

// AttributeDecl is a single {name, value-type} declaration on an
// EventType or ObjectType.
type AttributeDecl struct {
	Name      string
	ValueType ValueType
}

// EventType names recognized event kinds and their declared attributes.
type EventType struct {
	Name       string
	Attributes []AttributeDecl
}

// ObjectType names recognized object kinds and their declared attributes.
type ObjectType struct {
	Name       string
	Attributes []AttributeDecl
}

// EventAttribute is a single named, valued attribute on an event (events
// carry one value per attribute, not a history).
type EventAttribute struct {
	Name  string
	Value attribute.Value
}

// ObjectAttribute is a single timestamped entry in an object's attribute
// history: objects carry a value-over-time per attribute name.
type ObjectAttribute struct {
	Name  string
	Value attribute.Value
	Time  time.Time
}

// Qualifier names the role of a relationship endpoint (e.g. "places",
// "pays for").
type Qualifier string

// E2ORelationship is an event-to-object relationship, directed from the
// owning event to ObjectID under Qualifier.
type E2ORelationship struct {
	ObjectID  string
	Qualifier Qualifier
}

// O2ORelationship is an object-to-object relationship, directed from the
// owning object to ObjectID under Qualifier.
type O2ORelationship struct {
	ObjectID  string
	Qualifier Qualifier
}

// Event is a single OCEL event: a typed, timed occurrence carrying
// attributes and relationships to zero or more objects.
type Event struct {
	ID            string
	Type          string
	Time          time.Time
	Attributes    []EventAttribute
	Relationships []E2ORelationship
}

// Object is a single OCEL object: a typed entity with a chronological
// attribute history and relationships to zero or more other objects.
type Object struct {
	ID            string
	Type          string
	Attributes    []ObjectAttribute
	Relationships []O2ORelationship
}

// Log is the OCEL root: declared event/object types plus the events and
// objects themselves.
type Log struct {
	EventTypes  []EventType
	ObjectTypes []ObjectType
	Events      []Event
	Objects     []Object
}

// NewLog returns an empty OCEL log.
func NewLog() *Log {
	return &Log{}
}

// Validate checks the invariants that must hold for a log to be usable:
// event ids unique, object ids unique. Dangling relationship references are
// NOT an error here — they are retained per the core's soft-by-default
// semantics; callers needing strict filtering do so themselves.
func (l *Log) Validate() error {
	seen := make(map[string]struct{}, len(l.Events))

	for _, ev := range l.Events {
		if _, dup := seen[ev.ID]; dup {
			return ErrDuplicateEventID
		}

		seen[ev.ID] = struct{}{}
	}

	seenObj := make(map[string]struct{}, len(l.Objects))

	for _, ob := range l.Objects {
		if _, dup := seenObj[ob.ID]; dup {
			return ErrDuplicateObjectID
		}

		seenObj[ob.ID] = struct{}{}
	}

	return nil
}
