// Package oceljson implements the direct-deserialization OCEL 2.0 JSON
// importer. Field names follow the documented JSON shape (eventTypes,
// objectTypes, events, objects); attribute values are an
// untagged union discriminated by the underlying JSON scalar type, with
// ISO-8601 strings promoted to the time variant only when the declared
// attribute type says "time".
package oceljson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/pmlab-io/pmcore/internal/attribute"
	"github.com/pmlab-io/pmcore/internal/ocel"
)

// ErrMalformedJSON is returned for structurally invalid JSON input.
var ErrMalformedJSON = errors.New("oceljson: malformed json")

// Options configures Import.
type Options struct {
	// Logger receives debug-level notices for float values rejected as
	// NaN and stored as null. Defaults to slog.Default() when nil.
	Logger *slog.Logger
}

// wireLog mirrors the documented OCEL JSON shape directly; attribute
// values are decoded via json.RawMessage and resolved against the
// declared type registry in a second pass (the untagged union needs the
// declared type before it can tell an integer from a float or a plain
// string from a time).
type wireLog struct {
	EventTypes  []wireTypeDecl `json:"eventTypes"`
	ObjectTypes []wireTypeDecl `json:"objectTypes"`
	Events      []wireEvent    `json:"events"`
	Objects     []wireObject   `json:"objects"`
}

type wireTypeDecl struct {
	Name       string              `json:"name"`
	Attributes []wireAttributeDecl `json:"attributes"`
}

type wireAttributeDecl struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type wireEvent struct {
	ID            string              `json:"id"`
	Type          string              `json:"type"`
	Time          string              `json:"time"`
	Attributes    []wireEventAttr    `json:"attributes,omitempty"`
	Relationships []wireRelationship `json:"relationships,omitempty"`
}

type wireEventAttr struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

type wireObject struct {
	ID            string              `json:"id"`
	Type          string              `json:"type"`
	Attributes    []wireObjectAttr   `json:"attributes,omitempty"`
	Relationships []wireRelationship `json:"relationships,omitempty"`
}

type wireObjectAttr struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
	Time  string          `json:"time,omitempty"`
}

type wireRelationship struct {
	ObjectID  string `json:"objectId"`
	Qualifier string `json:"qualifier"`
}

// Import decodes an OCEL 2.0 JSON document from r.
func Import(r io.Reader, opts Options) (*ocel.Log, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var wire wireLog

	dec := json.NewDecoder(r)
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	return convert(wire, logger)
}

func convert(wire wireLog, logger *slog.Logger) (*ocel.Log, error) {
	log := ocel.NewLog()

	eventAttrTypes := make(map[string]map[string]ocel.ValueType, len(wire.EventTypes))

	for _, et := range wire.EventTypes {
		decl := ocel.EventType{Name: et.Name}
		types := make(map[string]ocel.ValueType, len(et.Attributes))

		for _, a := range et.Attributes {
			decl.Attributes = append(decl.Attributes, ocel.AttributeDecl{Name: a.Name, ValueType: ocel.ValueType(a.Type)})
			types[a.Name] = ocel.ValueType(a.Type)
		}

		log.EventTypes = append(log.EventTypes, decl)
		eventAttrTypes[et.Name] = types
	}

	objectAttrTypes := make(map[string]map[string]ocel.ValueType, len(wire.ObjectTypes))

	for _, ot := range wire.ObjectTypes {
		decl := ocel.ObjectType{Name: ot.Name}
		types := make(map[string]ocel.ValueType, len(ot.Attributes))

		for _, a := range ot.Attributes {
			decl.Attributes = append(decl.Attributes, ocel.AttributeDecl{Name: a.Name, ValueType: ocel.ValueType(a.Type)})
			types[a.Name] = ocel.ValueType(a.Type)
		}

		log.ObjectTypes = append(log.ObjectTypes, decl)
		objectAttrTypes[ot.Name] = types
	}

	for _, we := range wire.Events {
		ev := ocel.Event{ID: we.ID, Type: we.Type}

		if we.Time != "" {
			ts, err := attribute.ParseTime(we.Time)
			if err != nil {
				ts = attribute.ParseTimeFallback(we.Time)
			}

			ev.Time = ts
		}

		declared := eventAttrTypes[we.Type]

		for _, wa := range we.Attributes {
			val, err := decodeValue(wa.Value, declared[wa.Name], logger)
			if err != nil {
				return nil, err
			}

			ev.Attributes = append(ev.Attributes, ocel.EventAttribute{Name: wa.Name, Value: val})
		}

		for _, rel := range we.Relationships {
			ev.Relationships = append(ev.Relationships, ocel.E2ORelationship{ObjectID: rel.ObjectID, Qualifier: ocel.Qualifier(rel.Qualifier)})
		}

		log.Events = append(log.Events, ev)
	}

	for _, wo := range wire.Objects {
		ob := ocel.Object{ID: wo.ID, Type: wo.Type}

		declared := objectAttrTypes[wo.Type]

		for _, wa := range wo.Attributes {
			val, err := decodeValue(wa.Value, declared[wa.Name], logger)
			if err != nil {
				return nil, err
			}

			var ts = attribute.ParseTimeFallback(wa.Time)
			if wa.Time != "" {
				if parsed, err := attribute.ParseTime(wa.Time); err == nil {
					ts = parsed
				}
			}

			ob.Attributes = append(ob.Attributes, ocel.ObjectAttribute{Name: wa.Name, Value: val, Time: ts})
		}

		for _, rel := range wo.Relationships {
			ob.Relationships = append(ob.Relationships, ocel.O2ORelationship{ObjectID: rel.ObjectID, Qualifier: ocel.Qualifier(rel.Qualifier)})
		}

		log.Objects = append(log.Objects, ob)
	}

	return log, nil
}

// decodeValue resolves the untagged JSON union: string, ISO-8601 datetime
// string promoted to time when declared so, integer, float, boolean, null.
func decodeValue(raw json.RawMessage, declared ocel.ValueType, logger *slog.Logger) (attribute.Value, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return attribute.Null(), nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return attribute.Value{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
		}

		if declared == ocel.ValueTypeTime {
			ts, err := attribute.ParseTime(s)
			if err != nil {
				return attribute.NewString(s), nil
			}

			return attribute.NewTime(ts), nil
		}

		return attribute.NewString(s), nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return attribute.Value{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
		}

		return attribute.NewBool(b), nil
	default:
		if declared == ocel.ValueTypeFloat || bytes.ContainsAny(trimmed, ".eE") {
			var f float64
			if err := json.Unmarshal(trimmed, &f); err != nil {
				return attribute.Value{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
			}

			v, err := attribute.NewFloat(f)
			if err != nil {
				logger.Debug("oceljson: NaN value rejected, storing as null", "error", err)

				return attribute.Null(), nil
			}

			return v, nil
		}

		var i int64
		if err := json.Unmarshal(trimmed, &i); err != nil {
			var f float64
			if ferr := json.Unmarshal(trimmed, &f); ferr == nil {
				v, verr := attribute.NewFloat(f)
				if verr == nil {
					return v, nil
				}
			}

			return attribute.Value{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
		}

		return attribute.NewInt(i), nil
	}
}
