package oceljson

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/pmlab-io/pmcore/internal/attribute"
	"github.com/pmlab-io/pmcore/internal/ocel"
)

// timeLayout is the wire timestamp format: ISO-8601 with millisecond
// precision, re-readable by the shared timestamp parser.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Export writes log to w in the OCEL 2.0 JSON shape Import reads,
// using the same wire structs in reverse: attribute values are encoded
// as the untagged union (time values as ISO-8601 strings, re-promoted on
// import by the declared attribute type).
func Export(w io.Writer, log *ocel.Log) error {
	wire := wireLog{
		EventTypes:  make([]wireTypeDecl, 0, len(log.EventTypes)),
		ObjectTypes: make([]wireTypeDecl, 0, len(log.ObjectTypes)),
		Events:      make([]wireEvent, 0, len(log.Events)),
		Objects:     make([]wireObject, 0, len(log.Objects)),
	}

	for _, et := range log.EventTypes {
		wire.EventTypes = append(wire.EventTypes, typeDeclToWire(et.Name, et.Attributes))
	}

	for _, ot := range log.ObjectTypes {
		wire.ObjectTypes = append(wire.ObjectTypes, typeDeclToWire(ot.Name, ot.Attributes))
	}

	for _, ev := range log.Events {
		we := wireEvent{
			ID:   ev.ID,
			Type: ev.Type,
			Time: ev.Time.Format(timeLayout),
		}

		for _, ea := range ev.Attributes {
			we.Attributes = append(we.Attributes, wireEventAttr{Name: ea.Name, Value: encodeValue(ea.Value)})
		}

		for _, rel := range ev.Relationships {
			we.Relationships = append(we.Relationships, wireRelationship{
				ObjectID:  rel.ObjectID,
				Qualifier: string(rel.Qualifier),
			})
		}

		wire.Events = append(wire.Events, we)
	}

	for _, ob := range log.Objects {
		wo := wireObject{ID: ob.ID, Type: ob.Type}

		for _, oa := range ob.Attributes {
			wo.Attributes = append(wo.Attributes, wireObjectAttr{
				Name:  oa.Name,
				Value: encodeValue(oa.Value),
				Time:  oa.Time.Format(timeLayout),
			})
		}

		for _, rel := range ob.Relationships {
			wo.Relationships = append(wo.Relationships, wireRelationship{
				ObjectID:  rel.ObjectID,
				Qualifier: string(rel.Qualifier),
			})
		}

		wire.Objects = append(wire.Objects, wo)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(wire)
}

func typeDeclToWire(name string, attrs []ocel.AttributeDecl) wireTypeDecl {
	wd := wireTypeDecl{Name: name}
	for _, a := range attrs {
		wd.Attributes = append(wd.Attributes, wireAttributeDecl{Name: a.Name, Type: string(a.ValueType)})
	}

	return wd
}

// encodeValue renders a value as the untagged JSON union. List/container
// variants have no OCEL JSON representation and degrade to a JSON string
// of their debug rendering; NaN cannot occur (rejected at construction).
func encodeValue(v attribute.Value) json.RawMessage {
	switch v.Kind() {
	case attribute.KindNull:
		return json.RawMessage("null")
	case attribute.KindString:
		s, _ := v.AsString()

		return mustMarshal(s)
	case attribute.KindTime:
		t, _ := v.AsTime()

		return mustMarshal(t.Format(timeLayout))
	case attribute.KindInt:
		i, _ := v.AsInt()

		return json.RawMessage(strconv.FormatInt(i, 10))
	case attribute.KindFloat:
		f, _ := v.AsFloat()

		return mustMarshal(f)
	case attribute.KindBool:
		b, _ := v.AsBool()

		return json.RawMessage(strconv.FormatBool(b))
	case attribute.KindUUID:
		u, _ := v.AsUUID()

		return mustMarshal(u.String())
	default:
		return mustMarshal(v.String())
	}
}

// mustMarshal marshals values that cannot fail to encode (strings and
// non-NaN floats).
func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}

	return data
}
