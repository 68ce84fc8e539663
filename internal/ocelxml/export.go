package ocelxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/pmlab-io/pmcore/internal/attribute"
	"github.com/pmlab-io/pmcore/internal/ocel"
)

// timeLayout is the wire timestamp format: ISO-8601 with millisecond
// precision, re-readable by the shared timestamp parser.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Wire shapes for export. These mirror the elements Import reads, so a
// log written by Export re-imports to the same events, objects, type
// sets, relationship multisets, and attribute histories.
type xmlLog struct {
	XMLName     xml.Name      `xml:"log"`
	ObjectTypes []xmlTypeDecl `xml:"object-types>object-type"`
	EventTypes  []xmlTypeDecl `xml:"event-types>event-type"`
	Events      []xmlEvent    `xml:"events>event"`
	Objects     []xmlObject   `xml:"objects>object"`
}

type xmlTypeDecl struct {
	Name       string        `xml:"name,attr"`
	Attributes []xmlAttrDecl `xml:"attributes>attribute"`
}

type xmlAttrDecl struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
}

type xmlEvent struct {
	ID            string            `xml:"id,attr"`
	Type          string            `xml:"type,attr"`
	Time          string            `xml:"time,attr"`
	Attributes    []xmlEventAttr    `xml:"attributes>attribute"`
	Relationships []xmlRelationship `xml:"relationships>object-id"`
}

type xmlEventAttr struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type xmlObject struct {
	ID            string            `xml:"id,attr"`
	Type          string            `xml:"type,attr"`
	Attributes    []xmlObjectAttr   `xml:"attributes>attribute"`
	Relationships []xmlRelationship `xml:"relationships>object-id"`
}

type xmlObjectAttr struct {
	Name  string `xml:"name,attr"`
	Time  string `xml:"time,attr"`
	Value string `xml:",chardata"`
}

type xmlRelationship struct {
	Qualifier string `xml:"qualifier,attr"`
	ObjectID  string `xml:",chardata"`
}

// Export writes log to w in the OCEL 2.0 XML shape Import reads.
// Attribute values are rendered as element text; the declared attribute
// types on the event/object type declarations drive re-typing on import.
func Export(w io.Writer, log *ocel.Log) error {
	wire := xmlLog{
		ObjectTypes: typeDeclsToWire(objectTypeDecls(log)),
		EventTypes:  typeDeclsToWire(eventTypeDecls(log)),
		Events:      make([]xmlEvent, 0, len(log.Events)),
		Objects:     make([]xmlObject, 0, len(log.Objects)),
	}

	for _, ev := range log.Events {
		we := xmlEvent{
			ID:   ev.ID,
			Type: ev.Type,
			Time: ev.Time.Format(timeLayout),
		}

		for _, ea := range ev.Attributes {
			we.Attributes = append(we.Attributes, xmlEventAttr{Name: ea.Name, Value: formatValue(ea.Value)})
		}

		for _, rel := range ev.Relationships {
			we.Relationships = append(we.Relationships, xmlRelationship{
				Qualifier: string(rel.Qualifier),
				ObjectID:  rel.ObjectID,
			})
		}

		wire.Events = append(wire.Events, we)
	}

	for _, ob := range log.Objects {
		wo := xmlObject{ID: ob.ID, Type: ob.Type}

		for _, oa := range ob.Attributes {
			wo.Attributes = append(wo.Attributes, xmlObjectAttr{
				Name:  oa.Name,
				Time:  oa.Time.Format(timeLayout),
				Value: formatValue(oa.Value),
			})
		}

		for _, rel := range ob.Relationships {
			wo.Relationships = append(wo.Relationships, xmlRelationship{
				Qualifier: string(rel.Qualifier),
				ObjectID:  rel.ObjectID,
			})
		}

		wire.Objects = append(wire.Objects, wo)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	if err := enc.Encode(wire); err != nil {
		return err
	}

	return enc.Close()
}

func typeDeclsToWire(decls []typeDecl) []xmlTypeDecl {
	out := make([]xmlTypeDecl, 0, len(decls))

	for _, d := range decls {
		wd := xmlTypeDecl{Name: d.Name}
		for _, a := range d.Attributes {
			wd.Attributes = append(wd.Attributes, xmlAttrDecl{Name: a.Name, Type: string(a.ValueType)})
		}

		out = append(out, wd)
	}

	return out
}

func eventTypeDecls(log *ocel.Log) []typeDecl {
	out := make([]typeDecl, 0, len(log.EventTypes))
	for _, et := range log.EventTypes {
		out = append(out, typeDecl{Name: et.Name, Attributes: et.Attributes})
	}

	return out
}

func objectTypeDecls(log *ocel.Log) []typeDecl {
	out := make([]typeDecl, 0, len(log.ObjectTypes))
	for _, ot := range log.ObjectTypes {
		out = append(out, typeDecl{Name: ot.Name, Attributes: ot.Attributes})
	}

	return out
}

// formatValue renders a value as element text. The null variant renders
// empty; list/container variants have no OCEL XML representation and fall
// back to their debug rendering.
func formatValue(v attribute.Value) string {
	switch v.Kind() {
	case attribute.KindNull:
		return ""
	case attribute.KindString:
		s, _ := v.AsString()

		return s
	case attribute.KindTime:
		t, _ := v.AsTime()

		return t.Format(timeLayout)
	case attribute.KindInt:
		i, _ := v.AsInt()

		return strconv.FormatInt(i, 10)
	case attribute.KindFloat:
		f, _ := v.AsFloat()

		return strconv.FormatFloat(f, 'g', -1, 64)
	case attribute.KindBool:
		b, _ := v.AsBool()

		return strconv.FormatBool(b)
	case attribute.KindUUID:
		u, _ := v.AsUUID()

		return u.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
