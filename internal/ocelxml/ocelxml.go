// Package ocelxml implements the streaming OCEL 2.0 XML importer: an
// event-driven pull reader over encoding/xml that materializes an
// *ocel.Log without buffering the whole document as a DOM. Text content
// is trimmed before use.
package ocelxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/pmlab-io/pmcore/internal/attribute"
	"github.com/pmlab-io/pmcore/internal/ocel"
)

// Sentinel errors for the two ways an import can fail.
var (
	ErrMalformedXML    = errors.New("ocelxml: malformed xml")
	ErrUnparseableTime = errors.New("ocelxml: unparseable timestamp")
)

// Options configures Import.
type Options struct {
	// Strict, when true, surfaces an unparseable timestamp as
	// ErrUnparseableTime. When false (the default), an unparseable
	// timestamp falls back to the zero-offset Unix epoch and the
	// import continues.
	Strict bool

	// Logger receives trace-level notices for ignored unknown tags and
	// unknown attribute types (treated as string). Defaults to
	// slog.Default() when nil.
	Logger *slog.Logger
}

// Import reads an OCEL 2.0 XML document from r and returns the
// materialized log.
func Import(r io.Reader, opts Options) (*ocel.Log, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	imp := &importer{
		dec:    xml.NewDecoder(r),
		opts:   opts,
		logger: logger,
		log:    ocel.NewLog(),

		eventAttrTypes:  map[string]map[string]ocel.ValueType{},
		objectAttrTypes: map[string]map[string]ocel.ValueType{},
	}

	if err := imp.run(); err != nil {
		return nil, err
	}

	return imp.log, nil
}

type importer struct {
	dec    *xml.Decoder
	opts   Options
	logger *slog.Logger
	log    *ocel.Log

	eventAttrTypes  map[string]map[string]ocel.ValueType
	objectAttrTypes map[string]map[string]ocel.ValueType
}

// typeDecl is the shared shape of <event-type>/<object-type>: a name plus
// nested attribute declarations.
type typeDecl struct {
	Name       string
	Attributes []ocel.AttributeDecl
}

func (imp *importer) run() error {
	for {
		tok, err := imp.dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedXML, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch local(start.Name) {
		case "object-types":
			decls, err := imp.readTypeDecls("object-type")
			if err != nil {
				return err
			}

			for _, d := range decls {
				imp.log.ObjectTypes = append(imp.log.ObjectTypes, ocel.ObjectType{Name: d.Name, Attributes: d.Attributes})
				imp.objectAttrTypes[d.Name] = declMap(d.Attributes)
			}
		case "event-types":
			decls, err := imp.readTypeDecls("event-type")
			if err != nil {
				return err
			}

			for _, d := range decls {
				imp.log.EventTypes = append(imp.log.EventTypes, ocel.EventType{Name: d.Name, Attributes: d.Attributes})
				imp.eventAttrTypes[d.Name] = declMap(d.Attributes)
			}
		case "events":
			events, err := imp.readEvents()
			if err != nil {
				return err
			}

			imp.log.Events = events
		case "objects":
			objects, err := imp.readObjects()
			if err != nil {
				return err
			}

			imp.log.Objects = objects
		case "log":
			// The document root: descend into its children.
		default:
			imp.logger.Debug("ocelxml: ignoring unknown element", "element", start.Name.Local)

			if err := imp.dec.Skip(); err != nil {
				return fmt.Errorf("%w: %v", ErrMalformedXML, err)
			}
		}
	}
}

func declMap(decls []ocel.AttributeDecl) map[string]ocel.ValueType {
	m := make(map[string]ocel.ValueType, len(decls))
	for _, d := range decls {
		m[d.Name] = d.ValueType
	}

	return m
}

// readTypeDecls reads the children of <event-types>/<object-types> up to
// its matching end element: a sequence of elements named childName, each
// with a "name" attribute and a nested
// <attributes><attribute name="..." type="..."/></attributes> list.
func (imp *importer) readTypeDecls(childName string) ([]typeDecl, error) {
	var out []typeDecl

	for {
		tok, err := imp.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
		}

		switch t := tok.(type) {
		case xml.EndElement:
			if local(t.Name) != childName {
				return out, nil
			}
		case xml.StartElement:
			if local(t.Name) != childName {
				if err := imp.dec.Skip(); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
				}

				continue
			}

			decl, err := imp.readOneTypeDecl(t)
			if err != nil {
				return nil, err
			}

			out = append(out, decl)
		}
	}
}

func (imp *importer) readOneTypeDecl(start xml.StartElement) (typeDecl, error) {
	decl := typeDecl{Name: attrVal(start, "name")}

	for {
		tok, err := imp.dec.Token()
		if err != nil {
			return typeDecl{}, fmt.Errorf("%w: %v", ErrMalformedXML, err)
		}

		switch t := tok.(type) {
		case xml.EndElement:
			if local(t.Name) == local(start.Name) {
				return decl, nil
			}
		case xml.StartElement:
			switch local(t.Name) {
			case "attributes":
				attrs, err := imp.readAttributeDecls()
				if err != nil {
					return typeDecl{}, err
				}

				decl.Attributes = append(decl.Attributes, attrs...)
			default:
				if err := imp.dec.Skip(); err != nil {
					return typeDecl{}, fmt.Errorf("%w: %v", ErrMalformedXML, err)
				}
			}
		}
	}
}

func (imp *importer) readAttributeDecls() ([]ocel.AttributeDecl, error) {
	var out []ocel.AttributeDecl

	for {
		tok, err := imp.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
		}

		switch t := tok.(type) {
		case xml.EndElement:
			if local(t.Name) == "attributes" {
				return out, nil
			}
		case xml.StartElement:
			if local(t.Name) != "attribute" {
				if err := imp.dec.Skip(); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
				}

				continue
			}

			out = append(out, ocel.AttributeDecl{
				Name:      attrVal(t, "name"),
				ValueType: ocel.ValueType(attrVal(t, "type")),
			})

			if err := imp.dec.Skip(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
			}
		}
	}
}

// readEvents reads <events> up to its end element, producing one
// ocel.Event per <event> child.
func (imp *importer) readEvents() ([]ocel.Event, error) {
	var out []ocel.Event

	for {
		tok, err := imp.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
		}

		switch t := tok.(type) {
		case xml.EndElement:
			if local(t.Name) == "events" {
				return out, nil
			}
		case xml.StartElement:
			if local(t.Name) != "event" {
				if err := imp.dec.Skip(); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
				}

				continue
			}

			ev, err := imp.readEvent(t)
			if err != nil {
				return nil, err
			}

			out = append(out, ev)
		}
	}
}

func (imp *importer) readEvent(start xml.StartElement) (ocel.Event, error) {
	ev := ocel.Event{
		ID:   attrVal(start, "id"),
		Type: attrVal(start, "type"),
	}

	if t := attrVal(start, "time"); t != "" {
		ts, err := imp.parseTime(t)
		if err != nil {
			return ocel.Event{}, err
		}

		ev.Time = ts
	}

	attrTypes := imp.eventAttrTypes[ev.Type]

	for {
		tok, err := imp.dec.Token()
		if err != nil {
			return ocel.Event{}, fmt.Errorf("%w: %v", ErrMalformedXML, err)
		}

		switch t := tok.(type) {
		case xml.EndElement:
			if local(t.Name) == local(start.Name) {
				return ev, nil
			}
		case xml.StartElement:
			switch local(t.Name) {
			case "id":
				text, err := imp.readText()
				if err != nil {
					return ocel.Event{}, err
				}

				if ev.ID == "" {
					ev.ID = text
				}
			case "type":
				text, err := imp.readText()
				if err != nil {
					return ocel.Event{}, err
				}

				if ev.Type == "" {
					ev.Type = text
					attrTypes = imp.eventAttrTypes[ev.Type]
				}
			case "time":
				text, err := imp.readText()
				if err != nil {
					return ocel.Event{}, err
				}

				ts, err := imp.parseTime(text)
				if err != nil {
					return ocel.Event{}, err
				}

				ev.Time = ts
			case "attributes":
				attrs, err := imp.readEventAttributes(attrTypes)
				if err != nil {
					return ocel.Event{}, err
				}

				ev.Attributes = append(ev.Attributes, attrs...)
			case "relationships":
				rels, err := imp.readE2ORelationships()
				if err != nil {
					return ocel.Event{}, err
				}

				ev.Relationships = append(ev.Relationships, rels...)
			default:
				imp.logger.Debug("ocelxml: ignoring unknown event child", "element", t.Name.Local)

				if err := imp.dec.Skip(); err != nil {
					return ocel.Event{}, fmt.Errorf("%w: %v", ErrMalformedXML, err)
				}
			}
		}
	}
}

func (imp *importer) readEventAttributes(attrTypes map[string]ocel.ValueType) ([]ocel.EventAttribute, error) {
	var out []ocel.EventAttribute

	for {
		tok, err := imp.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
		}

		switch t := tok.(type) {
		case xml.EndElement:
			if local(t.Name) == "attributes" {
				return out, nil
			}
		case xml.StartElement:
			if local(t.Name) != "attribute" {
				if err := imp.dec.Skip(); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
				}

				continue
			}

			name := attrVal(t, "name")
			text, err := imp.readText()
			if err != nil {
				return nil, err
			}

			vt := attrTypes[name]

			val, err := imp.parseTyped(vt, text)
			if err != nil {
				return nil, err
			}

			out = append(out, ocel.EventAttribute{Name: name, Value: val})
		}
	}
}

func (imp *importer) readE2ORelationships() ([]ocel.E2ORelationship, error) {
	var out []ocel.E2ORelationship

	for {
		tok, err := imp.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
		}

		switch t := tok.(type) {
		case xml.EndElement:
			if local(t.Name) == "relationships" {
				return out, nil
			}
		case xml.StartElement:
			if local(t.Name) != "object-id" {
				if err := imp.dec.Skip(); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
				}

				continue
			}

			qualifier := attrVal(t, "qualifier")

			text, err := imp.readText()
			if err != nil {
				return nil, err
			}

			out = append(out, ocel.E2ORelationship{ObjectID: text, Qualifier: ocel.Qualifier(qualifier)})
		}
	}
}

// readObjects reads <objects> up to its end element.
func (imp *importer) readObjects() ([]ocel.Object, error) {
	var out []ocel.Object

	for {
		tok, err := imp.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
		}

		switch t := tok.(type) {
		case xml.EndElement:
			if local(t.Name) == "objects" {
				return out, nil
			}
		case xml.StartElement:
			if local(t.Name) != "object" {
				if err := imp.dec.Skip(); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
				}

				continue
			}

			ob, err := imp.readObject(t)
			if err != nil {
				return nil, err
			}

			out = append(out, ob)
		}
	}
}

func (imp *importer) readObject(start xml.StartElement) (ocel.Object, error) {
	ob := ocel.Object{
		ID:   attrVal(start, "id"),
		Type: attrVal(start, "type"),
	}

	attrTypes := imp.objectAttrTypes[ob.Type]

	for {
		tok, err := imp.dec.Token()
		if err != nil {
			return ocel.Object{}, fmt.Errorf("%w: %v", ErrMalformedXML, err)
		}

		switch t := tok.(type) {
		case xml.EndElement:
			if local(t.Name) == local(start.Name) {
				return ob, nil
			}
		case xml.StartElement:
			switch local(t.Name) {
			case "id":
				text, err := imp.readText()
				if err != nil {
					return ocel.Object{}, err
				}

				if ob.ID == "" {
					ob.ID = text
				}
			case "type":
				text, err := imp.readText()
				if err != nil {
					return ocel.Object{}, err
				}

				if ob.Type == "" {
					ob.Type = text
					attrTypes = imp.objectAttrTypes[ob.Type]
				}
			case "attributes":
				attrs, err := imp.readObjectAttributes(attrTypes)
				if err != nil {
					return ocel.Object{}, err
				}

				ob.Attributes = append(ob.Attributes, attrs...)
			case "relationships":
				rels, err := imp.readO2ORelationships()
				if err != nil {
					return ocel.Object{}, err
				}

				ob.Relationships = append(ob.Relationships, rels...)
			default:
				imp.logger.Debug("ocelxml: ignoring unknown object child", "element", t.Name.Local)

				if err := imp.dec.Skip(); err != nil {
					return ocel.Object{}, fmt.Errorf("%w: %v", ErrMalformedXML, err)
				}
			}
		}
	}
}

func (imp *importer) readObjectAttributes(attrTypes map[string]ocel.ValueType) ([]ocel.ObjectAttribute, error) {
	var out []ocel.ObjectAttribute

	for {
		tok, err := imp.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
		}

		switch t := tok.(type) {
		case xml.EndElement:
			if local(t.Name) == "attributes" {
				return out, nil
			}
		case xml.StartElement:
			if local(t.Name) != "attribute" {
				if err := imp.dec.Skip(); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
				}

				continue
			}

			name := attrVal(t, "name")
			timeText := attrVal(t, "time")

			text, err := imp.readText()
			if err != nil {
				return nil, err
			}

			ts, err := imp.parseTime(timeText)
			if err != nil {
				return nil, err
			}

			val, err := imp.parseTyped(attrTypes[name], text)
			if err != nil {
				return nil, err
			}

			out = append(out, ocel.ObjectAttribute{Name: name, Value: val, Time: ts})
		}
	}
}

func (imp *importer) readO2ORelationships() ([]ocel.O2ORelationship, error) {
	var out []ocel.O2ORelationship

	for {
		tok, err := imp.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
		}

		switch t := tok.(type) {
		case xml.EndElement:
			if local(t.Name) == "relationships" {
				return out, nil
			}
		case xml.StartElement:
			if local(t.Name) != "object-id" {
				if err := imp.dec.Skip(); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
				}

				continue
			}

			qualifier := attrVal(t, "qualifier")

			text, err := imp.readText()
			if err != nil {
				return nil, err
			}

			out = append(out, ocel.O2ORelationship{ObjectID: text, Qualifier: ocel.Qualifier(qualifier)})
		}
	}
}

// readText reads and trims the character data of the element just opened,
// consuming tokens up to (and including) its matching end element. Used
// for leaf elements whose content is plain text (<id>, <type>, <time>,
// <attribute>, <object-id>).
func (imp *importer) readText() (string, error) {
	var sb strings.Builder

	depth := 0

	for {
		tok, err := imp.dec.Token()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedXML, err)
		}

		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				return strings.TrimSpace(sb.String()), nil
			}

			depth--
		}
	}
}

// parseTyped parses text per the declared attribute value type
// (string/time/integer/float/boolean/null); an unknown or absent type
// falls back to string with a trace-level log.
func (imp *importer) parseTyped(vt ocel.ValueType, text string) (attribute.Value, error) {
	switch vt {
	case ocel.ValueTypeString, "":
		return attribute.NewString(text), nil
	case ocel.ValueTypeTime:
		ts, err := imp.parseTime(text)
		if err != nil {
			return attribute.Value{}, err
		}

		return attribute.NewTime(ts), nil
	case ocel.ValueTypeInteger:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return attribute.NewString(text), nil
		}

		return attribute.NewInt(i), nil
	case ocel.ValueTypeFloat:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return attribute.NewString(text), nil
		}

		v, err := attribute.NewFloat(f)
		if err != nil {
			return attribute.NewString(text), nil
		}

		return v, nil
	case ocel.ValueTypeBoolean:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return attribute.NewString(text), nil
		}

		return attribute.NewBool(b), nil
	case ocel.ValueTypeNull:
		return attribute.Null(), nil
	default:
		imp.logger.Debug("ocelxml: unknown attribute type, treating as string", "type", string(vt))

		return attribute.NewString(text), nil
	}
}

func (imp *importer) parseTime(text string) (time.Time, error) {
	if imp.opts.Strict {
		ts, err := attribute.ParseTime(text)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableTime, text)
		}

		return ts, nil
	}

	return attribute.ParseTimeFallback(text), nil
}

func attrVal(start xml.StartElement, name string) string {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}

	return ""
}

func local(name xml.Name) string { return name.Local }
