// Package xes implements the streaming XES importer: a pull reader over
// encoding/xml that materializes an *eventlog.Log, transparently decoding
// gzip-wrapped (.xes.gz) input.
package xes

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/pmlab-io/pmcore/internal/attribute"
	"github.com/pmlab-io/pmcore/internal/eventlog"
)

// Sentinel errors for the two ways an import can fail.
var (
	ErrMalformedXML    = errors.New("xes: malformed xml")
	ErrUnparseableTime = errors.New("xes: unparseable timestamp")
)

// typedAttributeTags names the XES attribute element names recognized at
// any scope (log/trace/event/nested).
var typedAttributeTags = map[string]bool{
	"string": true, "date": true, "int": true, "float": true, "boolean": true, "id": true,
}

// Options configures Import.
type Options struct {
	// Strict surfaces an unparseable <date> value as ErrUnparseableTime
	// instead of falling back to the zero-offset epoch.
	Strict bool
}

// Import reads an XES document from r. Gzip-wrapped streams (detected by
// magic number, not by filename) are transparently decoded.
func Import(r io.Reader, opts Options) (*eventlog.Log, error) {
	br := bufio.NewReader(r)

	magic, err := br.Peek(2)
	if err == nil && len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, gzErr := gzip.NewReader(br)
		if gzErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedXML, gzErr)
		}

		defer gz.Close()

		return importXML(gz, opts)
	}

	return importXML(br, opts)
}

func importXML(r io.Reader, opts Options) (*eventlog.Log, error) {
	dec := xml.NewDecoder(r)
	log := eventlog.NewLog()

	var curTrace *eventlog.Trace

	// stack holds the Attributes map each typed-attribute tag at the
	// current nesting depth should insert into: the top is the innermost
	// open scope (log, trace, or event — nested own-attributes are
	// handled separately by readOwnAttributes).
	type frame struct {
		attrs attribute.Attributes
	}

	stack := []frame{{attrs: log.Attributes}}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local

			switch {
			case name == "trace":
				log.Traces = append(log.Traces, eventlog.Trace{Attributes: attribute.NewAttributes()})
				curTrace = &log.Traces[len(log.Traces)-1]
				stack = append(stack, frame{attrs: curTrace.Attributes})
			case name == "event":
				if curTrace == nil {
					// A log-level <event> with no enclosing trace: keep a
					// synthetic single-trace container rather than drop it.
					if len(log.Traces) == 0 {
						log.Traces = append(log.Traces, eventlog.Trace{Attributes: attribute.NewAttributes()})
					}

					curTrace = &log.Traces[len(log.Traces)-1]
				}

				curTrace.Events = append(curTrace.Events, eventlog.Event{Attributes: attribute.NewAttributes()})
				curEvent := &curTrace.Events[len(curTrace.Events)-1]
				stack = append(stack, frame{attrs: curEvent.Attributes})
			case name == "extension":
				log.Extensions = append(log.Extensions, eventlog.Extension{
					Name:   attrVal(t, "name"),
					Prefix: attrVal(t, "prefix"),
					URI:    attrVal(t, "uri"),
				})
			case name == "classifier":
				keys := strings.Fields(attrVal(t, "keys"))
				log.Classifiers = append(log.Classifiers, eventlog.Classifier{
					Name: attrVal(t, "name"),
					Keys: keys,
				})
			case name == "global":
				target, attrs, err := readGlobal(dec, t)
				if err != nil {
					return nil, err
				}

				switch target {
				case "trace":
					log.GlobalTraceAttrs = attrs
				case "event":
					log.GlobalEventAttrs = attrs
				}
			case name == "log":
				// The document root: its children are read at log scope.
			case typedAttributeTags[name]:
				key := attrVal(t, "key")
				valueText := attrVal(t, "value")

				val, err := parseTypedValue(name, valueText, opts)
				if err != nil {
					return nil, err
				}

				attr := attribute.Attribute{Key: key, Value: val}

				own, err := readOwnAttributes(dec, t, opts)
				if err != nil {
					return nil, err
				}

				attr.OwnAttributes = own

				top := stack[len(stack)-1]
				if top.attrs != nil {
					top.attrs.Set(attr)
				}
			default:
				if err := dec.Skip(); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "trace":
				if len(stack) > 1 {
					stack = stack[:len(stack)-1]
				}

				curTrace = nil
			case "event":
				if len(stack) > 1 {
					stack = stack[:len(stack)-1]
				}
			}
		}
	}

	return log, nil
}

// readGlobal reads a <global scope="trace|event"> block's direct typed
// attribute children into a fresh Attributes map, consuming tokens up to
// its matching end element.
func readGlobal(dec *xml.Decoder, start xml.StartElement) (string, attribute.Attributes, error) {
	target := attrVal(start, "scope")
	attrs := attribute.NewAttributes()

	for {
		tok, err := dec.Token()
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
		}

		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local == "global" {
				return target, attrs, nil
			}
		case xml.StartElement:
			if !typedAttributeTags[t.Name.Local] {
				if err := dec.Skip(); err != nil {
					return "", nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
				}

				continue
			}

			key := attrVal(t, "key")
			val, err := parseTypedValue(t.Name.Local, attrVal(t, "value"), Options{})
			if err != nil {
				return "", nil, err
			}

			attrs.Set(attribute.Attribute{Key: key, Value: val})

			if err := dec.Skip(); err != nil {
				return "", nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
			}
		}
	}
}

// readOwnAttributes reads the nested typed-attribute children of a typed
// tag (which become its own-attributes map), consuming up to the tag's
// matching end element.
func readOwnAttributes(dec *xml.Decoder, start xml.StartElement, opts Options) (attribute.Attributes, error) {
	var own attribute.Attributes

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
		}

		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return own, nil
			}
		case xml.StartElement:
			if !typedAttributeTags[t.Name.Local] {
				if err := dec.Skip(); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
				}

				continue
			}

			key := attrVal(t, "key")
			val, err := parseTypedValue(t.Name.Local, attrVal(t, "value"), opts)
			if err != nil {
				return nil, err
			}

			nested, err := readOwnAttributes(dec, t, opts)
			if err != nil {
				return nil, err
			}

			if own == nil {
				own = attribute.NewAttributes()
			}

			own.Set(attribute.Attribute{Key: key, Value: val, OwnAttributes: nested})
		}
	}
}

func parseTypedValue(tag, text string, opts Options) (attribute.Value, error) {
	switch tag {
	case "string":
		return attribute.NewString(text), nil
	case "date":
		if opts.Strict {
			ts, err := attribute.ParseTime(text)
			if err != nil {
				return attribute.Value{}, fmt.Errorf("%w: %q", ErrUnparseableTime, text)
			}

			return attribute.NewTime(ts), nil
		}

		return attribute.NewTime(attribute.ParseTimeFallback(text)), nil
	case "int":
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return attribute.NewString(text), nil
		}

		return attribute.NewInt(i), nil
	case "float":
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return attribute.NewString(text), nil
		}

		v, err := attribute.NewFloat(f)
		if err != nil {
			return attribute.NewString(text), nil
		}

		return v, nil
	case "boolean":
		b, err := strconv.ParseBool(text)
		if err != nil {
			return attribute.NewString(text), nil
		}

		return attribute.NewBool(b), nil
	case "id":
		if u, err := uuid.Parse(text); err == nil {
			return attribute.NewUUID(u), nil
		}

		return attribute.NewString(text), nil
	default:
		return attribute.NewString(text), nil
	}
}

func attrVal(start xml.StartElement, name string) string {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}

	return ""
}
