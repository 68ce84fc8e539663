package xes

import (
	"encoding/xml"
	"io"
	"strconv"

	"github.com/klauspost/compress/gzip"

	"github.com/pmlab-io/pmcore/internal/attribute"
	"github.com/pmlab-io/pmcore/internal/eventlog"
)

// timeLayout is the wire format for <date> values: ISO-8601 with
// millisecond precision, re-readable by the shared timestamp parser.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// ExportOptions configures Export.
type ExportOptions struct {
	// Compress gzip-wraps the output stream, producing the .xes.gz form
	// Import transparently decodes.
	Compress bool
}

// Export writes log to w as an XES document mirroring the elements
// Import reads: <extension>/<classifier>/<global> metadata, log
// attributes, then one <trace> per trace with its events. Attribute maps
// are written in sorted key order for deterministic output.
func Export(w io.Writer, log *eventlog.Log, opts ExportOptions) error {
	if opts.Compress {
		gz := gzip.NewWriter(w)

		if err := exportXML(gz, log); err != nil {
			gz.Close()

			return err
		}

		return gz.Close()
	}

	return exportXML(w, log)
}

func exportXML(w io.Writer, log *eventlog.Log) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	logStart := xml.StartElement{Name: xml.Name{Local: "log"}}
	if err := enc.EncodeToken(logStart); err != nil {
		return err
	}

	for _, ext := range log.Extensions {
		el := xml.StartElement{
			Name: xml.Name{Local: "extension"},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "name"}, Value: ext.Name},
				{Name: xml.Name{Local: "prefix"}, Value: ext.Prefix},
				{Name: xml.Name{Local: "uri"}, Value: ext.URI},
			},
		}

		if err := encodeEmpty(enc, el); err != nil {
			return err
		}
	}

	for _, c := range log.Classifiers {
		el := xml.StartElement{
			Name: xml.Name{Local: "classifier"},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "name"}, Value: c.Name},
				{Name: xml.Name{Local: "keys"}, Value: joinKeys(c.Keys)},
			},
		}

		if err := encodeEmpty(enc, el); err != nil {
			return err
		}
	}

	if err := encodeGlobal(enc, "trace", log.GlobalTraceAttrs); err != nil {
		return err
	}

	if err := encodeGlobal(enc, "event", log.GlobalEventAttrs); err != nil {
		return err
	}

	if err := encodeAttributes(enc, log.Attributes); err != nil {
		return err
	}

	for _, tr := range log.Traces {
		traceStart := xml.StartElement{Name: xml.Name{Local: "trace"}}
		if err := enc.EncodeToken(traceStart); err != nil {
			return err
		}

		if err := encodeAttributes(enc, tr.Attributes); err != nil {
			return err
		}

		for _, ev := range tr.Events {
			eventStart := xml.StartElement{Name: xml.Name{Local: "event"}}
			if err := enc.EncodeToken(eventStart); err != nil {
				return err
			}

			if err := encodeAttributes(enc, ev.Attributes); err != nil {
				return err
			}

			if err := enc.EncodeToken(eventStart.End()); err != nil {
				return err
			}
		}

		if err := enc.EncodeToken(traceStart.End()); err != nil {
			return err
		}
	}

	if err := enc.EncodeToken(logStart.End()); err != nil {
		return err
	}

	return enc.Close()
}

func encodeGlobal(enc *xml.Encoder, scope string, attrs attribute.Attributes) error {
	if len(attrs) == 0 {
		return nil
	}

	start := xml.StartElement{
		Name: xml.Name{Local: "global"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "scope"}, Value: scope}},
	}

	if err := enc.EncodeToken(start); err != nil {
		return err
	}

	if err := encodeAttributes(enc, attrs); err != nil {
		return err
	}

	return enc.EncodeToken(start.End())
}

func encodeAttributes(enc *xml.Encoder, attrs attribute.Attributes) error {
	for _, key := range attrs.Keys() {
		attr, _ := attrs.Get(key)

		if err := encodeAttribute(enc, attr); err != nil {
			return err
		}
	}

	return nil
}

func encodeAttribute(enc *xml.Encoder, attr attribute.Attribute) error {
	tag, value := typedTag(attr.Value)

	start := xml.StartElement{
		Name: xml.Name{Local: tag},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "key"}, Value: attr.Key},
			{Name: xml.Name{Local: "value"}, Value: value},
		},
	}

	if len(attr.OwnAttributes) == 0 {
		return encodeEmpty(enc, start)
	}

	if err := enc.EncodeToken(start); err != nil {
		return err
	}

	if err := encodeAttributes(enc, attr.OwnAttributes); err != nil {
		return err
	}

	return enc.EncodeToken(start.End())
}

// typedTag picks the XES element name and value text for v. List and
// container variants have no XES element here and degrade to a string
// tag with the debug rendering; the null variant becomes an empty string.
func typedTag(v attribute.Value) (tag, value string) {
	switch v.Kind() {
	case attribute.KindString:
		s, _ := v.AsString()

		return "string", s
	case attribute.KindTime:
		t, _ := v.AsTime()

		return "date", t.Format(timeLayout)
	case attribute.KindInt:
		i, _ := v.AsInt()

		return "int", strconv.FormatInt(i, 10)
	case attribute.KindFloat:
		f, _ := v.AsFloat()

		return "float", strconv.FormatFloat(f, 'g', -1, 64)
	case attribute.KindBool:
		b, _ := v.AsBool()

		return "boolean", strconv.FormatBool(b)
	case attribute.KindUUID:
		u, _ := v.AsUUID()

		return "id", u.String()
	case attribute.KindNull:
		return "string", ""
	default:
		return "string", v.String()
	}
}

func encodeEmpty(enc *xml.Encoder, start xml.StartElement) error {
	if err := enc.EncodeToken(start); err != nil {
		return err
	}

	return enc.EncodeToken(start.End())
}

func joinKeys(keys []string) string {
	out := ""

	for i, k := range keys {
		if i > 0 {
			out += " "
		}

		out += k
	}

	return out
}
