package ocdfg

import (
	"sort"
	"time"

	"github.com/pmlab-io/pmcore/internal/attribute"
	"github.com/pmlab-io/pmcore/internal/eventlog"
	"github.com/pmlab-io/pmcore/internal/linkedocel"
)

// FlattenObjectType flattens locel onto objectType into a case-centric
// log: one trace per object of that type, identified by the object id;
// its events are the object's reverse-E2O-linked events, sorted ascending
// by time, each carrying concept:name (the event type), time:timestamp,
// and the event's own attributes; the trace carries the object's
// attributes. Traces are sorted ascending by first-event time.
func FlattenObjectType(locel linkedocel.LinkedOCELAccess, objectType string, opts Options) *eventlog.Log {
	log := eventlog.NewLog()

	obIdxs := locel.GetObsOfType(objectType)
	traces := make([]eventlog.Trace, 0, len(obIdxs))

	for _, obIdx := range obIdxs {
		ob, ok := locel.GetOb(obIdx)
		if !ok {
			continue
		}

		events := flattenObjectEvents(locel, obIdx)

		if opts.WithInitExit && len(events) > 0 {
			events = bracketWithInitExit(events)
		}

		trace := eventlog.Trace{
			Attributes: attribute.NewAttributes(),
			Events:     events,
		}
		trace.Attributes.Set(attribute.Attribute{
			Key:   eventlog.ConceptName,
			Value: attribute.NewString(ob.ID),
		})

		for _, oa := range ob.Attributes {
			trace.Attributes.Set(attribute.Attribute{Key: oa.Name, Value: oa.Value})
		}

		traces = append(traces, trace)
	}

	sort.SliceStable(traces, func(i, j int) bool {
		ti, oki := firstEventTime(traces[i])
		tj, okj := firstEventTime(traces[j])

		if !oki {
			return false
		}

		if !okj {
			return true
		}

		return ti.Before(tj)
	})

	log.Traces = traces

	return log
}

// flattenObjectEvents collects the events related to object obIdx in
// reverse-E2O iteration order, translates each to a case-centric
// eventlog.Event, and sorts the result ascending by time.
func flattenObjectEvents(locel linkedocel.LinkedOCELAccess, obIdx int) []eventlog.Event {
	revEdges := locel.GetE2ORev(obIdx)
	events := make([]eventlog.Event, 0, len(revEdges))
	times := make([]time.Time, 0, len(revEdges))

	for _, edge := range revEdges {
		ev, ok := locel.GetEv(edge.EventIdx)
		if !ok {
			continue
		}

		attrs := attribute.NewAttributes()
		attrs.Set(attribute.Attribute{Key: eventlog.ConceptName, Value: attribute.NewString(ev.Type)})
		attrs.Set(attribute.Attribute{Key: eventlog.TimeTimestamp, Value: attribute.NewTime(ev.Time)})

		for _, ea := range ev.Attributes {
			attrs.Set(attribute.Attribute{Key: ea.Name, Value: ea.Value})
		}

		events = append(events, eventlog.Event{Attributes: attrs})
		times = append(times, ev.Time)
	}

	idx := make([]int, len(events))
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(i, j int) bool { return times[idx[i]].Before(times[idx[j]]) })

	sorted := make([]eventlog.Event, len(events))
	for i, j := range idx {
		sorted[i] = events[j]
	}

	return sorted
}

// bracketWithInitExit prepends an InitActivity event at the first real
// event's time and appends an ExitActivity event at the last real event's
// time. Neither synthetic event carries relationships.
func bracketWithInitExit(events []eventlog.Event) []eventlog.Event {
	firstTime, _ := eventTime(events[0])
	lastTime, _ := eventTime(events[len(events)-1])

	out := make([]eventlog.Event, 0, len(events)+2)
	out = append(out, syntheticEvent(InitActivity, firstTime))
	out = append(out, events...)
	out = append(out, syntheticEvent(ExitActivity, lastTime))

	return out
}

func syntheticEvent(activity string, t time.Time) eventlog.Event {
	attrs := attribute.NewAttributes()
	attrs.Set(attribute.Attribute{Key: eventlog.ConceptName, Value: attribute.NewString(activity)})
	attrs.Set(attribute.Attribute{Key: eventlog.TimeTimestamp, Value: attribute.NewTime(t)})

	return eventlog.Event{Attributes: attrs}
}

func eventTime(ev eventlog.Event) (time.Time, bool) {
	attr, ok := ev.Attributes.Get(eventlog.TimeTimestamp)
	if !ok {
		return time.Time{}, false
	}

	return attr.Value.AsTime()
}

func firstEventTime(tr eventlog.Trace) (time.Time, bool) {
	if len(tr.Events) == 0 {
		return time.Time{}, false
	}

	return eventTime(tr.Events[0])
}
