package rake

import (
	"fmt"
	rtdebug "runtime/debug"
	"time"

	"github.com/randalmurphal/rake/pkg/rake/event"
	"github.com/randalmurphal/rake/pkg/rake/observability"
)

// TimeLayout is the Go layout of the seconds part of event timestamps.
// FormatTime appends three millisecond digits, giving yyyyMMddHHmmssSSS.
const TimeLayout = "20060102150405"

// FormatTime renders t as a 17-digit yyyyMMddHHmmssSSS timestamp in t's zone.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout) + fmt.Sprintf("%03d", t.Nanosecond()/int(time.Millisecond))
}

// Compose builds the event document for props without delivering it.
//
// Properties are merged in this order, later sources winning on key
// collision: token and timestamps, super properties, props, environment.
// Environment values replace caller values of the same name.
//
// When props carries schema metadata under event.KeySchemaMeta, the
// metadata moves to the top level of the document and only environment
// keys listed in its field order are merged.
//
// Individual props values that cannot be encoded as JSON are skipped.
// Malformed schema metadata fails the whole composition.
func (c *Client) Compose(props map[string]any) (doc *event.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: %w", ErrComposeFailed, &PanicError{Value: r, Stack: string(rtdebug.Stack())})
		}
	}()

	now := c.now()
	merged := event.Properties{
		event.KeyToken:     c.token,
		event.KeyBaseTime:  FormatTime(now.In(c.baseLoc)),
		event.KeyLocalTime: FormatTime(now.In(c.localLoc)),
	}

	for key, value := range c.overlay.snapshot() {
		merged[key] = deepCopy(value)
	}

	for key, value := range props {
		normalized, err := normalize(value)
		if err != nil {
			observability.LogPropertySkipped(c.logger, "track", key, &PropertyError{Key: key, Err: err})
			continue
		}
		merged[key] = normalized
	}

	schema, err := event.ExtractSchema(merged)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrComposeFailed, err)
	}

	for key, value := range c.env.Snapshot() {
		if schema.Allows(key) {
			merged[key] = value
		}
	}

	doc = &event.Document{Properties: merged}
	schema.Apply(doc)
	return doc, nil
}
