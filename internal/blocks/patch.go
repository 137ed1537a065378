package blocks

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Patch is a field in a partial update. An unset patch leaves the stored
// value untouched; a set patch with no value clears it.
type Patch[T any] struct {
	set   bool
	value *T
}

// Set returns a patch that assigns value.
func Set[T any](value T) Patch[T] {
	return Patch[T]{set: true, value: &value}
}

// Clear returns a patch that nulls the field.
func Clear[T any]() Patch[T] {
	return Patch[T]{set: true}
}

// IsSet reports whether the patch carries an instruction.
func (p Patch[T]) IsSet() bool {
	return p.set
}

// IsZero lets encoding/json omit unset patches with omitzero.
func (p Patch[T]) IsZero() bool {
	return !p.set
}

// Value returns the assigned value or nil when the patch clears the field.
func (p Patch[T]) Value() *T {
	return p.value
}

// MarshalJSON encodes the value or null.
func (p Patch[T]) MarshalJSON() ([]byte, error) {
	if p.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*p.value)
}

// UnmarshalJSON marks the patch as set; null clears.
func (p *Patch[T]) UnmarshalJSON(data []byte) error {
	p.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		p.value = nil
		return nil
	}
	var decoded T
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	p.value = &decoded
	return nil
}

// OptionalString builds a patch from form input, mapping blank input to a clear.
func OptionalString(value string) Patch[string] {
	if strings.TrimSpace(value) == "" {
		return Clear[string]()
	}
	return Set(value)
}

// OptionalTime builds a patch from a possibly nil time.
func OptionalTime(value *time.Time) Patch[time.Time] {
	if value == nil {
		return Clear[time.Time]()
	}
	return Set(*value)
}

// UpdateFields carries the editable block fields of an update request.
type UpdateFields struct {
	Title          Patch[string]    `json:"title,omitzero"`
	URL            Patch[string]    `json:"url,omitzero"`
	Icon           Patch[string]    `json:"icon,omitzero"`
	EmbedType      Patch[string]    `json:"embedType,omitzero"`
	EmbedURL       Patch[string]    `json:"embedUrl,omitzero"`
	SocialIcons    Patch[string]    `json:"socialIcons,omitzero"`
	Config         Patch[string]    `json:"config,omitzero"`
	ScheduledStart Patch[time.Time] `json:"scheduledStart,omitzero"`
	ScheduledEnd   Patch[time.Time] `json:"scheduledEnd,omitzero"`
}

// IsEmpty reports whether no field is set.
func (f UpdateFields) IsEmpty() bool {
	return len(f.columns()) == 0
}

func (f UpdateFields) columns() map[string]any {
	updates := map[string]any{}
	addString := func(column string, patch Patch[string]) {
		if !patch.IsSet() {
			return
		}
		if value := patch.Value(); value != nil && strings.TrimSpace(*value) != "" {
			updates[column] = *value
			return
		}
		updates[column] = nil
	}
	addTime := func(column string, patch Patch[time.Time]) {
		if !patch.IsSet() {
			return
		}
		if value := patch.Value(); value != nil {
			updates[column] = value.UTC()
			return
		}
		updates[column] = nil
	}

	addString("title", f.Title)
	addString("url", f.URL)
	addString("icon", f.Icon)
	addString("embed_type", f.EmbedType)
	addString("embed_url", f.EmbedURL)
	addString("social_icons", f.SocialIcons)
	if f.Config.IsSet() {
		raw := "{}"
		if value := f.Config.Value(); value != nil && strings.TrimSpace(*value) != "" {
			raw = *value
		}
		updates["config"] = raw
	}
	addTime("scheduled_start", f.ScheduledStart)
	addTime("scheduled_end", f.ScheduledEnd)
	return updates
}
