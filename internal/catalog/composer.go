// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"sellerconsole/internal/models"
)

// now is swapped in tests to make synthetic ids predictable.
var now = time.Now

// ErrAxisNotFound is returned when an axis id matches nothing in the composer.
var ErrAxisNotFound = errors.New("variant axis not found")

// AxisValue is one staged value of an axis. ID is either a backend id (when
// loaded from an existing product) or a local placeholder.
type AxisValue struct {
	ID    string `json:"id,omitempty"`
	Value string `json:"value"`
}

// Axis is a staged option dimension such as "Size: S/M/L".
type Axis struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Values []AxisValue `json:"values"`
}

// ValueStrings returns the axis values as plain strings.
func (a Axis) ValueStrings() []string {
	out := make([]string, 0, len(a.Values))
	for _, v := range a.Values {
		out = append(out, v.Value)
	}
	return out
}

// OptionInput is the serialized axis sent with a product create payload.
type OptionInput struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// NamedOption is the serialized axis accepted by the variant-options endpoint.
type NamedOption struct {
	OptionName string   `json:"optionName"`
	Values     []string `json:"values"`
}

// Composer stages an ordered set of option axes before they are submitted
// as one batch. The zero value is ready to use.
type Composer struct {
	Axes []Axis `json:"axes"`
}

// Len returns the number of staged axes.
func (c *Composer) Len() int { return len(c.Axes) }

// Find returns the axis with the given id.
func (c *Composer) Find(id string) (Axis, bool) {
	for _, a := range c.Axes {
		if a.ID == id {
			return a, true
		}
	}
	return Axis{}, false
}

// Add stages a new axis. Blank values are dropped; a blank name or a value
// list with nothing left after trimming rejects the add and leaves the
// composer unchanged. Duplicate names are allowed.
func (c *Composer) Add(name string, values []string) (Axis, error) {
	name, vals, err := cleanAxis(name, values)
	if err != nil {
		return Axis{}, err
	}

	id := c.nextID()
	axis := Axis{ID: id, Name: name, Values: valuesFor(id, vals, nil)}
	c.Axes = append(c.Axes, axis)
	return axis, nil
}

// Edit replaces the axis matched by id. The id may be a local placeholder
// that was never persisted. Values whose text is unchanged keep their id.
func (c *Composer) Edit(id, name string, values []string) error {
	name, vals, err := cleanAxis(name, values)
	if err != nil {
		return err
	}

	for i, a := range c.Axes {
		if a.ID != id {
			continue
		}
		c.Axes[i] = Axis{ID: id, Name: name, Values: valuesFor(id, vals, a.Values)}
		return nil
	}
	return ErrAxisNotFound
}

// Remove drops the axis with the given id. Removal needs no confirmation.
func (c *Composer) Remove(id string) bool {
	for i, a := range c.Axes {
		if a.ID == id {
			c.Axes = append(c.Axes[:i], c.Axes[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveValue drops one value from an axis, refusing to remove the last one.
func (c *Composer) RemoveValue(id string, index int) error {
	for i, a := range c.Axes {
		if a.ID != id {
			continue
		}
		if index < 0 || index >= len(a.Values) {
			return fmt.Errorf("value index %d out of range", index)
		}
		if len(a.Values) == 1 {
			return ErrLastAxisValue
		}
		vals := make([]AxisValue, 0, len(a.Values)-1)
		vals = append(vals, a.Values[:index]...)
		vals = append(vals, a.Values[index+1:]...)
		c.Axes[i].Values = vals
		return nil
	}
	return ErrAxisNotFound
}

// Reset clears every staged axis.
func (c *Composer) Reset() { c.Axes = nil }

// Load replaces the staged axes with the options of an existing product.
func (c *Composer) Load(options []models.VariantOption) {
	c.Axes = make([]Axis, 0, len(options))
	for _, o := range options {
		axis := Axis{ID: o.ID, Name: o.Name}
		for _, v := range o.Values {
			axis.Values = append(axis.Values, AxisValue{ID: v.ID, Value: v.Value})
		}
		c.Axes = append(c.Axes, axis)
	}
}

// Serialize returns the axes in submit form. Value ids are discarded since
// the backend assigns its own; axes with no non-blank value are omitted.
func (c *Composer) Serialize() []OptionInput {
	out := make([]OptionInput, 0, len(c.Axes))
	for _, a := range c.Axes {
		vals := nonBlank(a.ValueStrings())
		if len(vals) == 0 {
			continue
		}
		out = append(out, OptionInput{Name: a.Name, Values: vals})
	}
	return out
}

// SerializeOptions is Serialize shaped for the variant-options endpoint.
func (c *Composer) SerializeOptions() []NamedOption {
	in := c.Serialize()
	out := make([]NamedOption, 0, len(in))
	for _, o := range in {
		out = append(out, NamedOption{OptionName: o.Name, Values: o.Values})
	}
	return out
}

// nextID returns a "variant-<millis>" placeholder unique within c.
func (c *Composer) nextID() string {
	base := fmt.Sprintf("variant-%d", now().UnixMilli())
	id := base
	for n := 2; ; n++ {
		if _, taken := c.Find(id); !taken {
			return id
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

func cleanAxis(name string, values []string) (string, []string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, ErrAxisNameRequired
	}
	vals := nonBlank(values)
	if len(vals) == 0 {
		return "", nil, ErrAxisValuesRequired
	}
	return name, vals, nil
}

// valuesFor builds axis values, reusing ids from prev where the text
// matches. New values get "<axis>-v<n>" ids that no other value of the axis
// holds.
func valuesFor(axisID string, vals []string, prev []AxisValue) []AxisValue {
	known := make(map[string]string, len(prev))
	for _, p := range prev {
		if _, seen := known[p.Value]; !seen {
			known[p.Value] = p.ID
		}
	}

	out := make([]AxisValue, len(vals))
	taken := make(map[string]bool, len(vals))
	for i, v := range vals {
		if id, ok := known[v]; ok {
			delete(known, v)
			out[i] = AxisValue{ID: id, Value: v}
			taken[id] = true
		}
	}

	n := 0
	for i, v := range vals {
		if out[i].ID != "" {
			continue
		}
		id := fmt.Sprintf("%s-v%d", axisID, n)
		for taken[id] {
			n++
			id = fmt.Sprintf("%s-v%d", axisID, n)
		}
		n++
		taken[id] = true
		out[i] = AxisValue{ID: id, Value: v}
	}
	return out
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
