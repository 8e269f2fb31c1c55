// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package streams

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStream is returned for a stream name that is not registered.
var ErrUnknownStream = errors.New("unknown stream")

// Factory builds a Reader for one run.
type Factory func(deps Deps) Reader

type entry struct {
	desc    Descriptor
	factory Factory
}

// Registry maps stream names to descriptors and reader factories.
// A Registry is read-only once built and safe for concurrent use.
type Registry struct {
	entries map[string]entry
	order   []string
}

// NewRegistry returns a registry holding every entity and report stream.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]entry)}

	for _, name := range Entities {
		desc := entityDescriptor(name)
		r.mustRegister(desc, func(deps Deps) Reader {
			return &entityReader{desc: desc, deps: deps}
		})
	}

	for _, v := range reportVariants() {
		r.mustRegister(v.descriptor(), func(deps Deps) Reader {
			return &reportReader{v: v, deps: deps}
		})
	}

	for _, gl := range []struct{ name, method string }{
		{"GeneralLedgerAccrualReport", Accrual},
		{"GeneralLedgerCashReport", Cash},
	} {
		r.mustRegister(ledgerDescriptor(gl.name), func(deps Deps) Reader {
			return &ledgerReader{name: gl.name, method: gl.method, deps: deps}
		})
	}
	return r
}

// Register adds a stream. Names must be unique.
func (r *Registry) Register(desc Descriptor, factory Factory) error {
	if desc.Name == "" {
		return errors.New("stream name is required")
	}
	if factory == nil {
		return fmt.Errorf("stream %s: factory is required", desc.Name)
	}
	if _, ok := r.entries[desc.Name]; ok {
		return fmt.Errorf("stream %s is already registered", desc.Name)
	}
	r.entries[desc.Name] = entry{desc: desc, factory: factory}
	r.order = append(r.order, desc.Name)
	return nil
}

func (r *Registry) mustRegister(desc Descriptor, factory Factory) {
	if err := r.Register(desc, factory); err != nil {
		panic(err)
	}
}

// Descriptor returns the descriptor of name.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	e, ok := r.entries[name]
	return e.desc, ok
}

// Descriptors returns all descriptors in registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].desc)
	}
	return out
}

// Select returns the descriptors for names in registration order. An empty
// selection selects every stream.
func (r *Registry) Select(names []string) ([]Descriptor, error) {
	if len(names) == 0 {
		return r.Descriptors(), nil
	}

	want := make(map[string]bool, len(names))
	var unknown []string
	for _, n := range names {
		if _, ok := r.entries[n]; !ok {
			unknown = append(unknown, n)
			continue
		}
		want[n] = true
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStream, strings.Join(unknown, ", "))
	}

	out := make([]Descriptor, 0, len(want))
	for _, name := range r.order {
		if want[name] {
			out = append(out, r.entries[name].desc)
		}
	}
	return out, nil
}

// Reader returns a reader for name. It performs no I/O.
func (r *Registry) Reader(name string, deps Deps) (Reader, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStream, name)
	}
	if deps.Client == nil {
		return nil, fmt.Errorf("stream %s: client is required", name)
	}
	return e.factory(deps), nil
}
