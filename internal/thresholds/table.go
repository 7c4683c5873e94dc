// Package thresholds exposes every threshold guardrail as a row of a
// (name, warn, fail) table that can be read and updated at runtime.
package thresholds

import (
	"errors"

	"github.com/ppiankov/guardrails/internal/guardrail"
)

// Table and column names of the row view.
const (
	TableName  = "thresholds"
	NameColumn = "name"
	WarnColumn = "warn"
	FailColumn = "fail"
)

// Binding connects a row to a threshold guardrail. Set or Get may be nil:
// rows without a getter are not listed, rows without a setter are
// read-only.
type Binding struct {
	Name string
	Set  func(warn, fail int64) error
	Get  func() (warn, fail int64)
}

// Source provides the bindings, ordered by name.
type Source interface {
	ThresholdBindings() []Binding
}

// Entry is one row.
type Entry struct {
	Name string `json:"name"`
	Warn int64  `json:"warn"`
	Fail int64  `json:"fail"`
}

// Update is a row mutation. Both columns are required.
type Update struct {
	Name string
	Warn *int64
	Fail *int64
}

// RequestError is returned when the guardrail rejects the new pair. Its
// message is the guardrail's, verbatim.
type RequestError struct {
	Message string
	err     error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.err
}

// IsRequestError reports whether err wraps a RequestError.
func IsRequestError(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}

// Table is the row view over a Source.
type Table struct {
	source Source
}

// NewTable creates a Table.
func NewTable(source Source) *Table {
	return &Table{source: source}
}

// ReadAll returns the current value of every readable row.
func (t *Table) ReadAll() []Entry {
	bindings := t.source.ThresholdBindings()
	entries := make([]Entry, 0, len(bindings))
	for _, b := range bindings {
		if b.Get == nil {
			continue
		}
		warn, fail := b.Get()
		entries = append(entries, Entry{Name: b.Name, Warn: warn, Fail: fail})
	}
	return entries
}

// Read returns a single row.
func (t *Table) Read(name string) (Entry, error) {
	b, err := t.lookup(name)
	if err != nil {
		return Entry{}, err
	}
	if b.Get == nil {
		return Entry{}, guardrail.ConfigErrorf("there is no such guardrail with name %s", name)
	}
	warn, fail := b.Get()
	return Entry{Name: name, Warn: warn, Fail: fail}, nil
}

// Apply validates and applies u. Nothing changes when an error is returned.
func (t *Table) Apply(u Update) error {
	b, err := t.lookup(u.Name)
	if err != nil {
		return err
	}
	if u.Warn == nil || u.Fail == nil {
		return guardrail.ConfigErrorf("both warn and fail columns must be specified for updates")
	}
	if b.Set == nil {
		return guardrail.ConfigErrorf("There is not any associated setter for guardrail %s", u.Name)
	}
	if err := b.Set(*u.Warn, *u.Fail); err != nil {
		return &RequestError{Message: err.Error(), err: err}
	}
	return nil
}

func (t *Table) lookup(name string) (Binding, error) {
	for _, b := range t.source.ThresholdBindings() {
		if b.Name == name {
			return b, nil
		}
	}
	return Binding{}, guardrail.ConfigErrorf("there is no such guardrail with name %s", name)
}
