package errors

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Severity ranks a Diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Diagnostic is one problem found while processing a document.
type Diagnostic struct {
	// Source names the document or file the problem was found in.
	Source    string
	Line      int
	Column    int
	Message   string
	Severity  Severity
	Err       error
	Timestamp time.Time
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	loc := d.Source
	if d.Line > 0 {
		loc = fmt.Sprintf("%s:%d:%d", d.Source, d.Line, d.Column)
	}
	if loc == "" {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", loc, d.Severity, d.Message)
}

func (d *Diagnostic) Unwrap() error { return d.Err }

// Collector gathers diagnostics from a batch of documents. It is safe for
// concurrent use.
type Collector struct {
	mu          sync.RWMutex
	diagnostics []Diagnostic
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add records d, stamping it with the current time.
func (c *Collector) Add(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d.Timestamp = time.Now()
	c.diagnostics = append(c.diagnostics, d)
}

// AddError records err against source. WikiError locations are kept;
// recoverable errors are recorded as warnings.
func (c *Collector) AddError(source string, err error) {
	if err == nil {
		return
	}
	d := Diagnostic{Source: source, Message: err.Error(), Severity: SeverityError, Err: err}
	var we *WikiError
	if As(err, &we) {
		d.Line, d.Column = we.Line, we.Column
		if we.Recoverable {
			d.Severity = SeverityWarning
		}
	}
	c.Add(d)
}

// Diagnostics returns a copy of everything recorded so far.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Diagnostic, len(c.diagnostics))
	copy(out, c.diagnostics)
	return out
}

// BySource returns the diagnostics recorded for one source.
func (c *Collector) BySource(source string) []Diagnostic {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Diagnostic
	for _, d := range c.diagnostics {
		if d.Source == source {
			out = append(out, d)
		}
	}
	return out
}

// HasErrors reports whether anything at error severity or above was
// recorded.
func (c *Collector) HasErrors() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, d := range c.diagnostics {
		if d.Severity >= SeverityError {
			return true
		}
	}
	return false
}

// Len returns the number of recorded diagnostics.
func (c *Collector) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.diagnostics)
}

// Clear drops every diagnostic.
func (c *Collector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diagnostics = c.diagnostics[:0]
}

// Err joins the error-level diagnostics, or returns nil.
func (c *Collector) Err() error {
	var errs []error
	for _, d := range c.Diagnostics() {
		d := d
		if d.Severity >= SeverityError {
			errs = append(errs, &d)
		}
	}
	return Join(errs...)
}

// Report formats the diagnostics grouped by source, sources sorted.
func (c *Collector) Report() string {
	diags := c.Diagnostics()
	if len(diags) == 0 {
		return ""
	}
	sort.SliceStable(diags, func(i, j int) bool { return diags[i].Source < diags[j].Source })

	var sb strings.Builder
	source := "\x00"
	for _, d := range diags {
		if d.Source != source {
			source = d.Source
			fmt.Fprintf(&sb, "%s\n", source)
		}
		loc := ""
		if d.Line > 0 {
			loc = fmt.Sprintf("%d:%d ", d.Line, d.Column)
		}
		fmt.Fprintf(&sb, "  %s%s: %s\n", loc, d.Severity, d.Message)
	}
	return sb.String()
}
