package synthetics

// WarningSink receives flushed warnings
type WarningSink interface {
	Warn(message string)
}

// Warnings is a de-duplicated list of preparation warnings
type Warnings struct {
	seen map[string]bool
	list []string
}

// NewWarnings returns an empty set
func NewWarnings() *Warnings {
	return &Warnings{seen: make(map[string]bool)}
}

// Add records a warning once
func (w *Warnings) Add(message string) {
	if w.seen[message] {
		return
	}
	w.seen[message] = true
	w.list = append(w.list, message)
}

// List returns the warnings in arrival order
func (w *Warnings) List() []string {
	return append([]string(nil), w.list...)
}

// Len returns the number of distinct warnings
func (w *Warnings) Len() int {
	return len(w.list)
}

// Flush sends every warning to sink
func (w *Warnings) Flush(sink WarningSink) {
	if sink == nil {
		return
	}
	for _, msg := range w.list {
		sink.Warn(msg)
	}
}
