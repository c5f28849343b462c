package predicate

import "sort"

// Options is the set of roll options currently true
type Options map[string]struct{}

// NewOptions builds a set from the given options
func NewOptions(options ...string) Options {
	set := make(Options, len(options))
	for _, o := range options {
		set.Add(o)
	}
	return set
}

// Add inserts options into the set
func (o Options) Add(options ...string) {
	for _, opt := range options {
		if opt != "" {
			o[opt] = struct{}{}
		}
	}
}

// Remove deletes an option
func (o Options) Remove(option string) {
	delete(o, option)
}

// Has reports whether option is present
func (o Options) Has(option string) bool {
	_, ok := o[option]
	return ok
}

// Union returns a new set holding o and every other set
func (o Options) Union(others ...Options) Options {
	out := make(Options, len(o))
	for opt := range o {
		out[opt] = struct{}{}
	}
	for _, other := range others {
		for opt := range other {
			out[opt] = struct{}{}
		}
	}
	return out
}

// Slice returns the options sorted
func (o Options) Slice() []string {
	out := make([]string, 0, len(o))
	for opt := range o {
		out = append(out, opt)
	}
	sort.Strings(out)
	return out
}
