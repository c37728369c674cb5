// Package envsink provides the environment-binding sinks and output
// writers for paramenv: an ordered in-memory sink that the fetcher
// writes into, plus formatters that turn the collected bindings into a
// .env file, POSIX export lines, or a child-process environment.
package envsink

// Binding is one (key, value) pair destined for an environment.
type Binding struct {
	Key   string
	Value string
}

// MapSink collects environment bindings in memory. Duplicate keys are
// last-write-wins, and first-write insertion order is preserved so that
// output is deterministic for a given provider-return order.
//
// MapSink is written only by the fetching goroutine; it is not safe for
// concurrent use.
type MapSink struct {
	order  []string
	values map[string]string
}

// NewMapSink creates an empty MapSink.
func NewMapSink() *MapSink {
	return &MapSink{
		values: make(map[string]string),
	}
}

// Set records a binding. A repeated key keeps its original position and
// takes the new value.
func (s *MapSink) Set(key, value string) {
	if _, exists := s.values[key]; !exists {
		s.order = append(s.order, key)
	}
	s.values[key] = value
}

// Get returns the value bound to key and whether it is present.
func (s *MapSink) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Len returns the number of distinct keys.
func (s *MapSink) Len() int {
	return len(s.order)
}

// Bindings returns the collected bindings in first-write order.
func (s *MapSink) Bindings() []Binding {
	bindings := make([]Binding, 0, len(s.order))
	for _, key := range s.order {
		bindings = append(bindings, Binding{Key: key, Value: s.values[key]})
	}
	return bindings
}

// Environ appends the bindings to a base environment in "KEY=VALUE"
// form, suitable for exec.Cmd.Env. Bindings are appended last so that a
// fetched value wins over an inherited one with the same key.
func (s *MapSink) Environ(base []string) []string {
	env := make([]string, 0, len(base)+len(s.order))
	env = append(env, base...)
	for _, b := range s.Bindings() {
		env = append(env, b.Key+"="+b.Value)
	}
	return env
}
