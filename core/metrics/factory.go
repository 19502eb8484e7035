package metrics

import "github.com/kilianp07/slotplan/core/factory"

var sinkRegistry = factory.NewRegistry[SearchSink]()

// RegisterSink adds a sink factory identified by name.
func RegisterSink(name string, f factory.Factory[SearchSink]) error {
	return sinkRegistry.Register(name, f)
}

// NewSink creates a SearchSink from the provided configuration.
func NewSink(cfgs []factory.ModuleConfig) (SearchSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(cfgs[0])
	}
	sinks := make([]SearchSink, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			return nil, err
		}
		sinks[i] = s
	}
	return NewMultiSink(sinks...), nil
}
