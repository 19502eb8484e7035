package factory

import "testing"

type sink struct{ Addr string }

func TestRegistryCreate(t *testing.T) {
	r := NewRegistry[sink]()
	err := r.Register("prom", func(conf map[string]any) (sink, error) {
		var c struct {
			Addr string `json:"addr"`
		}
		if err := Decode(conf, &c); err != nil {
			return sink{}, err
		}
		return sink{Addr: c.Addr}, nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register("prom", func(map[string]any) (sink, error) { return sink{}, nil }); err == nil {
		t.Fatalf("expected duplicate error")
	}
	if err := r.Register("nil", nil); err == nil {
		t.Fatalf("expected nil factory error")
	}
	s, err := r.Create(ModuleConfig{Type: "prom", Conf: map[string]any{"addr": ":9100"}})
	if err != nil || s.Addr != ":9100" {
		t.Fatalf("create: %v %+v", err, s)
	}
	if _, err := r.Create(ModuleConfig{Type: "missing"}); err == nil {
		t.Fatalf("expected unknown type error")
	}
	if names := r.Names(); len(names) != 1 || names[0] != "prom" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestDecodeWeakTyping(t *testing.T) {
	var c struct {
		Port  int  `json:"port"`
		Debug bool `json:"debug"`
	}
	if err := Decode(map[string]any{"port": "9100", "debug": "true"}, &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Port != 9100 || !c.Debug {
		t.Fatalf("bad decode %+v", c)
	}
}
