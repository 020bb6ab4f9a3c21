package main

import (
	"testing"

	"github.com/simgear/pots-to-serial/pkg/config"
)

func TestInitOutputsSetsInterval(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.IntervalMs = 123
	cfg.Outputs = []config.OutputConfig{{Type: "console"}}

	entries, err := initOutputs(&cfg)
	if err != nil {
		t.Fatalf("initOutputs: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries len: %d", len(entries))
	}
	if cfg.Outputs[0].IntervalMs != 123 {
		t.Fatalf("cfg output interval not set, got %d", cfg.Outputs[0].IntervalMs)
	}
	if entries[0].IntervalMs != 123 {
		t.Fatalf("entry interval not set, got %d", entries[0].IntervalMs)
	}
}

func TestInitOutputsRejectsUnknownType(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Outputs = []config.OutputConfig{{Type: "carrier-pigeon"}}
	if _, err := initOutputs(&cfg); err == nil {
		t.Fatalf("expected error for unknown output type")
	}
}

func TestInitOutputsSerialNeedsConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Outputs = []config.OutputConfig{{Type: "serial"}}
	if _, err := initOutputs(&cfg); err == nil {
		t.Fatalf("expected error for serial output without section")
	}
}

func TestBuildSensorFake(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SensorType = "fake"
	s, err := buildSensor(cfg)
	if err != nil {
		t.Fatalf("buildSensor: %v", err)
	}
	defer s.Close()

	readings, err := s.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(readings) != 1 || readings[0].Channel != 0 {
		t.Fatalf("readings: %+v", readings)
	}
}

func TestBuildSensorUnknownType(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SensorType = "psychic"
	if _, err := buildSensor(cfg); err == nil {
		t.Fatalf("expected error for unknown sensor type")
	}
}
