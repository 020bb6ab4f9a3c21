package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/simgear/pots-to-serial/pkg/calibration"
	"github.com/simgear/pots-to-serial/pkg/config"
	"github.com/simgear/pots-to-serial/pkg/device"
	"github.com/simgear/pots-to-serial/pkg/output"
	"github.com/simgear/pots-to-serial/pkg/output/console"
	"github.com/simgear/pots-to-serial/pkg/output/mqtt"
	"github.com/simgear/pots-to-serial/pkg/output/serial"
	"github.com/simgear/pots-to-serial/pkg/sensor"
)

type outputEntry struct {
	Output     output.Output
	IntervalMs int
	last       time.Time
}

func main() {
	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatal(err)
	}

	sns, err := buildSensor(cfg)
	if err != nil {
		log.Fatal(err)
	}

	dev, err := device.New(cfg, sns, calibration.NewFileStore(cfg.Calibration.File))
	if err != nil {
		log.Fatal(err)
	}
	defer dev.Close()

	entries, err := initOutputs(&cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		for _, e := range entries {
			if err := e.Output.Close(); err != nil {
				log.Printf("output close error: %v", err)
			}
		}
	}()

	log.Printf("starting profile=%s sensor=%s interval=%dms outputs=%d",
		cfg.Profile, cfg.SensorType, cfg.IntervalMs, len(entries))
	run(cfg, dev, entries)
}

// run ticks the device forever and fans snapshots out to the outputs at
// their own intervals. Marker lines bypass the interval gate so the
// calibration lifecycle is never dropped.
func run(cfg config.Config, dev *device.Device, entries []outputEntry) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(cfg.IntervalMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case sig := <-sigs:
			log.Printf("received %v, shutting down", sig)
			return
		case now := <-ticker.C:
			snap, err := dev.Tick(now)
			if err != nil {
				log.Printf("tick error: %v", err)
				continue
			}
			for i := range entries {
				e := &entries[i]
				due := now.Sub(e.last) >= time.Duration(e.IntervalMs)*time.Millisecond
				if !due && len(snap.Markers) == 0 {
					continue
				}
				if err := e.Output.Publish(snap); err != nil {
					log.Printf("publish error: %v", err)
				}
				if due {
					e.last = now
				}
			}
		}
	}
}

func buildSensor(cfg config.Config) (sensor.Sensor, error) {
	switch cfg.SensorType {
	case "real", "":
		return sensor.NewADS1115Sensor(cfg)
	case "fake", "simulation":
		channels := make([]int, 0, len(cfg.Channels))
		for _, ch := range cfg.Channels {
			if ch.Enabled {
				channels = append(channels, ch.Channel)
			}
		}
		return sensor.NewFakeSensor(channels, cfg.FullScale), nil
	default:
		return nil, fmt.Errorf("unknown sensor type %q", cfg.SensorType)
	}
}

// initOutputs builds the configured outputs. Outputs without an
// interval inherit the global tick interval.
func initOutputs(cfg *config.Config) ([]outputEntry, error) {
	entries := make([]outputEntry, 0, len(cfg.Outputs))
	for i := range cfg.Outputs {
		oc := &cfg.Outputs[i]
		if oc.IntervalMs == 0 {
			oc.IntervalMs = cfg.IntervalMs
		}
		var (
			out output.Output
			err error
		)
		switch oc.Type {
		case "console":
			out = console.NewConsole()
		case "serial":
			if oc.Serial == nil {
				return nil, fmt.Errorf("serial output needs a serial section")
			}
			out, err = serial.NewSerial(*oc.Serial)
		case "mqtt":
			mc := config.MQTTConfig{}
			if oc.MQTT != nil {
				mc = *oc.MQTT
			}
			out, err = mqtt.NewMQTT(mc)
		default:
			return nil, fmt.Errorf("unknown output type %q", oc.Type)
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, outputEntry{Output: out, IntervalMs: oc.IntervalMs})
	}
	return entries, nil
}
