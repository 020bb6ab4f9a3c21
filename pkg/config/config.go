package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Device profiles. Each profile fixes the frame schema emitted per tick.
const (
	ProfileHandbrake = "handbrake"
	ProfilePanel     = "panel"
	ProfileThrottle  = "throttle"
	ProfileJoystick  = "joystick"
)

type MQTTConfig struct {
	Server   string `json:"server" yaml:"server"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	ClientID string `json:"client_id" yaml:"client_id"`
	Topic    string `json:"topic" yaml:"topic"`
}

type SerialConfig struct {
	Port     string `json:"port" yaml:"port"`
	BaudRate int    `json:"baud_rate" yaml:"baud_rate"`
}

type OutputConfig struct {
	Type       string        `json:"type" yaml:"type"`
	IntervalMs int           `json:"interval_ms,omitempty" yaml:"interval_ms,omitempty"`
	MQTT       *MQTTConfig   `json:"mqtt,omitempty" yaml:"mqtt,omitempty"`
	Serial     *SerialConfig `json:"serial,omitempty" yaml:"serial,omitempty"`
}

// ChannelConfig describes one physical analog input.
type ChannelConfig struct {
	Channel  int    `json:"channel" yaml:"channel"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Invert   bool   `json:"invert,omitempty" yaml:"invert,omitempty"`
	Depth    int    `json:"depth,omitempty" yaml:"depth,omitempty"`         // ring buffer depth
	PreReads int    `json:"pre_reads,omitempty" yaml:"pre_reads,omitempty"` // immediate reads averaged before smoothing
	Deadzone int    `json:"deadzone,omitempty" yaml:"deadzone,omitempty"`   // hysteresis threshold in raw counts
	Min      int    `json:"min,omitempty" yaml:"min,omitempty"`             // percent scaling floor (throttle profile)
	Max      int    `json:"max,omitempty" yaml:"max,omitempty"`             // percent scaling ceiling (throttle profile)
}

type CalibrationConfig struct {
	File        string  `json:"file" yaml:"file"`
	SwitchPin   int     `json:"switch_pin" yaml:"switch_pin"`
	HoldMs      int     `json:"hold_ms" yaml:"hold_ms"`
	WindowMs    int     `json:"window_ms" yaml:"window_ms"`
	DebounceMs  int     `json:"debounce_ms" yaml:"debounce_ms"`
	DeadzonePct float64 `json:"deadzone_pct" yaml:"deadzone_pct"`
}

type I2CConfig struct {
	Bus     string `json:"bus" yaml:"bus"`
	Address int    `json:"address" yaml:"address"`
}

type Config struct {
	Profile         string            `json:"profile" yaml:"profile"`
	DeviceID        string            `json:"device_id,omitempty" yaml:"device_id,omitempty"`
	SensorType      string            `json:"sensor_type" yaml:"sensor_type"`
	I2C             I2CConfig         `json:"i2c" yaml:"i2c"`
	SampleRate      int               `json:"sample_rate" yaml:"sample_rate"`
	IntervalMs      int               `json:"interval_ms" yaml:"interval_ms"`
	FullScale       int               `json:"full_scale" yaml:"full_scale"`
	SmoothingWeight float64           `json:"smoothing_weight" yaml:"smoothing_weight"`
	Channels        []ChannelConfig   `json:"channels" yaml:"channels"`
	Calibration     CalibrationConfig `json:"calibration" yaml:"calibration"`
	Outputs         []OutputConfig    `json:"outputs" yaml:"outputs"`
}

func DefaultConfig() Config {
	return Config{
		Profile:         ProfileHandbrake,
		SensorType:      "real",
		I2C:             I2CConfig{Bus: "2", Address: 0x48},
		SampleRate:      128,
		IntervalMs:      10,
		FullScale:       1023,
		SmoothingWeight: 0.2,
		Channels:        []ChannelConfig{{Channel: 0, Enabled: true, Depth: 10}},
		Calibration: CalibrationConfig{
			File:        "calibration.bin",
			SwitchPin:   3,
			HoldMs:      2000,
			WindowMs:    5000,
			DebounceMs:  20,
			DeadzonePct: 5.0,
		},
		Outputs: []OutputConfig{{Type: "console", IntervalMs: 10}},
	}
}

// LoadFile reads a JSON or YAML config file into cfg, selected by extension.
func LoadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return fmt.Errorf("parse yaml config: %w", err)
		}
	default:
		if err := json.Unmarshal(b, cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}
	return nil
}

// LoadFromFlags loads configuration from a JSON/YAML file (optional) and flags.
// Flags override values present in the file.
func LoadFromFlags() (Config, error) {
	cfgPath := flag.String("config", "", "Path to JSON or YAML config file")
	flagProfile := flag.String("profile", "", "Device profile: handbrake|panel|throttle|joystick")
	flagDeviceID := flag.String("device-id", "", "Leading device identifier token (e.g. CTRLPANEL)")
	flagI2CBus := flag.String("i2c-bus", "", "I2C bus (e.g., '2' -> /dev/i2c-2)")
	flagI2CAddStr := flag.String("i2c-address", "", "I2C address (decimal or 0x hex)")
	flagSampleRate := flag.Int("sample-rate", -1, "ADS1115 sample rate (SPS)")
	flagSensorType := flag.String("sensor-type", "", "sensor type: real|fake")
	flagChannels := flag.String("channels", "", "Comma-separated channels e.g. 0,1,2")
	flagDepths := flag.String("depths", "", "Per-channel ring depths e.g. 0=10,1=5")
	flagInverts := flag.String("inverts", "", "Per-channel inversion e.g. 0=true,2=false")
	flagDeadzones := flag.String("deadzones", "", "Per-channel hysteresis thresholds e.g. 0=2,1=1")
	flagInterval := flag.Int("interval-ms", -1, "Tick interval in ms")
	flagWeight := flag.Float64("smoothing-weight", -1, "Exponential smoothing weight (panel profile)")
	flagOutputs := flag.String("outputs", "", "Comma-separated outputs (console,serial,mqtt)")
	flagSerialPort := flag.String("serial-port", "", "Serial output port (e.g. /dev/ttyACM0)")
	flagSerialBaud := flag.Int("serial-baud", -1, "Serial output baud rate")
	flagMQTTServer := flag.String("mqtt-server", "", "MQTT server (tcp://host:port)")
	flagMQTTUser := flag.String("mqtt-user", "", "MQTT username")
	flagMQTTPass := flag.String("mqtt-pass", "", "MQTT password")
	flagClientID := flag.String("mqtt-client-id", "", "MQTT client id")
	flagTopic := flag.String("mqtt-topic", "", "MQTT topic base")
	flagCalFile := flag.String("calibration-file", "", "Path of the persisted calibration record")

	flag.Parse()

	cfg := DefaultConfig()

	if *cfgPath != "" {
		if err := LoadFile(*cfgPath, &cfg); err != nil {
			return cfg, err
		}
	}

	if *flagProfile != "" {
		cfg.Profile = *flagProfile
	}
	if *flagDeviceID != "" {
		cfg.DeviceID = *flagDeviceID
	}
	if *flagI2CBus != "" {
		cfg.I2C.Bus = *flagI2CBus
	}
	if *flagI2CAddStr != "" {
		v, err := parseIntOrHex(*flagI2CAddStr)
		if err != nil {
			return cfg, fmt.Errorf("i2c-address: %w", err)
		}
		cfg.I2C.Address = v
	}
	if *flagSampleRate != -1 {
		cfg.SampleRate = *flagSampleRate
	}
	if *flagSensorType != "" {
		cfg.SensorType = *flagSensorType
	}
	if *flagChannels != "" {
		chs, err := parseChannels(*flagChannels)
		if err != nil {
			return cfg, err
		}
		cfg.Channels = make([]ChannelConfig, 0, len(chs))
		for _, ch := range chs {
			cfg.Channels = append(cfg.Channels, ChannelConfig{Channel: ch, Enabled: true, Depth: 10})
		}
	}
	if *flagDepths != "" {
		m, err := parseKeyIntMap(*flagDepths)
		if err != nil {
			return cfg, fmt.Errorf("depths: %w", err)
		}
		for i := range cfg.Channels {
			if v, ok := m[cfg.Channels[i].Channel]; ok {
				cfg.Channels[i].Depth = v
			}
		}
	}
	if *flagInverts != "" {
		m, err := parseKeyBoolMap(*flagInverts)
		if err != nil {
			return cfg, fmt.Errorf("inverts: %w", err)
		}
		for i := range cfg.Channels {
			if v, ok := m[cfg.Channels[i].Channel]; ok {
				cfg.Channels[i].Invert = v
			}
		}
	}
	if *flagDeadzones != "" {
		m, err := parseKeyIntMap(*flagDeadzones)
		if err != nil {
			return cfg, fmt.Errorf("deadzones: %w", err)
		}
		for i := range cfg.Channels {
			if v, ok := m[cfg.Channels[i].Channel]; ok {
				cfg.Channels[i].Deadzone = v
			}
		}
	}
	if *flagInterval != -1 {
		cfg.IntervalMs = *flagInterval
	}
	if *flagWeight != -1 {
		cfg.SmoothingWeight = *flagWeight
	}
	if *flagOutputs != "" {
		parts := parseCSV(*flagOutputs)
		outs := make([]OutputConfig, 0, len(parts))
		for _, p := range parts {
			outs = append(outs, OutputConfig{Type: p, IntervalMs: cfg.IntervalMs})
		}
		cfg.Outputs = outs
	}
	if *flagSerialPort != "" || *flagSerialBaud != -1 {
		applySerialFlags(&cfg, *flagSerialPort, *flagSerialBaud)
	}
	if *flagMQTTServer != "" || *flagMQTTUser != "" || *flagMQTTPass != "" || *flagClientID != "" || *flagTopic != "" {
		applyMQTTFlags(&cfg, MQTTConfig{
			Server:   *flagMQTTServer,
			Username: *flagMQTTUser,
			Password: *flagMQTTPass,
			ClientID: *flagClientID,
			Topic:    *flagTopic,
		})
	}
	if *flagCalFile != "" {
		cfg.Calibration.File = *flagCalFile
	}

	// ensure outputs have interval default
	for i := range cfg.Outputs {
		if cfg.Outputs[i].IntervalMs == 0 {
			cfg.Outputs[i].IntervalMs = cfg.IntervalMs
		}
	}

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the control loop cannot run with.
func Validate(cfg Config) error {
	switch cfg.Profile {
	case ProfileHandbrake, ProfilePanel, ProfileThrottle, ProfileJoystick:
	default:
		return fmt.Errorf("unknown profile %q", cfg.Profile)
	}
	if cfg.SampleRate <= 0 {
		return errors.New("sample-rate must be > 0")
	}
	if cfg.IntervalMs <= 0 {
		return errors.New("interval-ms must be > 0")
	}
	if cfg.FullScale <= 0 {
		return errors.New("full-scale must be > 0")
	}
	if cfg.SmoothingWeight <= 0 || cfg.SmoothingWeight > 1 {
		return errors.New("smoothing-weight must be in (0,1]")
	}
	enabled := 0
	for _, ch := range cfg.Channels {
		if !ch.Enabled {
			continue
		}
		enabled++
		if ch.Depth < 0 {
			return fmt.Errorf("channel %d: depth must be >= 0", ch.Channel)
		}
		if ch.Max != 0 && ch.Max <= ch.Min {
			return fmt.Errorf("channel %d: max must be > min", ch.Channel)
		}
	}
	if enabled == 0 {
		return errors.New("no enabled channels")
	}
	return nil
}

// applySerialFlags applies serial flag overrides to all serial outputs,
// creating one if none exists.
func applySerialFlags(cfg *Config, port string, baud int) {
	applied := false
	for i := range cfg.Outputs {
		if strings.ToLower(cfg.Outputs[i].Type) != "serial" {
			continue
		}
		if cfg.Outputs[i].Serial == nil {
			cfg.Outputs[i].Serial = &SerialConfig{}
		}
		if port != "" {
			cfg.Outputs[i].Serial.Port = port
		}
		if baud != -1 {
			cfg.Outputs[i].Serial.BaudRate = baud
		}
		applied = true
	}
	if !applied {
		sc := &SerialConfig{Port: port}
		if baud != -1 {
			sc.BaudRate = baud
		}
		cfg.Outputs = append(cfg.Outputs, OutputConfig{Type: "serial", IntervalMs: cfg.IntervalMs, Serial: sc})
	}
}

// applyMQTTFlags applies non-empty MQTT flag values to all mqtt outputs,
// creating one if none exists.
func applyMQTTFlags(cfg *Config, over MQTTConfig) {
	apply := func(dst *MQTTConfig) {
		if over.Server != "" {
			dst.Server = over.Server
		}
		if over.Username != "" {
			dst.Username = over.Username
		}
		if over.Password != "" {
			dst.Password = over.Password
		}
		if over.ClientID != "" {
			dst.ClientID = over.ClientID
		}
		if over.Topic != "" {
			dst.Topic = over.Topic
		}
	}
	applied := false
	for i := range cfg.Outputs {
		if strings.ToLower(cfg.Outputs[i].Type) != "mqtt" {
			continue
		}
		if cfg.Outputs[i].MQTT == nil {
			cfg.Outputs[i].MQTT = &MQTTConfig{}
		}
		apply(cfg.Outputs[i].MQTT)
		applied = true
	}
	if !applied {
		out := OutputConfig{Type: "mqtt", IntervalMs: cfg.IntervalMs, MQTT: &MQTTConfig{}}
		apply(out.MQTT)
		cfg.Outputs = append(cfg.Outputs, out)
	}
}

func parseIntOrHex(s string) (int, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseInt(s[2:], 16, 0)
		return int(v), err
	}
	v, err := strconv.Atoi(s)
	return v, err
}

func parseCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func parseChannels(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t == "" {
			continue
		}
		v, err := strconv.Atoi(t)
		if err != nil {
			return nil, fmt.Errorf("invalid channel '%s': %w", t, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseKeyIntMap(s string) (map[int]int, error) {
	out := map[int]int{}
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, p := range parseCSV(s) {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid entry '%s'", p)
		}
		k, err := strconv.Atoi(strings.TrimSpace(kv[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid key '%s': %w", kv[0], err)
		}
		v, err := strconv.Atoi(strings.TrimSpace(kv[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid value '%s': %w", kv[1], err)
		}
		out[k] = v
	}
	return out, nil
}

func parseKeyBoolMap(s string) (map[int]bool, error) {
	out := map[int]bool{}
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, p := range parseCSV(s) {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid entry '%s'", p)
		}
		k, err := strconv.Atoi(strings.TrimSpace(kv[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid key '%s': %w", kv[0], err)
		}
		v, err := strconv.ParseBool(strings.TrimSpace(kv[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid value '%s': %w", kv[1], err)
		}
		out[k] = v
	}
	return out, nil
}
