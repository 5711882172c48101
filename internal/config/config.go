package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the process configuration.
type Config struct {
	Logger LogConf    // Logger - logger settings.
	MQTT   MQTTConf   // MQTT - remote control transport.
	ArtNet ArtNetConf // ArtNet - output transport.
	MIDI   MIDIConf   // MIDI - local MIDI input.
	Engine EngineConf // Engine - update loop and project.
}

// LogConf holds the logger settings.
type LogConf struct {
	Level  string `toml:"log-level"` // Level - logrus level name.
	Format string `toml:"format"`    // Format - text or json.
}

// MQTTConf holds the broker connection and plug topics.
type MQTTConf struct {
	Enabled  bool       `toml:"enabled"`
	ClientID string     `toml:"clientID"` // ClientID - client name.
	Host     string     `toml:"server"`   // Host - MQTT server address.
	Port     string     `toml:"port"`     // Port - MQTT server port.
	User     string     `toml:"user"`     // User - broker login.
	Password string     `toml:"password"` // Password - broker password.
	Qos      byte       `toml:"qos"`      // Qos - subscription quality of service.
	Codec    string     `toml:"codec"`    // Codec - msgpack or json payloads.
	Topics   TopicsConf `toml:"topics"`
}

// TopicsConf maps each input plug to a topic filter.
type TopicsConf struct {
	ControlChange string `toml:"controlChange"`
	NotesOn       string `toml:"notesOn"`
	Knobs         string `toml:"knobs"`
	Macros        string `toml:"macros"`
	Animations    string `toml:"animations"`
	Scenes        string `toml:"scenes"`
	Channels      string `toml:"channels"`
	MidiRaw       string `toml:"midiRaw"`
}

// ArtNetConf selects and tunes the output transport.
type ArtNetConf struct {
	Mode            string    `toml:"mode"`             // Mode - broadcast, unicast, nodes or empty for the project setting.
	Interface       string    `toml:"interface"`        // Interface - unicast source address.
	Destination     string    `toml:"destination"`      // Destination - unicast destination address.
	Universe        uint16    `toml:"universe"`         // Universe - 15 bit port address.
	UpdateFrequency Frequency `toml:"update-frequency"` // UpdateFrequency - maximum frames per second.
	AddressRange    string    `toml:"address-range"`    // AddressRange - CIDR searched for the nodes mode interface.
}

// MIDIConf configures the local MIDI input.
type MIDIConf struct {
	InPort string `toml:"in-port"` // InPort - substring of the input port name; empty disables.
}

// EngineConf configures the update loop.
type EngineConf struct {
	Project    string   `toml:"project"`
	QueueSize  int      `toml:"queue-size"`
	IdleSleep  Duration `toml:"idle-sleep"`
	AutoRandom bool     `toml:"auto-random"`
	AutoZero   bool     `toml:"auto-zero"`
	OnExit     string   `toml:"on-exit"` // OnExit - nothing, home or zero.
	SaveOnExit bool     `toml:"save-on-exit"`
	Easing     string   `toml:"easing"` // Easing - LINEAR, EASE_IN_OUT_SINE or EASE_IN_OUT_CUBIC.
}

// Duration decodes TOML strings such as "1ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// Frequency is a rate in Hz. TOML integers and floats are both accepted.
type Frequency float64

func (f *Frequency) UnmarshalTOML(v interface{}) error {
	switch n := v.(type) {
	case int64:
		*f = Frequency(n)
	case float64:
		*f = Frequency(n)
	default:
		return fmt.Errorf("invalid frequency %v (%T)", v, v)
	}
	return nil
}

// Default returns the configuration used when a key is absent from the file.
func Default() Config {
	return Config{
		Logger: LogConf{Level: "info", Format: "text"},
		MQTT: MQTTConf{
			Enabled:  true,
			ClientID: "artnetctl",
			Host:     "localhost",
			Port:     "1883",
			Codec:    "msgpack",
			Topics: TopicsConf{
				ControlChange: "+/+/controlChange",
				NotesOn:       "+/+/notesOn",
				Knobs:         "+/+/knobs",
				Macros:        "+/+/macros",
				Animations:    "+/+/animations",
				Scenes:        "+/+/scenes",
				Channels:      "+/+/channels",
				MidiRaw:       "+/+/midiRaw",
			},
		},
		ArtNet: ArtNetConf{
			Interface:       "0.0.0.0",
			UpdateFrequency: 40,
			AddressRange:    "192.168.6.0/24",
		},
		Engine: EngineConf{
			Project:   "project.json",
			QueueSize: 1024,
			IdleSleep: Duration{time.Millisecond},
			OnExit:    "home",
			Easing:    "EASE_IN_OUT_SINE",
		},
	}
}

// NewConfig reads the TOML file at path over the defaults.
func NewConfig(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return &cfg, err
	}
	if cfg.ArtNet.UpdateFrequency <= 0 {
		return &cfg, fmt.Errorf("ArtNet update-frequency must be positive, got %v", cfg.ArtNet.UpdateFrequency)
	}
	return &cfg, nil
}
