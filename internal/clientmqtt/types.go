package clientmqtt

import "artnetctl/internal/remote"

// Plug names one input topic.
type Plug string

const (
	PlugControlChange Plug = "controlChange"
	PlugNotesOn       Plug = "notesOn"
	PlugKnobs         Plug = "knobs"
	PlugMacros        Plug = "macros"
	PlugAnimations    Plug = "animations"
	PlugScenes        Plug = "scenes"
	PlugChannels      Plug = "channels"
	PlugMidiRaw       Plug = "midiRaw"
)

type notePayload struct {
	Channel  uint8 `json:"channel" msgpack:"channel"`
	Note     uint8 `json:"note" msgpack:"note"`
	Velocity uint8 `json:"velocity" msgpack:"velocity"`
}

type controlChangePayload struct {
	Channel    uint8 `json:"channel" msgpack:"channel"`
	Controller uint8 `json:"controller" msgpack:"controller"`
	Value      uint8 `json:"value" msgpack:"value"`
}

type knobPayload struct {
	Index    int     `json:"index" msgpack:"index"`
	Position float64 `json:"position" msgpack:"position"`
}

// macroPayload serves both the macros and animations plugs. Value is a level
// or a colour; Duration is in milliseconds.
type macroPayload struct {
	FixtureLabel  *string     `json:"fixtureLabel" msgpack:"fixtureLabel"`
	FixtureLabels []string    `json:"fixtureLabels" msgpack:"fixtureLabels"`
	MacroLabel    string      `json:"macroLabel" msgpack:"macroLabel"`
	Value         interface{} `json:"value" msgpack:"value"`
	TargetValue   interface{} `json:"targetValue" msgpack:"targetValue"`
	Duration      *float64    `json:"duration" msgpack:"duration"`
}

type scenePayload struct {
	SceneLabel    string   `json:"sceneLabel" msgpack:"sceneLabel"`
	FixtureLabel  *string  `json:"fixtureLabel" msgpack:"fixtureLabel"`
	FixtureLabels []string `json:"fixtureLabels" msgpack:"fixtureLabels"`
	Duration      *float64 `json:"duration" msgpack:"duration"`
}

// channelsPayload is a list of one-indexed channel levels.
type channelsPayload []remote.ChannelValue
