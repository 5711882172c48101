package artnet

import "time"

// Channels is the size of one DMX universe.
const Channels = 512

// Mode selects how frames leave the process.
type Mode string

const (
	// Broadcast sends to the limited broadcast address.
	Broadcast Mode = "broadcast"
	// Unicast sends from one local address to one node.
	Unicast Mode = "unicast"
	// Nodes discovers nodes with ArtPoll and addresses them by port.
	Nodes Mode = "nodes"
)

// Default ports. The broadcast and unicast source ports differ so both
// transports can run on one host.
const (
	NodePort          = 6454
	BroadcastBindPort = 6455
	UnicastBindPort   = 6453
)

// Settings configures an Interface.
type Settings struct {
	Mode        Mode
	Interface   string // Interface - unicast source address.
	Destination string // Destination - unicast destination address.
	// SourcePort and DestinationPort override the defaults when non-zero.
	SourcePort      int
	DestinationPort int
	Universe        uint16  // Universe - 15 bit port address.
	UpdateFrequency float64 // UpdateFrequency - maximum frames per second.
	AddressRange    string  // AddressRange - CIDR searched in Nodes mode.
}

// Interval converts the update frequency to the minimum time between frames.
func (s Settings) Interval() time.Duration {
	if s.UpdateFrequency <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / s.UpdateFrequency)
}

// NodeInfo is what the Nodes mode reports about a discovered node.
type NodeInfo struct {
	Name    string
	Outputs []uint16
}
