package artnet

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/Haba1234/go-artnet"
	"github.com/Haba1234/go-artnet/packet"
)

// universeToAddress converts a 15 bit port address to art-net Net and SubUni.
// High byte - Net, low byte - SubUni.
func universeToAddress(universe uint16) artnet.Address {
	v := make([]uint8, 2)
	binary.BigEndian.PutUint16(v, universe&0x7fff)

	return artnet.Address{
		Net:    v[0],
		SubUni: v[1],
	}
}

// Encode builds an ArtDMX packet carrying a full universe.
func Encode(data [Channels]byte, sequence uint8, universe uint16) ([]byte, error) {
	addr := universeToAddress(universe)
	p := packet.NewArtDMXPacket()
	p.Sequence = sequence
	p.SubUni = addr.SubUni
	p.Net = addr.Net
	p.Length = Channels
	p.Data = data
	b, err := p.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to encode ArtDMX: %w", err)
	}
	return b, nil
}

// udpSender writes ArtDMX packets from a bound socket to one address.
type udpSender struct {
	conn     *net.UDPConn
	dst      *net.UDPAddr
	universe uint16
	seq      uint8
}

func newUDPSender(bind, dst *net.UDPAddr, universe uint16) (*udpSender, error) {
	conn, err := net.ListenUDP("udp4", bind)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrBind, bind, err)
	}
	return &udpSender{conn: conn, dst: dst, universe: universe}, nil
}

// nextSequence cycles 1..255; 0 tells receivers sequencing is off.
func (s *udpSender) nextSequence() uint8 {
	s.seq++
	if s.seq == 0 {
		s.seq = 1
	}
	return s.seq
}

func (s *udpSender) send(data [Channels]byte) error {
	b, err := Encode(data, s.nextSequence(), s.universe)
	if err != nil {
		return err
	}
	if _, err := s.conn.WriteToUDP(b, s.dst); err != nil {
		return fmt.Errorf("ArtDMX send to %s: %w", s.dst, err)
	}
	return nil
}

func (s *udpSender) close() error {
	return s.conn.Close()
}

func (s *udpSender) String() string {
	return fmt.Sprintf("%s -> %s", s.conn.LocalAddr(), s.dst)
}
