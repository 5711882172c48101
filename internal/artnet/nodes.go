package artnet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"artnetctl/internal/logger"
	"github.com/Haba1234/go-artnet"
)

// nodeSender hands frames to a go-artnet controller, which discovers nodes
// with ArtPoll and sends to every node listening on the address.
type nodeSender struct {
	log      logger.Logger
	sender   *artnet.Controller
	universe uint16
	cancel   context.CancelFunc
}

func newNodeSender(log logger.Logger, s Settings) (*nodeSender, error) {
	ip, err := FindArtNetIP(s.AddressRange)
	if err != nil {
		return nil, fmt.Errorf("failed to find the art-net IP: %w", err)
	}

	if len(ip) == 0 {
		return nil, errors.New("failed to find the art-net IP: No interface found")
	}

	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve hostname: %w", err)
	}

	host = strings.ToLower(strings.Split(host, ".")[0])
	log.With(logger.Fields{"module": "art-net"}).Infof("Using ArtNet IP %s and hostname %s", ip.String(), host)

	fps := int(s.UpdateFrequency)
	if fps < 1 {
		fps = 1
	}
	senderLogger := artnet.NewDefaultLogger(log.GetLevel())
	n := &nodeSender{
		log:      log,
		sender:   artnet.NewController(host, ip, senderLogger, artnet.MaxFPS(fps)),
		universe: s.Universe,
	}
	if err := n.sender.Start(); err != nil {
		return nil, fmt.Errorf("%w: controller: %v", ErrBind, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	n.cancel = cancel
	go n.debugDevices(ctx)
	return n, nil
}

func (n *nodeSender) send(data [Channels]byte) error {
	n.sender.SendDMXToAddress(data, universeToAddress(n.universe))
	return nil
}

func (n *nodeSender) close() error {
	n.cancel()
	n.sender.Stop()
	return nil
}

func (n *nodeSender) String() string {
	return fmt.Sprintf("nodes on universe %d", n.universe)
}

// NodeToString returns a string representation of the given Node.
func NodeToString(n *artnet.ControlledNode) (string, NodeInfo) {
	var inputs, outputs []string
	info := NodeInfo{Name: n.Node.Name}
	for _, p := range n.Node.InputPorts {
		inputs = append(inputs, fmt.Sprintf("%s: %s", p.Address.String(), p.Type.String()))
	}

	for _, p := range n.Node.OutputPorts {
		outputs = append(outputs, fmt.Sprintf("%s: %s", p.Address.String(), p.Type.String()))
		info.Outputs = append(info.Outputs, uint16(p.Address.Integer()))
	}

	return fmt.Sprintf(
		"IP=%s name=%q type=%q manufacturer=%q desc=%q inputs=%q outputs=%q",
		n.UDPAddress.String(), n.Node.Name, n.Node.Type,
		n.Node.Manufacturer, n.Node.Description,
		strings.Join(inputs, "; "), strings.Join(outputs, "; "),
	), info
}

// debugDevices logs the discovered nodes and warns when none listens on the
// configured universe.
//
// Controller.Nodes is read without the controller's node lock, which go-artnet
// keeps unexported, so this races with discovery under -race. The output is
// diagnostic only and nothing else reads Nodes.
func (n *nodeSender) debugDevices(ctx context.Context) {
	t := time.NewTicker(30 * time.Second)
	defer t.Stop()
	l := n.log.With(logger.Fields{"module": "art-net"})
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		listening := false
		for _, node := range n.sender.Nodes {
			desc, info := NodeToString(node)
			l.Debug("node: ", desc)
			for _, out := range info.Outputs {
				if out == n.universe&0x7fff {
					listening = true
				}
			}
		}
		l.Debugf("Currently %d devices are registered", len(n.sender.Nodes))
		if !listening {
			l.Warnf("no node outputs universe %d", n.universe)
		}
	}
}
