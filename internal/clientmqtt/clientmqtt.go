package clientmqtt

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"artnetctl/internal/config"
	"artnetctl/internal/logger"
	"artnetctl/internal/remote"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ClientMQTT subscribes to the input plugs and queues decoded messages.
type ClientMQTT struct {
	ctx       context.Context
	log       logger.Logger
	cfgClient config.MQTTConf
	client    mqtt.Client
	opts      *mqtt.ClientOptions
	decoder   *Decoder
	queue     *remote.Queue
	topics    map[Plug]string
}

// NewClient builds a client; nothing connects until Start.
func NewClient(log logger.Logger, cfgClient config.MQTTConf, queue *remote.Queue) (*ClientMQTT, error) {
	decoder, err := NewDecoder(cfgClient.Codec)
	if err != nil {
		return nil, err
	}
	t := cfgClient.Topics
	topics := map[Plug]string{
		PlugControlChange: t.ControlChange,
		PlugNotesOn:       t.NotesOn,
		PlugKnobs:         t.Knobs,
		PlugMacros:        t.Macros,
		PlugAnimations:    t.Animations,
		PlugScenes:        t.Scenes,
		PlugChannels:      t.Channels,
		PlugMidiRaw:       t.MidiRaw,
	}
	for plug, topic := range topics {
		if topic == "" {
			delete(topics, plug)
		}
	}
	return &ClientMQTT{
		log:       log,
		cfgClient: cfgClient,
		decoder:   decoder,
		queue:     queue,
		topics:    topics,
	}, nil
}

func (c *ClientMQTT) Start(ctx context.Context) error {
	if c.log.GetLevel() == "debug" {
		mqtt.ERROR = log.New(os.Stdout, "[ERROR] ", 0)
		mqtt.CRITICAL = log.New(os.Stdout, "[CRIT] ", 0)
		mqtt.WARN = log.New(os.Stdout, "[WARN]  ", 0)
	}

	c.ctx = ctx

	c.opts = mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%s", c.cfgClient.Host, c.cfgClient.Port)).
		SetUsername(c.cfgClient.User).
		SetPassword(c.cfgClient.Password).
		SetOnConnectHandler(c.connectHandler).
		SetConnectionLostHandler(c.connectLostHandler).
		SetClientID(c.cfgClient.ClientID).
		SetOrderMatters(true).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetMaxReconnectInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second)

	c.client = mqtt.NewClient(c.opts)

	token := c.client.Connect()
	select {
	case <-token.Done():
		if token.Error() != nil {
			return token.Error()
		}
	case <-c.ctx.Done():
		return errors.New("context canceled")
	}

	c.log.With(logger.Fields{"module": "mqtt"}).Infof("Status: %v", c.client.IsConnected())
	return nil
}

func (c *ClientMQTT) Stop() error {
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(500)
	}
	return nil
}

// connectHandler subscribes on every (re)connect since the session is clean.
func (c *ClientMQTT) connectHandler(_ mqtt.Client) {
	c.log.With(logger.Fields{"module": "mqtt"}).Info("client connected to server")
	for plug, topic := range c.topics {
		c.sub(plug, topic)
	}
}

func (c *ClientMQTT) connectLostHandler(_ mqtt.Client, err error) {
	c.log.With(logger.Fields{"module": "mqtt"}).Errorf("server connect lost: %v", err)
}

func (c *ClientMQTT) handler(plug Plug) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		c.receive(plug, msg)
	}
}

// receive decodes and queues one message. Bad payloads are logged and dropped.
func (c *ClientMQTT) receive(plug Plug, msg mqtt.Message) {
	l := c.log.With(logger.Fields{"module": "mqtt", "plug": string(plug)})
	m, err := c.decoder.Decode(plug, msg.Payload())
	switch {
	case errors.Is(err, ErrIgnored):
		l.Debugf("ignored message on %s", msg.Topic())
		return
	case err != nil:
		l.Errorf("message on %s could not be parsed (%v): %v", msg.Topic(), msg.Payload(), err)
		return
	}
	l.Debugf("received %s from topic: %s", m, msg.Topic())
	if !c.queue.Push(m) {
		l.Warnf("queue full, dropped %s", m)
	}
}

func (c *ClientMQTT) sub(plug Plug, topic string) {
	token := c.client.Subscribe(topic, c.cfgClient.Qos, c.handler(plug))
	go func() {
		select {
		case <-c.ctx.Done():
			return
		case <-token.Done():
			if token.Error() != nil {
				c.log.With(logger.Fields{"module": "mqtt"}).Errorf("topic %s subscription error. %v", topic, token.Error())
				return
			}
		}
		c.log.With(logger.Fields{"module": "mqtt"}).Debugf("topic %s subscribed for %s", topic, plug)
	}()
}
