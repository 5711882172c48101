package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"artnetctl/internal/animation"
	"artnetctl/internal/artnet"
	"artnetctl/internal/clientmqtt"
	"artnetctl/internal/config"
	"artnetctl/internal/engine"
	"artnetctl/internal/fixture"
	"artnetctl/internal/logger"
	"artnetctl/internal/midiin"
	"artnetctl/internal/project"
	"artnetctl/internal/remote"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

var configFile string

func init() {
	flag.StringVar(&configFile, "config", "configs/conf.toml", "Path to configuration file")
}

const stopTimeout = 2 * time.Second

func main() {
	flag.Parse()
	cfg, err := config.NewConfig(configFile)
	if err != nil {
		fmt.Printf("configuration file read error: %v", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Printf("failed to create a logger: %v", err)
		os.Exit(1)
	}

	log.With(logger.Fields{"module": "logger"}).Debug("newLogger created ok")

	catalog, err := fixture.LoadLibrary()
	if err != nil {
		log.With(logger.Fields{"module": "project"}).Errorf("fixture library: %v", err)
		os.Exit(1)
	}
	proj, err := project.Load(cfg.Engine.Project, catalog, log)
	if err != nil {
		log.With(logger.Fields{"module": "project"}).Error(err)
		os.Exit(1)
	}

	settings, err := proj.Transport(cfg.ArtNet)
	if err != nil {
		log.With(logger.Fields{"module": "art-net"}).Error(err)
		os.Exit(1)
	}
	out, err := artnet.New(log, artnet.Settings{
		Mode:            artnet.Mode(settings.Mode),
		Interface:       settings.Interface,
		Destination:     settings.Destination,
		Universe:        cfg.ArtNet.Universe,
		UpdateFrequency: float64(cfg.ArtNet.UpdateFrequency),
		AddressRange:    cfg.ArtNet.AddressRange,
	})
	if err != nil {
		log.With(logger.Fields{"module": "art-net"}).Errorf("error while creating the art-net output. %v", err)
		os.Exit(1)
	}
	log.With(logger.Fields{"module": "art-net"}).Infof("output mode %s at %v Hz", out.Mode(), cfg.ArtNet.UpdateFrequency)

	curve, err := animation.ParseEasing(cfg.Engine.Easing)
	if err != nil {
		log.With(logger.Fields{"module": "engine"}).Error(err)
		os.Exit(1)
	}
	onExit, err := engine.ParseExitBehaviour(cfg.Engine.OnExit)
	if err != nil {
		log.With(logger.Fields{"module": "engine"}).Error(err)
		os.Exit(1)
	}

	queue := remote.NewQueue(cfg.Engine.QueueSize)
	eng := engine.New(log, proj, out, queue, engine.Options{
		Curve:      curve,
		AutoRandom: cfg.Engine.AutoRandom,
		AutoZero:   cfg.Engine.AutoZero,
		IdleSleep:  cfg.Engine.IdleSleep.Duration,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	// The broker connection retries until it succeeds, so it must not hold up
	// the output loop.
	var client *clientmqtt.ClientMQTT
	mqttDone := make(chan struct{})
	if cfg.MQTT.Enabled {
		client, err = clientmqtt.NewClient(log, cfg.MQTT, queue)
		if err != nil {
			log.With(logger.Fields{"module": "mqtt"}).Errorf("failed to create MQTT client: %v", err)
			os.Exit(1)
		}
		go func() {
			defer close(mqttDone)
			if err := client.Start(ctx); err != nil {
				log.With(logger.Fields{"module": "mqtt"}).Error("failed to start MQTT service:", err.Error())
			}
		}()
	} else {
		close(mqttDone)
	}

	if cfg.MIDI.InPort != "" {
		defer midi.CloseDriver()
		stop, err := midiin.Listen(cfg.MIDI.InPort, queue, log)
		if err != nil {
			log.With(logger.Fields{"module": "midi"}).Error("failed to start MIDI input:", err.Error())
		} else {
			defer stop()
		}
	}

	eng.Run(ctx)

	if err := eng.Exit(onExit); err != nil {
		log.With(logger.Fields{"module": "art-net"}).Error("failed to send exit frame:", err.Error())
	}
	if cfg.Engine.SaveOnExit {
		if err := eng.Save(cfg.Engine.Project); err != nil {
			log.With(logger.Fields{"module": "project"}).Error(err)
		} else {
			log.With(logger.Fields{"module": "project"}).Infof("saved project to %s", cfg.Engine.Project)
		}
	}

	select {
	case <-mqttDone:
	case <-time.After(stopTimeout):
		log.With(logger.Fields{"module": "mqtt"}).Warn("MQTT start did not return in time")
	}
	if client != nil {
		if err := client.Stop(); err != nil {
			log.Error("failed to stop MQTT service:", err.Error())
		}
	}

	if err := out.Close(); err != nil {
		log.With(logger.Fields{"module": "art-net"}).Error(err)
	}

	log.Info("shutdown complete")
}
