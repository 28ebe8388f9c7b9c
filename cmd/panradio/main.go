package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/NV4RE/gpan"
	"github.com/pkg/errors"
)

func main() {
	configPath := flag.String("config", "", "JSON radio profile to load")
	savePath := flag.String("save", "", "write the effective profile to this path and exit")
	mode := flag.String("mode", "recv", "one of send, recv, info, cw")
	spiPort := flag.String("spi", "", "SPI port name (overrides profile)")
	irqPin := flag.String("irq", "", "IRQ pin name (overrides profile)")
	freq := flag.Uint("freq", 0, "frequency in Hz (overrides profile)")
	sf := flag.Uint("sf", 0, "spreading factor (overrides profile)")
	msg := flag.String("msg", "hello", "payload for send mode")
	count := flag.Int("count", 1, "frames to send")
	interval := flag.Duration("interval", time.Second, "pause between frames")
	mqttHost := flag.String("mqtt", "", "MQTT broker host, events are published when set")
	mqttPort := flag.Int("mqtt-port", 1883, "MQTT broker port")
	verbose := flag.Bool("v", false, "trace driver mode transitions")
	flag.Parse()

	conf := DefaultConfig()
	if *configPath != "" {
		c, err := LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Cannot load profile: %s", err)
		}
		conf = c
	}
	if *spiPort != "" {
		conf.SPIPort = *spiPort
	}
	if *irqPin != "" {
		conf.IRQPin = *irqPin
	}
	if *freq != 0 {
		conf.Radio.Frequency = uint32(*freq)
	}
	if *sf != 0 {
		conf.Radio.SpreadingFactor = uint8(*sf)
	}
	if *mqttHost != "" {
		conf.Mqtt = &MqttConfig{Host: *mqttHost, Port: *mqttPort, Topic: "panradio"}
	}

	if *savePath != "" {
		if err := SaveConfig(conf, *savePath); err != nil {
			log.Fatalf("Cannot save profile: %s", err)
		}
		log.Printf("Profile saved to %s", *savePath)
		return
	}

	var logger gpan.LogPrintf
	if *verbose {
		logger = log.Printf
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, conf, *mode, []byte(*msg), *count, *interval, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Exiting due to error: %s\n", err)
		os.Exit(2)
	}
}

func run(ctx context.Context, conf *Config, mode string, payload []byte, count int,
	interval time.Duration, logger gpan.LogPrintf,
) error {
	var pub *publisher
	if conf.Mqtt != nil {
		p, err := newPublisher(*conf.Mqtt, logger)
		if err != nil {
			return err
		}
		defer p.Close()
		pub = p
	}

	log.Printf("Opening radio on %s, irq %s", conf.SPIPort, conf.IRQPin)
	dev, err := gpan.Open(conf.SPIPort, conf.IRQPin, gpan.Opts{Logger: logger})
	if err != nil {
		return err
	}
	defer dev.Close()

	if err := dev.Init(); err != nil {
		return err
	}
	if err := dev.Configure(conf.Radio); err != nil {
		return err
	}
	log.Printf("Radio ready at %d Hz, SF%d", conf.Radio.Frequency, conf.Radio.SpreadingFactor)

	switch mode {
	case "info":
		return info(dev)
	case "cw":
		if err := dev.CarrierWaveTest(); err != nil {
			return err
		}
		log.Printf("Carrier on, interrupt to stop")
		<-ctx.Done()
		return dev.Init()
	}

	sctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- dev.Run(sctx) }()

	switch mode {
	case "send":
		err = send(ctx, dev, payload, count, interval, pub)
	case "recv":
		err = recv(ctx, dev, pub)
	default:
		err = errors.Errorf("unknown mode %q", mode)
	}
	cancel()
	if serr := <-errc; err == nil {
		err = serr
	}
	return err
}

func info(dev *gpan.Device) error {
	var p gpan.Params
	var m gpan.Mode
	err := dev.Exclusive(func() error {
		var err error
		if p, err = dev.ReadParams(); err != nil {
			return err
		}
		m, err = dev.Mode()
		return err
	})
	if err != nil {
		return err
	}
	out, _ := json.MarshalIndent(p, "", "  ")
	fmt.Printf("mode: %v\n%s\n", m, out)
	return nil
}

func send(ctx context.Context, dev *gpan.Device, payload []byte, count int,
	interval time.Duration, pub *publisher,
) error {
	for i := 0; i < count; i++ {
		var ms uint32
		err := dev.Exclusive(func() (err error) {
			ms, err = dev.TransmitSingle(payload)
			return err
		})
		if err != nil {
			return err
		}

		wctx, cancel := context.WithTimeout(ctx, 2*time.Duration(ms)*time.Millisecond)
		ev, err := dev.Mailbox().Wait(wctx)
		cancel()
		if err != nil {
			log.Printf("Frame %d: no tx done after %d ms", i, 2*ms)
		} else {
			log.Printf("Frame %d: %v (estimated %d ms on air)", i, ev.Kind, ms)
			publish(pub, ev)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
	return nil
}

func recv(ctx context.Context, dev *gpan.Device, pub *publisher) error {
	if err := dev.Exclusive(dev.EnterContinuousRx); err != nil {
		return err
	}
	log.Printf("Receiving, interrupt to stop")
	for {
		ev, err := dev.Mailbox().Wait(ctx)
		if err != nil {
			return nil
		}
		switch ev.Kind {
		case gpan.EventRxDone:
			log.Printf("RX % x (rssi %.1f dBm, snr %.1f dB)", ev.Payload, ev.RSSI, ev.SNR)
		case gpan.EventPlhdDone:
			log.Printf("PLHD % x", ev.Payload)
		default:
			log.Printf("Event %v", ev.Kind)
		}
		publish(pub, ev)
	}
}

func publish(pub *publisher, ev gpan.Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ev); err != nil {
		log.Printf("MQTT publish failed: %s", err)
	}
}
