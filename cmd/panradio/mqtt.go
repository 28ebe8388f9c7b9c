package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/NV4RE/gpan"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
)

// publisher sends radio events to an MQTT broker as JSON, one topic per
// event kind under the configured prefix.
type publisher struct {
	conn  mqtt.Client
	topic string
}

func newPublisher(conf MqttConfig, debug gpan.LogPrintf) (*publisher, error) {
	hostname, _ := os.Hostname()
	id := "panradio-" + hostname
	if debug != nil {
		debug("Configuring MQTT with client id %s, broker %s:%d", id, conf.Host, conf.Port)
	}
	mqtt.ERROR = log.New(os.Stderr, "", 0)
	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", conf.Host, conf.Port))
	opts.ClientID = id
	opts.Username = conf.User
	opts.Password = conf.Password

	conn := mqtt.NewClient(opts)
	token := conn.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, errors.Errorf("mqtt connect to %s:%d timed out", conf.Host, conf.Port)
	}
	if err := token.Error(); err != nil {
		return nil, errors.Wrap(err, "mqtt connect")
	}
	log.Printf("MQTT connected")

	topic := conf.Topic
	if topic == "" {
		topic = "panradio"
	}
	return &publisher{conn: conn, topic: topic}, nil
}

type eventMessage struct {
	gpan.Event
	At time.Time `json:"at"`
}

func (p *publisher) Publish(ev gpan.Event) error {
	payload, err := json.Marshal(eventMessage{Event: ev, At: time.Now()})
	if err != nil {
		return errors.Wrap(err, "encode event")
	}
	token := p.conn.Publish(p.topic+"/"+ev.Kind.String(), 1, false, payload)
	if !token.WaitTimeout(2 * time.Second) {
		return errors.New("mqtt publish timed out")
	}
	return token.Error()
}

func (p *publisher) Close() {
	p.conn.Disconnect(250)
}
