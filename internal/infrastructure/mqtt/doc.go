// Package mqtt connects the engine to the Mosquitto broker.
//
// MQTT is the transport between the tracking engine and the radio
// sensor daemons that publish raw sightings. The broker decouples the
// engine from adapter-specific sensor implementations:
//
//	Nearwatch Core <-> MQTT Broker <-> Radio Sensors
//
// The client auto-reconnects with exponential backoff, replays tracked
// subscriptions after a reconnect, and registers a Last Will so the
// broker announces an unclean engine death on the system status topic.
// TLS and broker credentials are required for production; anonymous
// plaintext is for local development only.
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Sightings from every sensor
//	err = client.Subscribe(mqtt.Topics{}.AllSensorSightings(), 1,
//	    func(topic string, payload []byte) error {
//	        return ingest(payload)
//	    })
//
//	// Command one sensor
//	client.Publish(mqtt.Topics{}.SensorCommand("hci0"),
//	    []byte(`{"action":"start"}`), 1, false)
package mqtt
