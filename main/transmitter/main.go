package main

import (
	"context"
	"flag"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/calebmah/gaugelink"
	"github.com/calebmah/gaugelink/forwarder"
	"github.com/calebmah/gaugelink/obd"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var configFile = flag.String("config", "transmitter.toml", "path to configuration file")
var testMode = flag.Bool("testmode", false, "generate synthetic channel values")

type config struct {
	CANPort    string
	IntervalMs int
	UDP        forwarder.Config
}

func loadConfig(path string) (*config, error) {
	cfg := config{
		CANPort:    "can0",
		IntervalMs: 250,
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, errors.Wrapf(err, "unable to load configuration %s", path)
	}
	return &cfg, nil
}

// to allow testing
var obdConnect = func(p string) (*obd.Connection, error) {
	return obd.Connect(p)
}

// busService keeps the diagnostic bus connection alive under the retry
// supervisor while the sampler queries whichever connection is current.
type busService struct {
	port string

	mu   sync.Mutex
	conn *obd.Connection
}

func (b *busService) Name() string {
	return "obd"
}

func (b *busService) Open() error {
	c, err := obdConnect(b.port)
	b.mu.Lock()
	b.conn = c
	b.mu.Unlock()
	return err
}

func (b *busService) Close() error {
	b.mu.Lock()
	c := b.conn
	b.conn = nil
	b.mu.Unlock()
	if c == nil {
		return nil
	}
	return c.Close()
}

func (b *busService) Start(ctx context.Context) error {
	b.mu.Lock()
	c := b.conn
	b.mu.Unlock()
	return c.Start(ctx)
}

func (b *busService) Query(pid byte) (float64, error) {
	b.mu.Lock()
	c := b.conn
	b.mu.Unlock()
	if c == nil {
		return 0, errors.New("diagnostic bus not connected")
	}
	return c.Query(pid)
}

func main() {
	log.SetLevel(log.InfoLevel)
	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Fatal("unable to load configuration: ", err)
	}

	udp, err := forwarder.New(&cfg.UDP)
	if err != nil {
		log.Fatal("unable to connect UDP forwarder: ", err)
	}
	defer udp.Close()

	ctx := context.Background()

	var sampler gaugelink.Sampler
	if *testMode {
		sampler = gaugelink.NewSimulatedSampler()
	} else {
		bus := &busService{port: cfg.CANPort}
		go func() {
			if err := gaugelink.Retry(ctx, bus); err != nil {
				log.Errorf("obd done: %v", err)
			}
		}()
		sampler = gaugelink.NewBusSampler(bus)
	}

	tx := gaugelink.NewTransmitter(udp, sampler, time.Duration(cfg.IntervalMs)*time.Millisecond)
	if err := tx.Start(ctx); err != nil {
		log.Fatal("transmitter stopped: ", err)
	}
}
