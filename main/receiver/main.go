package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/calebmah/gaugelink"
	"github.com/calebmah/gaugelink/forwarder"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var configFile = flag.String("config", "receiver.toml", "path to configuration file")
var printTelemetry = flag.Bool("print-telemetry", false, "print channel snapshots to stdout")

type config struct {
	Listen    string
	TimeoutMs int
}

func loadConfig(path string) (*config, error) {
	cfg := config{
		Listen:    ":9999",
		TimeoutMs: 2000,
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, errors.Wrapf(err, "unable to load configuration %s", path)
	}
	return &cfg, nil
}

func main() {
	log.SetLevel(log.InfoLevel)
	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Fatal("unable to load configuration: ", err)
	}

	rx := gaugelink.NewReceiver(time.Duration(cfg.TimeoutMs) * time.Millisecond)

	lis, err := forwarder.Listen(cfg.Listen)
	if err != nil {
		log.Fatal("unable to start telemetry listener: ", err)
	}
	defer lis.Close()

	ctx := context.Background()
	go func() {
		if err := lis.Run(ctx, rx.OnPacket); err != nil {
			log.Fatal("telemetry listener stopped: ", err)
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for range ticker.C {
		status := rx.CheckLink()
		if *printTelemetry {
			printStatus(rx, status)
		}
	}
}

func printStatus(rx *gaugelink.Receiver, status gaugelink.LinkStatus) {
	fmt.Printf("link=%s uptime=%ds received=%d missed=%d dropped=%d\n",
		status, int(rx.Uptime().Seconds()), rx.Received(), rx.Missed(), rx.Dropped())
	values := rx.LastValues()
	for slot := 0; slot < gaugelink.ChannelCount; slot++ {
		snap := rx.Snapshot(slot)
		fmt.Printf("  %-16s %8.2f (min %.2f max %.2f avg %.2f n=%d)\n",
			gaugelink.ChannelName(slot), values[slot], snap.Min, snap.Max, snap.Avg, snap.Count)
	}
}
