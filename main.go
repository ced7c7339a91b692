package main

import (
	"flag"

	log "github.com/sirupsen/logrus"

	"ocppmsg/internal/config"
	"ocppmsg/metrics"
	"ocppmsg/server"
)

func main() {
	configPath := flag.String("conf", "config.yml", "path to configuration file")
	flag.Parse()

	conf, err := config.GetConfig(*configPath)
	if err != nil {
		log.WithError(err).Fatal("configuration failed")
	}

	centralSystem, err := server.NewCentralSystem(conf)
	if err != nil {
		log.WithError(err).Fatal("central system initialization failed")
	}

	go func() {
		if err := metrics.Listen(conf); err != nil {
			log.WithError(err).Error("metrics server failed")
		}
	}()

	centralSystem.Start()
}
