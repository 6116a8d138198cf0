package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/kestrelapps/taskdeck-api/api/handlers"
	"github.com/kestrelapps/taskdeck-api/config"
	"github.com/kestrelapps/taskdeck-api/pushgateway"
)

func main() {
	cfg := config.New()

	var gateway pushgateway.Gateway
	switch cfg.PushProvider {
	case "fcm":
		fcm, err := pushgateway.NewFCMClient(context.Background(), cfg.FirebaseCredentials)
		if err != nil {
			log.Fatalf("failed to initialize fcm gateway: %v", err)
		}
		gateway = fcm
	default:
		gateway = pushgateway.NewExpoClient(cfg.ExpoPushURL, cfg.PushTimeout)
	}

	a := handlers.App{}
	a.Config = *cfg
	a.Gateway = gateway

	if err := a.Initialize(); err != nil { //initialize database, router and scheduler
		log.Fatal(err)
	}

	zap.S().Infow("taskdeck-api is up and running",
		"port", cfg.Port,
		"url", cfg.BaseURL,
		"provider", cfg.PushProvider,
	)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", cfg.Port), a.Router))
}
