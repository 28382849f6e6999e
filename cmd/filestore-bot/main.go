package main

import (
	"log"

	"github.com/m3rciful/filestore-bot/bot/app"
	"github.com/m3rciful/filestore-bot/bot/config"
	corecmd "github.com/m3rciful/filestore-bot/core/cmd"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		EnvFiles:          []string{".env"},
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			return app.Bootstrap(cfg.(*config.Config))
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
