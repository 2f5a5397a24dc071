package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/Hashith00/tlschat/internal/flagx"
	"github.com/Hashith00/tlschat/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify the window either as a string like "1h"
// or as integer nanoseconds.
type JsonConfig struct {
	ServerAddr      string         `json:"server_addr"`
	DatabaseDSN     string         `json:"database_dsn"`
	StalenessWindow timex.Duration `json:"staleness_window"`
}

// parseJson overlays cfg with values loaded from a JSON file. The file path
// comes from the -c/-config flags via flagx.JsonConfigFlags; when no path is
// given the overlay is skipped. Read or unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.ServerAddr = jc.ServerAddr
	cfg.DatabaseDSN = jc.DatabaseDSN
	cfg.StalenessWindow = time.Duration(jc.StalenessWindow.Duration)
}
