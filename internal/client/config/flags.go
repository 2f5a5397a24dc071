package config

import (
	"flag"
	"os"
	"time"

	"github.com/Hashith00/tlschat/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   address and port of the relay server
//	-d string   local sqlite database path
//	-w int      staleness window for inbound timestamped frames, minutes
//
// The function filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerAddr, "a", cfg.ServerAddr, "address and port to access server")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "local database path")
	stalenessWindow := fs.Int("w", int(cfg.StalenessWindow.Minutes()), "staleness_window (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.StalenessWindow = time.Duration(*stalenessWindow) * time.Minute
}
