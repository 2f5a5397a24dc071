package config

import (
	"flag"
	"os"
	"time"

	"github.com/Hashith00/tlschat/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   TLS bind address (e.g., ":8443")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-f string   server certificate file (PEM)
//	-k string   server private key file (PEM)
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-w int      staleness window for timestamped messages, minutes
//	-m string   Prometheus bind address ("" disables metrics)
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration flags
// are accepted as integers in minutes and converted to time.Duration values.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-f", "-k", "-t", "-r", "-w", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Addr, "a", config.Addr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.CertFile, "f", config.CertFile, "server certificate file")
	fs.StringVar(&config.KeyFile, "k", config.KeyFile, "server private key file")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")
	stalenessWindow := fs.Int("w", int(config.StalenessWindow.Minutes()), "staleness_window (in minutes)")

	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "metrics endpoint address")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
	config.StalenessWindow = time.Duration(*stalenessWindow) * time.Minute
}
