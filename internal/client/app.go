package client

import (
	"bufio"
	"context"
	"crypto/rsa"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/Hashith00/tlschat/internal/client/cli"
	"github.com/Hashith00/tlschat/internal/client/config"
	"github.com/Hashith00/tlschat/internal/client/migrations"
	"github.com/Hashith00/tlschat/internal/client/repositories/tokens"
	"github.com/Hashith00/tlschat/internal/common"
	"github.com/Hashith00/tlschat/internal/logging"
	"github.com/Hashith00/tlschat/internal/protocol"
)

// refreshCommand asks the server for a renewed access token instead of
// sending a chat line.
const refreshCommand = "/refresh"

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	tokens tokens.Repository
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	s := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	logger := logging.NewSlogLogger(s).With("module", "client")

	db, err := sql.Open("sqlite", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &App{
		config: c,
		logger: logger,
		db:     db,
		tokens: tokens.NewSQLiteRepository(db),
	}, nil
}

// RunMigrations applies the embedded sqlite migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// Run connects, authenticates and chats until the server drops the
// connection, a stale frame forces a close, or stdin ends.
func (app *App) Run(ctx context.Context) error {
	defer app.db.Close()

	// The relay presents a certificate the client has no anchor for, so
	// verification is skipped; the credential exchange still encrypts under
	// the peer's RSA key.
	conn, err := tls.Dial("tcp", app.config.ServerAddr, &tls.Config{InsecureSkipVerify: true})
	if err != nil {
		return fmt.Errorf("connect error: %w", err)
	}
	defer conn.Close()

	pub, err := serverPublicKey(conn)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(conn)
	console := bufio.NewReader(os.Stdin)

	ask := func(prompt string, secret bool) (string, error) {
		if secret {
			pw, err := cli.GetPassword(prompt, os.Stdout)
			if err != nil {
				return "", err
			}
			defer common.WipeByteArray(pw)
			return string(pw), nil
		}
		return cli.GetSimpleText(console, prompt, os.Stdout)
	}

	pair, err := Authenticate(conn, reader, pub, ask, os.Stdout)
	if err != nil {
		return err
	}
	if err := app.tokens.Save(ctx, pair); err != nil {
		app.logger.Warn(ctx, "token cache save failed", "error", err)
	}

	state := NewTokenState(*pair)

	done := make(chan struct{})
	go app.readLoop(ctx, conn, reader, state, done)

	sendErr := make(chan error, 1)
	go func() { sendErr <- app.sendLoop(console, conn, state) }()

	select {
	case <-done:
		return nil
	case err := <-sendErr:
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	}
}

// readLoop consumes server frames until disconnect or a stale frame. Renewed
// access tokens are written through to the local cache.
func (app *App) readLoop(ctx context.Context, conn io.Closer, reader *bufio.Reader, state *TokenState, done chan struct{}) {
	defer close(done)

	for {
		line, err := readLine(reader)
		if err != nil {
			fmt.Println("Disconnected from server.")
			return
		}

		before := state.Access()
		keepOpen := handleServerLine(line, state, os.Stdout, time.Now(), app.config.StalenessWindow)

		if after := state.Access(); after != before {
			if err := app.tokens.Save(ctx, &tokens.Pair{AccessToken: after, RefreshToken: state.Refresh()}); err != nil {
				app.logger.Warn(ctx, "token cache save failed", "error", err)
			}
		}

		if !keepOpen {
			conn.Close()
			return
		}
	}
}

// sendLoop wraps every typed line in an access-token frame. The refresh
// command sends the refresh token alone.
func (app *App) sendLoop(console *bufio.Reader, conn io.Writer, state *TokenState) error {
	for {
		input, err := console.ReadString('\n')
		if err != nil {
			return err
		}
		input = strings.TrimRight(input, "\r\n")

		var f protocol.Frame
		if input == refreshCommand {
			f = protocol.Frame{RefreshToken: state.Refresh()}
		} else {
			f = protocol.Frame{AccessToken: state.Access(), Message: input}
		}

		line, err := f.Encode()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(conn, "%s\n", line); err != nil {
			return err
		}
	}
}

// serverPublicKey extracts the RSA key from the peer's leaf certificate. The
// same key pair terminates TLS and unwraps the login credentials.
func serverPublicKey(conn *tls.Conn) (*rsa.PublicKey, error) {
	certs := conn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return nil, errors.New("no peer certificate")
	}
	pub, ok := certs[0].PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("peer certificate key is not RSA")
	}
	return pub, nil
}
