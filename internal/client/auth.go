package client

import (
	"bufio"
	"crypto/rsa"
	"fmt"
	"io"
	"strings"

	"github.com/Hashith00/tlschat/internal/client/repositories/tokens"
	"github.com/Hashith00/tlschat/internal/common"
	"github.com/Hashith00/tlschat/internal/cryptox"
	"github.com/Hashith00/tlschat/internal/protocol"
)

// PromptFunc answers one server prompt. secret marks prompts whose answer
// must not echo on the terminal.
type PromptFunc func(prompt string, secret bool) (string, error)

// Authenticate drives the login exchange: two server prompts, each answered
// with a credential encrypted under the server's certificate key, then one
// result line. Credential prompts are recognized by their wording; anything
// else would be answered in the clear, matching the server's plain-text
// prompt contract.
//
// The result line is echoed to out as received. A token-pair line yields the
// pair; a rejection (or anything else) yields common.ErrorUnauthorized.
func Authenticate(conn io.Writer, reader *bufio.Reader, pub *rsa.PublicKey, ask PromptFunc, out io.Writer) (*tokens.Pair, error) {
	for i := 0; i < 2; i++ {
		prompt, err := readLine(reader)
		if err != nil {
			return nil, err
		}

		lower := strings.ToLower(prompt)
		secret := strings.Contains(lower, "password")

		answer, err := ask(prompt, secret)
		if err != nil {
			return nil, err
		}

		if strings.Contains(lower, "password") || strings.Contains(lower, "email") {
			answer, err = cryptox.EncryptField(answer, pub)
			if err != nil {
				return nil, err
			}
		}

		if _, err := fmt.Fprintf(conn, "%s\n", answer); err != nil {
			return nil, err
		}
	}

	result, err := readLine(reader)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(out, result)

	if pair, ok := protocol.ParseTokenPair(result); ok {
		return &tokens.Pair{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
	}
	return nil, common.ErrorUnauthorized
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
