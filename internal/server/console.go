package server

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// runConsole is the operator loop on the server's own terminal. The operator
// picks a connected client by display name and chats with it; outbound lines
// are pushed as server frames prefixed with "Server: ". Typing "exit" leaves
// the per-client chat and returns to the picker.
func (app *App) runConsole(ctx context.Context, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprintf(out, "\nConnected clients: %v\n", app.registry.Names())
		fmt.Fprint(out, "Enter client name to chat with: ")

		if !scanner.Scan() {
			return
		}
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}

		target, ok := app.registry.Get(name)
		if !ok {
			fmt.Fprintln(out, "Client not found.")
			continue
		}

		fmt.Fprintf(out, "Chatting with %s (type 'exit' to stop):\n", name)
		for {
			fmt.Fprint(out, "You: ")
			if !scanner.Scan() {
				return
			}
			msg := scanner.Text()
			if strings.EqualFold(msg, "exit") {
				break
			}
			if err := target.Push("Server: " + msg); err != nil {
				app.logger.Warn(ctx, "console push failed", "client", name, "error", err)
				break
			}
		}
	}
}
