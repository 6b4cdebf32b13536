// Command authctl is a small terminal client for the authcore API: log in
// against a running server and inspect the resulting session.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/campuskit/authcore/internal/cli"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "authcore server base URL")
	flag.Parse()

	if err := run(context.Background(), *serverURL); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, serverURL string) error {
	reader := bufio.NewReader(os.Stdin)

	username, err := cli.GetSimpleText(reader, "Username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := cli.GetPassword(os.Stdout)
	if err != nil {
		return err
	}

	client := cli.NewClient(serverURL)

	res, err := client.Login(ctx, username, string(password))
	if err != nil {
		return err
	}

	fmt.Printf("Logged in as %s (id=%d, role=%s)\n", res.Username, res.ID, res.Role)
	fmt.Printf("Token: %s\n", res.Token)

	me, err := client.Me(ctx, res.Token)
	if err != nil {
		return fmt.Errorf("session check failed: %w", err)
	}
	fmt.Printf("Session verified: id=%d username=%s role=%s\n", me.ID, me.Username, me.Role)

	return nil
}
