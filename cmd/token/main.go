// Command token mints a bearer token for the metadata service, for local
// development and tests against a running server.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/server/auth"
	"github.com/dmitrijs2005/rentkeeper/internal/server/config"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if err := run(os.Args[1:], os.Getenv, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func run(args []string, getenv func(string) string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	user := fs.String("user", "", "user id (uid claim)")
	account := fs.String("account", "", "account id (aid claim)")
	secret := fs.String("secret", getenv(config.EnvSecretKey), "signing secret, defaults to $"+config.EnvSecretKey)
	ttl := fs.Duration("ttl", 24*time.Hour, "token validity")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *user == "" || *account == "" {
		return fmt.Errorf("both -user and -account are required")
	}
	if *secret == "" {
		return fmt.Errorf("no secret: pass -secret or set %s", config.EnvSecretKey)
	}

	token, err := auth.GenerateToken(*user, *account, []byte(*secret), *ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
