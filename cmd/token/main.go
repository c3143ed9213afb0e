// Command token prints a bearer token for local development.
package main

import (
	"flag"
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/app/authapp"
	"github.com/burenotti/go_health_tracker/internal/config"
	"os"
)

func main() {
	var configPath, userID string
	flag.StringVar(&configPath, "config", "config/config.yaml", "path to config file")
	flag.StringVar(&userID, "user", "", "user id to put into the token")
	flag.Parse()

	if userID == "" {
		fmt.Fprintln(os.Stderr, "-user is required")
		os.Exit(2)
	}

	cfg := config.MustLoad(configPath)
	authorizer := authapp.NewAuthorizer(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)

	token, err := authorizer.GenerateAccessToken(userID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)
}
