package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/stemsi/mcq-engine/internal/config"
	"github.com/stemsi/mcq-engine/internal/logger"
	"github.com/stemsi/mcq-engine/internal/service"
	"golang.org/x/term"
)

// issue-token mints a user token for a chat transport or for manual
// testing. The transport is trusted to vouch for the user id.
func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: issue-token <user-id>")
		flag.PrintDefaults()
	}
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	userID, err := strconv.ParseInt(flag.Arg(0), 10, 64)
	if err != nil || userID <= 0 {
		log.Fatal().Str("user_id", flag.Arg(0)).Msg("User id must be a positive integer")
	}

	token, err := service.NewAuthService(cfg).GenerateToken(userID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to issue token")
	}

	// Print the bare token when piped so scripts can capture it.
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Print(token)
		return
	}

	fmt.Println("=== User Token ===")
	fmt.Printf("User ID:    %d\n", userID)
	fmt.Printf("Expires in: %s\n", cfg.JWTExpiry)
	fmt.Printf("\n%s\n", token)
}
