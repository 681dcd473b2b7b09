// Command seed loads the sample restaurant catalogue into a running Wampin
// API. It is safe to run repeatedly: the server refuses to seed a
// non-empty catalogue.
//
//	seed -api http://localhost:5000
//
// When JWT_SECRET is set (environment or .env) an admin token is minted
// for the request.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Akshaybondre123/First-Startup/internal/auth"
	"github.com/Akshaybondre123/First-Startup/internal/client"
	pkgconfig "github.com/Akshaybondre123/First-Startup/pkg/config"
	"github.com/Akshaybondre123/First-Startup/pkg/logger"
)

type options struct {
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
}

func main() {
	apiURL := flag.String("api", "http://localhost:5000", "base URL of the Wampin API")
	timeout := flag.Duration("timeout", 30*time.Second, "overall request timeout")
	flag.Parse()

	var opts options
	if err := pkgconfig.Load(&opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New("wampin-seed", opts.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	if err := run(ctx, *apiURL, opts, log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, apiURL string, opts options, log *slog.Logger) error {
	c := client.NewResilient(apiURL, nil, log)
	if opts.JWTSecret != "" {
		token, err := auth.NewJWTManager(opts.JWTSecret).Issue("seed-cli", auth.RoleAdmin, 5*time.Minute)
		if err != nil {
			return fmt.Errorf("mint admin token: %w", err)
		}
		c = c.WithToken(token)
	}

	res, err := c.Seed(ctx)
	if err != nil {
		return err
	}
	if !res.Seeded {
		log.Info("seed skipped", slog.String("reason", res.Message))
		return nil
	}
	log.Info("seed complete",
		slog.String("message", res.Message),
		slog.Int("restaurants", len(res.Restaurants)),
	)
	return nil
}
