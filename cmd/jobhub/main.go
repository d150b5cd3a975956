package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/freelance-hub/jobhub/internal/api"
	"github.com/freelance-hub/jobhub/internal/app"
	"github.com/freelance-hub/jobhub/internal/auth"
	"github.com/freelance-hub/jobhub/internal/browser"
	"github.com/freelance-hub/jobhub/internal/config"
	"github.com/freelance-hub/jobhub/internal/identity/firebase"
	"github.com/freelance-hub/jobhub/internal/identity/google"
	"github.com/freelance-hub/jobhub/internal/session"
)

func main() {
	cfgPath := flag.String("config", "jobhub.yaml", "Path to the YAML config file")
	envPath := flag.String("env", ".env", "Path to a dotenv file with overrides")
	logPath := flag.String("log", "", "Write debug logs to this file")
	apiURL := flag.String("api", "", "Base URL of the job board API (overrides config)")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*cfgPath)
	if err != nil {
		fatal(err)
	}
	if err := cfg.ApplyEnv(*envPath); err != nil {
		fatal(err)
	}
	if *apiURL != "" {
		cfg.API.BaseURL = *apiURL
	}
	if *logPath != "" {
		cfg.Log.File = *logPath
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	// The TUI owns the terminal, so logs go to a file or nowhere.
	if cfg.Log.File != "" {
		f, err := tea.LogToFile(cfg.Log.File, "jobhub")
		if err != nil {
			fatal(err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	jar, err := api.NewJar()
	if err != nil {
		fatal(err)
	}
	client := api.NewClient(cfg.API.BaseURL, jar)
	sessions := api.NewSessionClient(cfg.API.BaseURL, jar)
	store := session.NewStore()

	var p *tea.Program

	fbCfg := firebase.Config{
		APIKey:          cfg.Identity.APIKey,
		Endpoint:        cfg.Identity.Endpoint,
		TokenEndpoint:   cfg.Identity.TokenEndpoint,
		CredentialsFile: cfg.Identity.CredentialsFile,
	}
	if cfg.GoogleEnabled() {
		fbCfg.Federation = google.New(google.Config{
			ClientID:     cfg.Identity.Google.ClientID,
			ClientSecret: cfg.Identity.Google.ClientSecret,
			Issuer:       cfg.Identity.Google.Issuer,
			OpenURL: func(url string) {
				if err := browser.Open(url); err != nil {
					log.Printf("main: open browser: %v", err)
				}
				if p != nil {
					p.Send(app.AuthURLMsg{URL: url})
				}
			},
		})
	}
	provider := firebase.New(fbCfg)
	defer provider.Close()

	gw := auth.New(provider, sessions, store, auth.WithResolveTimeout(cfg.Session.ResolveTimeout))
	defer gw.Close()
	client.OnSessionInvalidated(gw.SignOut)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gw.Start(ctx)

	p = tea.NewProgram(app.New(client, gw, store), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
