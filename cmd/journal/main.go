package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pbaille/journal/internal/api"
	"github.com/pbaille/journal/internal/client"
	"github.com/pbaille/journal/internal/config"
	"github.com/pbaille/journal/internal/dashboard"
	"github.com/pbaille/journal/internal/logging"
	"github.com/pbaille/journal/internal/output"
	"github.com/pbaille/journal/internal/stats"
	"github.com/pbaille/journal/internal/store"
	"github.com/pbaille/journal/internal/timeline"
)

var (
	cfgFile    string
	dbPath     string
	serviceURL string
	verbose    bool
	colorFlag  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "journal",
		Short:         "Mood journal with streaks, calendar and daily insight",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/journal/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (overrides storage.db_path)")
	rootCmd.PersistentFlags().StringVar(&serviceURL, "service-url", "", "entry service URL (overrides service.url)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto", "color output: auto, always, never")

	rootCmd.AddCommand(signupCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(homeCmd())
	rootCmd.AddCommand(calendarCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(insightCmd())
	rootCmd.AddCommand(predictCmd())
	rootCmd.AddCommand(serveCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		mode, _ := output.ParseColorMode(colorFlag)
		output.NewPrinter(os.Stdout, os.Stderr, output.ResolveColors(mode, true)).Error("%v", err)
		stop()
		os.Exit(1)
	}
}

// app holds what every command needs once flags and config are resolved
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	printer *output.Printer
	loc     *time.Location
	locale  stats.Locale
}

func loadApp() (*app, error) {
	mode, err := output.ParseColorMode(colorFlag)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}
	if serviceURL != "" {
		cfg.Service.URL = serviceURL
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	locale, err := stats.ParseLocale(cfg.Display.Locale)
	if err != nil {
		return nil, err
	}

	printer := output.NewPrinter(os.Stdout, os.Stderr, output.ResolveColors(mode, cfg.Display.Colors))
	printer.SetLocation(loc)

	return &app{
		cfg:     cfg,
		log:     logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format),
		printer: printer,
		loc:     loc,
		locale:  locale,
	}, nil
}

func (a *app) openStore() (*store.Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(a.cfg.Storage.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return store.New(a.cfg.Storage.DBPath)
}

// client builds a service client. With authed set, the stored session
// token is attached and a missing session is an error.
func (a *app) client(s *store.Store, authed bool) (*client.Client, error) {
	if err := a.cfg.RequireService(); err != nil {
		return nil, err
	}

	opts := []client.Option{
		client.WithTimeout(a.cfg.Service.Timeout),
		client.WithLogger(logging.Component(a.log, "client")),
	}

	if authed {
		session, err := s.Session()
		if err != nil {
			return nil, err
		}
		if store.Expired(session, time.Now()) {
			a.printer.Warning("session expired on %s, run 'journal login' again",
				session.ExpiresAt.In(a.loc).Format("2006-01-02 15:04"))
		}
		opts = append(opts, client.WithToken(session.AccessToken))
	}

	return client.New(a.cfg.Service.URL, opts...)
}

func (a *app) dashboard(c *client.Client, s *store.Store, limit int) *dashboard.Service {
	if limit <= 0 {
		limit = a.cfg.Service.EntryLimit
	}
	return dashboard.New(c, s, dashboard.Options{
		Limit:           limit,
		WindowDays:      a.cfg.Display.WindowDays,
		Location:        a.loc,
		Locale:          a.locale,
		OfflineFallback: a.cfg.Storage.OfflineFallback,
		Pick:            rand.IntN,
	}, logging.Component(a.log, "dashboard"))
}

// withDashboard runs fn with a dashboard backed by the logged-in client
func withDashboard(limit int, fn func(a *app, d *dashboard.Service, c *client.Client) error) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	c, err := a.client(s, true)
	if err != nil {
		return err
	}

	return fn(a, a.dashboard(c, s, limit), c)
}

func signupCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account on the entry service",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			email, password, err = credentials(cmd.InOrStdin(), cmd.ErrOrStderr(), email, password)
			if err != nil {
				return err
			}

			c, err := a.client(nil, false)
			if err != nil {
				return err
			}

			if err := c.SignUp(cmd.Context(), email, password); err != nil {
				return err
			}

			a.printer.Success("Account created for %s. Run 'journal login' to sign in.", email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			email, password, err = credentials(cmd.InOrStdin(), cmd.ErrOrStderr(), email, password)
			if err != nil {
				return err
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := a.client(s, false)
			if err != nil {
				return err
			}

			session, err := c.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := s.SaveSession(*session); err != nil {
				return err
			}

			a.printer.Success("Logged in as %s", email)
			if exp := store.TokenExpiry(session.AccessToken); exp != nil {
				a.printer.Print("%s", a.printer.Dim("Token valid until "+exp.In(a.loc).Format("2006-01-02 15:04")))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.ClearSession(); err != nil {
				return err
			}
			a.printer.Success("Logged out")
			return nil
		},
	}
}

func addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [text]",
		Short: "Write a new entry (reads stdin when no text is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}

			return withDashboard(0, func(a *app, _ *dashboard.Service, c *client.Client) error {
				entry, err := c.CreateEntry(cmd.Context(), text)
				if err != nil {
					if errors.Is(err, client.ErrEmptyText) {
						return fmt.Errorf("nothing to save: write something first")
					}
					return err
				}

				a.printer.Success("Saved entry %s", entry.ID)
				a.printer.Entry(*entry)
				return nil
			})
		},
	}
}

func listCmd() *cobra.Command {
	var limit int
	var query, mood string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := timeline.ParseMoodFilter(mood)
			if err != nil {
				return err
			}

			return withDashboard(limit, func(a *app, d *dashboard.Service, _ *client.Client) error {
				list := d.Timeline(cmd.Context(), query, filter)
				a.printer.Origin(list.Origin, list.Err)

				if len(list.Entries) == 0 && (query != "" || filter != timeline.MoodAll) {
					a.printer.Print("No matching entries found.")
					return nil
				}
				return a.printer.Entries(list.Entries)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of entries to fetch (default service.entry_limit)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "search text and topics")
	cmd.Flags().StringVarP(&mood, "mood", "m", "all", "mood filter: all, positive, neutral, negative")
	return cmd
}

func showCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show entry details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if offline {
				a, err := loadApp()
				if err != nil {
					return err
				}
				s, err := a.openStore()
				if err != nil {
					return err
				}
				defer s.Close()

				entry, err := s.SnapshotEntry(args[0])
				if err != nil {
					return err
				}
				a.printer.Entry(*entry)
				return nil
			}

			return withDashboard(0, func(a *app, d *dashboard.Service, _ *client.Client) error {
				entry, list, err := d.Find(cmd.Context(), args[0])
				a.printer.Origin(list.Origin, list.Err)
				if err != nil {
					return err
				}
				a.printer.Entry(*entry)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "read from the last saved entries without contacting the service")
	return cmd
}

func homeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Show streak, weekly calendar, stats and today's insight",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDashboard(0, func(a *app, d *dashboard.Service, _ *client.Client) error {
				home := d.Home(cmd.Context())
				a.printer.Origin(home.Origin, home.EntriesErr)
				return a.printer.Home(home)
			})
		},
	}
}

func calendarCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show the mood calendar for the last days",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDashboard(0, func(a *app, d *dashboard.Service, _ *client.Client) error {
				cal, list := d.Calendar(cmd.Context(), days)
				a.printer.Origin(list.Origin, list.Err)
				a.printer.Calendar(cal)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 0, "window size in days (default display.window_days)")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show streak, positivity, top topic and mood breakdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDashboard(0, func(a *app, d *dashboard.Service, _ *client.Client) error {
				list := d.Entries(cmd.Context())
				a.printer.Origin(list.Origin, list.Err)
				a.printer.Stats(stats.Derive(list.Entries, a.loc), stats.Breakdown(list.Entries))
				return nil
			})
		},
	}
}

func insightCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insight",
		Short: "Show today's insight and related entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDashboard(0, func(a *app, d *dashboard.Service, _ *client.Client) error {
				view, list := d.InsightWithEntries(cmd.Context())
				a.printer.Origin(list.Origin, list.Err)
				a.printer.Insight(view)
				return nil
			})
		},
	}
}

func predictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "predict [id]",
		Short: "Ask the service for a 1-5 mood estimate of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDashboard(0, func(a *app, d *dashboard.Service, c *client.Client) error {
				entry, _, err := d.Find(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				pred, err := c.PredictMood(cmd.Context(), entry.ID)
				if err != nil {
					return err
				}
				a.printer.Prediction(*pred)
				return nil
			})
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local dashboard API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDashboard(0, func(a *app, d *dashboard.Service, c *client.Client) error {
				if addr == "" {
					addr = a.cfg.Server.Addr
				}
				server := api.New(d, c, addr, logging.Component(a.log, "api"))
				return server.Run(cmd.Context())
			})
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "server address (default server.addr)")
	return cmd
}
