package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/jarv/snoogoat/internal/config"
	"github.com/jarv/snoogoat/internal/database"
	"github.com/jarv/snoogoat/internal/discovery"
	"github.com/jarv/snoogoat/internal/feeds"
	"github.com/jarv/snoogoat/internal/logging"
	"github.com/jarv/snoogoat/internal/reddit"
	"github.com/jarv/snoogoat/internal/session"
	"github.com/jarv/snoogoat/internal/ui"
	"github.com/jarv/snoogoat/internal/version"
)

//go:embed sql/schema.sql
var schemaSQL string

var logger *slog.Logger

func setupLogging(queries *database.Queries, debug bool) string {
	sessionID := uuid.NewString()
	logger = slog.New(logging.NewDatabaseHandler(queries, sessionID, debug))

	// Set the global logger for other packages
	logging.SetLogger(logger)
	return sessionID
}

type options struct {
	debug     bool
	feedsFile string
	feed      string
	apiBase   string
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: snoogoat [options] [command]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  add <feed>   Pin a subreddit, user or reddit URL in the feeds file\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  %-24s Reddit account name\n", config.EnvUsername)
		fmt.Fprintf(os.Stderr, "  %-24s Reddit account password\n", config.EnvPassword)
		fmt.Fprintf(os.Stderr, "  %-24s Reddit application client id\n", config.EnvClientID)
		fmt.Fprintf(os.Stderr, "  %-24s Reddit application client secret\n", config.EnvClientSecret)
	}

	var opts options
	var apiTest = flag.Bool("apiTest", false, "Run the fake reddit API server")
	var apiTestAddr = flag.String("apiTestAddr", defaultHarnessAddr, "Listen address for -apiTest")
	var showVersion = flag.Bool("version", false, "Show version information")
	flag.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flag.StringVar(&opts.feedsFile, "f", "", "Path to feeds file (overrides default location)")
	flag.StringVar(&opts.feedsFile, "feedsFile", "", "Path to feeds file (overrides default location)")
	flag.StringVar(&opts.feed, "feed", "", "Feed to show at startup, for example r/golang (overrides the setting)")
	flag.StringVar(&opts.apiBase, "api", "", "Base URL for both the token and listing endpoints, for example the -apiTest server")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetVersion())
		return
	}

	if *apiTest {
		if err := runAPITestHarness(*apiTestAddr); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Check for subcommands
	args := flag.Args()
	if len(args) > 0 {
		switch args[0] {
		case "add":
			if len(args) < 2 {
				fmt.Fprintf(os.Stderr, "Error: 'add' command requires a feed argument\n")
				fmt.Fprintf(os.Stderr, "Usage: snoogoat add <feed>\n")
				os.Exit(1)
			}
			if err := addFeed(opts.feedsFile, args[1]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		default:
			fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n", args[0])
			os.Exit(1)
		}
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func addFeed(feedsFile, input string) error {
	ctx, cancel := context.WithTimeout(context.Background(), feeds.FeedTimeout)
	defer cancel()

	fmt.Printf("Discovering feed from: %s\n", input)
	feedPath, err := discovery.DiscoverFeed(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to discover feed: %w", err)
	}
	if feedPath != input {
		fmt.Printf("Discovered feed: %s\n", feedPath)
	}

	// The public RSS feed tells us the feed exists without needing a token
	title, err := discovery.ValidateFeed(ctx, discovery.DefaultRSSBaseURL, feedPath)
	if err != nil {
		return fmt.Errorf("failed to validate feed: %w", err)
	}

	if feedsFile == "" {
		feedsFile, err = config.GetFeedsFilePath()
		if err != nil {
			return fmt.Errorf("failed to get feeds file path: %w", err)
		}
	}

	added, err := config.AddFeedToPath(feedsFile, config.FeedEntry{Path: feedPath, Label: title})
	if err != nil {
		return fmt.Errorf("failed to add feed to file: %w", err)
	}
	if !added {
		fmt.Printf("Feed already pinned: %s\n", feedPath)
		return nil
	}

	fmt.Printf("Successfully added feed: %s (%s)\n", feedPath, title)
	return nil
}

func run(opts options) error {
	// Initialize database first
	db, queries, err := database.InitDBWithSchema(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Load configuration from database
	cfg, err := config.LoadConfig(queries)
	if err != nil {
		fmt.Printf("Failed to load config, using defaults: %v\n", err)
		cfg = config.GetDefaultConfig()
	}

	// Setup logging after database is initialized
	sessionID := setupLogging(queries, opts.debug)
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("Error closing database", "error", closeErr)
		}
	}()
	logger.Info("Starting snoogoat", "version", version.GetVersion(), "session", sessionID)

	if opts.feed != "" {
		feedPath, err := discovery.NormalizeFeedPath(opts.feed)
		if err != nil {
			return fmt.Errorf("invalid -feed: %w", err)
		}
		cfg.DefaultFeed = feedPath
	}

	creds, err := config.LoadCredentials()
	if err != nil {
		// Not fatal: the loading view reports the failed token request
		logger.Warn("Reddit credentials are incomplete", "error", err)
	}

	redditOpts := reddit.Options{
		UserAgent: version.GetUserAgent(),
		PageSize:  cfg.PageSize,
		Region:    cfg.Region,
		Timeout:   feeds.FeedTimeout,
	}
	if opts.apiBase != "" {
		redditOpts.AuthBaseURL = opts.apiBase
		redditOpts.APIBaseURL = opts.apiBase
	}

	sess := session.New(reddit.NewAuthenticator(creds, redditOpts))
	feedManager := feeds.NewManager(db, queries, reddit.NewClient(redditOpts), sess)

	feedsPath := opts.feedsFile
	if feedsPath == "" {
		feedsPath, err = config.GetFeedsFilePath()
		if err != nil {
			logger.Warn("Failed to get feeds file path", "error", err)
		}
	}
	if feedsPath != "" {
		if err := config.CreateSampleFeedsFile(feedsPath); err != nil {
			logger.Warn("Failed to create sample feeds file", "path", feedsPath, "error", err)
		}
	}

	model := ui.NewModel(feedManager, queries, cfg)
	model.SetFeedsFilePath(feedsPath)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	start := time.Now()
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	logger.Info("Exiting snoogoat", "duration", time.Since(start).Round(time.Second).String())

	return nil
}
