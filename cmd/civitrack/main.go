// Command civitrack is the operations CLI for the civic issue tracker.
// It wires the services directly onto the database, with no network
// transport in between.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/civitrack/civitrack/internal/config"
	"github.com/civitrack/civitrack/internal/geo"
	"github.com/civitrack/civitrack/internal/limiter"
	"github.com/civitrack/civitrack/internal/migrate"
	"github.com/civitrack/civitrack/internal/model"
	"github.com/civitrack/civitrack/internal/repository/postgres"
	"github.com/civitrack/civitrack/internal/service"
	"github.com/civitrack/civitrack/internal/storage"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func usage() {
	fmt.Fprintf(os.Stderr, `civitrack CLI
Usage:
  civitrack <cmd> [args]

Commands:
  version
  migrate                                          (apply pending migrations)
  register  -u <username> -p <password> -email <email> [-worker]
  login     -u <username> -p <password>
  submit    -title T -location CODE -desc TEXT -author USER [-image file]
  list      [-addr <requester ip>]                 (ranked when -addr given)
  show      -id <id>
  advance   -id <id> [-status verified|resolved-by-authority -as <worker>]
  purge                                            (clear issues and accounts)
`)
	os.Exit(2)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// app bundles the wired services for subcommand handlers.
type app struct {
	accounts service.AccountService
	issues   service.IssueService
	gateway  geo.Gateway
	files    storage.FileStore
	log      *zap.Logger
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, func(), error) {
	db, err := postgres.New(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	lim := limiter.NewPGWithQuerier(db.Pool, cfg.Limiter.Window, cfg.Limiter.MaxFails, cfg.Limiter.BlockFor)

	files, err := storage.NewS3Store(ctx,
		cfg.Uploads.Endpoint, cfg.Uploads.Region,
		cfg.Uploads.AccessKey, cfg.Uploads.SecretKey, cfg.Uploads.Bucket,
	)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("object storage: %w", err)
	}

	a := &app{
		accounts: service.NewAccountService(postgres.NewAccountRepo(db), lim),
		issues:   service.NewIssueService(postgres.NewIssueRepo(db), log),
		gateway:  geo.NewClient(cfg.Geocoder.AddressBaseURL, cfg.Geocoder.CodeBaseURL, cfg.Geocoder.Timeout),
		files:    files,
		log:      log,
	}
	return a, db.Close, nil
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)

	if cmd == "version" {
		fmt.Printf("civitrack %s (%s)\n", version, buildDate)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		fail(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if cmd == "migrate" {
		if err := migrate.Up(ctx, cfg.Database.DSN); err != nil {
			fail(err)
		}
		logger.Info("migrations applied")
		return
	}

	a, closeDB, err := newApp(ctx, cfg, logger)
	if err != nil {
		fail(err)
	}
	defer closeDB()

	switch cmd {

	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		u := fs.String("u", "", "username")
		p := fs.String("p", "", "password")
		email := fs.String("email", "", "email address")
		worker := fs.Bool("worker", false, "register as a council worker")
		_ = fs.Parse(flag.Args()[1:])

		id, err := a.accounts.Register(ctx, *u, *p, *email, *worker)
		if err != nil {
			fail(err)
		}
		fmt.Println(id)

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		u := fs.String("u", "", "username")
		p := fs.String("p", "", "password")
		_ = fs.Parse(flag.Args()[1:])

		if err := a.accounts.Login(ctx, *u, *p); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "submit":
		fs := flag.NewFlagSet("submit", flag.ExitOnError)
		title := fs.String("title", "", "issue title")
		location := fs.String("location", "", "postal/area code")
		desc := fs.String("desc", "", "description")
		author := fs.String("author", "", "reporting username")
		image := fs.String("image", "", "image file to upload (optional)")
		_ = fs.Parse(flag.Args()[1:])

		ref := storage.DefaultImage
		if *image != "" {
			if ref, err = a.files.Store(ctx, *image, filepath.Base(*image)); err != nil {
				fail(err)
			}
		}
		id, err := a.issues.Create(ctx, model.IssueSubmission{
			Title:       *title,
			Location:    *location,
			Description: *desc,
			Status:      model.StatusNew,
			Image:       ref,
			Author:      *author,
		})
		if err != nil {
			fail(err)
		}
		a.log.Info("issue submitted", zap.Int64("id", id), zap.String("title", *title))
		fmt.Println(id)

	case "list":
		fs := flag.NewFlagSet("list", flag.ExitOnError)
		addr := fs.String("addr", "", "requester IP for proximity ranking")
		_ = fs.Parse(flag.Args()[1:])

		issues, err := a.issues.GetAll(ctx)
		if err != nil {
			fail(err)
		}
		if *addr == "" {
			printJSON(issues)
			return
		}
		ranked, err := geo.RankByAddress(ctx, issues, *addr, a.gateway)
		if err != nil {
			fail(err)
		}
		type row struct {
			DistanceKm float64     `json:"distance_km"`
			Issue      model.Issue `json:"issue"`
		}
		rows := make([]row, 0, len(ranked))
		for _, r := range ranked {
			rows = append(rows, row{DistanceKm: r.Distance, Issue: r.Issue})
		}
		printJSON(rows)

	case "show":
		fs := flag.NewFlagSet("show", flag.ExitOnError)
		id := fs.Int64("id", 0, "issue id")
		_ = fs.Parse(flag.Args()[1:])

		is, err := a.issues.Get(ctx, *id)
		if err != nil {
			fail(err)
		}
		printJSON(is)

	case "advance":
		fs := flag.NewFlagSet("advance", flag.ExitOnError)
		id := fs.Int64("id", 0, "issue id")
		status := fs.String("status", "", "requested status override")
		as := fs.String("as", "", "acting username (required for overrides)")
		_ = fs.Parse(flag.Args()[1:])

		requested := model.Status(*status)
		if requested == model.StatusVerified || requested == model.StatusResolvedByAuthority {
			if *as == "" {
				fail(fmt.Errorf("status %q needs -as <worker username>", requested))
			}
			ok, err := a.accounts.IsWorker(ctx, *as)
			if err != nil {
				fail(err)
			}
			if !ok {
				fail(fmt.Errorf("account %q is not authorised to set status %q", *as, requested))
			}
		}
		next, err := a.issues.UpdateStatus(ctx, *id, requested)
		if err != nil {
			fail(err)
		}
		fmt.Println(next)

	case "purge":
		if err := a.issues.ClearAll(ctx); err != nil {
			fail(err)
		}
		if err := a.accounts.ClearAll(ctx); err != nil {
			fail(err)
		}
		a.log.Info("all records cleared")
		fmt.Println("ok")

	default:
		usage()
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	return cfg.Build()
}
