package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/chmdznr/oss-file-organizer/internal/app"
	"github.com/chmdznr/oss-file-organizer/internal/blob"
	"github.com/chmdznr/oss-file-organizer/internal/config"
	"github.com/chmdznr/oss-file-organizer/internal/db"
	"github.com/chmdznr/oss-file-organizer/internal/export"
	"github.com/chmdznr/oss-file-organizer/internal/interact"
	"github.com/chmdznr/oss-file-organizer/internal/logger"
	"github.com/chmdznr/oss-file-organizer/internal/objstore"
	"github.com/chmdznr/oss-file-organizer/internal/preview"
	"github.com/chmdznr/oss-file-organizer/internal/source"
	"github.com/chmdznr/oss-file-organizer/internal/store"
	"github.com/chmdznr/oss-file-organizer/internal/thumb"
	"github.com/chmdznr/oss-file-organizer/internal/view"
	"github.com/chmdznr/oss-file-organizer/pkg/version"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.IsDevelopment(), cfg.LogLevel, cfg.SentryDSN)
	defer logger.Flush()

	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"v"},
		Usage:   "print the version",
	}

	forg := &cli.App{
		Name:                 "forg",
		Usage:                "Organize file metadata by category",
		Version:              version.Version,
		EnableBashCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Storage backend: sqlite or minio",
				Value: cfg.Backend,
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "SQLite database path",
				Value: cfg.DBPath,
			},
			&cli.StringFlag{
				Name:  "key",
				Usage: "Storage key of the file list",
				Value: cfg.Key,
			},
			&cli.StringFlag{
				Name:    "category",
				Aliases: []string{"c"},
				Usage:   "Show only one category (all, images, videos, docs, others)",
				Value:   view.FilterAll,
			},
			&cli.StringFlag{
				Name:    "search",
				Aliases: []string{"s"},
				Usage:   "Show only files whose name contains the text",
			},
			&cli.StringFlag{
				Name:  "sort",
				Usage: "Order: newest, oldest, nameAsc, nameDesc",
				Value: string(view.SortNewest),
			},
			&cli.StringFlag{
				Name:  "locale",
				Usage: "Locale used to sort names",
				Value: cfg.Locale,
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Answer yes to every confirmation",
			},
			&cli.BoolFlag{
				Name:  "no-open",
				Usage: "Do not open previews in the system viewer",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of parallel workers reading thumbnails",
				Value: cfg.Workers,
			},
			&cli.StringFlag{
				Name:  "endpoint",
				Usage: "MinIO endpoint",
				Value: cfg.MinioEndpoint,
			},
			&cli.StringFlag{
				Name:  "bucket",
				Usage: "MinIO bucket name",
				Value: cfg.MinioBucket,
			},
			&cli.StringFlag{
				Name:  "prefix",
				Usage: "MinIO object prefix",
				Value: cfg.MinioPrefix,
			},
			&cli.StringFlag{
				Name:  "access-key",
				Usage: "MinIO access key",
				Value: cfg.MinioAccessKey,
			},
			&cli.StringFlag{
				Name:  "secret-key",
				Usage: "MinIO secret key",
				Value: cfg.MinioSecretKey,
			},
			&cli.BoolFlag{
				Name:  "secure",
				Usage: "Use TLS for MinIO",
				Value: cfg.MinioSecure,
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "version",
				Usage: "Print detailed version information",
				Action: func(c *cli.Context) error {
					fmt.Printf("Version:    %s\n", version.Version)
					fmt.Printf("Git commit: %s\n", version.GitCommit)
					fmt.Printf("Built:      %s\n", version.BuildTime)
					return nil
				},
			},
			{
				Name:      "add",
				Usage:     "Add files or directories",
				ArgsUsage: "<path>...",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "recursive",
						Aliases: []string{"r"},
						Usage:   "Walk directories",
					},
					&cli.BoolFlag{
						Name:  "sniff",
						Usage: "Detect unknown types from file content",
						Value: true,
					},
				},
				Action: func(c *cli.Context) error {
					return withApp(c, cfg, func(a *app.App) error {
						return addFiles(c, a)
					})
				},
			},
			{
				Name:  "paste",
				Usage: "Add a file read from stdin",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "File name (derived from the type when empty)",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "MIME type (detected when empty)",
					},
				},
				Action: func(c *cli.Context) error {
					return withApp(c, cfg, func(a *app.App) error {
						f, err := source.FromReader(c.String("name"), c.String("type"), os.Stdin)
						if err != nil {
							return err
						}
						return a.Add(c.Context, []source.File{f})
					})
				},
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "Show saved files",
				Action: func(c *cli.Context) error {
					return withApp(c, cfg, func(a *app.App) error {
						a.Render()
						return nil
					})
				},
			},
			{
				Name:      "preview",
				Usage:     "Show a file",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					ref, err := singleArg(c, "id")
					if err != nil {
						return err
					}
					return withApp(c, cfg, func(a *app.App) error {
						return a.Preview(ref)
					})
				},
			},
			{
				Name:      "move",
				Aliases:   []string{"mv"},
				Usage:     "Change the category of a file",
				ArgsUsage: "<id> [category]",
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 || c.NArg() > 2 {
						return fmt.Errorf("usage: forg move <id> [category]")
					}
					return withApp(c, cfg, func(a *app.App) error {
						return a.Move(c.Context, c.Args().Get(0), c.Args().Get(1))
					})
				},
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a file",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					ref, err := singleArg(c, "id")
					if err != nil {
						return err
					}
					return withApp(c, cfg, func(a *app.App) error {
						return a.Delete(c.Context, ref)
					})
				},
			},
			{
				Name:  "clear",
				Usage: "Delete every saved file",
				Action: func(c *cli.Context) error {
					return withApp(c, cfg, func(a *app.App) error {
						return a.Clear(c.Context)
					})
				},
			},
			{
				Name:  "stats",
				Usage: "Show counts and sizes per category",
				Action: func(c *cli.Context) error {
					return withApp(c, cfg, func(a *app.App) error {
						a.Stats(c.Context)
						return nil
					})
				},
			},
			{
				Name:      "export",
				Usage:     "Export the shown files as CSV or XLSX",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "csv or xlsx (derived from the file name when empty)",
					},
				},
				Action: func(c *cli.Context) error {
					path, err := singleArg(c, "file")
					if err != nil {
						return err
					}
					format := c.String("format")
					if format == "" {
						format = export.Format(path)
					}
					return withApp(c, cfg, func(a *app.App) error {
						return writeOutput(path, func(w io.Writer) error {
							return a.Export(w, format)
						})
					})
				},
			},
			{
				Name:      "gallery",
				Usage:     "Write the shown files as an HTML gallery",
				ArgsUsage: "<file>",
				Action: func(c *cli.Context) error {
					path, err := singleArg(c, "file")
					if err != nil {
						return err
					}
					return withApp(c, cfg, func(a *app.App) error {
						return writeOutput(path, a.Gallery)
					})
				},
			},
			{
				Name:  "shell",
				Usage: "Start an interactive session",
				Action: func(c *cli.Context) error {
					terminal := interact.NewTerminal(c.Bool("yes"))
					return withAppUsing(c, cfg, terminal, func(a *app.App) error {
						return a.Shell(c.Context, terminal)
					})
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := forg.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		logger.Flush()
		stop()
		os.Exit(1)
	}
}

// withApp opens the configured backend, loads the store and runs fn
func withApp(c *cli.Context, cfg *config.Config, fn func(*app.App) error) error {
	return withAppUsing(c, cfg, interact.NewTerminal(c.Bool("yes")), fn)
}

func withAppUsing(c *cli.Context, cfg *config.Config, ui interact.Interactor, fn func(*app.App) error) error {
	opts, err := viewOptions(c)
	if err != nil {
		return err
	}

	blobs, closeBlobs, err := openBlobs(c)
	if err != nil {
		return err
	}
	defer closeBlobs()

	var observer thumb.Observer
	if term.IsTerminal(int(os.Stderr.Fd())) {
		observer = thumb.NewProgressBar(os.Stderr)
	}
	loader := thumb.NewLoader(&thumb.LoaderConfig{
		NumWorkers: c.Int("workers"),
		MaxBytes:   cfg.ThumbMaxBytes,
	}, observer)

	s := store.New(blobs, &store.Config{
		Key:    c.String("key"),
		Loader: loader,
	})
	s.Load(c.Context)

	a := app.New(app.Config{
		Store:      s,
		Interactor: ui,
		Previewer:  preview.New(os.Stdout, !c.Bool("no-open")),
		Renderer:   view.NewRenderer(os.Stdout, nil),
		Out:        os.Stdout,
		Options:    opts,
		Sources: source.Options{
			Recursive: true,
			Sniff:     true,
		},
	})
	defer a.Close()

	return fn(a)
}

// openBlobs returns the blob store selected by --backend and its closer
func openBlobs(c *cli.Context) (blob.Store, func() error, error) {
	switch strings.ToLower(c.String("backend")) {
	case "sqlite", "":
		d, err := db.New(c.String("db"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return d, d.Close, nil
	case "minio":
		s, err := objstore.New(c.Context, objstore.Config{
			Endpoint:  c.String("endpoint"),
			Bucket:    c.String("bucket"),
			Prefix:    c.String("prefix"),
			AccessKey: c.String("access-key"),
			SecretKey: c.String("secret-key"),
			Secure:    c.Bool("secure"),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to MinIO: %w", err)
		}
		return s, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q (want sqlite or minio)", c.String("backend"))
	}
}

func viewOptions(c *cli.Context) (view.Options, error) {
	filter, err := view.ParseFilter(c.String("category"))
	if err != nil {
		return view.Options{}, err
	}
	sort, err := view.ParseSort(c.String("sort"))
	if err != nil {
		return view.Options{}, err
	}
	return view.Options{
		Category: filter,
		Query:    c.String("search"),
		Sort:     sort,
		Locale:   view.ParseLocale(c.String("locale")),
	}, nil
}

// addFiles adds the paths given as arguments. Directories are skipped
// unless --recursive is set.
func addFiles(c *cli.Context, a *app.App) error {
	if c.NArg() == 0 {
		return fmt.Errorf("usage: forg add <path>...")
	}
	files, err := source.FromPaths(c.Args().Slice(), source.Options{
		Recursive: c.Bool("recursive"),
		Sniff:     c.Bool("sniff"),
	})
	if err != nil {
		return err
	}
	return a.Add(c.Context, files)
}

func singleArg(c *cli.Context, name string) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one <%s> argument", name)
	}
	return c.Args().First(), nil
}

// writeOutput writes to path, or to stdout when path is "-"
func writeOutput(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	return nil
}
