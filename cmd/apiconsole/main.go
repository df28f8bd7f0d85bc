package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/studiowebux/apiconsole/internal/backend"
	"github.com/studiowebux/apiconsole/internal/cli"
	"github.com/studiowebux/apiconsole/internal/config"
	"github.com/studiowebux/apiconsole/internal/logging"
	"github.com/studiowebux/apiconsole/internal/telemetry"
	"github.com/studiowebux/apiconsole/internal/templates"
	"github.com/studiowebux/apiconsole/internal/tui"
	"github.com/studiowebux/apiconsole/internal/types"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, cli.ErrRequestFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "apiconsole",
	Short: "API Console - browse and test backend endpoints",
	Long: `API Console catalogs the endpoints a backend exposes and lets you
build, send and inspect test requests against any of its environments.

Run without arguments to start the interactive console.

Examples:
  apiconsole                                # Start interactive TUI
  apiconsole endpoints -s user              # List endpoints matching "user"
  apiconsole test /users/7 -e dev           # Send GET to the dev environment
  apiconsole test /users -X POST -d '{}'    # Send a JSON body
  apiconsole telemetry -o json              # Dump backend telemetry
  apiconsole docs markdown                  # Download API documentation`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(true)
		if err != nil {
			return err
		}
		defer app.close()

		store, err := templates.NewStore(config.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open template store: %w", err)
		}
		defer store.Close()

		return tui.Run(tui.Options{
			Config:    app.cfg,
			Backend:   app.client,
			Templates: store,
			DocsDir:   flagDocsDir,
		})
	},
}

var endpointsCmd = &cobra.Command{
	Use:     "endpoints",
	Aliases: []string{"ls"},
	Short:   "List catalogued endpoints",
	Long: `List the backend's endpoint catalog, grouped by owner.

With --search, --method or --owner the backend's own search is used.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(false)
		if err != nil {
			return err
		}
		defer app.close()

		ctx, cancel := signalContext()
		defer cancel()

		var eps []types.EndpointDescriptor
		if flagSearch != "" || flagMethodFilter != "" || flagOwner != "" {
			eps, err = app.client.Search(ctx, backend.SearchOptions{
				Query:      flagSearch,
				Method:     flagMethodFilter,
				Controller: flagOwner,
			})
		} else {
			eps, err = app.client.Catalog(ctx)
		}
		if err != nil {
			return err
		}
		return printer().Endpoints(eps)
	},
}

var testCmd = &cobra.Command{
	Use:   "test <url>",
	Short: "Send one test request",
	Long: `Send a single request and print the outcome.

Relative URLs are joined to the selected environment's base URL. Without
-e the configured environment is used, or you are asked to pick one when
the backend offers several and stdin is a terminal.

Exits with status 1 when no response was received or the status is >= 400.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(false)
		if err != nil {
			return err
		}
		defer app.close()

		ctx, cancel := signalContext()
		defer cancel()

		if flagServer {
			params, err := cli.ParseParams(flagParams)
			if err != nil {
				return err
			}
			return cli.RunServerTest(ctx, app.client, flagMethod, args[0], params, printer())
		}

		return cli.RunTest(ctx, app.cfg, app.client, cli.TestOptions{
			Method:      flagMethod,
			URL:         args[0],
			Environment: flagEnv,
			Headers:     flagHeaders,
			HeadersJSON: flagHeadersJSON,
			Body:        flagBody,
			Token:       flagToken,
			Timeout:     flagTimeout,
			ShowFull:    flagFull,
			SavePath:    flagSave,
		}, printer())
	},
}

var environmentsCmd = &cobra.Command{
	Use:     "environments",
	Aliases: []string{"envs"},
	Short:   "Show the backend environment registry",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(false)
		if err != nil {
			return err
		}
		defer app.close()

		ctx, cancel := signalContext()
		defer cancel()

		envs, err := app.client.Environments(ctx)
		if err != nil {
			return err
		}
		return printer().Environments(envs)
	},
}

var telemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "Show backend performance, cache, health and alert statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(false)
		if err != nil {
			return err
		}
		defer app.close()

		ctx, cancel := signalContext()
		defer cancel()

		snap := telemetry.NewPoller(app.client).Refresh(ctx)
		return printer().Telemetry(snap)
	},
}

var docsCmd = &cobra.Command{
	Use:       "docs <markdown|html|json>",
	Short:     "Download the API documentation",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{backend.FormatMarkdown, backend.FormatHTML, backend.FormatJSON},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(false)
		if err != nil {
			return err
		}
		defer app.close()

		ctx, cancel := signalContext()
		defer cancel()

		doc, err := app.client.DownloadDocs(ctx, args[0])
		if err != nil {
			return err
		}
		path, err := backend.SaveDocument(doc, flagDocsDir)
		if err != nil {
			return err
		}
		fmt.Printf("Saved %s\n", path)
		if doc.Title != "" {
			fmt.Printf("%s %s, %d operations\n", doc.Title, doc.Version, doc.Operations)
		}
		return nil
	},
}

var cacheCmd = &cobra.Command{
	Use:       "cache <test|clear>",
	Short:     "Exercise or empty the backend cache",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"test", "clear"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(false)
		if err != nil {
			return err
		}
		defer app.close()

		ctx, cancel := signalContext()
		defer cancel()

		switch args[0] {
		case "test":
			res, err := app.client.TestCache(ctx)
			if err != nil {
				return err
			}
			return printer().Print(res, func(w io.Writer) {
				fmt.Fprintf(w, "Cache hit: %v\nStored: %v\nRetrieved: %v\n", res.CacheHit, res.TestValue, res.RetrievedValue)
			})
		case "clear":
			if err := app.client.ClearCache(ctx); err != nil {
				return err
			}
			fmt.Println("Cache cleared")
			return nil
		default:
			return fmt.Errorf("unknown cache action %q (expected test or clear)", args[0])
		}
	},
}

var templatesCmd = &cobra.Command{
	Use:     "templates",
	Aliases: []string{"tpl"},
	Short:   "Manage saved request templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved templates, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(app *appContext, store *templates.Store) error {
			list, err := store.List()
			if err != nil {
				return err
			}
			return printer().Templates(list)
		})
	},
}

var templatesSaveCmd = &cobra.Command{
	Use:   "save <url>",
	Short: "Save a request as a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(app *appContext, store *templates.Store) error {
			draft, err := cli.TemplateDraft(cli.TestOptions{
				Method:      flagMethod,
				URL:         args[0],
				Environment: flagEnv,
				Headers:     flagHeaders,
				HeadersJSON: flagHeadersJSON,
				Body:        flagBody,
			})
			if err != nil {
				return err
			}
			t, err := store.Save(draft)
			if err != nil {
				return err
			}
			fmt.Printf("Saved %s (%s)\n", t.Name, t.ID)
			return nil
		})
	},
}

var templatesRunCmd = &cobra.Command{
	Use:   "run <id>",
	Short: "Send a saved template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(app *appContext, store *templates.Store) error {
			t, err := store.Get(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			opts := cli.TemplateOptions(t)
			opts.Token = flagToken
			opts.Timeout = flagTimeout
			opts.ShowFull = flagFull
			opts.SavePath = flagSave
			return cli.RunTest(ctx, app.cfg, app.client, opts, printer())
		})
	},
}

var templatesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(app *appContext, store *templates.Store) error {
			if err := store.Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		})
	},
}

// Global flags
var (
	flagConfig  string
	flagBaseURL string
	flagOutput  string
	flagQuery   string
	flagDocsDir string
)

// Flags for endpoints
var (
	flagSearch       string
	flagMethodFilter string
	flagOwner        string
)

// Flags for test and templates
var (
	flagMethod      string
	flagEnv         string
	flagHeaders     []string
	flagHeadersJSON string
	flagBody        string
	flagToken       string
	flagTimeout     float64
	flagFull        bool
	flagSave        string
	flagServer      bool
	flagParams      []string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Settings file (default ~/.apiconsole/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "Backend base URL (overrides settings)")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", cli.FormatText, "Output format (text/json/yaml)")
	rootCmd.PersistentFlags().StringVarP(&flagQuery, "query", "q", "", "JMESPath query applied to the output")
	rootCmd.PersistentFlags().StringVar(&flagDocsDir, "docs-dir", ".", "Directory for downloaded documentation")

	endpointsCmd.Flags().StringVarP(&flagSearch, "search", "s", "", "Search term")
	endpointsCmd.Flags().StringVarP(&flagMethodFilter, "method", "m", "", "Only this HTTP method")
	endpointsCmd.Flags().StringVar(&flagOwner, "owner", "", "Only this owner (controller)")

	for _, c := range []*cobra.Command{testCmd, templatesSaveCmd} {
		c.Flags().StringVarP(&flagMethod, "method", "X", "GET", "HTTP method")
		c.Flags().StringVarP(&flagEnv, "env", "e", "", "Environment name")
		c.Flags().StringArrayVarP(&flagHeaders, "header", "H", []string{}, "Header (Key: value), can be repeated")
		c.Flags().StringVar(&flagHeadersJSON, "headers-json", "", "Headers as a JSON object")
		c.Flags().StringVarP(&flagBody, "body", "d", "", "Request body")
	}
	for _, c := range []*cobra.Command{testCmd, templatesRunCmd} {
		c.Flags().Float64Var(&flagTimeout, "timeout", 0, "Timeout in seconds")
		c.Flags().BoolVarP(&flagFull, "full", "f", false, "Show response headers")
		c.Flags().StringVar(&flagSave, "save", "", "Save the response body to a file")
		c.Flags().StringVarP(&flagToken, "token", "t", "", "Bearer token (overrides settings)")
	}
	testCmd.Flags().BoolVar(&flagServer, "server", false, "Ask the backend to run the test itself")
	testCmd.Flags().StringArrayVarP(&flagParams, "param", "p", []string{}, "Server test parameter (key=value), can be repeated")

	templatesCmd.AddCommand(templatesListCmd, templatesSaveCmd, templatesRunCmd, templatesDeleteCmd)
	rootCmd.AddCommand(endpointsCmd, testCmd, environmentsCmd, telemetryCmd, docsCmd, cacheCmd, templatesCmd)
}

type appContext struct {
	cfg     *config.Config
	client  *backend.Client
	cleanup func() error
}

func (a *appContext) close() {
	if a.cleanup != nil {
		a.cleanup()
	}
}

// setup loads settings and logging. The TUI always logs to a file so log
// lines never reach the terminal.
func setup(interactive bool) (*appContext, error) {
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	path := flagConfig
	if path == "" {
		path = config.ConfigFile
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}

	logPath := ""
	if interactive {
		logPath = cfg.LogFilePath()
	}
	cleanup, err := logging.Setup(logging.FromSettings(cfg.Log, logPath))
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	if interactive && flagDocsDir == "." {
		if home, err := os.UserHomeDir(); err == nil {
			flagDocsDir = filepath.Join(home, "Downloads")
		}
	}

	return &appContext{cfg: cfg, client: backend.FromConfig(cfg), cleanup: cleanup}, nil
}

func withStore(fn func(app *appContext, store *templates.Store) error) error {
	app, err := setup(false)
	if err != nil {
		return err
	}
	defer app.close()

	store, err := templates.NewStore(config.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open template store: %w", err)
	}
	defer store.Close()

	return fn(app, store)
}

func printer() cli.Printer {
	stat, _ := os.Stdout.Stat()
	color := stat != nil && (stat.Mode()&os.ModeCharDevice) != 0
	return cli.Printer{Out: os.Stdout, Format: flagOutput, Query: flagQuery, Color: color}
}

// signalContext is cancelled on Ctrl+C
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
