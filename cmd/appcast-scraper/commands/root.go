package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"appcast-scraper/lib/config"
	"appcast-scraper/lib/restyutil"
	"appcast-scraper/lib/telemetry"
	"appcast-scraper/lib/util/serviceutil"
	"appcast-scraper/services/jobstats"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var verbose *bool
var configPath *string

func init() {
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logs and dump http messages to .dev/resty.")
	configPath = rootCmd.PersistentFlags().String("config", "appcast.json5", "Optional settings file, environment variables take precedence.")
}

var rootCmd = &cobra.Command{
	Use:   "appcast-scraper",
	Short: "appcast-scraper logs into appcast and exports the job statistics report.",
	Long: `appcast-scraper logs into the appcast portal with APPCAST_EMAIL and APPCAST_PASSWORD,
fetches the jobs report of APPCAST_EMPLOYER_ID for the window APPCAST_START_DATE to
APPCAST_END_DATE (the last 30 days by default) and writes it to the output directory
as raw json and as a csv table.`,
	Args: cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)
		err := godotenv.Load()
		if err != nil {
			slog.Debug("no .env file loaded", "err", err)
		}
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		tel, err := telemetry.SetupFromEnv(ctx, "appcast-scraper")
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
			defer cancel()
			err := tel.Shutdown(ctx)
			if err != nil {
				slog.Warn("failed to flush telemetry", "err", err)
			}
		}()

		var output restyutil.InstrumentOutput
		if *verbose {
			fsOutput, err := restyutil.NewFilesystemOutput(".dev/resty/appcast")
			if err != nil {
				return fmt.Errorf("create http dump directory: %w", err)
			}
			output = fsOutput
		}

		result, err := scrape(ctx, os.Getenv, *configPath, jobstats.Options{
			InstrumentOutput: output,
		})
		if err != nil {
			return err
		}
		slog.Info("done", "summary", jobstats.Describe(result))
		return nil
	},
}

// scrape resolves the configuration and runs the scrape, nothing touches
// the network unless the configuration is complete.
func scrape(ctx context.Context, lookup config.Lookup, settingsPath string, opts jobstats.Options) (jobstats.Result, error) {
	file, err := config.ReadFile(settingsPath)
	if err != nil {
		return jobstats.Result{}, fmt.Errorf("read settings: %w", err)
	}

	now := time.Now()
	if opts.Clock != nil {
		now = opts.Clock.Now()
	}
	cfg, err := config.Resolve(lookup, file, now)
	if err != nil {
		return jobstats.Result{}, err
	}

	slog.InfoContext(ctx, "starting appcast scrape",
		"employer_id", cfg.EmployerId,
		"start_date", cfg.Window.Start,
		"end_date", cfg.Window.End,
		"output_dir", cfg.OutputDir,
	)
	return jobstats.Run(ctx, cfg, opts)
}

// ExecuteContext runs the command line, the returned error has already
// been logged.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		serviceutil.LogFatal("appcast-scraper failed", err)
	}
	return err
}
