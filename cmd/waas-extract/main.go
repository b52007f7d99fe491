package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"waas-extractor/lib/scrapers/algolia"
	"waas-extractor/lib/scrapers/waas"
	"waas-extractor/lib/scrapers/ycauth"
	"waas-extractor/lib/telemetry"
	"waas-extractor/lib/util/serviceutil"
	"waas-extractor/services/extractor"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

const defaultCount = 200
const defaultOutput = "companies.json"

var countFlag int
var outputFlag string

var rootCmd = &cobra.Command{
	Use:           "waas-extract",
	Short:         "waas-extract pulls company and job listings from Work at a Startup into a JSON file.",
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().IntVar(&countFlag, "count", defaultCount, "number of companies to extract")
	rootCmd.Flags().StringVar(&outputFlag, "output", defaultOutput, "path of the output file")
}

func run(cmd *cobra.Command, args []string) error {
	ctx := serviceutil.SignalContext()

	telemetry.InitSlog(os.Getenv("DEBUG") != "")
	tel, err := telemetry.SetupFromEnv(ctx, "waas-extract")
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}
	defer tel.Shutdown(context.Background())
	telemetry.InstrumentPerfStats(ctx)

	config, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// flags win over the config file, config values over the built-in
	// defaults
	count := countFlag
	if !cmd.Flags().Changed("count") && config.Extract.Count > 0 {
		count = config.Extract.Count
	}
	output := outputFlag
	if !cmd.Flags().Changed("output") && config.Extract.Output != "" {
		output = config.Extract.Output
	}

	auth := ycauth.NewClient(ycauth.ClientOptions{
		Username: config.Yc.Username,
		Password: config.Yc.Password,
	})
	discovery := algolia.NewClient(algolia.ClientOptions{
		AppId:  config.Algolia.AppId,
		ApiKey: config.Algolia.ApiKey,
	})
	fetcher := waas.NewClient(auth, waas.ClientOptions{})
	svc := extractor.NewService(discovery, fetcher)

	slog.Info("starting extraction", "count", count, "output", output)
	companies, err := svc.Extract(ctx, count)
	if err != nil {
		return err
	}

	contents, err := json.MarshalIndent(companies, "", "  ")
	if err != nil {
		return err
	}
	err = os.WriteFile(output, contents, 0644)
	if err != nil {
		return err
	}

	printSummary(companies)
	slog.Info("wrote output", "file", output, "companies", len(companies))
	return nil
}

func printSummary(companies []waas.CompanyExport) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Company", "Jobs", "Country"})
	for _, c := range companies {
		country := ""
		if c.Country != nil {
			country = *c.Country
		}
		t.AppendRow(table.Row{c.Name, len(c.Jobs), country})
	}
	t.Render()
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		serviceutil.Fatal("extraction failed", err)
	}
}
