package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hermes-log/collector/internal/collectors"
	"github.com/hermes-log/collector/internal/config"
	"github.com/hermes-log/collector/internal/export"
	"github.com/hermes-log/collector/internal/hostinfo"
	"github.com/hermes-log/collector/internal/logging"
	"github.com/hermes-log/collector/internal/probe"
	"github.com/hermes-log/collector/internal/store"
	"github.com/hermes-log/collector/pkg/types"
)

var (
	version = "0.1.0"
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "hermes-collector",
	Short: "Hermes diagnostic log collector",
	Long:  `Hermes Collector - gathers OS event logs and crash reports on Windows, macOS, and Linux`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loadConfigAndLogging()
	},
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect recent OS events and store them locally",
	Run: func(cmd *cobra.Command, args []string) {
		runCollect(cmd)
	},
}

var crashesCmd = &cobra.Command{
	Use:   "crashes",
	Short: "Import and inspect crash reports",
}

var crashImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Scan the host for crash reports and store them",
	Run: func(cmd *cobra.Command, args []string) {
		runCrashImport(cmd)
	},
}

var crashListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored crash records, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		runCrashList(cmd)
	},
}

var sampleCrashCmd = &cobra.Command{
	Use:   "sample-crash",
	Short: "Insert a synthetic crash record for the current platform",
	Run: func(cmd *cobra.Command, args []string) {
		runSampleCrash()
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List stored events, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		runEvents(cmd)
	},
}

var correlateCmd = &cobra.Command{
	Use:   "correlate [crash-id]",
	Short: "List events near a crash in time, closest first",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCorrelate(cmd, args[0])
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write stored events to a JSON or CSV file",
	Run: func(cmd *cobra.Command, args []string) {
		runExport(cmd)
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Detect local LLM runtimes (Ollama, LM Studio)",
	Run: func(cmd *cobra.Command, args []string) {
		runProbe(cmd)
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete stored events older than the retention window",
	Run: func(cmd *cobra.Command, args []string) {
		runPrune(cmd)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and persist the collector configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active configuration",
	Run: func(cmd *cobra.Command, args []string) {
		runConfigShow()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the active configuration to the config file",
	Run: func(cmd *cobra.Command, args []string) {
		runConfigInit()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show host and storage information",
	Run: func(cmd *cobra.Command, args []string) {
		runStatus()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Hermes Collector v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/hermes/collector.yaml)")

	collectCmd.Flags().String("start", "", "only events at or after this RFC 3339 time")
	collectCmd.Flags().String("end", "", "only events at or before this RFC 3339 time")
	collectCmd.Flags().Int("max", 0, "maximum events to collect (default from config)")
	collectCmd.Flags().StringSlice("channels", nil, "Windows event log channels to read")
	collectCmd.Flags().Bool("json", false, "print collected events as JSON")

	crashImportCmd.Flags().Int("limit", 50, "maximum crash reports to import")
	crashListCmd.Flags().Int("limit", 50, "maximum crash records to list")
	crashesCmd.AddCommand(crashImportCmd)
	crashesCmd.AddCommand(crashListCmd)

	eventsCmd.Flags().Int("limit", 200, "maximum events to list")

	correlateCmd.Flags().Int("window", 15, "correlation window in minutes (1-180)")
	correlateCmd.Flags().Int("limit", 200, "maximum correlated events (1-2000)")

	exportCmd.Flags().String("format", "json", "export format: json or csv")
	exportCmd.Flags().String("output", "hermes-events", "output filename")
	exportCmd.Flags().Int("limit", 2000, "maximum events to export")

	probeCmd.Flags().Bool("lan", false, "also sweep private LAN neighbors")
	probeCmd.Flags().Int("max-hosts", 256, "maximum LAN hosts to probe")

	pruneCmd.Flags().Int("days", 0, "retention in days (default from config)")

	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(crashesCmd)
	rootCmd.AddCommand(sampleCrashCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(correlateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(pruneCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfigAndLogging() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.Validate()

	var out io.Writer = os.Stderr
	if dw, err := logging.NewDailyWriter(filepath.Join(cfg.DataDir, "logs"), cfg.RetentionDays); err == nil {
		out = io.MultiWriter(os.Stderr, dw)
	}
	logging.Init(cfg.LogFormat, cfg.LogLevel, out)
}

func openStore() *store.Store {
	s, err := store.Open(filepath.Join(cfg.DataDir, "events.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	return s
}

func runCollect(cmd *cobra.Command) {
	opts := collectors.DefaultOptions()
	opts.MaxEvents = cfg.MaxEventsPerSync
	if v, _ := cmd.Flags().GetInt("max"); v > 0 {
		opts.MaxEvents = v
	}
	if v, _ := cmd.Flags().GetString("start"); v != "" {
		t := parseTimeArg(v, "--start")
		opts.Start = &t
	}
	if v, _ := cmd.Flags().GetString("end"); v != "" {
		t := parseTimeArg(v, "--end")
		opts.End = &t
	}
	if v, _ := cmd.Flags().GetStringSlice("channels"); len(v) > 0 {
		opts.Channels = v
	} else {
		opts.Channels = cfg.WindowsChannels
	}

	result := collectors.New().Collect(opts)

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "error: %s\n", e)
	}

	if len(result.Events) > 0 {
		s := openStore()
		defer s.Close()
		if err := s.SaveEvents(result.Events); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to store events: %v\n", err)
			os.Exit(1)
		}
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		printJSON(result.Events)
	} else {
		fmt.Printf("Collected %d events (%d warnings, %d errors)\n",
			len(result.Events), len(result.Warnings), len(result.Errors))
	}

	if len(result.Errors) > 0 && len(result.Events) == 0 {
		os.Exit(1)
	}
}

func runCrashImport(cmd *cobra.Command) {
	limit, _ := cmd.Flags().GetInt("limit")
	crashes := collectors.New().ImportCrashes(limit)

	if len(crashes) > 0 {
		s := openStore()
		defer s.Close()
		if err := s.SaveCrashes(crashes); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to store crashes: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("Imported %d crash reports\n", len(crashes))
}

func runCrashList(cmd *cobra.Command) {
	limit, _ := cmd.Flags().GetInt("limit")
	s := openStore()
	defer s.Close()

	crashes, err := s.Crashes(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read crashes: %v\n", err)
		os.Exit(1)
	}
	printJSON(crashes)
}

func runSampleCrash() {
	crash := collectors.SampleCrash(types.DetectOS())

	s := openStore()
	defer s.Close()
	if err := s.SaveCrashes([]types.CrashRecord{crash}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to store sample crash: %v\n", err)
		os.Exit(1)
	}
	printJSON(crash)
}

func runEvents(cmd *cobra.Command) {
	limit, _ := cmd.Flags().GetInt("limit")
	limit = clampInt(limit, 1, 2000)

	s := openStore()
	defer s.Close()

	events, err := s.Events(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read events: %v\n", err)
		os.Exit(1)
	}
	printJSON(events)
}

func runCorrelate(cmd *cobra.Command, crashID string) {
	window, _ := cmd.Flags().GetInt("window")
	limit, _ := cmd.Flags().GetInt("limit")
	window = clampInt(window, 1, 180)
	limit = clampInt(limit, 1, 2000)

	s := openStore()
	defer s.Close()

	events, err := s.CrashNeighbors(crashID, window, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Correlation failed: %v\n", err)
		os.Exit(1)
	}
	printJSON(events)
}

func runExport(cmd *cobra.Command) {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	limit, _ := cmd.Flags().GetInt("limit")
	limit = clampInt(limit, 1, 10000)

	s := openStore()
	defer s.Close()

	events, err := s.Events(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read events: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.ExportDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create export directory: %v\n", err)
		os.Exit(1)
	}
	path, err := export.Events(cfg.ExportDir, format, output, events)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported %d events to %s\n", len(events), path)
}

func runProbe(cmd *cobra.Command) {
	candidates := probe.DetectLocal()
	if lan, _ := cmd.Flags().GetBool("lan"); lan {
		maxHosts, _ := cmd.Flags().GetInt("max-hosts")
		candidates = append(candidates, probe.ScanLAN(maxHosts)...)
	}
	if candidates == nil {
		candidates = []probe.Candidate{}
	}
	printJSON(candidates)
}

func runPrune(cmd *cobra.Command) {
	days, _ := cmd.Flags().GetInt("days")
	if days <= 0 {
		days = cfg.RetentionDays
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)

	s := openStore()
	defer s.Close()

	deleted, err := s.PruneEventsBefore(cutoff)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Prune failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Deleted %d events older than %s\n", deleted, cutoff)
}

func runConfigShow() {
	fmt.Printf("Data dir: %s\n", cfg.DataDir)
	fmt.Printf("Export dir: %s\n", cfg.ExportDir)
	fmt.Printf("Retention days: %d\n", cfg.RetentionDays)
	fmt.Printf("Max events per sync: %d\n", cfg.MaxEventsPerSync)
	fmt.Printf("Windows channels: %s\n", strings.Join(cfg.WindowsChannels, ", "))
	fmt.Printf("Log format: %s\n", cfg.LogFormat)
	fmt.Printf("Log level: %s\n", cfg.LogLevel)
}

func runConfigInit() {
	var err error
	if cfgFile != "" {
		err = config.SaveTo(cfg, cfgFile)
	} else {
		err = config.Save(cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
		os.Exit(1)
	}
	if cfgFile != "" {
		fmt.Printf("Wrote configuration to %s\n", cfgFile)
	} else {
		fmt.Println("Wrote configuration to the default config file")
	}
}

func runStatus() {
	info := hostinfo.Collect()
	fmt.Printf("Hermes Collector v%s\n", version)
	fmt.Printf("Host: %s\n", info.Hostname)
	fmt.Printf("OS: %s (%s, %s)\n", info.OS, info.OSVersion, info.Architecture)
	fmt.Printf("Data dir: %s\n", cfg.DataDir)
	fmt.Printf("Export dir: %s\n", cfg.ExportDir)
	fmt.Printf("Retention: %d days\n", cfg.RetentionDays)
}

func parseTimeArg(value, flag string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid %s time %q: use RFC 3339, e.g. 2026-03-01T10:00:00Z\n", flag, value)
		os.Exit(1)
	}
	return t
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}
