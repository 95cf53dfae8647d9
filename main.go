package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// --- CLI Flags ---

var (
	outputDir       string
	clientRequestID string
	instance        string
	feedURL         string
	portListSpecs   []string
	verbose         bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ms-endpoints",
	Short: "Generate firewall allow-list files from the Microsoft 365 endpoint feed",
	Long: `ms-endpoints fetches the published Microsoft 365 endpoint feed and
rewrites it as flat text files, one per service area, address type and
category, suitable for direct use in firewall rule sets.

Port-based lists are only produced for signatures named via --port-lists,
e.g. --port-lists exchange:url:443 --port-lists sharepoint:ipv4:80-443.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = setupLogging(verbose)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "./lists", "Directory the list files are written to (created if missing)")
	rootCmd.Flags().StringVar(&clientRequestID, "client-request-id", "", "Client request id passed to the endpoint service (default: freshly generated)")
	rootCmd.Flags().StringVar(&instance, "instance", "worldwide", "Service instance: worldwide, usgovdod, usgovgcchigh, china or germany")
	rootCmd.Flags().StringVar(&feedURL, "feed-url", "", "Explicit feed URL, overrides --instance")
	rootCmd.Flags().StringArrayVar(&portListSpecs, "port-lists", nil, "Port list filter servicearea:addrtype:port[-port...], repeatable")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging tees console output with a rotating log file, so scheduled
// runs keep a history without growing unbounded.
func setupLogging(verbose bool) *zap.Logger {
	_ = os.MkdirAll("logs", 0755)

	rotating := &lumberjack.Logger{
		Filename:   filepath.Join("logs", "ms-endpoints.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	fileCfg := zap.NewProductionEncoderConfig()
	fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(rotating), level),
	)
	return zap.New(core)
}

func run(cmd *cobra.Command, args []string) error {
	filters, err := parsePortFilters(portListSpecs)
	if err != nil {
		return err
	}

	feed := feedURL
	if feed == "" {
		feed, err = instanceFeedURL(instance)
		if err != nil {
			return err
		}
	}

	reqID := clientRequestID
	if reqID == "" {
		reqID = uuid.NewString()
	}

	logger.Info("fetching endpoint feed",
		zap.String("url", feed),
		zap.String("clientRequestId", reqID))

	records, err := fetchEndpoints(feed, reqID)
	if err != nil {
		return err
	}
	logger.Info("feed fetched", zap.Int("records", len(records)))

	catGroups, portGroups := buildGroups(records)
	portGroups = filterPortGroups(portGroups, filters)
	logger.Debug("classification complete",
		zap.Int("categoryGroups", len(catGroups)),
		zap.Int("portGroups", len(portGroups)))

	if err := cleanOutputDir(outputDir); err != nil {
		return fmt.Errorf("prepare output directory: %w", err)
	}

	written, err := writeGroups(outputDir, catGroups, categoryFileName, logger)
	if err != nil {
		return err
	}
	portWritten, err := writeGroups(outputDir, portGroups, portFileName, logger)
	if err != nil {
		return err
	}

	logger.Info("run complete",
		zap.Int("files", written+portWritten),
		zap.String("dir", outputDir))
	return nil
}

// instanceFeedURL maps a service instance name to its feed URL. The endpoint
// service runs one instance per sovereign cloud.
func instanceFeedURL(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "worldwide":
		return "https://endpoints.office.com/endpoints/worldwide", nil
	case "usgovdod":
		return "https://endpoints.office.com/endpoints/USGovDoD", nil
	case "usgovgcchigh":
		return "https://endpoints.office.com/endpoints/USGovGCCHigh", nil
	case "china":
		return "https://endpoints.office.com/endpoints/China", nil
	case "germany":
		return "https://endpoints.office.com/endpoints/Germany", nil
	default:
		return "", fmt.Errorf("unknown service instance %q", name)
	}
}
