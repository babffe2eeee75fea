package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tordrt/datascripter"
	"github.com/tordrt/datascripter/internal/config"
	"github.com/tordrt/datascripter/internal/prompt"
	"github.com/tordrt/datascripter/internal/status"
)

var (
	sqlServerURL     string
	dbURL            string
	mysqlURL         string
	sqlitePath       string
	profileName      string
	configPath       string
	tables           string
	schemaName       string
	targetSchema     string
	query            string
	interactive      bool
	outputFile       string
	outputDir        string
	allowMissingKeys bool
	quiet            bool
	timeout          time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "datascripter",
	Short: "Script table data as idempotent MERGE statements",
	Long: `Datascripter reads table data from SQL Server, PostgreSQL, MySQL, or SQLite and writes it as a
T-SQL MERGE script that inserts missing rows and updates existing ones, matched by primary key.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&sqlServerURL, "sqlserver-url", "", "SQL Server connection string (sqlserver://...)")
	rootCmd.Flags().StringVar(&dbURL, "db-url", "", "PostgreSQL connection string")
	rootCmd.Flags().StringVar(&mysqlURL, "mysql-url", "", "MySQL connection string")
	rootCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "SQLite database file path")
	rootCmd.Flags().StringVarP(&profileName, "profile", "p", "", "Connection profile name from the config file")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Profiles config file (default: <user config dir>/datascripter/profiles.yaml)")
	rootCmd.Flags().StringVarP(&tables, "tables", "t", "", "Tables to script (comma-separated, optionally schema-qualified)")
	rootCmd.Flags().StringVarP(&schemaName, "schema", "s", "", "Source schema (default: dbo, public, the MySQL database, or main)")
	rootCmd.Flags().StringVar(&targetSchema, "target-schema", "", "Schema written into the script (default: source schema)")
	rootCmd.Flags().StringVarP(&query, "query", "q", "", "SELECT statement to script instead of the whole table (single table only)")
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Prompt for the SELECT statement")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Output directory, one .sql file per table")
	rootCmd.Flags().BoolVar(&allowMissingKeys, "allow-missing-keys", false, "Script tables without usable primary key columns")
	rootCmd.Flags().BoolVar(&quiet, "quiet", false, "Do not print status updates")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Timeout for reading the data")
}

func run(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	databaseURL, profile, err := resolveConnection()
	if err != nil {
		return err
	}

	tableList := parseTableList(tables)
	if len(tableList) == 0 {
		return fmt.Errorf("--tables must name at least one table")
	}

	// Validate flag combinations
	if outputDir != "" && outputFile != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}
	if query != "" && interactive {
		return fmt.Errorf("cannot use both --query and --interactive flags")
	}
	if (query != "" || interactive) && len(tableList) > 1 {
		return fmt.Errorf("--query and --interactive require a single table")
	}

	opts := &datascripter.Options{
		Tables:           tableList,
		SchemaName:       schemaName,
		TargetSchema:     targetSchema,
		Query:            query,
		AllowMissingKeys: allowMissingKeys,
		Reporter:         status.Discard,
		Warnings:         os.Stderr,
	}
	if profile != nil {
		if opts.SchemaName == "" {
			opts.SchemaName = profile.Schema
		}
		if opts.TargetSchema == "" {
			opts.TargetSchema = profile.TargetSchema
		}
	}
	if !quiet {
		opts.Reporter = status.NewTerminalReporter(os.Stderr, "Scripting Data")
	}
	if interactive {
		if !prompt.IsTerminal(os.Stdin) {
			return fmt.Errorf("--interactive requires a terminal")
		}
		opts.QueryPrompt = func(defaultQuery string) (string, error) {
			return prompt.Query(os.Stdin, os.Stderr, "Scripting Data for "+tableList[0], defaultQuery)
		}
	}

	outOpts := &datascripter.OutputOptions{OutputDir: outputDir, Writer: os.Stdout}

	extracted, err := datascripter.FetchTables(ctx, databaseURL, opts)
	if errors.Is(err, prompt.ErrCancelled) {
		fmt.Fprintln(os.Stderr, "Query was cancelled")
		return nil
	}
	if err != nil {
		return err
	}

	if outputFile == "" {
		if err := datascripter.WriteScripts(extracted, opts, outOpts); err != nil {
			return fmt.Errorf("failed to write scripts: %w", err)
		}
		return nil
	}

	// Generate into memory so a failing table leaves no partial file behind
	var buf bytes.Buffer
	outOpts.Writer = &buf
	if err := datascripter.WriteScripts(extracted, opts, outOpts); err != nil {
		return fmt.Errorf("failed to write scripts: %w", err)
	}
	if err := os.WriteFile(outputFile, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	return nil
}

// resolveConnection picks the database URL from exactly one of the
// connection flags or a profile
func resolveConnection() (string, *config.Profile, error) {
	var urls []string
	if sqlServerURL != "" {
		urls = append(urls, sqlServerURL)
	}
	if dbURL != "" {
		urls = append(urls, dbURL)
	}
	if mysqlURL != "" {
		urls = append(urls, mysqlPrefix(mysqlURL))
	}
	if sqlitePath != "" {
		urls = append(urls, "sqlite://"+sqlitePath)
	}

	count := len(urls)
	if profileName != "" {
		count++
	}
	if count == 0 {
		return "", nil, fmt.Errorf("one of --sqlserver-url, --db-url, --mysql-url, --sqlite, or --profile must be specified")
	}
	if count > 1 {
		return "", nil, fmt.Errorf("only one of --sqlserver-url, --db-url, --mysql-url, --sqlite, or --profile can be specified")
	}

	if profileName == "" {
		return urls[0], nil, nil
	}

	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return "", nil, fmt.Errorf("failed to locate config file: %w", err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return "", nil, err
	}
	profile, err := cfg.Profile(profileName)
	if err != nil {
		return "", nil, err
	}
	return profile.URL, profile, nil
}

// mysqlPrefix accepts a MySQL DSN with or without the mysql:// scheme
func mysqlPrefix(dsn string) string {
	if strings.HasPrefix(dsn, "mysql://") {
		return dsn
	}
	return "mysql://" + dsn
}

func parseTableList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
