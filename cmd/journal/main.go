package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pborman/getopt"
	"github.com/samvad-hq/samvad-httpkit/internal/config"
	"github.com/samvad-hq/samvad-httpkit/internal/journal"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "journal read failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		limit  = 20
		asJSON bool
	)
	flagSet := getopt.New()
	flagSet.IntVarLong(&limit, "limit", 'n', "maximum number of records to list")
	flagSet.BoolVarLong(&asJSON, "json", 'j', "print records as JSON lines")
	flagSet.Parse(os.Args)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := journal.NewStore(cfg.JournalType, cfg.BBoltPath, journal.Options{
		RecordTTL:       cfg.JournalTTL,
		CleanupInterval: cfg.JournalCleanupInterval,
	})
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()

	records, err := store.Recent(limit)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stdout, "journal is empty")
		return nil
	}

	for _, d := range records {
		if asJSON {
			line, err := json.Marshal(d)
			if err != nil {
				return fmt.Errorf("encode record: %w", err)
			}
			fmt.Fprintf(os.Stdout, "%s\n", line)
			continue
		}
		outcome := strconv.Itoa(d.Status)
		if d.Error != "" {
			outcome = "error: " + d.Error
		}
		fmt.Fprintf(os.Stdout, "%s  %-6s %s  %s  %dms\n",
			d.StartedAt.Format(time.RFC3339), d.Method, d.URL, outcome, d.ElapsedMS)
	}
	return nil
}
