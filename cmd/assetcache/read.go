package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/discochess/assetcache/internal/stats"
)

var (
	readCat    bool
	readTiming bool
)

var readCmd = &cobra.Command{
	Use:   "read NAME...",
	Short: "Read asset files through the cache",
	Long: `Read one or more asset files through the cache and print their size
and whether they were served from the cache.

Names are relative to the source root and may be repeated to observe cache
hits within a single run.

Examples:
  assetcache read chitin.key
  assetcache read --timing data/AREA000A.bif data/AREA000A.bif
  assetcache read --cat override/spell.ids`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRead,
}

func init() {
	readCmd.Flags().BoolVar(&readCat, "cat", false, "write file contents to stdout")
	readCmd.Flags().BoolVar(&readTiming, "timing", false, "show read timing")
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	client, err := newClient(cmd, logger, stats.NewNoop())
	if err != nil {
		return err
	}
	defer client.Close()

	for _, name := range args {
		start := time.Now()
		f, err := client.Open(cmd.Context(), name)
		if err != nil {
			return fmt.Errorf("opening %s: %w", name, err)
		}

		if readCat {
			_, err = io.Copy(os.Stdout, f)
		} else {
			_, err = io.Copy(io.Discard, f)
		}
		elapsed := time.Since(start)
		cached := f.Cached()
		f.Close()
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
		if readCat {
			continue
		}

		status := "uncached"
		if cached {
			status = "cached"
		}
		fmt.Printf("%s: %d bytes (%s)", name, f.Size(), status)
		if readTiming {
			fmt.Printf(" [%v]", elapsed)
		}
		fmt.Println()
	}

	return nil
}
