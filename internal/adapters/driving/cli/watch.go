package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbridge/kbridge/internal/adapters/driven/watcher"
	"github.com/kbridge/kbridge/internal/core/domain"
)

var watchDelete bool

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a drop folder and ingest files automatically",
	Long: `Watch a directory and upload every file that appears in it to the
knowledge base. Images go through the vision pipeline, everything else
through text extraction. Files already present at startup are ingested
first.

The directory can also be set via the watch.dir config key.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchDelete, "delete", false, "remove files after successful ingest")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	var dir string
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		dir = configStore.GetString("watch.dir")
	}
	if dir == "" {
		return errors.New("watch directory required: pass it as an argument or set watch.dir")
	}

	creds, err := domain.ResolveCredentials(nil, envSnapshot())
	if err != nil {
		return err
	}

	ports, err := buildPorts(creds)
	if err != nil {
		return err
	}
	defer closeAll(ports.Closers)

	deleteAfter := watchDelete || configStore.GetBool("watch.delete_after_ingest")

	w, err := watcher.New(ports.Document, watcher.Config{
		Dir:               dir,
		DeleteAfterIngest: deleteAfter,
	})
	if err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s\n", dir)
	err = w.Run(cmd.Context())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
