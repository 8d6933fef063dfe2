package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"resume-builder/internal/editor"
)

const closeTimeout = 30 * time.Second

type watchOptions struct {
	id       string
	title    string
	debounce time.Duration
	flush    bool
}

func (c *cli) watchCmd() *cobra.Command {
	var opts watchOptions
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Autosave a local resume JSON file on every write",
		Long: "Opens an editor session on the file. Every write to the file is an edit; edits are\n" +
			"debounced and saved through the API. The assigned resume id is printed once.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := c.user()
			if err != nil {
				return err
			}
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			content, err := readResumeFile(path)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			doc := editor.Document{ID: opts.id, OwnerID: userID, Title: opts.title, Content: content}
			return c.watch(ctx, path, doc, opts)
		},
	}
	cmd.Flags().StringVar(&opts.id, "id", "", "existing resume id; empty creates a new resume")
	cmd.Flags().StringVar(&opts.title, "title", "", "resume title")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", editor.DefaultDebounce, "quiet period before saving")
	cmd.Flags().BoolVar(&opts.flush, "flush-on-close", true, "save pending edits before exiting")
	return cmd
}

func (c *cli) watch(ctx context.Context, path string, doc editor.Document, opts watchOptions) error {
	deleted := make(chan struct{})
	var deletedOnce sync.Once

	session := editor.NewSession(doc, c.newClient(),
		editor.WithDebounce(opts.debounce),
		editor.WithFlushOnClose(opts.flush),
		editor.WithLogger(c.log),
		editor.OnIdentity(func(id string) {
			fmt.Fprintf(c.out, "resume id: %s\n", id)
		}),
		editor.OnSaved(func(res editor.SaveResult) {
			c.log.Info("saved", zap.String("resume_id", res.ID))
		}),
		editor.OnError(func(err error) {
			if errors.Is(err, editor.ErrResumeDeleted) {
				deletedOnce.Do(func() { close(deleted) })
				return
			}
			c.log.Warn("autosave failed", zap.Error(err))
		}),
	)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()
	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	if doc.ID == "" {
		// New résumés are created on the first debounce.
		_ = session.Edit(func(*editor.Document) {})
	}
	c.log.Info("watching", zap.String("file", path), zap.Duration("debounce", opts.debounce))

	closeSession := func() error {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		return session.Close(closeCtx)
	}

	for {
		select {
		case <-ctx.Done():
			return closeSession()
		case <-deleted:
			_ = closeSession()
			return fmt.Errorf("%s: %w", path, editor.ErrResumeDeleted)
		case ev, ok := <-watcher.Events:
			if !ok {
				return closeSession()
			}
			if filepath.Clean(ev.Name) != path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			content, err := readResumeFile(path)
			if err != nil {
				// Usually a write in progress; the next event carries the rest.
				c.log.Debug("skipping unreadable file", zap.Error(err))
				continue
			}
			if err := session.Edit(func(d *editor.Document) { d.Content = content }); err != nil {
				c.log.Warn("edit rejected", zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return closeSession()
			}
			c.log.Warn("watcher error", zap.Error(err))
		}
	}
}

func readResumeFile(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(data) == 0 || !json.Valid(data) {
		return nil, fmt.Errorf("%s does not contain valid JSON", path)
	}
	return json.RawMessage(data), nil
}
