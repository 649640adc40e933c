// Package app holds the command handlers shared by the one-shot CLI
// commands and the interactive shell. Each handler performs at most one
// store operation; the view re-renders through the store subscription.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chmdznr/oss-file-organizer/internal/category"
	"github.com/chmdznr/oss-file-organizer/internal/export"
	"github.com/chmdznr/oss-file-organizer/internal/interact"
	"github.com/chmdznr/oss-file-organizer/internal/preview"
	"github.com/chmdznr/oss-file-organizer/internal/source"
	"github.com/chmdznr/oss-file-organizer/internal/store"
	"github.com/chmdznr/oss-file-organizer/internal/view"
	"github.com/chmdznr/oss-file-organizer/pkg/models"
	"github.com/chmdznr/oss-file-organizer/pkg/utils"
)

const (
	msgConfirmDelete   = "Delete this file metadata?"
	msgConfirmClear    = "Clear all saved files (this only removes metadata, thumbnails saved for images too)?"
	msgInvalidCategory = "Invalid category"
)

// Config holds the collaborators of an App
type Config struct {
	Store      *store.Store
	Interactor interact.Interactor
	Previewer  *preview.Previewer
	Renderer   *view.Renderer
	Out        io.Writer
	Options    view.Options
	Sources    source.Options
}

// App wires the store to the view and the user
type App struct {
	store     *store.Store
	ui        interact.Interactor
	previewer *preview.Previewer
	renderer  *view.Renderer
	out       io.Writer
	sources   source.Options

	mu   sync.Mutex
	opts view.Options

	unsubscribe func()
}

// New creates an App and subscribes its renderer to store changes
func New(config Config) *App {
	a := &App{
		store:     config.Store,
		ui:        config.Interactor,
		previewer: config.Previewer,
		renderer:  config.Renderer,
		out:       config.Out,
		sources:   config.Sources,
		opts:      config.Options,
	}
	if a.opts.Sort == "" {
		a.opts.Sort = view.SortNewest
	}
	if a.opts.Category == "" {
		a.opts.Category = view.FilterAll
	}
	a.unsubscribe = a.store.Subscribe(a.Render)
	return a
}

// Close detaches the App from the store
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

// Options returns the current view settings
func (a *App) Options() view.Options {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.opts
}

// Render redraws the view from the current records
func (a *App) Render() {
	if a.renderer == nil {
		return
	}
	a.renderer.Render(a.store.Records(), a.Options())
}

// Add stores files and reports how many were added and how long reading
// them took
func (a *App) Add(ctx context.Context, files []source.File) error {
	if len(files) == 0 {
		a.ui.Notify("No files to add")
		return nil
	}
	start := time.Now()
	added, err := a.store.AddFiles(ctx, files)
	if err != nil {
		return err
	}
	a.ui.Notify(fmt.Sprintf("Added %d file(s) in %s", len(added), utils.FormatDuration(time.Since(start))))
	return nil
}

// AddPaths adds files found at paths
func (a *App) AddPaths(ctx context.Context, paths []string) error {
	files, err := source.FromPaths(paths, a.sources)
	if err != nil {
		return err
	}
	return a.Add(ctx, files)
}

// Delete removes a record after confirmation; declining is a no-op
func (a *App) Delete(ctx context.Context, ref string) error {
	rec, err := a.store.Resolve(ref)
	if err != nil {
		return err
	}
	if !a.ui.Confirm(msgConfirmDelete) {
		slog.Debug("delete declined", "id", rec.ID)
		return nil
	}
	return a.store.DeleteFile(ctx, rec.ID)
}

// Move changes the category of a record. An empty target asks for one,
// defaulting to the current category.
func (a *App) Move(ctx context.Context, ref, target string) error {
	rec, err := a.store.Resolve(ref)
	if err != nil {
		return err
	}

	if strings.TrimSpace(target) == "" {
		prompt := fmt.Sprintf("Move '%s' to category (%s):", rec.Name, category.Names())
		answer, ok := a.ui.PromptText(prompt, string(rec.Category))
		if !ok {
			return nil
		}
		target = answer
	}
	target = strings.ToLower(strings.TrimSpace(target))
	if target == "" {
		return nil
	}

	err = a.store.MoveFile(ctx, rec.ID, target)
	if errors.Is(err, store.ErrInvalidCategory) {
		a.ui.Notify(msgInvalidCategory)
		return nil
	}
	return err
}

// Preview shows one record
func (a *App) Preview(ref string) error {
	rec, err := a.store.Resolve(ref)
	if err != nil {
		return err
	}
	_, err = a.previewer.Show(rec)
	return err
}

// Clear removes every record after confirmation
func (a *App) Clear(ctx context.Context) error {
	if !a.ui.Confirm(msgConfirmClear) {
		return nil
	}
	return a.store.ClearAll(ctx)
}

// SetFilter sets the category filter ("all" or a category) and re-renders
func (a *App) SetFilter(filter string) error {
	parsed, err := view.ParseFilter(filter)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.opts.Category = parsed
	a.mu.Unlock()
	a.Render()
	return nil
}

// SetQuery sets the name search and re-renders
func (a *App) SetQuery(query string) {
	a.mu.Lock()
	a.opts.Query = query
	a.mu.Unlock()
	a.Render()
}

// SetSort sets the display order and re-renders
func (a *App) SetSort(s string) error {
	parsed, err := view.ParseSort(s)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.opts.Sort = parsed
	a.mu.Unlock()
	a.Render()
	return nil
}

// Stats prints counts and sizes per category over the unfiltered list
func (a *App) Stats(ctx context.Context) {
	stats := models.NewStats(a.store.Records())
	fmt.Fprintf(a.out, "Total Files: %d (Size: %s)\n", stats.TotalFiles, utils.FormatSize(stats.TotalSize))
	for _, c := range category.All() {
		fmt.Fprintf(a.out, "%-7s %d (Size: %s)\n",
			category.Label(c)+":", stats.Files[c], utils.FormatSize(stats.Sizes[c]))
	}
	fmt.Fprintf(a.out, "Thumbnails: %d\n", stats.Thumbnails)
	if saved, ok := a.store.LastSaved(ctx); ok {
		fmt.Fprintf(a.out, "Last saved: %s\n", saved.Local().Format("2006-01-02 15:04:05"))
	}
}

// Export writes the currently shown list as xlsx or csv
func (a *App) Export(w io.Writer, format string) error {
	list := view.Derive(a.store.Records(), a.Options())
	switch format {
	case "xlsx":
		return export.XLSX(w, list)
	case "csv", "":
		return export.CSV(w, list)
	default:
		return fmt.Errorf("unknown export format %q (want csv or xlsx)", format)
	}
}

// Gallery writes the currently shown list as an HTML page
func (a *App) Gallery(w io.Writer) error {
	return view.Gallery(w, a.store.Records(), a.Options())
}
