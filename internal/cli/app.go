// Package cli implements the workouts command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"workout-planner/internal/planner"
	"workout-planner/internal/service"
	"workout-planner/internal/store"
)

// Version is set at build time
var Version = "dev"

// ErrUsage is returned for malformed command lines
var ErrUsage = errors.New("usage error")

// Deps are the collaborators the commands run against
type Deps struct {
	Store    *store.Store
	Query    *service.QueryService
	Catalog  *service.CatalogService
	Planner  *planner.Generator
	PageSize int
	Out      io.Writer
	Logger   *zap.Logger
	Now      func() time.Time
}

// App dispatches commands
type App struct {
	store    *store.Store
	query    *service.QueryService
	catalog  *service.CatalogService
	planner  *planner.Generator
	pageSize int
	out      io.Writer
	logger   *zap.Logger
	now      func() time.Time
}

type command struct {
	usage string
	help  string
	run   func(a *App, ctx context.Context, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"add":           {"add <url> [flags]", "Add a video to the library", (*App).cmdAdd},
		"edit":          {"edit <video-id> [flags]", "Edit a library video", (*App).cmdEdit},
		"rm":            {"rm <video-id>", "Remove a video and its scheduled workouts", (*App).cmdRemove},
		"list":          {"list [flags]", "List and filter the library", (*App).cmdList},
		"schedule":      {"schedule <video-id> <date>", "Schedule a video on a date", (*App).cmdSchedule},
		"done":          {"done <entry-id>", "Toggle a scheduled workout's completion", (*App).cmdDone},
		"unschedule":    {"unschedule <entry-id>", "Remove a scheduled workout", (*App).cmdUnschedule},
		"week":          {"week [--date YYYY-MM-DD]", "Show the week's plan", (*App).cmdWeek},
		"plan":          {"plan [flags]", "Randomly plan workouts for a set of days", (*App).cmdPlan},
		"settings":      {"settings [--name --goal --theme]", "Show or change settings", (*App).cmdSettings},
		"export":        {"export [--out file]", "Write a backup file", (*App).cmdExport},
		"import":        {"import <file>", "Replace all data with a backup file", (*App).cmdImport},
		"stats":         {"stats [--month YYYY-MM]", "Show the dashboard", (*App).cmdStats},
		"backup-status": {"backup-status", "Check whether a backup is due", (*App).cmdBackupStatus},
		"prune":         {"prune", "Delete scheduled workouts whose video is gone", (*App).cmdPrune},
		"version":       {"version", "Print the version", (*App).cmdVersion},
	}
}

// New creates an App
func New(d Deps) *App {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.PageSize <= 0 {
		d.PageSize = service.DefaultPageSize
	}
	if d.Planner == nil {
		d.Planner = planner.NewGenerator(nil, d.Logger)
	}
	return &App{
		store:    d.Store,
		query:    d.Query,
		catalog:  d.Catalog,
		planner:  d.Planner,
		pageSize: d.PageSize,
		out:      d.Out,
		logger:   d.Logger,
		now:      d.Now,
	}
}

// Run executes the command named by args[0] once the store is hydrated
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		a.printUsage()
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		a.printUsage()
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	if err := a.store.WaitReady(ctx); err != nil {
		return fmt.Errorf("waiting for saved data: %w", err)
	}
	return cmd.run(a, ctx, args[1:])
}

func (a *App) printUsage() {
	st := a.styles()
	fmt.Fprintln(a.out, st.title.Render("workouts")+" "+st.muted.Render("plan YouTube workouts"))
	fmt.Fprintln(a.out)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(a.out, "  %-36s %s\n", st.tag.Render(commands[name].usage), commands[name].help)
	}
}

// styles follow the user's theme setting
func (a *App) styles() styles {
	if a.store == nil || !a.store.Hydrated() {
		return newStyles(store.DefaultTheme)
	}
	return newStyles(a.store.Settings().Theme)
}

func (a *App) flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.out)
	fs.SortFlags = false
	return fs
}

// parseArgs parses flags and checks the positional argument count
func parseArgs(fs *pflag.FlagSet, args []string, positional int, usage string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() != positional {
		return nil, fmt.Errorf("%w: workouts %s", ErrUsage, usage)
	}
	return fs.Args(), nil
}

// parseDate accepts YYYY-MM-DD, "today" and "tomorrow"
func (a *App) parseDate(s string) (string, error) {
	switch strings.ToLower(s) {
	case "today":
		return a.now().Format(planner.DateLayout), nil
	case "tomorrow":
		return a.now().AddDate(0, 0, 1).Format(planner.DateLayout), nil
	}
	t, err := time.Parse(planner.DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: invalid date %q, want YYYY-MM-DD", ErrUsage, s)
	}
	return t.Format(planner.DateLayout), nil
}

// resolveVideo finds a video by id or unique id prefix
func (a *App) resolveVideo(ref string) (store.Video, error) {
	var found []store.Video
	for _, v := range a.store.Videos() {
		if v.ID == ref {
			return v, nil
		}
		if strings.HasPrefix(v.ID, ref) {
			found = append(found, v)
		}
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return store.Video{}, fmt.Errorf("%w: %s", service.ErrVideoNotFound, ref)
	default:
		return store.Video{}, fmt.Errorf("video id %q is ambiguous", ref)
	}
}

// resolveEntry finds a schedule entry by id or unique id prefix
func (a *App) resolveEntry(ref string) (store.ScheduleEntry, error) {
	var found []store.ScheduleEntry
	for _, e := range a.store.Schedule() {
		if e.ID == ref {
			return e, nil
		}
		if strings.HasPrefix(e.ID, ref) {
			found = append(found, e)
		}
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return store.ScheduleEntry{}, fmt.Errorf("scheduled workout not found: %s", ref)
	default:
		return store.ScheduleEntry{}, fmt.Errorf("scheduled workout id %q is ambiguous", ref)
	}
}

// shortID trims ids for display
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (a *App) cmdVersion(_ context.Context, _ []string) error {
	fmt.Fprintf(a.out, "workouts %s (schema v%d)\n", Version, store.CurrentVersion)
	return nil
}
