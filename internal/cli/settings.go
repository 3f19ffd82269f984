package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"workout-planner/internal/store"
)

func (a *App) cmdSettings(_ context.Context, args []string) error {
	fs := a.flagSet("settings")
	name := fs.String("name", "", "display name")
	goal := fs.Int("goal", 0, "monthly workout goal")
	theme := fs.String("theme", "", "theme: "+strings.Join(store.Themes, ", "))
	if _, err := parseArgs(fs, args, 0, commands["settings"].usage); err != nil {
		return err
	}

	var patch store.SettingsPatch
	if fs.Changed("name") {
		patch.Name = name
	}
	if fs.Changed("goal") {
		if *goal <= 0 {
			return fmt.Errorf("%w: --goal must be positive", ErrUsage)
		}
		patch.MonthlyGoal = goal
	}
	if fs.Changed("theme") {
		if !store.ValidTheme(*theme) {
			return fmt.Errorf("%w: unknown theme %q (want one of %s)", ErrUsage, *theme, strings.Join(store.Themes, ", "))
		}
		patch.Theme = theme
	}
	if err := a.store.UpdateSettings(patch); err != nil {
		return err
	}

	s := a.store.Settings()
	st := a.styles()
	fmt.Fprintln(a.out, st.metric("Name", s.Name))
	fmt.Fprintln(a.out, st.metric("Monthly goal", fmt.Sprintf("%d workouts", s.MonthlyGoal)))
	fmt.Fprintln(a.out, st.metric("Theme", st.tag.Render(s.Theme)))
	last := "never"
	if t, err := time.Parse(time.RFC3339Nano, s.LastExportedAt); err == nil {
		last = humanize.RelTime(t, a.now(), "ago", "from now")
	}
	fmt.Fprintln(a.out, st.metric("Last export", last))
	return nil
}

func (a *App) cmdExport(_ context.Context, args []string) error {
	fs := a.flagSet("export")
	out := fs.StringP("out", "o", "", `output file, "-" for stdout (default workout-planner-backup-<date>.json)`)
	if _, err := parseArgs(fs, args, 0, commands["export"].usage); err != nil {
		return err
	}

	b, err := a.store.Export()
	if err != nil {
		return err
	}

	if *out == "-" {
		if err := store.WriteBackup(a.out, b); err != nil {
			return err
		}
		return a.store.MarkExported(b)
	}
	path := *out
	if path == "" {
		path = store.BackupFileName(a.now())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating backup file: %w", err)
	}
	if err := store.WriteBackup(f, b); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing backup file: %w", err)
	}
	if err := a.store.MarkExported(b); err != nil {
		return err
	}

	st := a.styles()
	fmt.Fprintf(a.out, "%s %d videos and %d scheduled workouts to %s\n",
		st.success.Render("Exported"), len(b.Videos), len(b.Schedule), path)
	return nil
}

func (a *App) cmdImport(_ context.Context, args []string) error {
	fs := a.flagSet("import")
	pos, err := parseArgs(fs, args, 1, commands["import"].usage)
	if err != nil {
		return err
	}

	f, err := os.Open(pos[0])
	if err != nil {
		return fmt.Errorf("opening backup file: %w", err)
	}
	defer f.Close()

	b, err := store.ReadBackup(f)
	if err != nil {
		return err
	}
	if err := a.store.ImportBackup(b); err != nil {
		return err
	}

	st := a.styles()
	fmt.Fprintf(a.out, "%s %d videos and %d scheduled workouts\n",
		st.success.Render("Imported"), len(b.Videos), len(b.Schedule))
	if n := len(a.store.Orphans()); n > 0 {
		fmt.Fprintln(a.out, st.warning.Render(fmt.Sprintf("%d scheduled workout(s) reference missing videos; run `workouts prune` to remove them", n)))
	}
	return nil
}

func (a *App) cmdStats(_ context.Context, args []string) error {
	fs := a.flagSet("stats")
	month := fs.String("month", "", "month to show (YYYY-MM), default current")
	if _, err := parseArgs(fs, args, 0, commands["stats"].usage); err != nil {
		return err
	}
	view := a.now()
	if *month != "" {
		t, err := time.ParseInLocation("2006-01", *month, view.Location())
		if err != nil {
			return fmt.Errorf("%w: invalid month %q, want YYYY-MM", ErrUsage, *month)
		}
		view = t
	}

	d := a.query.Dashboard(view)
	st := a.styles()

	fmt.Fprintln(a.out, st.header.Render(fmt.Sprintf("Welcome back, %s!", d.Name)))
	if d.GoalReached() {
		fmt.Fprintln(a.out, st.success.Render("Goal reached! You're crushing it!"))
	} else {
		fmt.Fprintf(a.out, "You're %d workouts away from your monthly goal!\n", d.GoalRemaining)
	}
	fmt.Fprintln(a.out)

	fmt.Fprintln(a.out, st.title.Render(d.Month.Format("January 2006")))
	fmt.Fprintln(a.out, st.metric("Completed", fmt.Sprintf("%d / %d", d.CompletedInMonth, d.MonthlyGoal)))
	fmt.Fprintln(a.out, st.metric("Progress", st.progressBar(d.GoalProgress, 20)+fmt.Sprintf(" %.0f%%", d.GoalProgress*100)))
	fmt.Fprintln(a.out, st.metric("Total completed", humanize.Comma(int64(d.TotalCompleted))))
	fmt.Fprintln(a.out, st.metric("Total time", formatMinutes(d.TotalMinutes)))
	fmt.Fprintln(a.out)

	maxWeek := 1
	for _, w := range d.Weeks {
		maxWeek = max(maxWeek, w.Completed)
	}
	rows := make([]string, 0, len(d.Weeks))
	for _, w := range d.Weeks {
		rows = append(rows, fmt.Sprintf("%-3s %s %d", w.Label,
			st.progressBar(float64(w.Completed)/float64(maxWeek), 12), w.Completed))
	}
	fmt.Fprintln(a.out, st.card.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))

	if len(d.Today.Entries) > 0 {
		fmt.Fprintln(a.out, st.title.Render("Today"))
		for _, e := range d.Today.Entries {
			check := "[ ]"
			if e.Entry.IsCompleted {
				check = st.success.Render("[x]")
			}
			fmt.Fprintf(a.out, "  %s %s  %s\n", check, shortID(e.Entry.ID), e.Video.Title)
		}
	}
	return nil
}

func (a *App) cmdBackupStatus(_ context.Context, args []string) error {
	fs := a.flagSet("backup-status")
	if _, err := parseArgs(fs, args, 0, commands["backup-status"].usage); err != nil {
		return err
	}

	status := a.query.BackupStatus()
	st := a.styles()
	title := st.success.Render(status.Title)
	if status.Recommended {
		title = st.warning.Render(status.Title)
	}
	fmt.Fprintln(a.out, title)
	fmt.Fprintln(a.out, status.Message)
	if status.Recommended {
		fmt.Fprintln(a.out, st.muted.Render("Run `workouts export` to back up now."))
	}
	return nil
}

// formatMinutes renders a minute total as "3h 05m"
func formatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", m/60, m%60)
}
