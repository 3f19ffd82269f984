package cli

import (
	"context"
	"fmt"
	"time"

	"workout-planner/internal/planner"
)

func (a *App) cmdSchedule(_ context.Context, args []string) error {
	fs := a.flagSet("schedule")
	pos, err := parseArgs(fs, args, 2, commands["schedule"].usage)
	if err != nil {
		return err
	}

	v, err := a.resolveVideo(pos[0])
	if err != nil {
		return err
	}
	date, err := a.parseDate(pos[1])
	if err != nil {
		return err
	}
	if err := a.store.ScheduleWorkout(date, v.ID); err != nil {
		return err
	}

	st := a.styles()
	fmt.Fprintf(a.out, "%s %s on %s\n", st.success.Render("Scheduled"), st.value.Render(v.Title), date)
	return nil
}

func (a *App) cmdDone(_ context.Context, args []string) error {
	fs := a.flagSet("done")
	pos, err := parseArgs(fs, args, 1, commands["done"].usage)
	if err != nil {
		return err
	}

	e, err := a.resolveEntry(pos[0])
	if err != nil {
		return err
	}
	if err := a.store.ToggleComplete(e.ID); err != nil {
		return err
	}

	st := a.styles()
	if e.IsCompleted {
		fmt.Fprintf(a.out, "%s workout on %s\n", st.warning.Render("Reopened"), e.Date)
	} else {
		fmt.Fprintf(a.out, "%s workout on %s\n", st.success.Render("Completed"), e.Date)
	}
	return nil
}

func (a *App) cmdUnschedule(_ context.Context, args []string) error {
	fs := a.flagSet("unschedule")
	pos, err := parseArgs(fs, args, 1, commands["unschedule"].usage)
	if err != nil {
		return err
	}

	e, err := a.resolveEntry(pos[0])
	if err != nil {
		return err
	}
	if err := a.store.RemoveFromSchedule(e.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s workout on %s\n", a.styles().success.Render("Removed"), e.Date)
	return nil
}

func (a *App) cmdWeek(_ context.Context, args []string) error {
	fs := a.flagSet("week")
	day := fs.String("date", "today", "any day of the week to show")
	if _, err := parseArgs(fs, args, 0, commands["week"].usage); err != nil {
		return err
	}
	date, err := a.parseDate(*day)
	if err != nil {
		return err
	}
	t, _ := time.Parse(planner.DateLayout, date)

	st := a.styles()
	today := a.now().Format(planner.DateLayout)
	week := a.query.Week(t)
	fmt.Fprintln(a.out, st.header.Render(fmt.Sprintf("Week of %s", week[0].Date)))
	for _, d := range week {
		dt, _ := time.Parse(planner.DateLayout, d.Date)
		heading := fmt.Sprintf("%s %s", dt.Format("Mon"), d.Date)
		if d.Date == today {
			heading = st.title.Render(heading + " (today)")
		}
		fmt.Fprintln(a.out, heading)
		if len(d.Entries) == 0 {
			fmt.Fprintln(a.out, st.muted.Render("  rest day"))
			continue
		}
		for _, e := range d.Entries {
			check := "[ ]"
			if e.Entry.IsCompleted {
				check = st.success.Render("[x]")
			}
			fmt.Fprintf(a.out, "  %s %s  %s %s\n", check, shortID(e.Entry.ID), e.Video.Title,
				st.muted.Render(fmt.Sprintf("(%d min)", e.Video.Duration)))
		}
	}
	return nil
}

func (a *App) cmdPlan(_ context.Context, args []string) error {
	fs := a.flagSet("plan")
	dates := fs.StringSlice("days", nil, "dates to plan (YYYY-MM-DD); defaults to the current week")
	week := fs.String("week", "", "plan every day of the week containing this date")
	types := fs.StringSlice("type", nil, "allowed workout types")
	body := fs.StringSlice("body", nil, "allowed body parts")
	equipment := fs.StringSlice("equipment", nil, "allowed equipment")
	minDur := fs.Int("min", 0, "minimum duration in minutes")
	maxDur := fs.Int("max", 0, "maximum duration in minutes")
	confirm := fs.BoolP("yes", "y", false, "schedule the plan instead of previewing it")
	if _, err := parseArgs(fs, args, 0, commands["plan"].usage); err != nil {
		return err
	}

	var days []string
	switch {
	case len(*dates) > 0:
		for _, d := range *dates {
			date, err := a.parseDate(d)
			if err != nil {
				return err
			}
			days = append(days, date)
		}
	default:
		anchor := a.now().Format(planner.DateLayout)
		if *week != "" {
			var err error
			if anchor, err = a.parseDate(*week); err != nil {
				return err
			}
		}
		t, _ := time.Parse(planner.DateLayout, anchor)
		days = planner.WeekDays(t)
	}

	configs := planner.Days(days...)
	for i := range configs {
		configs[i].Types = *types
		configs[i].BodyParts = *body
		configs[i].Equipment = *equipment
		if fs.Changed("min") {
			configs[i].MinDuration = minDur
		}
		if fs.Changed("max") {
			configs[i].MaxDuration = maxDur
		}
	}

	plan := a.planner.Generate(a.store.Videos(), configs)

	st := a.styles()
	for _, pick := range plan {
		if pick.Video == nil {
			fmt.Fprintf(a.out, "%s  %s\n", pick.Date, st.warning.Render("no matching video"))
			continue
		}
		fmt.Fprintf(a.out, "%s  %s %s\n", pick.Date, pick.Video.Title,
			st.muted.Render(fmt.Sprintf("(%d min)", pick.Video.Duration)))
	}

	if !*confirm {
		fmt.Fprintln(a.out, st.muted.Render("Preview only. Run again with --yes to schedule."))
		return nil
	}
	n, err := planner.Confirm(a.store, plan)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, st.success.Render(fmt.Sprintf("Scheduled %d workout(s)", n)))
	return nil
}

func (a *App) cmdPrune(_ context.Context, args []string) error {
	fs := a.flagSet("prune")
	if _, err := parseArgs(fs, args, 0, commands["prune"].usage); err != nil {
		return err
	}
	n, err := a.store.PruneOrphans()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %d orphaned workout(s)\n", a.styles().success.Render("Pruned"), n)
	return nil
}
