package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"workout-planner/internal/service"
	"workout-planner/internal/store"
)

func (a *App) cmdAdd(ctx context.Context, args []string) error {
	fs := a.flagSet("add")
	title := fs.String("title", "", "video title (fetched if empty)")
	channel := fs.String("channel", "", "channel name (fetched if empty)")
	duration := fs.Int("duration", 0, "duration in minutes (fetched if unset)")
	types := fs.StringSlice("type", nil, "workout types: "+strings.Join(store.WorkoutTypes, ", "))
	equipment := fs.StringSlice("equipment", nil, "equipment: "+strings.Join(store.EquipmentOptions, ", "))
	body := fs.StringSlice("body", nil, "body parts: "+strings.Join(store.BodyParts, ", "))
	pos, err := parseArgs(fs, args, 1, commands["add"].usage)
	if err != nil {
		return err
	}

	req := service.AddRequest{
		URL:         pos[0],
		Title:       *title,
		ChannelName: *channel,
		Types:       *types,
		Equipment:   *equipment,
		BodyPart:    *body,
	}
	if fs.Changed("duration") {
		req.Duration = duration
	}

	res, err := a.catalog.Add(ctx, req)
	if err != nil {
		return err
	}

	st := a.styles()
	if res.LookupError != "" {
		fmt.Fprintln(a.out, st.warning.Render(res.LookupError))
	}
	fmt.Fprintln(a.out, st.success.Render("Added ")+st.value.Render(res.Video.Title))
	a.printVideo(st, res.Video)
	return nil
}

func (a *App) cmdEdit(_ context.Context, args []string) error {
	fs := a.flagSet("edit")
	title := fs.String("title", "", "video title")
	channel := fs.String("channel", "", "channel name")
	duration := fs.Int("duration", 0, "duration in minutes")
	types := fs.StringSlice("type", nil, "workout types")
	equipment := fs.StringSlice("equipment", nil, "equipment")
	body := fs.StringSlice("body", nil, "body parts")
	pos, err := parseArgs(fs, args, 1, commands["edit"].usage)
	if err != nil {
		return err
	}

	v, err := a.resolveVideo(pos[0])
	if err != nil {
		return err
	}

	var req service.EditRequest
	if fs.Changed("title") {
		req.Title = title
	}
	if fs.Changed("channel") {
		req.ChannelName = channel
	}
	if fs.Changed("duration") {
		req.Duration = duration
	}
	if fs.Changed("type") {
		req.Types = *types
	}
	if fs.Changed("equipment") {
		req.Equipment = *equipment
	}
	if fs.Changed("body") {
		req.BodyPart = *body
	}

	updated, err := a.catalog.Edit(v.ID, req)
	if err != nil {
		return err
	}
	st := a.styles()
	fmt.Fprintln(a.out, st.success.Render("Updated ")+st.value.Render(updated.Title))
	a.printVideo(st, updated)
	return nil
}

func (a *App) cmdRemove(_ context.Context, args []string) error {
	fs := a.flagSet("rm")
	pos, err := parseArgs(fs, args, 1, commands["rm"].usage)
	if err != nil {
		return err
	}

	v, err := a.resolveVideo(pos[0])
	if err != nil {
		return err
	}
	scheduled := 0
	for _, e := range a.store.Schedule() {
		if e.VideoID == v.ID {
			scheduled++
		}
	}
	if err := a.store.RemoveVideo(v.ID); err != nil {
		return err
	}

	st := a.styles()
	fmt.Fprintf(a.out, "%s %s", st.success.Render("Removed"), st.value.Render(v.Title))
	if scheduled > 0 {
		fmt.Fprint(a.out, st.muted.Render(fmt.Sprintf(" and %d scheduled workout(s)", scheduled)))
	}
	fmt.Fprintln(a.out)
	return nil
}

func (a *App) cmdList(ctx context.Context, args []string) error {
	fs := a.flagSet("list")
	var f service.LibraryFilter
	fs.StringVarP(&f.Search, "search", "s", "", "match title or channel")
	fs.StringVar(&f.Type, "type", "", "workout type")
	fs.StringVar(&f.BodyPart, "body", "", "body part")
	fs.StringVar(&f.Duration, "duration", "", "duration bucket: "+strings.Join(service.DurationBuckets, ", "))
	fs.StringVar(&f.Channel, "channel", "", "exact channel name")
	pages := fs.Int("pages", 1, "number of pages to show")
	all := fs.Bool("all", false, "show every match")
	channels := fs.Bool("channels", false, "list channel names instead")
	if _, err := parseArgs(fs, args, 0, commands["list"].usage); err != nil {
		return err
	}

	st := a.styles()
	if *channels {
		for _, c := range a.query.Channels() {
			fmt.Fprintln(a.out, c)
		}
		return nil
	}

	videos, err := a.query.Library(ctx, f)
	if err != nil {
		return err
	}
	if len(videos) == 0 {
		if f.Active() {
			fmt.Fprintln(a.out, st.muted.Render("No videos match these filters."))
		} else {
			fmt.Fprintln(a.out, st.muted.Render("Your library is empty. Add a video with `workouts add <url>`."))
		}
		return nil
	}

	page := service.Paginate(videos, *pages, a.pageSize)
	if *all {
		page = service.Paginate(videos, 1, len(videos))
	}

	fmt.Fprintln(a.out, st.tableHeader.Render(fmt.Sprintf("%-8s  %-40s  %5s  %s", "ID", "TITLE", "MIN", "CHANNEL")))
	for _, v := range page.Videos {
		fmt.Fprintf(a.out, "%-8s  %-40s  %5d  %s\n",
			shortID(v.ID), truncate(v.Title, 40), v.Duration, st.muted.Render(v.ChannelName))
	}
	footer := fmt.Sprintf("%d of %d videos", len(page.Videos), page.Total)
	if page.HasMore {
		footer += fmt.Sprintf(" (use --pages %d for more)", *pages+1)
	}
	fmt.Fprintln(a.out, st.muted.Render(footer))
	return nil
}

func (a *App) printVideo(st styles, v store.Video) {
	var b strings.Builder
	fmt.Fprintln(&b, st.metric("ID", v.ID))
	fmt.Fprintln(&b, st.metric("Channel", v.ChannelName))
	fmt.Fprintln(&b, st.metric("Duration", fmt.Sprintf("%d min", v.Duration)))
	fmt.Fprintln(&b, st.metric("Types", st.tags(v.Types)))
	fmt.Fprintln(&b, st.metric("Equipment", st.tags(v.Equipment)))
	fmt.Fprintln(&b, st.metric("Body", st.tags(v.BodyPart)))
	fmt.Fprintln(&b, st.metric("Watch", "https://www.youtube.com/watch?v="+v.YoutubeID))
	if created, err := time.Parse(time.RFC3339Nano, v.CreatedAt); err == nil {
		fmt.Fprint(&b, st.metric("Added", humanize.RelTime(created, a.now(), "ago", "from now")))
	}
	fmt.Fprintln(a.out, st.card.Render(strings.TrimRight(b.String(), "\n")))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
