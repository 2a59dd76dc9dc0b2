package main

import (
	"flag"
	"fmt"
	"time"

	"abbaytv/portal/internal/config"
	"abbaytv/portal/internal/controller"
	"abbaytv/portal/internal/models"
	"abbaytv/portal/internal/query"
	"abbaytv/portal/internal/source"
	"abbaytv/portal/internal/store"
)

// browseCommand prints one collection page the way a visitor would see it.
func browseCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("browse", flag.ExitOnError)
	contentFlags(fs, cfg)
	pagePath := fs.String("page", "news", "Page to show: news, programs, live, jobs or index")
	category := fs.String("category", "", "Category filter")
	typeTag := fs.String("type", query.TypeAll, "Type filter")
	sortKey := fs.String("sort", query.SortNewest, "Sort: newest, oldest, az, za, deadline")
	location := fs.String("location", "", "Location filter (jobs)")
	search := fs.String("q", "", "Search term, at least two characters")
	more := fs.Int("more", 0, "Number of extra pages to reveal")
	applyLevel := logLevelFlag(fs, cfg)
	fs.Parse(args)
	applyLevel()

	page, ok := controller.PageFromPath(*pagePath)
	if !ok {
		return fmt.Errorf("unknown page %q", *pagePath)
	}

	loader, err := source.NewLoader(cfg.ContentOrigin, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("failed to create content loader: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	ctrl := controller.New(loader, store.New(), cfg.PageSize)
	if err := ctrl.LoadPage(ctx, page); err != nil {
		return err
	}

	if page == controller.PageIndex {
		printHome(ctrl, *search)
		return nil
	}

	coll := page.Collections()[0]
	results := make(chan controller.Result, 1)
	sess := ctrl.NewSession(coll, cfg.SearchDebounce, func(r controller.Result) { results <- r })
	defer sess.Close()

	filters := []struct {
		field store.Field
		value string
	}{
		{store.FieldCategory, *category},
		{store.FieldType, *typeTag},
		{store.FieldSort, *sortKey},
		{store.FieldLocation, *location},
	}
	for _, f := range filters {
		if _, err := sess.SetFilter(f.field, f.value); err != nil {
			return err
		}
	}

	res := sess.Current()
	if *search != "" {
		sess.SearchInput(*search)
		select {
		case res = <-results:
		case <-time.After(cfg.SearchDebounce + time.Second):
			return fmt.Errorf("search did not complete")
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	for i := 0; i < *more && res.HasMore; i++ {
		res = sess.LoadMore()
	}

	printResult(coll, res)
	return nil
}

func printResult(coll models.Collection, res controller.Result) {
	schema, _ := query.SchemaFor(coll)
	if res.Empty {
		fmt.Printf("No %s found\n", coll)
		return
	}

	fmt.Printf("%s: showing %d of %d (page %d)\n", coll, len(res.Items), res.Total, res.PageIndex)
	for _, item := range res.Items {
		fmt.Printf("  [%s] %s  %s\n", item.ID(), schema.Title(item), item.Text(schema.DateField))
	}
	if res.HasMore {
		fmt.Println("  ... more available")
	}
}

func printHome(ctrl *controller.Controller, term string) {
	if len([]rune(term)) >= query.MinSearchLength {
		res := ctrl.SearchAll(term)
		printSection("News", models.News, res.News)
		printSection("Programs", models.Programs, res.Programs)
		printSection("Live", models.Live, res.Live)
		printSection("Jobs", models.Jobs, res.Jobs)
		return
	}

	home := ctrl.Home(time.Now())
	printSection("Featured news", models.News, home.FeaturedNews)
	printSection("Popular programs", models.Programs, home.PopularPrograms)
	printSection("Live now", models.Live, home.LiveNow)
	printSection("Job highlights", models.Jobs, home.JobHighlights)
	fmt.Printf("Jobs: %d, urgent: %d, live now: %d\n", home.Stats.Jobs, home.Stats.UrgentJobs, home.Stats.LiveNow)
}

func printSection(title string, coll models.Collection, items []models.Record) {
	schema, _ := query.SchemaFor(coll)
	fmt.Printf("%s (%d)\n", title, len(items))
	for _, item := range items {
		fmt.Printf("  [%s] %s\n", item.ID(), schema.Title(item))
	}
}
