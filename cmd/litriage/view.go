package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/hollis/litriage/internal/config"
	"github.com/hollis/litriage/internal/filter"
	"github.com/hollis/litriage/internal/storage"
)

// viewFlags are the filter options shared by list and next.
type viewFlags struct {
	state     string
	dateRange string
	from      string
	to        string
	journals  []string
	keywords  []string
	titleOnly bool
	sortKey   string
}

func (f *viewFlags) config() filter.Config {
	cfg := filter.Default()
	if f.state != "" {
		cfg.StateFilter = filter.StateFilter(f.state)
	}
	if f.dateRange != "" {
		cfg.DateRange = filter.DateRange(f.dateRange)
	}
	if f.from != "" || f.to != "" {
		cfg.DateRange = filter.RangeCustom
		cfg.CustomFrom = f.from
		cfg.CustomTo = f.to
	}
	cfg.JournalKeys = f.journals
	cfg.Keywords = f.keywords
	if f.titleOnly {
		cfg.SearchScope = filter.ScopeTitleOnly
	}
	if f.sortKey != "" {
		cfg.SortKey = filter.SortKey(f.sortKey)
	}
	return cfg
}

// currentView loads the collection and applies the filter.
func currentView(store *storage.Store, appCfg *config.Config, cfg filter.Config) ([]*storage.Article, error) {
	articles, err := store.AllArticles()
	if err != nil {
		return nil, err
	}
	return filter.Apply(articles, cfg, appCfg.EnabledJournals(), time.Now()), nil
}

func printArticleLine(i int, a *storage.Article) {
	date := a.PublishedDate
	if date == "" {
		date = "????-??-??"
	}
	fmt.Printf("%3d  %s  %-8s %-30s %s\n", i+1, date, a.State, truncate(a.JournalName, 30), truncate(a.Title, 70))
}

func printArticle(a *storage.Article) {
	fmt.Printf("%s\n", a.Title)
	if len(a.Authors) > 0 {
		fmt.Printf("%s\n", strings.Join(a.Authors, "; "))
	}

	ref := a.JournalName
	if a.PublishedDate != "" {
		ref += ", " + a.PublishedDate
	} else {
		ref += ", date unknown"
	}
	if a.Volume != "" {
		ref += ", vol. " + a.Volume
	}
	if a.Pages != "" {
		ref += ", pp. " + a.Pages
	}
	fmt.Printf("%s\n", ref)
	fmt.Printf("doi: %s  (%s)\n", a.ID, a.CanonicalURL)
	if a.OpenAccessURL != "" {
		fmt.Printf("open access: %s\n", a.OpenAccessURL)
	}
	if len(a.Keywords) > 0 {
		fmt.Printf("keywords: %s\n", strings.Join(a.Keywords, ", "))
	}
	if a.Abstract != "" {
		fmt.Printf("\n%s\n", a.Abstract)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
