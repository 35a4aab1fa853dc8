package filter

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/hollis/litriage/internal/config"
	"github.com/hollis/litriage/internal/storage"
)

// DateRange selects the trailing publication-date window.
type DateRange string

const (
	RangeDay     DateRange = "day"
	RangeWeek    DateRange = "week"
	RangeMonth   DateRange = "month"
	RangeQuarter DateRange = "quarter"
	RangeCustom  DateRange = "custom"
)

// SearchScope controls which article text the keyword filter matches
// against.
type SearchScope string

const (
	ScopeTitleOnly SearchScope = "title"
	ScopeFullText  SearchScope = "title_abstract_keywords"
)

// StateFilter narrows the view to one lifecycle state.
type StateFilter string

const (
	FilterUnseen  StateFilter = "unseen"
	FilterAll     StateFilter = "all"
	FilterViewed  StateFilter = "viewed"
	FilterSaved   StateFilter = "saved"
	FilterSkipped StateFilter = "skipped"
)

// SortKey orders the filtered view.
type SortKey string

const (
	SortDateDesc    SortKey = "date_desc"
	SortDateAsc     SortKey = "date_asc"
	SortJournalName SortKey = "journal_asc"
)

// Config is one filter configuration. JournalKeys empty means "all
// enabled journals"; Keywords empty disables the keyword filter.
type Config struct {
	DateRange   DateRange   `json:"date_range"`
	CustomFrom  string      `json:"custom_from,omitempty"` // YYYY-MM-DD, inclusive
	CustomTo    string      `json:"custom_to,omitempty"`   // YYYY-MM-DD, inclusive
	JournalKeys []string    `json:"journal_keys,omitempty"`
	Keywords    []string    `json:"keywords,omitempty"`
	SearchScope SearchScope `json:"search_scope"`
	StateFilter StateFilter `json:"state_filter"`
	SortKey     SortKey     `json:"sort_key"`
}

// Default is the browse view a fresh install starts with.
func Default() Config {
	return Config{
		DateRange:   RangeWeek,
		SearchScope: ScopeFullText,
		StateFilter: FilterUnseen,
		SortKey:     SortDateDesc,
	}
}

// Apply runs the filter pipeline over the collection and returns the
// ordered view. It is a pure function of its inputs: the collection is
// never mutated, ties keep their input order, and repeated application
// with the same arguments yields the same sequence. That stability is
// what keeps a saved browse index meaningful across re-renders.
func Apply(articles []*storage.Article, cfg Config, enabledJournals []config.Journal, now time.Time) []*storage.Article {
	allowed := allowedKeys(cfg, enabledJournals)
	from, to := dateWindow(cfg, now)
	keywords := loweredKeywords(cfg.Keywords)

	out := make([]*storage.Article, 0, len(articles))
	for _, a := range articles {
		if cfg.StateFilter != FilterAll && cfg.StateFilter != "" && a.State != storage.ArticleState(cfg.StateFilter) {
			continue
		}
		if !inDateWindow(a.PublishedDate, from, to) {
			continue
		}
		if _, ok := allowed[a.JournalKey]; !ok {
			continue
		}
		if len(keywords) > 0 && !matchesKeywords(a, keywords, cfg.SearchScope) {
			continue
		}
		out = append(out, a)
	}

	sortArticles(out, cfg.SortKey)
	return out
}

// allowedKeys resolves the effective journal-key set: the filter's own
// keys when present, otherwise every enabled subscription.
func allowedKeys(cfg Config, enabledJournals []config.Journal) map[string]struct{} {
	allowed := make(map[string]struct{})
	if len(cfg.JournalKeys) > 0 {
		for _, k := range cfg.JournalKeys {
			allowed[k] = struct{}{}
		}
		return allowed
	}
	for _, j := range enabledJournals {
		allowed[j.RegistryKey] = struct{}{}
	}
	return allowed
}

// dateWindow maps the configured range onto inclusive YYYY-MM-DD bounds.
// Empty strings mean unbounded.
func dateWindow(cfg Config, now time.Time) (string, string) {
	days := 0
	switch cfg.DateRange {
	case RangeDay:
		days = 1
	case RangeWeek:
		days = 7
	case RangeMonth:
		days = 30
	case RangeQuarter:
		days = 90
	case RangeCustom:
		return cfg.CustomFrom, cfg.CustomTo
	default:
		return "", ""
	}
	return now.AddDate(0, 0, -days).Format("2006-01-02"), ""
}

// inDateWindow compares ISO dates lexically. Articles with an unknown
// publication date pass every window: hiding them would silently drop
// records the citation registry could not date.
func inDateWindow(date, from, to string) bool {
	if date == "" {
		return true
	}
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}

func loweredKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

// matchesKeywords reports whether any keyword occurs, case-insensitively,
// in the article's search text.
func matchesKeywords(a *storage.Article, lowered []string, scope SearchScope) bool {
	text := strings.ToLower(a.Title)
	if scope != ScopeTitleOnly {
		var b strings.Builder
		b.WriteString(text)
		b.WriteByte(' ')
		b.WriteString(strings.ToLower(a.Abstract))
		for _, kw := range a.Keywords {
			b.WriteByte(' ')
			b.WriteString(strings.ToLower(kw))
		}
		text = b.String()
	}

	for _, k := range lowered {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func sortArticles(articles []*storage.Article, key SortKey) {
	switch key {
	case SortDateAsc:
		sort.SliceStable(articles, func(i, j int) bool {
			return dateLess(articles[i].PublishedDate, articles[j].PublishedDate)
		})
	case SortJournalName:
		coll := collate.New(language.Und, collate.IgnoreCase)
		sort.SliceStable(articles, func(i, j int) bool {
			return coll.CompareString(articles[i].JournalName, articles[j].JournalName) < 0
		})
	default: // SortDateDesc
		sort.SliceStable(articles, func(i, j int) bool {
			return dateGreater(articles[i].PublishedDate, articles[j].PublishedDate)
		})
	}
}

// dateLess and dateGreater order ISO dates with unknown dates after
// every known one, regardless of sort direction.
func dateLess(a, b string) bool {
	if a == "" {
		return false
	}
	if b == "" {
		return true
	}
	return a < b
}

func dateGreater(a, b string) bool {
	if a == "" {
		return false
	}
	if b == "" {
		return true
	}
	return a > b
}
