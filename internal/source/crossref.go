package source

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/hollis/litriage/internal/config"
	"github.com/hollis/litriage/internal/storage"
)

// CrossrefBaseURL is the public Crossref REST API endpoint.
const CrossrefBaseURL = "https://api.crossref.org"

// CrossrefClient talks to the citation-registry source. Works carry their
// abstract as JATS markup and their dates as nested date-parts arrays.
type CrossrefClient struct {
	client
	now func() time.Time
}

func NewCrossrefClient(opts ...Option) *CrossrefClient {
	return &CrossrefClient{
		client: newClient(CrossrefBaseURL, opts...),
		now:    time.Now,
	}
}

func (c *CrossrefClient) Name() string { return "crossref" }

type crossrefAuthor struct {
	Family string `json:"family"`
	Given  string `json:"given"`
	Name   string `json:"name"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

type crossrefLink struct {
	URL         string `json:"URL"`
	ContentType string `json:"content-type"`
}

type crossrefWork struct {
	DOI             string           `json:"DOI"`
	Title           []string         `json:"title"`
	Author          []crossrefAuthor `json:"author"`
	Published       crossrefDate     `json:"published"`
	PublishedOnline crossrefDate     `json:"published-online"`
	PublishedPrint  crossrefDate     `json:"published-print"`
	Volume          string           `json:"volume"`
	Issue           string           `json:"issue"`
	Page            string           `json:"page"`
	Abstract        string           `json:"abstract"`
	ContainerTitle  []string         `json:"container-title"`
	Subject         []string         `json:"subject"`
	Link            []crossrefLink   `json:"link"`
}

type crossrefWorksResponse struct {
	Message struct {
		Items []crossrefWork `json:"items"`
	} `json:"message"`
}

type crossrefWorkResponse struct {
	Message crossrefWork `json:"message"`
}

// FetchWorks queries the per-journal works endpoint bounded by the
// publication-date window. Journals registered under separate print and
// electronic ISSNs are retried under the alternate key when the primary
// returns nothing.
func (c *CrossrefClient) FetchWorks(ctx context.Context, journal config.Journal, window Window, limit int) ([]*storage.Article, error) {
	var lastErr error
	for _, key := range journal.Keys() {
		works, err := c.fetchByISSN(ctx, key, window, limit)
		if err != nil {
			lastErr = err
			continue
		}
		if len(works) == 0 {
			continue
		}
		return c.normalizeAll(works, journal), nil
	}
	return nil, lastErr
}

func (c *CrossrefClient) fetchByISSN(ctx context.Context, issn string, window Window, limit int) ([]crossrefWork, error) {
	q := url.Values{}
	q.Set("filter", fmt.Sprintf("from-pub-date:%s,until-pub-date:%s", window.FromDate(), window.ToDate()))
	q.Set("rows", fmt.Sprintf("%d", limit))
	q.Set("sort", "published")
	q.Set("order", "desc")
	if c.mailto != "" {
		q.Set("mailto", c.mailto)
	}

	u := fmt.Sprintf("%s/journals/%s/works?%s", c.baseURL, url.PathEscape(issn), q.Encode())
	var resp crossrefWorksResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	return resp.Message.Items, nil
}

// FetchAbstract looks up a single work by identifier and returns its
// abstract with the JATS markup stripped, or "" when the work has none.
func (c *CrossrefClient) FetchAbstract(ctx context.Context, id string) (string, error) {
	u := c.baseURL + "/works/" + url.PathEscape(id)
	if c.mailto != "" {
		u += "?mailto=" + url.QueryEscape(c.mailto)
	}
	var resp crossrefWorkResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return "", err
	}
	return StripMarkup(resp.Message.Abstract), nil
}

func (c *CrossrefClient) normalizeAll(works []crossrefWork, journal config.Journal) []*storage.Article {
	articles := make([]*storage.Article, 0, len(works))
	for _, w := range works {
		if a := c.normalize(w, journal); a != nil {
			articles = append(articles, a)
		}
	}
	return articles
}

// normalize converts one citation-registry work into the canonical shape.
// Works without a DOI are rejected.
func (c *CrossrefClient) normalize(work crossrefWork, journal config.Journal) *storage.Article {
	id, ok := NormalizeDOI(work.DOI)
	if !ok {
		return nil
	}

	title := ""
	if len(work.Title) > 0 {
		title = work.Title[0]
	}

	journalName := journal.Name
	if journalName == "" && len(work.ContainerTitle) > 0 {
		journalName = work.ContainerTitle[0]
	}

	date, year := workDate(work)

	keywords := work.Subject
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}

	openAccessURL := ""
	if len(work.Link) > 0 {
		openAccessURL = work.Link[0].URL
	}

	return &storage.Article{
		ID:            id,
		Title:         title,
		Authors:       formatAuthors(work.Author),
		JournalName:   journalName,
		JournalKey:    journal.RegistryKey,
		Volume:        work.Volume,
		Issue:         work.Issue,
		Pages:         work.Page,
		PublishedDate: date,
		Year:          year,
		Abstract:      StripMarkup(work.Abstract),
		Keywords:      keywords,
		CanonicalURL:  ResolverURL(id),
		OpenAccessURL: openAccessURL,
		State:         storage.StateUnseen,
		FetchedAt:     c.now(),
	}
}

// workDate reconstructs the publication date from the nested date-parts
// structures, checked in priority order: published, published-online,
// published-print. Missing month or day default to 01. A work with no
// date parts at all gets the explicit unknown sentinel (empty date, year
// zero) rather than a fabricated date; unknown dates sort after every
// dated article.
func workDate(work crossrefWork) (string, int) {
	for _, d := range []crossrefDate{work.Published, work.PublishedOnline, work.PublishedPrint} {
		if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
			continue
		}
		parts := d.DateParts[0]
		year := parts[0]
		month, day := 1, 1
		if len(parts) > 1 {
			month = parts[1]
		}
		if len(parts) > 2 {
			day = parts[2]
		}
		return fmt.Sprintf("%04d-%02d-%02d", year, month, day), year
	}
	return "", 0
}

// formatAuthors renders each author as "Family, Given". An author with
// only one of the two name parts contributes that part alone; an entry
// with a single combined name uses it as-is; a nameless entry becomes
// "Unknown".
func formatAuthors(authors []crossrefAuthor) []string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		switch {
		case a.Family != "" && a.Given != "":
			names = append(names, a.Family+", "+a.Given)
		case a.Family != "":
			names = append(names, a.Family)
		case a.Given != "":
			names = append(names, a.Given)
		case a.Name != "":
			names = append(names, a.Name)
		default:
			names = append(names, "Unknown")
		}
	}
	return names
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// StripMarkup flattens JATS/HTML abstract markup to plain text. Section
// headings like the leading "Abstract" title are part of the markup, not
// the abstract, and are dropped.
func StripMarkup(markup string) string {
	if markup == "" {
		return ""
	}

	// The html parser has no namespace support, so neutralize JATS
	// prefixes before parsing.
	cleaned := strings.ReplaceAll(markup, "<jats:", "<")
	cleaned = strings.ReplaceAll(cleaned, "</jats:", "</")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cleaned))
	if err != nil {
		return strings.TrimSpace(whitespaceRun.ReplaceAllString(cleaned, " "))
	}
	doc.Find("title").Remove()

	text := doc.Text()
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}
