package source

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/hollis/litriage/internal/config"
	"github.com/hollis/litriage/internal/storage"
)

// OpenAlexBaseURL is the public OpenAlex API endpoint.
const OpenAlexBaseURL = "https://api.openalex.org"

// tagScoreThreshold is the minimum concept/topic score that counts as a
// keyword.
const tagScoreThreshold = 0.3

// OpenAlexClient talks to the concept-graph source. Works carry their
// abstract as an inverted index and their subjects as scored concept and
// topic lists.
type OpenAlexClient struct {
	client
	now func() time.Time
}

func NewOpenAlexClient(opts ...Option) *OpenAlexClient {
	return &OpenAlexClient{
		client: newClient(OpenAlexBaseURL, opts...),
		now:    time.Now,
	}
}

func (c *OpenAlexClient) Name() string { return "openalex" }

type openAlexTag struct {
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
}

type openAlexAuthorship struct {
	AuthorPosition string `json:"author_position"` // first, middle or last
	Author         struct {
		DisplayName string `json:"display_name"`
	} `json:"author"`
}

type openAlexBiblio struct {
	Volume    string `json:"volume"`
	Issue     string `json:"issue"`
	FirstPage string `json:"first_page"`
	LastPage  string `json:"last_page"`
}

type openAlexLocation struct {
	Source *struct {
		DisplayName string `json:"display_name"`
		ISSNL       string `json:"issn_l"`
	} `json:"source"`
}

type openAlexWork struct {
	DOI                   string               `json:"doi"`
	DisplayName           string               `json:"display_name"`
	PublicationDate       string               `json:"publication_date"`
	PublicationYear       int                  `json:"publication_year"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	Concepts              []openAlexTag        `json:"concepts"`
	Topics                []openAlexTag        `json:"topics"`
	Keywords              []openAlexTag        `json:"keywords"`
	Biblio                openAlexBiblio       `json:"biblio"`
	PrimaryLocation       *openAlexLocation    `json:"primary_location"`
	OpenAccess            struct {
		OAURL string `json:"oa_url"`
	} `json:"open_access"`
}

type openAlexWorksResponse struct {
	Results []openAlexWork `json:"results"`
}

// FetchWorks queries the works endpoint filtered by journal ISSN and
// publication-date window. When the primary registry key yields nothing
// the alternate key is tried, since OpenAlex indexes some journals only
// under one of their ISSNs.
func (c *OpenAlexClient) FetchWorks(ctx context.Context, journal config.Journal, window Window, limit int) ([]*storage.Article, error) {
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

func (c *OpenAlexClient) fetchByISSN(ctx context.Context, issn string, window Window, limit int) ([]openAlexWork, error) {
	q := url.Values{}
	q.Set("filter", fmt.Sprintf(
		"primary_location.source.issn:%s,from_publication_date:%s,to_publication_date:%s",
		issn, window.FromDate(), window.ToDate()))
	q.Set("per-page", fmt.Sprintf("%d", limit))
	q.Set("sort", "publication_date:desc")
	if c.mailto != "" {
		q.Set("mailto", c.mailto)
	}

	var resp openAlexWorksResponse
	if err := c.getJSON(ctx, c.baseURL+"/works?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// SearchWorks runs the free-text discovery search. Results carry whatever
// journal context the work itself provides.
func (c *OpenAlexClient) SearchWorks(ctx context.Context, query string, limit int) ([]*storage.Article, error) {
	q := url.Values{}
	q.Set("search", query)
	q.Set("per-page", fmt.Sprintf("%d", limit))
	if c.mailto != "" {
		q.Set("mailto", c.mailto)
	}

	var resp openAlexWorksResponse
	if err := c.getJSON(ctx, c.baseURL+"/works?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return c.normalizeAll(resp.Results, config.Journal{}), nil
}

// FetchWork looks up a single work by identifier.
func (c *OpenAlexClient) FetchWork(ctx context.Context, id string) (*storage.Article, error) {
	u := c.baseURL + "/works/" + url.PathEscape(ResolverURL(id))
	if c.mailto != "" {
		u += "?mailto=" + url.QueryEscape(c.mailto)
	}
	var work openAlexWork
	if err := c.getJSON(ctx, u, &work); err != nil {
		return nil, err
	}
	article := c.normalize(work, config.Journal{})
	if article == nil {
		return nil, fmt.Errorf("work %s has no usable identifier", id)
	}
	return article, nil
}

// FetchAbstract resolves a single work and returns its reconstructed
// abstract, or "" when the work carries none.
func (c *OpenAlexClient) FetchAbstract(ctx context.Context, id string) (string, error) {
	u := c.baseURL + "/works/" + url.PathEscape(ResolverURL(id))
	if c.mailto != "" {
		u += "?mailto=" + url.QueryEscape(c.mailto)
	}
	var work openAlexWork
	if err := c.getJSON(ctx, u, &work); err != nil {
		return "", err
	}
	return ReconstructAbstract(work.AbstractInvertedIndex), nil
}

func (c *OpenAlexClient) normalizeAll(works []openAlexWork, journal config.Journal) []*storage.Article {
	articles := make([]*storage.Article, 0, len(works))
	for _, w := range works {
		if a := c.normalize(w, journal); a != nil {
			articles = append(articles, a)
		}
	}
	return articles
}

// normalize converts one concept-graph work into the canonical shape.
// Works without a DOI are rejected.
func (c *OpenAlexClient) normalize(work openAlexWork, journal config.Journal) *storage.Article {
	id, ok := NormalizeDOI(work.DOI)
	if !ok {
		return nil
	}

	journalName := journal.Name
	journalKey := journal.RegistryKey
	if work.PrimaryLocation != nil && work.PrimaryLocation.Source != nil {
		if journalName == "" {
			journalName = work.PrimaryLocation.Source.DisplayName
		}
		if journalKey == "" {
			journalKey = work.PrimaryLocation.Source.ISSNL
		}
	}

	return &storage.Article{
		ID:            id,
		Title:         work.DisplayName,
		Authors:       orderedAuthors(work.Authorships),
		JournalName:   journalName,
		JournalKey:    journalKey,
		Volume:        work.Biblio.Volume,
		Issue:         work.Biblio.Issue,
		Pages:         pageRange(work.Biblio.FirstPage, work.Biblio.LastPage),
		PublishedDate: work.PublicationDate,
		Year:          work.PublicationYear,
		Abstract:      ReconstructAbstract(work.AbstractInvertedIndex),
		Keywords:      workKeywords(work),
		CanonicalURL:  ResolverURL(id),
		OpenAccessURL: work.OpenAccess.OAURL,
		State:         storage.StateUnseen,
		FetchedAt:     c.now(),
	}
}

// orderedAuthors sorts authorships by their position tag. The tags are
// tri-level (first, middle, last); an unknown tag sorts as middle. The
// sort is stable so middle authors keep their upstream order.
func orderedAuthors(authorships []openAlexAuthorship) []string {
	rank := func(position string) int {
		switch position {
		case "first":
			return 0
		case "last":
			return 2
		default:
			return 1
		}
	}

	ordered := make([]openAlexAuthorship, len(authorships))
	copy(ordered, authorships)
	sort.SliceStable(ordered, func(i, j int) bool {
		return rank(ordered[i].AuthorPosition) < rank(ordered[j].AuthorPosition)
	})

	authors := make([]string, 0, len(ordered))
	for _, a := range ordered {
		if a.Author.DisplayName != "" {
			authors = append(authors, a.Author.DisplayName)
		}
	}
	return authors
}

// workKeywords extracts up to maxKeywords subject strings: scored
// concepts first, then scored topics, then the raw keyword list.
func workKeywords(work openAlexWork) []string {
	if kws := scoredNames(work.Concepts); len(kws) > 0 {
		return kws
	}
	if kws := scoredNames(work.Topics); len(kws) > 0 {
		return kws
	}
	var kws []string
	for _, tag := range work.Keywords {
		if tag.DisplayName == "" {
			continue
		}
		kws = append(kws, tag.DisplayName)
		if len(kws) == maxKeywords {
			break
		}
	}
	return kws
}

func scoredNames(tags []openAlexTag) []string {
	var names []string
	for _, tag := range tags {
		if tag.Score <= tagScoreThreshold || tag.DisplayName == "" {
			continue
		}
		names = append(names, tag.DisplayName)
		if len(names) == maxKeywords {
			break
		}
	}
	return names
}

// pageRange formats the biblio page fields: "first-last" when both are
// present, the first page alone otherwise.
func pageRange(first, last string) string {
	if first == "" {
		return ""
	}
	if last == "" {
		return first
	}
	return first + "-" + last
}
