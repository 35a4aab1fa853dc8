package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollis/litriage/internal/config"
)

func newTestCrossref(t *testing.T, handler http.HandlerFunc) *CrossrefClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewCrossrefClient(WithBaseURL(server.URL), WithMailto("test@example.com"))
	c.now = func() time.Time { return time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestCrossrefFetchWorks(t *testing.T) {
	client := newTestCrossref(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/journals/1234-5678/works", r.URL.Path)
		filter := r.URL.Query().Get("filter")
		assert.Contains(t, filter, "from-pub-date:2024-03-01")
		assert.Contains(t, filter, "until-pub-date:2024-03-08")
		assert.Equal(t, "test@example.com", r.URL.Query().Get("mailto"))

		fmt.Fprint(w, `{"message":{"items":[{
			"DOI": "10.1234/CR.1",
			"title": ["A citation-registry work"],
			"author": [
				{"family": "Doe", "given": "Jane"},
				{"family": "Solo"},
				{"given": "Madonna"},
				{"name": "The ATLAS Collaboration"},
				{}
			],
			"published": {"date-parts": [[2024, 3]]},
			"volume": "7",
			"issue": "1",
			"page": "33-41",
			"abstract": "<jats:title>Abstract</jats:title><jats:p>Plain <jats:italic>text</jats:italic> here.</jats:p>",
			"container-title": ["Test Journal of Testing"],
			"subject": ["Ecology"],
			"link": [{"URL": "https://example.org/fulltext.pdf", "content-type": "application/pdf"}]
		}]}}`)
	})

	articles, err := client.FetchWorks(context.Background(), testJournal, testWindow(), 50)
	require.NoError(t, err)
	require.Len(t, articles, 1)

	a := articles[0]
	assert.Equal(t, "10.1234/cr.1", a.ID)
	assert.Equal(t, "A citation-registry work", a.Title)
	assert.Equal(t, []string{
		"Doe, Jane",
		"Solo",
		"Madonna",
		"The ATLAS Collaboration",
		"Unknown",
	}, a.Authors)
	assert.Equal(t, "2024-03-01", a.PublishedDate)
	assert.Equal(t, 2024, a.Year)
	assert.Equal(t, "7", a.Volume)
	assert.Equal(t, "33-41", a.Pages)
	assert.Equal(t, "Plain text here.", a.Abstract)
	assert.Equal(t, []string{"Ecology"}, a.Keywords)
	assert.Equal(t, "https://doi.org/10.1234/cr.1", a.CanonicalURL)
	assert.Equal(t, "https://example.org/fulltext.pdf", a.OpenAccessURL)
}

func TestCrossrefFetchWorks_RejectsMissingDOI(t *testing.T) {
	client := newTestCrossref(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"message":{"items":[
			{"title": ["No identifier"]},
			{"DOI": "10.1234/ok", "title": ["Has one"], "published": {"date-parts": [[2024, 1, 2]]}}
		]}}`)
	})

	articles, err := client.FetchWorks(context.Background(), testJournal, testWindow(), 50)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "10.1234/ok", articles[0].ID)
	assert.Equal(t, "2024-01-02", articles[0].PublishedDate)
}

func TestCrossrefWorkDate(t *testing.T) {
	tests := []struct {
		name     string
		work     crossrefWork
		wantDate string
		wantYear int
	}{
		{
			name:     "full date from published",
			work:     crossrefWork{Published: crossrefDate{DateParts: [][]int{{2024, 3, 5}}}},
			wantDate: "2024-03-05",
			wantYear: 2024,
		},
		{
			name:     "year only pads month and day",
			work:     crossrefWork{Published: crossrefDate{DateParts: [][]int{{2023}}}},
			wantDate: "2023-01-01",
			wantYear: 2023,
		},
		{
			name: "published-online before published-print",
			work: crossrefWork{
				PublishedOnline: crossrefDate{DateParts: [][]int{{2024, 2, 1}}},
				PublishedPrint:  crossrefDate{DateParts: [][]int{{2024, 4, 1}}},
			},
			wantDate: "2024-02-01",
			wantYear: 2024,
		},
		{
			name: "published wins over both",
			work: crossrefWork{
				Published:       crossrefDate{DateParts: [][]int{{2024, 1, 1}}},
				PublishedOnline: crossrefDate{DateParts: [][]int{{2024, 2, 1}}},
			},
			wantDate: "2024-01-01",
			wantYear: 2024,
		},
		{
			name:     "no date parts yields unknown sentinel",
			work:     crossrefWork{},
			wantDate: "",
			wantYear: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, year := workDate(tt.work)
			assert.Equal(t, tt.wantDate, date)
			assert.Equal(t, tt.wantYear, year)
		})
	}
}

func TestCrossrefFetchAbstract(t *testing.T) {
	client := newTestCrossref(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/works/10.1234%2Fcr.1", r.URL.EscapedPath())
		fmt.Fprint(w, `{"message":{"DOI": "10.1234/cr.1",
			"abstract": "<jats:p>Backfilled abstract.</jats:p>"}}`)
	})

	abstract, err := client.FetchAbstract(context.Background(), "10.1234/cr.1")
	require.NoError(t, err)
	assert.Equal(t, "Backfilled abstract.", abstract)
}

func TestCrossrefFetchAbstract_Missing(t *testing.T) {
	client := newTestCrossref(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"message":{"DOI": "10.1234/cr.1"}}`)
	})

	abstract, err := client.FetchAbstract(context.Background(), "10.1234/cr.1")
	require.NoError(t, err)
	assert.Equal(t, "", abstract)
}

func TestCrossrefFetchWorks_AlternateKey(t *testing.T) {
	journal := config.Journal{
		Name:           "Dual ISSN Journal",
		RegistryKey:    "0000-0000",
		RegistryKeyAlt: "1111-1111",
		Enabled:        true,
	}

	client := newTestCrossref(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/journals/0000-0000/works" {
			fmt.Fprint(w, `{"message":{"items":[]}}`)
			return
		}
		fmt.Fprint(w, `{"message":{"items":[{"DOI": "10.1234/alt", "title": ["Alt hit"], "published": {"date-parts": [[2024]]}}]}}`)
	})

	articles, err := client.FetchWorks(context.Background(), journal, testWindow(), 50)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "10.1234/alt", articles[0].ID)
}

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{
			name:   "plain text untouched",
			markup: "Just plain text.",
			want:   "Just plain text.",
		},
		{
			name:   "jats markup stripped",
			markup: "<jats:title>Abstract</jats:title><jats:p>Body <jats:bold>text</jats:bold>.</jats:p>",
			want:   "Body text.",
		},
		{
			name:   "html tags stripped",
			markup: "<p>Some <i>styled</i> abstract</p>",
			want:   "Some styled abstract",
		},
		{
			name:   "whitespace collapsed",
			markup: "<p>Line one</p>\n\n  <p>Line   two</p>",
			want:   "Line one Line two",
		},
		{
			name:   "empty",
			markup: "",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripMarkup(tt.markup))
		})
	}
}
