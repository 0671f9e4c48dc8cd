package search

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/iliyamo/queer-film-catalog/internal/repository"
)

// RequestFromQuery reads a search request from URL query parameters.
// Malformed numbers are treated as absent, the same as missing fields.
func RequestFromQuery(v url.Values) Request {
	f := repository.MovieFilter{
		Title:      v.Get("title"),
		Type:       v.Get("type"),
		Year:       v.Get("year"),
		Keyword:    v.Get("keyword"),
		KeywordIDs: parseIDList(v["keywordIds"]),
		Director:   v.Get("director"),
		DirectorID: v.Get("directorId"),
		Country:    v.Get("country"),
		Genre:      v.Get("genre"),
		GenreID:    v.Get("genreId"),
		StartYear:  v.Get("startYear"),
		EndYear:    v.Get("endYear"),
	}
	if id, err := strconv.ParseInt(strings.TrimSpace(v.Get("countryId")), 10, 64); err == nil && id > 0 {
		f.CountryID = id
	}
	req := Request{Filter: f.Normalize()}
	req.Page, _ = strconv.Atoi(v.Get("page"))
	req.Limit, _ = strconv.Atoi(v.Get("limit"))
	return req
}

// Query encodes r in the form RequestFromQuery reads.
func (r Request) Query() url.Values {
	f := r.Filter
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	set("title", f.Title)
	set("type", f.Type)
	set("year", f.Year)
	set("keyword", f.Keyword)
	if len(f.KeywordIDs) > 0 {
		parts := make([]string, len(f.KeywordIDs))
		for i, id := range f.KeywordIDs {
			parts[i] = strconv.FormatInt(id, 10)
		}
		v.Set("keywordIds", strings.Join(parts, ","))
	}
	set("director", f.Director)
	set("directorId", f.DirectorID)
	set("country", f.Country)
	if f.CountryID != 0 {
		v.Set("countryId", strconv.FormatInt(f.CountryID, 10))
	}
	set("genre", f.Genre)
	set("genreId", f.GenreID)
	set("startYear", f.StartYear)
	set("endYear", f.EndYear)
	if r.Page > 0 {
		v.Set("page", strconv.Itoa(r.Page))
	}
	if r.Limit > 0 {
		v.Set("limit", strconv.Itoa(r.Limit))
	}
	return v
}

// parseIDList accepts both repeated parameters and comma separated values.
func parseIDList(raw []string) []int64 {
	var out []int64
	for _, r := range raw {
		for _, s := range strings.Split(r, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			if err != nil || id <= 0 {
				continue
			}
			out = append(out, id)
		}
	}
	return out
}
