// Command browse pages through catalog search results from the terminal,
// one "load more" at a time.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/queer-film-catalog/internal/config"
	"github.com/iliyamo/queer-film-catalog/internal/logging"
	"github.com/iliyamo/queer-film-catalog/internal/model"
	"github.com/iliyamo/queer-film-catalog/internal/paging"
	"github.com/iliyamo/queer-film-catalog/internal/repository"
)

func main() {
	config.LoadDotEnv()

	var (
		api     = flag.String("api", envOr("CATALOG_API", "http://localhost:8080"), "catalog API base URL")
		limit   = flag.Int("limit", 20, "page size")
		rps     = flag.Float64("rps", 5, "maximum requests per second")
		all     = flag.Bool("all", false, "load every page without prompting")
		verbose = flag.Bool("v", false, "log debug output")
	)
	var f repository.MovieFilter
	flag.StringVar(&f.Title, "title", "", "title contains")
	flag.StringVar(&f.Type, "type", "", "content type")
	flag.StringVar(&f.Year, "year", "", "release year prefix")
	flag.StringVar(&f.Keyword, "keyword", "", "keyword contains")
	flag.StringVar(&f.Director, "director", "", "director name contains")
	flag.StringVar(&f.Country, "country", "", "country name contains")
	flag.StringVar(&f.Genre, "genre", "", "genre name contains")
	flag.StringVar(&f.StartYear, "from", "", "release date lower bound (year)")
	flag.StringVar(&f.EndYear, "to", "", "release date upper bound (year)")
	flag.Parse()

	env := "prod"
	if *verbose {
		env = "dev"
	}
	logger := logging.Must(env)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	printed := 0
	ctl := paging.NewController(paging.NewHTTPFetcher(*api, *rps, 1), paging.Options{
		Limit:  *limit,
		Logger: logger,
		OnChange: func(s paging.Snapshot) {
			if s.State == paging.LoadingFirst || s.State == paging.LoadingNext {
				return
			}
			for _, m := range s.Movies[printed:] {
				printed++
				fmt.Println(formatMovie(printed, m))
			}
			if s.Err != nil {
				fmt.Fprintf(os.Stderr, "fetch failed: %v\n", s.Err)
			}
		},
	})

	ctl.SetFilter(ctx, f)
	ctl.Wait()
	in := bufio.NewScanner(os.Stdin)
	for ctx.Err() == nil {
		s := ctl.Snapshot()
		if s.State == paging.Exhausted {
			fmt.Printf("-- %d of %d movies --\n", len(s.Movies), s.TotalCount)
			return
		}
		if s.State == paging.Idle {
			logger.Error("first page failed", zap.Error(s.Err))
			os.Exit(1)
		}
		if !*all {
			fmt.Printf("-- %d of %d, enter for more, q to quit --\n", len(s.Movies), s.TotalCount)
			if !in.Scan() || strings.TrimSpace(in.Text()) == "q" {
				return
			}
		}
		if !ctl.LoadMore(ctx) {
			return
		}
		ctl.Wait()
	}
}

func formatMovie(n int, m model.MovieSummary) string {
	year := "----"
	if m.ReleaseDate != nil && len(*m.ReleaseDate) >= 4 {
		year = (*m.ReleaseDate)[:4]
	}
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		names = append(names, g.Name)
	}
	return fmt.Sprintf("%4d. %s (%s) %s", n, m.Title, year, strings.Join(names, ", "))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
