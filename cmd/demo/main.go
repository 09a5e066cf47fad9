// Command demo builds the catalog from the configured dataset and prints
// recommendations to stdout.
//
// By default it prints genre-based recommendations for -title and
// collaborative recommendations for -user. With -interactive it lists the
// catalog titles, reads a choice from stdin and prints titles similar by
// ratings, repeating until EOF or an empty line.
//
// Usage:
//
//	go run ./cmd/demo [-config configs/development.yaml] [-title "Toy Story"] [-user 1] [-n 5]
//	go run ./cmd/demo -interactive
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/ravindradesineni/Movie-recommendation/internal/bootstrap"
	"github.com/ravindradesineni/Movie-recommendation/internal/recommender"
	"github.com/ravindradesineni/Movie-recommendation/pkg/config"
	apperrors "github.com/ravindradesineni/Movie-recommendation/pkg/errors"
	"github.com/ravindradesineni/Movie-recommendation/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	title := flag.String("title", "The Man with the Golden Arm", "title for genre-based recommendations")
	userID := flag.Int("user", 1, "user id for collaborative recommendations")
	n := flag.Int("n", 0, "number of recommendations (0 uses the configured default)")
	interactive := flag.Bool("interactive", false, "pick titles from a list on stdin")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	// stdout carries the recommendations
	logger.SetupTo(os.Stderr, "", cfg.Logging.Level, "text")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := loadCatalog(ctx, cfg)
	if err != nil {
		slog.Error("failed to build catalog", "error", err)
		os.Exit(1)
	}

	if *interactive {
		if err := runSelector(os.Stdin, os.Stdout, catalog, *n); err != nil {
			slog.Error("selector failed", "error", err)
			os.Exit(1)
		}
		return
	}
	printDemo(os.Stdout, catalog, *title, *userID, *n)
}

func loadCatalog(ctx context.Context, cfg *config.Config) (*recommender.Catalog, error) {
	if cfg.Data.Source != "csv" {
		return nil, fmt.Errorf("the demo reads CSV files only, got data.source %q", cfg.Data.Source)
	}
	src, err := bootstrap.Source(cfg, nil)
	if err != nil {
		return nil, err
	}
	catalog, _, err := bootstrap.LoadCatalog(ctx, cfg, src, nil)
	return catalog, err
}

func printDemo(w io.Writer, c *recommender.Catalog, title string, userID, n int) {
	fmt.Fprintf(w, "Content-based recommendations for %q:\n", title)
	recs, err := c.SimilarByGenre(title, n)
	printResult(w, recs, err)

	fmt.Fprintf(w, "\nCollaborative filtering recommendations for user ID %d:\n", userID)
	recs, err = c.ForUser(userID, n)
	printResult(w, recs, err)
}

func printResult(w io.Writer, recs []recommender.Recommendation, err error) {
	switch {
	case errors.Is(err, apperrors.ErrTitleNotFound):
		fmt.Fprintln(w, "  Movie not found.")
	case errors.Is(err, apperrors.ErrUserNotFound):
		fmt.Fprintln(w, "  User not found.")
	case errors.Is(err, apperrors.ErrNoSimilarUsers):
		fmt.Fprintln(w, "  No similar users to learn from.")
	case err != nil:
		fmt.Fprintf(w, "  error: %v\n", err)
	case len(recs) == 0:
		fmt.Fprintln(w, "  (no recommendations)")
	default:
		for i, r := range recs {
			fmt.Fprintf(w, "  %d. %s (%.3f)\n", i+1, r.Title, r.Score)
		}
	}
}

// runSelector lists the titles once, then answers choices given as a list
// number or an exact title.
func runSelector(in io.Reader, out io.Writer, c *recommender.Catalog, n int) error {
	titles := c.Titles()
	if len(titles) == 0 {
		fmt.Fprintln(out, "The catalog is empty.")
		return nil
	}
	for i, t := range titles {
		fmt.Fprintf(out, "%5d  %s\n", i+1, t)
	}

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nPick a movie you like (number or title, empty to quit): ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		choice := strings.TrimSpace(sc.Text())
		if choice == "" {
			return nil
		}
		title, ok := resolveChoice(choice, titles)
		if !ok {
			fmt.Fprintf(out, "No movie matches %q.\n", choice)
			continue
		}
		fmt.Fprintf(out, "Top similar movies to %q (item-based CF):\n", title)
		recs, err := c.SimilarByRatings(title, n)
		printResult(out, recs, err)
		fmt.Fprintf(out, "Top similar movies to %q (genres):\n", title)
		recs, err = c.SimilarByGenre(title, n)
		printResult(out, recs, err)
	}
}

func resolveChoice(choice string, titles []string) (string, bool) {
	if i, err := strconv.Atoi(choice); err == nil {
		if i >= 1 && i <= len(titles) {
			return titles[i-1], true
		}
		// a numeric title such as "1917" falls through to exact match
	}
	for _, t := range titles {
		if t == choice {
			return t, true
		}
	}
	return "", false
}
