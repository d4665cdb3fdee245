package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	xcrawler "github.com/anatolykoptev/go-xcrawler"
	"github.com/anatolykoptev/go-xcrawler/sentiment"
	"github.com/anatolykoptev/go-xcrawler/store"
	"github.com/spf13/cobra"
)

func newTweetsCmd(opts *options) *cobra.Command {
	tweets := &cobra.Command{Use: "tweets", Short: "Fetch posts and score sentiment"}

	var by, value, start, end, output string
	var includeRetweets bool
	fetch := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch all posts of an account or keyword and score them",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := xcrawler.PageRequest{
				Options:       xcrawler.QueryOptions{ExcludeRetweets: !includeRetweets},
				ExpandAuthors: true,
			}
			company := ""
			switch by {
			case "account":
				req.Kind = xcrawler.QueryTimeline
				req.Username = value
				company = value
			case "keyword":
				req.Kind = xcrawler.QuerySearch
				req.Query = xcrawler.KeywordQuery(value)
			default:
				return errors.New(`--by must be "account" or "keyword"`)
			}
			w, err := xcrawler.DateRange(start, end)
			if err != nil {
				return err
			}
			req.Window = w

			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				var rows []xcrawler.ScoredPost
				var streamErr error
				for page, err := range a.client.Pages(ctx, req) {
					if err != nil {
						streamErr = err
						break
					}
					for _, p := range page.Posts {
						author, _ := page.AuthorByID(p.AuthorID)
						if author.Username == "" && by == "account" {
							author.Username = value
						}
						rows = append(rows, xcrawler.ScoredPost{
							Company:   company,
							Post:      p,
							Username:  author.Username,
							Sentiment: sentiment.Score(p.Text),
						})
					}
					a.metrics.PostsFetched.Add(float64(len(page.Posts)))
				}
				if err := store.SavePosts(output, rows); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved %d posts to %s\n", len(rows), output)
				if streamErr != nil {
					slog.Warn("listing stopped early, partial results saved", slog.Any("error", streamErr))
				}
				return streamErr
			})
		},
	}
	f := fetch.Flags()
	f.StringVar(&by, "by", "", `"account" or "keyword"`)
	f.StringVar(&value, "value", "", "username (without @) or keyword")
	f.StringVar(&start, "start", "", "start date YYYY-MM-DD")
	f.StringVar(&end, "end", "", "end date YYYY-MM-DD")
	f.BoolVar(&includeRetweets, "include-retweets", true, "include retweets")
	f.StringVarP(&output, "output", "o", "tweets_with_sentiment.csv", "output CSV")
	_ = fetch.MarkFlagRequired("by")
	_ = fetch.MarkFlagRequired("value")

	tweets.AddCommand(fetch)
	return tweets
}

func newCountsCmd(opts *options) *cobra.Command {
	counts := &cobra.Command{Use: "counts", Short: "Approximate post counts"}

	var company, preset, recent string
	query := &cobra.Command{
		Use:   "query",
		Short: "Count an account's original posts in a preset window",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			var (
				w   xcrawler.Window
				err error
			)
			switch {
			case preset != "":
				w, err = xcrawler.ParsePreset(preset, now)
			case recent != "":
				w, err = xcrawler.ParseRecent(recent, now)
			default:
				err = errors.New("use --preset or --recent to choose a window")
			}
			if err != nil {
				return err
			}

			q := xcrawler.QueryOptions{ExcludeReplies: true}.Apply(xcrawler.AccountQuery(company))
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				n, err := a.client.CountPosts(ctx, q, w)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "window %s, approximate count: %d\n", w, n)
				return nil
			})
		},
	}
	query.Flags().StringVarP(&company, "company", "c", "", "account username")
	query.Flags().StringVar(&preset, "preset", "", "this_day, this_week, this_month, this_quarter, this_half, this_year")
	query.Flags().StringVar(&recent, "recent", "", "last_day, last_week, last_month, last_quarter, last_half, last_year")
	_ = query.MarkFlagRequired("company")

	counts.AddCommand(query)
	return counts
}
