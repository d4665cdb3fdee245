package main

import (
	"context"
	"fmt"
	"log/slog"

	xcrawler "github.com/anatolykoptev/go-xcrawler"
	"github.com/anatolykoptev/go-xcrawler/batch"
	"github.com/anatolykoptev/go-xcrawler/store"
	"github.com/spf13/cobra"
)

func newBatchCmd(opts *options) *cobra.Command {
	b := &cobra.Command{Use: "batch", Short: "Batch jobs over CSV inputs"}

	var accInput, accOutput string
	accounts := &cobra.Command{
		Use:   "accounts",
		Short: "Resolve every organization in a CSV (first column)",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := store.ReadFileWith(accInput, store.ReadNames)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				rep, err := a.runner(nil).ResolveAll(ctx, names)
				rows := resolved(rep.Values())
				if serr := store.SaveAccounts(accOutput, rows); serr != nil {
					return serr
				}
				report(cmd, rep.RunID, rep.Succeeded, rep.Failed, accOutput)
				return err
			})
		},
	}
	accounts.Flags().StringVarP(&accInput, "input", "i", "", "CSV of organization names")
	accounts.Flags().StringVarP(&accOutput, "output", "o", "company_account_map.csv", "account mapping CSV")
	_ = accounts.MarkFlagRequired("input")

	var cntInput, cntOutput, cntAccounts string
	var span int
	counts := &cobra.Command{
		Use:   "counts",
		Short: "Count posts on each date and within ±span days (CSV: company,date)",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, known, err := loadDated(cntInput, cntAccounts)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				rep, err := a.runner(known).CountAll(ctx, items, span)
				var rows []store.CountRow
				for _, res := range rep.Results {
					if res.Err == nil {
						rows = append(rows, res.Value.Row())
					}
				}
				if serr := store.SaveCounts(cntOutput, rows); serr != nil {
					return serr
				}
				report(cmd, rep.RunID, rep.Succeeded, rep.Failed, cntOutput)
				return err
			})
		},
	}
	counts.Flags().StringVarP(&cntInput, "input", "i", "", "CSV of company,date")
	counts.Flags().StringVarP(&cntOutput, "output", "o", "counts.csv", "output CSV")
	counts.Flags().StringVar(&cntAccounts, "accounts", "", "account mapping CSV supplying usernames")
	counts.Flags().IntVar(&span, "span", batch.DefaultCountSpan, "± days of the wide window")
	_ = counts.MarkFlagRequired("input")

	var conInput, conOutput, conAccounts string
	var window int
	contents := &cobra.Command{
		Use:   "contents",
		Short: "Fetch posts within ±window days of each date and score them (CSV: company,date)",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, known, err := loadDated(conInput, conAccounts)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				rep, err := a.runner(known).FetchContents(ctx, items, window)
				var rows []xcrawler.ScoredPost
				for _, posts := range rep.Values() {
					rows = append(rows, posts...)
				}
				if serr := store.SavePosts(conOutput, rows); serr != nil {
					return serr
				}
				report(cmd, rep.RunID, rep.Succeeded, rep.Failed, conOutput)
				return err
			})
		},
	}
	contents.Flags().StringVarP(&conInput, "input", "i", "", "CSV of company,date")
	contents.Flags().StringVarP(&conOutput, "output", "o", "contents.csv", "output CSV")
	contents.Flags().StringVar(&conAccounts, "accounts", "", "account mapping CSV supplying usernames")
	contents.Flags().IntVarP(&window, "window", "w", 180, "± days around each date")
	_ = contents.MarkFlagRequired("input")

	b.AddCommand(accounts, counts, contents)
	return b
}

func loadDated(input, accounts string) ([]store.DatedCompany, map[string]string, error) {
	items, err := store.ReadFileWith(input, store.ReadDatedCompanies)
	if err != nil {
		return nil, nil, err
	}
	if accounts == "" {
		return items, nil, nil
	}
	rows, err := store.LoadAccounts(accounts)
	if err != nil {
		return nil, nil, err
	}
	return items, usernames(rows), nil
}

func report(cmd *cobra.Command, runID string, ok, failed int, output string) {
	slog.Info("batch saved", slog.String("run_id", runID), slog.String("output", output))
	fmt.Fprintf(cmd.OutOrStdout(), "done: %d ok, %d failed, saved to %s\n", ok, failed, output)
}
