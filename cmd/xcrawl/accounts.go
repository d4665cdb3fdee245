package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	xcrawler "github.com/anatolykoptev/go-xcrawler"
	"github.com/anatolykoptev/go-xcrawler/store"
	"github.com/spf13/cobra"
)

func newAccountsCmd(opts *options) *cobra.Command {
	accounts := &cobra.Command{Use: "accounts", Short: "Find and manage organization accounts"}

	var names, output string
	find := &cobra.Command{
		Use:   "find",
		Short: "Resolve organization names to accounts, verified first",
		RunE: func(cmd *cobra.Command, args []string) error {
			list := strings.Split(names, ",")
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				rep, err := a.runner(nil).ResolveAll(ctx, list)
				rows := resolved(rep.Values())
				if serr := store.SaveAccounts(output, rows); serr != nil {
					return serr
				}
				printAccounts(cmd.OutOrStdout(), rows)
				fmt.Fprintf(cmd.OutOrStdout(), "saved %d accounts to %s\n", len(rows), output)
				return err
			})
		},
	}
	find.Flags().StringVarP(&names, "names", "n", "", "comma-separated organization names")
	find.Flags().StringVarP(&output, "output", "o", "company_account_map.csv", "account mapping CSV")
	_ = find.MarkFlagRequired("names")

	var file string
	imp := &cobra.Command{
		Use:   "import",
		Short: "Load and show a saved account mapping",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := store.LoadAccounts(file)
			if err != nil {
				return err
			}
			printAccounts(cmd.OutOrStdout(), rows)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d accounts\n", len(rows))
			return nil
		},
	}
	imp.Flags().StringVarP(&file, "file", "f", "", "account mapping CSV")
	_ = imp.MarkFlagRequired("file")

	var company, username, editFile string
	edit := &cobra.Command{
		Use:   "edit",
		Short: "Set the username of an organization by hand",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := store.LoadAccounts(editFile)
			if err != nil {
				return err
			}
			rows = store.EditAccount(rows, company, username)
			if err := store.SaveAccounts(editFile, rows); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s -> @%s\n", xcrawler.NormalizeName(company), strings.TrimPrefix(username, "@"))
			return nil
		},
	}
	edit.Flags().StringVarP(&company, "company", "c", "", "organization name")
	edit.Flags().StringVarP(&username, "username", "u", "", "username without @")
	edit.Flags().StringVarP(&editFile, "file", "f", "company_account_map.csv", "account mapping CSV")
	_ = edit.MarkFlagRequired("company")
	_ = edit.MarkFlagRequired("username")

	accounts.AddCommand(find, imp, edit)
	return accounts
}

// resolved keeps the rows that found an account.
func resolved(rows []xcrawler.AccountInfo) []xcrawler.AccountInfo {
	var out []xcrawler.AccountInfo
	for _, r := range rows {
		if r.Username != nil {
			out = append(out, r)
		}
	}
	return out
}

// usernames indexes an account mapping by normalized company.
func usernames(rows []xcrawler.AccountInfo) map[string]string {
	m := make(map[string]string, len(rows))
	for _, r := range rows {
		if r.Username != nil && *r.Username != "" {
			m[r.CompanyNormalized] = *r.Username
		}
	}
	return m
}

func printAccounts(w io.Writer, rows []xcrawler.AccountInfo) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPANY\tUSERNAME\tNAME\tVERIFIED")
	for _, r := range rows {
		verified := ""
		if r.Verified != nil {
			verified = fmt.Sprint(*r.Verified)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.CompanyNormalized, orEmpty(r.Username), orEmpty(r.Name), verified)
	}
	tw.Flush()
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
