package main

import (
	"fmt"

	xcrawler "github.com/anatolykoptev/go-xcrawler"
	"github.com/anatolykoptev/go-xcrawler/store"
	"github.com/spf13/cobra"
)

func newPrepCmd() *cobra.Command {
	prep := &cobra.Command{Use: "prep", Short: "Prepare and clean input data"}

	var input, output, mapping, mappingJSON string
	companies := &cobra.Command{
		Use:   "companies",
		Short: "Normalize and deduplicate organization names",
		Long:  "Reads the first column of a CSV, writes the unique normalized names and the original to normalized mapping.",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := store.ReadFileWith(input, store.ReadNames)
			if err != nil {
				return err
			}
			m, unique := xcrawler.BuildNameMapping(names)
			if err := store.SaveNames(output, unique); err != nil {
				return err
			}
			if err := store.SaveMappingCSV(mapping, m); err != nil {
				return err
			}
			if mappingJSON != "" {
				if err := store.SaveMapping(mappingJSON, m); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "normalized companies: %d\nnames: %s\nmapping: %s\n", len(unique), output, mapping)
			for _, n := range unique[:min(10, len(unique))] {
				fmt.Fprintln(out, "  "+n)
			}
			return nil
		},
	}
	companies.Flags().StringVarP(&input, "input", "i", "", "CSV of organization names (first column)")
	companies.Flags().StringVarP(&output, "output", "o", "normalized_companies.csv", "normalized names CSV")
	companies.Flags().StringVarP(&mapping, "mapping", "m", "name_mapping.csv", "original to normalized mapping CSV")
	companies.Flags().StringVar(&mappingJSON, "mapping-json", "", "also write the mapping as JSON")
	_ = companies.MarkFlagRequired("input")

	prep.AddCommand(companies)
	return prep
}
