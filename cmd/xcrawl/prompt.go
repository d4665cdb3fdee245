package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	xcrawler "github.com/anatolykoptev/go-xcrawler"
)

// promptDisambiguator asks on out which candidate to keep, reading the answer
// from in. An empty answer, EOF or an invalid choice declines.
func promptDisambiguator(in io.Reader, out io.Writer) xcrawler.Disambiguator {
	sc := bufio.NewScanner(in)
	return func(company string, candidates []xcrawler.Account) (*xcrawler.Account, bool) {
		fmt.Fprintf(out, "Several accounts match %s:\n", company)
		for i, c := range candidates {
			mark := ""
			if c.Verified {
				mark = " [verified]"
			}
			fmt.Fprintf(out, "  %d) @%s  %s%s  followers=%d\n", i+1, c.Username, c.DisplayName, mark, c.FollowersCount)
		}
		fmt.Fprintf(out, "Choose 1-%d [1]: ", len(candidates))

		if !sc.Scan() {
			return nil, false
		}
		answer := strings.TrimSpace(sc.Text())
		if answer == "" {
			return nil, false
		}
		n, err := strconv.Atoi(answer)
		if err != nil || n < 1 || n > len(candidates) {
			fmt.Fprintln(out, "invalid choice, keeping the top candidate")
			return nil, false
		}
		return &candidates[n-1], true
	}
}
