package main

import (
	"fmt"

	"github.com/dom/pokedex/internal/domain"
	"github.com/spf13/cobra"
)

func newSeedCmd(a *app) *cobra.Command {
	var (
		count  int
		prefix string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the mutable store with sample entries",
		Long: `Populate the mutable store with sample entries for local development.
Entries are created one after another so they keep their numbering in the
store. A failed create is reported and seeding continues.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Seeding %d entries...\n", count)

			created := 0
			for i := 0; i < count; i++ {
				e := sampleEntry(prefix, i)
				id, err := a.services.Mutations.Create(cmd.Context(), e)
				if err != nil {
					fmt.Fprintf(out, "  [%d/%d] FAILED %s: %v\n", i+1, count, e.Name, err)
					continue
				}
				created++
				fmt.Fprintf(out, "  [%d/%d] %s (%s)\n", i+1, count, e.Name, id)
			}

			fmt.Fprintf(out, "Created %d of %d\n", created, count)
			if created == 0 {
				return fmt.Errorf("no entries created")
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 5, "number of entries to create")
	cmd.Flags().StringVar(&prefix, "prefix", "Sample", "name prefix for created entries")
	return cmd
}

// sampleEntry varies stats and types by index so seeded lists are easy to
// tell apart
func sampleEntry(prefix string, i int) domain.Entry {
	stats := make([]int, len(domain.StatOrder))
	for j := range stats {
		stats[j] = 20 + ((i+1)*(j+3)*7)%100
	}

	types := []domain.Type{domain.AllTypes[i%len(domain.AllTypes)]}
	if i%3 == 2 {
		types = append(types, domain.AllTypes[(i+7)%len(domain.AllTypes)])
	}

	return domain.Entry{
		Name:             fmt.Sprintf("%s%d", prefix, i+1),
		HeightDecimeters: 3 + i%20,
		WeightHectograms: 40 + i*15,
		Stats:            domain.NewStats(stats...),
		Types:            types,
	}
}
