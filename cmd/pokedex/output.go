package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dom/pokedex/internal/domain"
)

func printList(w io.Writer, list []domain.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPES\tORIGIN")
	for _, e := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.Name, joinTypes(e.Types), e.Origin)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d entries\n", len(list))
	return nil
}

func printEntry(w io.Writer, e domain.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", e.ID)
	fmt.Fprintf(tw, "Name\t%s\n", e.Name)
	fmt.Fprintf(tw, "Origin\t%s\n", e.Origin)
	fmt.Fprintf(tw, "Height\t%.0f cm\n", domain.DecimetersToCentimeters(e.HeightDecimeters))
	fmt.Fprintf(tw, "Weight\t%.1f kg\n", domain.HectogramsToKilograms(e.WeightHectograms))
	fmt.Fprintf(tw, "Types\t%s\n", joinTypes(e.Types))
	if e.ImageURL != "" {
		fmt.Fprintf(tw, "Image\t%s\n", e.ImageURL)
	}
	for _, s := range e.Stats {
		fmt.Fprintf(tw, "%s\t%d\n", s.Name, s.Value)
	}
	return tw.Flush()
}

func joinTypes(types []domain.Type) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ",")
}

// promptConfirmer asks on the terminal; anything but y or yes declines
type promptConfirmer struct {
	in  io.Reader
	out io.Writer
}

func (p promptConfirmer) Confirm(_ context.Context, id string) bool {
	fmt.Fprintf(p.out, "Delete %s? [y/N] ", id)

	line, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
