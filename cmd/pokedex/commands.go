package main

import (
	"fmt"

	"github.com/dom/pokedex/internal/domain"
	"github.com/dom/pokedex/internal/service"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var pages int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your entries followed by the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pages < 1 {
				return fmt.Errorf("--pages must be at least 1")
			}

			list, err := a.services.Catalog.FirstPage(cmd.Context())
			if err != nil {
				return err
			}
			for i := 1; i < pages; i++ {
				if list, err = a.services.Catalog.LoadMore(cmd.Context()); err != nil {
					return err
				}
			}

			return printList(cmd.OutOrStdout(), list)
		},
	}

	cmd.Flags().IntVarP(&pages, "pages", "p", 1, "number of catalog pages to load")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.services.Catalog.GetEntry(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printEntry(cmd.OutOrStdout(), e)
		},
	}
}

// formFlags binds the create/edit form to flags. Measures are entered in
// centimetres and kilograms.
type formFlags struct {
	form  domain.EntryForm
	stats map[string]int
}

func (f *formFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.form.Name, "name", "", "entry name")
	flags.Float64Var(&f.form.HeightCm, "height-cm", 0, "height in centimetres")
	flags.Float64Var(&f.form.WeightKg, "weight-kg", 0, "weight in kilograms")
	flags.StringVar(&f.form.ImageURL, "image", "", "image URL")
	flags.StringToIntVar(&f.stats, "stat", nil, "base stat, e.g. --stat hp=45,attack=49")
	flags.StringSliceVar(&f.form.Types, "type", nil, "type, repeatable (e.g. --type grass --type poison)")
}

// apply copies every flag the user set onto base
func (f *formFlags) apply(cmd *cobra.Command, base domain.EntryForm) domain.EntryForm {
	flags := cmd.Flags()
	if flags.Changed("name") {
		base.Name = f.form.Name
	}
	if flags.Changed("height-cm") {
		base.HeightCm = f.form.HeightCm
	}
	if flags.Changed("weight-kg") {
		base.WeightKg = f.form.WeightKg
	}
	if flags.Changed("image") {
		base.ImageURL = f.form.ImageURL
	}
	if flags.Changed("type") {
		base.Types = f.form.Types
	}
	if flags.Changed("stat") {
		if base.Stats == nil {
			base.Stats = make(map[string]int, len(f.stats))
		}
		for name, v := range f.stats {
			base.Stats[name] = v
		}
	}
	return base
}

func newCreateCmd(a *app) *cobra.Command {
	f := &formFlags{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new entry in the mutable store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := f.apply(cmd, domain.EntryForm{}).ToEntry()
			if err != nil {
				return err
			}

			id, err := a.services.Mutations.Create(cmd.Context(), e)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", e.Name, id)
			return nil
		},
	}

	f.bind(cmd)
	cmd.MarkFlagRequired("name")
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	f := &formFlags{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit one of your entries",
		Long: `Edit one of your entries. Only the flags given are changed; everything
else keeps its current value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if !domain.OriginForID(id).Mutable() {
				return fmt.Errorf("%w: %s", domain.ErrReadOnly, id)
			}

			current, err := a.services.Catalog.GetEntry(cmd.Context(), id)
			if err != nil {
				return err
			}

			e, err := f.apply(cmd, domain.FormFromEntry(current)).ToEntry()
			if err != nil {
				return err
			}

			res := a.services.Mutations.Update(cmd.Context(), id, e).Wait()
			if res.Err != nil {
				return res.Err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (%s)\n", res.Entry.Name, id)
			return nil
		},
	}

	f.bind(cmd)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			var confirm service.Confirmer = service.Confirmed
			if !yes {
				confirm = promptConfirmer{in: cmd.InOrStdin(), out: cmd.OutOrStdout()}
			}

			deleted, err := a.services.Mutations.Delete(cmd.Context(), id, confirm)
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
