package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var refreshCategoriesCmd = &cobra.Command{
	Use:   "refresh-categories",
	Short: "Reload catalog categories and the rule table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.close()
		cats, rules, err := s.service.RefreshCategories()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "categories: %d\nrules: %d\n", cats, rules)
		return nil
	},
}

var refreshBrandsCmd = &cobra.Command{
	Use:   "refresh-brands",
	Short: "Reload catalog brands",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.close()
		n, err := s.service.RefreshBrands()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "brands: %d\n", n)
		return nil
	},
}

var createCategoriesCmd = &cobra.Command{
	Use:   "create-categories",
	Short: "Create every category of the rule table and write back woo_cat_id",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.close()
		sheet, err := s.wb.Sheet(cfg.SYNC.RulesSheet)
		if err != nil {
			return err
		}
		r, err := s.service.CreateAllCategories(cmd.Context(), sheet)
		if r != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "created: %d\nexisting: %d\nerrors: %d\n", r.Created, r.Existing, r.Errors)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(refreshCategoriesCmd, refreshBrandsCmd, createCategoriesCmd)
}
