package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scriptorhq/scriptor/pkg/vocabulary"
)

func newVocabularyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocabulary",
		Short: "Inspect and edit the persisted vocabulary store offline",
		Long:  "vocabulary operates directly on the vocabulary store file without starting the backend.",
	}
	cmd.AddCommand(newVocabularyListCmd())
	cmd.AddCommand(newVocabularyAddCmd())
	cmd.AddCommand(newVocabularyRemoveCmd())
	cmd.AddCommand(newVocabularyStatsCmd())
	cmd.AddCommand(newVocabularyImportCmd())
	cmd.AddCommand(newVocabularyExportCmd())
	return cmd
}

func loadVocabularyStore() (*vocabulary.Store, error) {
	store := vocabulary.NewStore()
	if err := store.Load(vocabularyPath); err != nil {
		return nil, fmt.Errorf("scriptor: loading vocabulary: %w", err)
	}
	store.SetPath(vocabularyPath)
	return store, nil
}

func newVocabularyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every canonical term",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadVocabularyStore()
			if err != nil {
				return err
			}
			for _, t := range store.Terms() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-14s used=%-5d variations=%v\n", t.Canonical, t.Category, t.UsageCount, t.Variations)
			}
			return nil
		},
	}
}

func newVocabularyAddCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "add <canonical> [variations...]",
		Short: "Add or replace a canonical term and its known variations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadVocabularyStore()
			if err != nil {
				return err
			}
			store.AddTerm(args[0], args[1:], category)
			return store.Save()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "term category, e.g. drug, procedure, abbreviation")
	return cmd
}

func newVocabularyRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <canonical>",
		Short: "Remove a canonical term",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadVocabularyStore()
			if err != nil {
				return err
			}
			store.DeleteTerm(args[0])
			return store.Save()
		},
	}
}

func newVocabularyStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print vocabulary usage statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadVocabularyStore()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(store.Stats())
		},
	}
}

func newVocabularyImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge canonical terms from a JSON file into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("scriptor: reading import file: %w", err)
			}
			var terms []vocabulary.Term
			if err := json.Unmarshal(data, &terms); err != nil {
				return fmt.Errorf("scriptor: parsing import file: %w", err)
			}

			store, err := loadVocabularyStore()
			if err != nil {
				return err
			}
			for _, t := range terms {
				store.AddTerm(t.Canonical, t.Variations, t.Category)
			}
			if err := store.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d terms\n", len(terms))
			return nil
		},
	}
}

func newVocabularyExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write every canonical term to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadVocabularyStore()
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(store.Terms(), "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return fmt.Errorf("scriptor: writing export file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d terms to %s\n", len(store.Terms()), args[0])
			return nil
		},
	}
}
