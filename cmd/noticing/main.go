package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quietroom/noticing/internal/config"
	"github.com/quietroom/noticing/internal/core"
	"github.com/quietroom/noticing/internal/llm"
	"github.com/quietroom/noticing/internal/server"
	"github.com/quietroom/noticing/internal/store"
)

var (
	cfgPath string
	dbPath  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "noticing",
		Short: "Observation journal with per-person analytics",
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path override")

	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(promptCmd())
	rootCmd.AddCommand(peopleCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(reflectCmd())
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	var cfg *config.Config
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v, using defaults\n", err)
			cfg = config.Default()
		} else {
			cfg = loaded
		}
	} else {
		cfg = config.Default()
	}
	cfg.ApplyEnv()
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}
	return cfg
}

func getNotebook(withLLM bool) (*core.Notebook, *config.Config, error) {
	cfg := loadConfig()

	kv, err := store.Open(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	var client llm.Client
	if withLLM && cfg.LLM.Provider != "" {
		client, err = llm.NewClient(context.Background(), cfg.LLM)
		if err != nil {
			return nil, nil, err
		}
	}

	return core.NewNotebook(kv, client), cfg, nil
}

func addCmd() *cobra.Command {
	var frame string
	var tags []string

	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Record an observation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nb, _, err := getNotebook(false)
			if err != nil {
				return err
			}

			entry, err := nb.AddEntry(strings.Join(args, " "), frame, tags)
			if err != nil {
				return err
			}

			fmt.Printf("Added entry: %s\n", entry.ID[:8])
			if len(entry.People) > 0 {
				fmt.Printf("People: %s\n", strings.Join(entry.People, ", "))
			}
			if len(entry.Tags) > 0 {
				fmt.Printf("Tags: %s\n", strings.Join(entry.Tags, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&frame, "frame", "", "comma-separated participant names")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "tags from the fixed vocabulary")
	return cmd
}

func promptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Print a random noticing prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(core.RandomPrompt())
			return nil
		},
	}
}

func peopleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "people",
		Short: "List everyone who appears in the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			nb, _, err := getNotebook(false)
			if err != nil {
				return err
			}
			for _, name := range nb.Roster() {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	var mode string
	var tag string

	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Show a person's entries and summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nb, _, err := getNotebook(false)
			if err != nil {
				return err
			}

			view, scoped, _, err := nb.Filtered(args[0], mode, tag)
			if err != nil {
				return err
			}

			fmt.Printf("%s — %d entries (%d in last 30 days, %d solo, %d group)\n",
				args[0], len(view.Entries), view.Last30DaysCount, view.SoloCount, view.GroupCount)
			if top := view.TopTag(); top != "" {
				fmt.Printf("Top tag: %s\n", top)
			}
			fmt.Println()

			for _, e := range scoped {
				fmt.Printf("[%s] %s\n", e.ID[:min(8, len(e.ID))], e.CreatedAt)
				if len(e.Tags) > 0 {
					fmt.Printf("  Tags: %s\n", strings.Join(e.Tags, ", "))
				}
				fmt.Printf("  %s\n", strings.TrimSpace(e.Text))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "all", "all, solo, group or patterns")
	cmd.Flags().StringVar(&tag, "tag", "", "filter by exact tag")
	return cmd
}

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report [name]",
		Short: "Print the conference-ready text summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nb, _, err := getNotebook(false)
			if err != nil {
				return err
			}
			fmt.Println(nb.Report(args[0]))
			return nil
		},
	}
}

func reflectCmd() *cobra.Command {
	var mode string
	var tag string
	var scope string

	cmd := &cobra.Command{
		Use:   "reflect [name]",
		Short: "Generate an assisted reflection (requires an LLM provider)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nb, _, err := getNotebook(true)
			if err != nil {
				return err
			}

			summary, err := nb.Reflect(cmd.Context(), args[0], mode, tag, scope == "all")
			if err != nil {
				return err
			}

			printSection := func(header string, items []string) {
				if len(items) == 0 {
					return
				}
				fmt.Println(header)
				for _, item := range items {
					fmt.Printf("  • %s\n", item)
				}
			}
			printSection("Strengths:", summary.Strengths)
			printSection("Emerging capacities:", summary.EmergingCapacities)
			printSection("Concerns:", summary.Concerns)
			printSection("Supports:", summary.Supports)
			if len(summary.SuggestedMaterials) > 0 {
				fmt.Println("Suggested materials:")
				for _, m := range summary.SuggestedMaterials {
					fmt.Printf("  • %s (%s) — %s\n", m.Title, m.Confidence, m.Rationale)
				}
			}
			if summary.Notes != "" {
				fmt.Printf("Notes: %s\n", summary.Notes)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "all", "all, solo, group or patterns")
	cmd.Flags().StringVar(&tag, "tag", "", "filter by exact tag")
	cmd.Flags().StringVar(&scope, "scope", "all", "all or filtered")
	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete an entry by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nb, _, err := getNotebook(false)
			if err != nil {
				return err
			}
			if err := nb.DeleteEntry(args[0]); err != nil {
				return err
			}
			fmt.Println("Deleted.")
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup of all entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			nb, _, err := getNotebook(false)
			if err != nil {
				return err
			}

			data, err := nb.ExportBackup()
			if err != nil {
				return err
			}
			if out == "" {
				fmt.Println(string(data))
				return nil
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (stdout if empty)")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Restore entries from a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			nb, _, err := getNotebook(false)
			if err != nil {
				return err
			}

			count, err := nb.ImportBackup(data)
			if err != nil {
				return err
			}
			fmt.Printf("Restored %d entries\n", count)
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			nb, cfg, err := getNotebook(true)
			if err != nil {
				// The server is still useful without reflection.
				fmt.Fprintf(os.Stderr, "warning: reflection disabled: %v\n", err)
				nb, cfg, err = getNotebook(false)
				if err != nil {
					return err
				}
			}

			srv := server.NewServer(nb)
			r := srv.SetupRouter()
			fmt.Printf("Listening on :%s\n", cfg.Server.Port)
			return r.Run(":" + cfg.Server.Port)
		},
	}
}
