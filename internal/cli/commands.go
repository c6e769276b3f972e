package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thuanndbxvp/Thai-news/internal/ingest"
	"github.com/thuanndbxvp/Thai-news/internal/keys"
	"github.com/thuanndbxvp/Thai-news/internal/library"
	"github.com/thuanndbxvp/Thai-news/internal/script"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Brainstorm topics and keywords",
}

var suggestTopicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Suggest five trending Thai news topics with short outlines",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, _, err := newSession()
		if err != nil {
			return err
		}
		suggestions, err := ctrl.TopicSuggestions(cmd.Context(), flagTheme)
		if err != nil {
			return err
		}
		for i, s := range suggestions {
			fmt.Printf("%d. %s\n", i+1, s.Title)
			if s.ThaiTitle != "" && s.ThaiTitle != s.Title {
				fmt.Printf("   %s\n", s.ThaiTitle)
			}
			if s.Outline != "" {
				fmt.Printf("   %s\n", s.Outline)
			}
		}
		return nil
	},
}

var suggestKeywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Suggest five SEO keywords for a news title",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagTitle == "" {
			return fmt.Errorf("--title (-t) is required")
		}
		ctrl, _, err := newSession()
		if err != nil {
			return err
		}
		keywords, err := ctrl.KeywordSuggestions(cmd.Context(), flagTitle)
		if err != nil {
			return err
		}
		fmt.Println(strings.Join(keywords, ", "))
		return nil
	},
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage provider API keys",
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored keys in precedence order (the first key is active)",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := keys.NewStore(dataDir())
		if err != nil {
			return err
		}
		for _, p := range []script.Provider{script.ProviderGemini, script.ProviderOpenAI} {
			list := store.List(p)
			if len(list) == 0 {
				fmt.Printf("%s: no keys\n", p)
				continue
			}
			fmt.Printf("%s:\n", p)
			for i, k := range list {
				marker := " "
				if i == 0 {
					marker = "*"
				}
				fmt.Printf("  %s %s\n", marker, maskedKey(k))
			}
		}
		return nil
	},
}

var keysAddCmd = &cobra.Command{
	Use:   "add <provider> <key>",
	Short: "Store a key for gemini or openai",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := parseProvider(args[0])
		if err != nil {
			return err
		}
		store, err := keys.NewStore(dataDir())
		if err != nil {
			return err
		}
		added, err := store.Add(p, args[1])
		if err != nil {
			return err
		}
		if !added {
			fmt.Println("Key already stored.")
			return nil
		}
		fmt.Printf("Key %s added for %s.\n", maskedKey(args[1]), p)
		return nil
	},
}

var keysRemoveCmd = &cobra.Command{
	Use:   "remove <provider> <key>",
	Short: "Remove a stored key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := parseProvider(args[0])
		if err != nil {
			return err
		}
		store, err := keys.NewStore(dataDir())
		if err != nil {
			return err
		}
		if err := store.Delete(p, args[1]); err != nil {
			return err
		}
		fmt.Println("Key removed.")
		return nil
	},
}

var keysPromoteCmd = &cobra.Command{
	Use:   "promote <provider> <key>",
	Short: "Make a stored key the active one",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := parseProvider(args[0])
		if err != nil {
			return err
		}
		store, err := keys.NewStore(dataDir())
		if err != nil {
			return err
		}
		if err := store.Promote(p, args[1]); err != nil {
			return err
		}
		fmt.Printf("Key %s is now active for %s.\n", maskedKey(args[1]), p)
		return nil
	},
}

var keysCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate every stored key against the live provider APIs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := keys.NewStore(dataDir())
		if err != nil {
			return err
		}
		pairs := keys.StorePairs(store)
		if len(pairs) == 0 {
			fmt.Println("No API keys stored. Add one with: thainews keys add <provider> <key>")
			return nil
		}
		results := keys.NewValidator().CheckAll(cmd.Context(), pairs)
		for _, r := range results {
			if r.Status == keys.StatusValid {
				fmt.Printf("%-7s %s  valid\n", r.Provider, maskedKey(r.Key))
			} else {
				fmt.Printf("%-7s %s  invalid: %s\n", r.Provider, maskedKey(r.Key), r.Message)
			}
		}
		return nil
	},
}

var ideasCmd = &cobra.Command{
	Use:   "ideas",
	Short: "Manage saved topic ideas",
}

var ideasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved ideas",
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := library.NewFileStore(dataDir())
		if err != nil {
			return err
		}
		ideas, err := lib.ListIdeas(cmd.Context())
		if err != nil {
			return err
		}
		if len(ideas) == 0 {
			fmt.Println("No saved ideas.")
			return nil
		}
		for _, idea := range ideas {
			fmt.Printf("%s  %s\n", idea.ID, idea.Title)
			if idea.Outline != "" {
				fmt.Printf("    %s\n", idea.Outline)
			}
		}
		return nil
	},
}

var ideasImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Extract topic ideas from a text or PDF file and save them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		content, err := ingest.NewIngester(args[0]).Ingest(ctx, args[0])
		if err != nil {
			return err
		}

		ctrl, _, err := newSession()
		if err != nil {
			return err
		}
		suggestions, err := ctrl.ExtractIdeas(ctx, content.Text)
		if err != nil {
			return err
		}
		if len(suggestions) == 0 {
			fmt.Println("No ideas found in the file.")
			return nil
		}

		lib, err := library.NewFileStore(dataDir())
		if err != nil {
			return err
		}
		added, skipped := 0, 0
		for _, s := range suggestions {
			id, err := library.NewID()
			if err != nil {
				return err
			}
			ok, err := lib.SaveIdea(ctx, library.Idea{
				ID:        id,
				Title:     s.Title,
				ThaiTitle: s.ThaiTitle,
				Outline:   s.Outline,
			})
			if err != nil {
				return err
			}
			if ok {
				added++
			} else {
				skipped++
			}
		}
		fmt.Printf("Imported %d idea(s), skipped %d duplicate(s).\n", added, skipped)
		return nil
	},
}

var ideasRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Delete a saved idea",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := library.NewFileStore(dataDir())
		if err != nil {
			return err
		}
		if err := lib.DeleteIdea(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Idea removed.")
		return nil
	},
}

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage saved scripts",
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved scripts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := library.NewFileStore(dataDir())
		if err != nil {
			return err
		}
		items, err := lib.ListItems(cmd.Context())
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("Library is empty.")
			return nil
		}
		for _, item := range items {
			fmt.Printf("%s  %s  %s\n", item.ID, item.CreatedAt.Format("2006-01-02 15:04"), item.Title)
		}
		return nil
	},
}

var libraryShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := library.NewFileStore(dataDir())
		if err != nil {
			return err
		}
		item, err := lib.GetItem(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("item %s not found", args[0])
		}
		fmt.Println(item.Script)
		return nil
	},
}

var libraryExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a saved script to a plain text file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := library.NewFileStore(dataDir())
		if err != nil {
			return err
		}
		item, err := lib.GetItem(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("item %s not found", args[0])
		}
		path, err := library.ExportScript(flagExportDir, item.Script)
		if err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", path)
		return nil
	},
}

var libraryRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Delete a saved script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := library.NewFileStore(dataDir())
		if err != nil {
			return err
		}
		if err := lib.DeleteItem(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Item removed.")
		return nil
	},
}

var flagExportDir string

func init() {
	suggestCmd.AddCommand(suggestTopicsCmd)
	suggestCmd.AddCommand(suggestKeywordsCmd)
	suggestTopicsCmd.Flags().StringVar(&flagTheme, "theme", "", "Theme to focus the suggestions on")
	suggestTopicsCmd.Flags().StringVarP(&flagProvider, "provider", "p", string(script.ProviderGemini), "LLM vendor: gemini or openai")
	suggestKeywordsCmd.Flags().StringVarP(&flagTitle, "title", "t", "", "News title to target")
	suggestKeywordsCmd.Flags().StringVarP(&flagProvider, "provider", "p", string(script.ProviderGemini), "LLM vendor: gemini or openai")

	keysCmd.AddCommand(keysListCmd)
	keysCmd.AddCommand(keysAddCmd)
	keysCmd.AddCommand(keysRemoveCmd)
	keysCmd.AddCommand(keysPromoteCmd)
	keysCmd.AddCommand(keysCheckCmd)

	ideasCmd.AddCommand(ideasListCmd)
	ideasCmd.AddCommand(ideasImportCmd)
	ideasCmd.AddCommand(ideasRemoveCmd)
	ideasImportCmd.Flags().StringVarP(&flagProvider, "provider", "p", string(script.ProviderGemini), "LLM vendor: gemini or openai")

	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryShowCmd)
	libraryCmd.AddCommand(libraryExportCmd)
	libraryCmd.AddCommand(libraryRemoveCmd)
	libraryExportCmd.Flags().StringVarP(&flagExportDir, "output", "o", ".", "Directory to write the export into")
}

func parseProvider(name string) (script.Provider, error) {
	switch strings.ToLower(name) {
	case "gemini":
		return script.ProviderGemini, nil
	case "openai":
		return script.ProviderOpenAI, nil
	default:
		return "", fmt.Errorf("unknown provider %q: must be gemini or openai", name)
	}
}
