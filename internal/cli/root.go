package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thuanndbxvp/Thai-news/internal/ingest"
	"github.com/thuanndbxvp/Thai-news/internal/keys"
	"github.com/thuanndbxvp/Thai-news/internal/library"
	"github.com/thuanndbxvp/Thai-news/internal/progress"
	"github.com/thuanndbxvp/Thai-news/internal/provider"
	"github.com/thuanndbxvp/Thai-news/internal/script"
	"github.com/thuanndbxvp/Thai-news/internal/workflow"
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "thainews",
	Short: "Generate Thai-language news scripts for video and podcast",
	RunE: func(cmd *cobra.Command, args []string) error {
		flagWizard = true
		return runGenerate(cmd, args)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("thainews %s\n", Version)
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a full news script (rundown first, then each section)",
	RunE:  runGenerate,
}

var outlineCmd = &cobra.Command{
	Use:   "outline",
	Short: "Generate only the news rundown and print it",
	RunE:  runOutline,
}

var (
	flagTitle     string
	flagDetails   string
	flagKeywords  string
	flagWordCount string
	flagTone      string
	flagStyle     string
	flagVoice     string
	flagType      string
	flagSpeakers  string
	flagAudience  string
	flagFocus     string
	flagProvider  string
	flagModel     string
	flagRefs      []string
	flagOneShot   bool
	flagNoIntro   bool
	flagNoOutro   bool
	flagBullets   bool
	flagOutDir    string
	flagSave      bool
	flagWizard    bool
	flagVerbose   bool
	flagTheme     string
)

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(outlineCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(ideasCmd)
	rootCmd.AddCommand(libraryCmd)

	for _, cmd := range []*cobra.Command{generateCmd, outlineCmd} {
		f := cmd.Flags()
		f.StringVarP(&flagTitle, "title", "t", "", "News topic or headline (required)")
		f.StringVarP(&flagDetails, "details", "d", "", "Key details or article text to base the script on")
		f.StringVarP(&flagKeywords, "keywords", "k", "", "SEO keywords, comma separated")
		f.StringVarP(&flagWordCount, "words", "w", "1500", "Approximate target word count")
		f.StringVar(&flagTone, "tone", string(script.ToneProfessional), "Tone: Friendly_PiNong, Professional_Neutral, Analytical, Cautious_Diplomatic")
		f.StringVar(&flagStyle, "style", string(script.StyleNewsReport), "Style: News_Report, Deep_Dive, Weekly_Summary")
		f.StringVar(&flagVoice, "voice", string(script.VoiceFemaleKa), "Narrator voice: Male_Krub, Female_Ka")
		f.StringVar(&flagType, "type", string(script.TypeVideo), "Script type: Video or Podcast")
		f.StringVar(&flagSpeakers, "speakers", string(script.SpeakersAuto), "Podcast speakers: Auto, 2, or 3")
		f.StringVar(&flagAudience, "audience", string(script.AudienceMillennials), "Target audience: GenZ, Millennials, 30Plus")
		f.StringVar(&flagFocus, "focus", string(script.FocusGeneralNews), "Content focus: General_News, Politics_Policy, Border_Conflict")
		f.StringVarP(&flagProvider, "provider", "p", string(script.ProviderGemini), "LLM vendor: gemini or openai")
		f.StringVarP(&flagModel, "model", "m", "", "Model ID (defaults to the vendor's recommended model)")
		f.StringSliceVarP(&flagRefs, "ref", "r", nil, "Reference article URL, repeatable")
		f.BoolVar(&flagNoIntro, "no-intro", false, "Skip the intro section")
		f.BoolVar(&flagNoOutro, "no-outro", false, "Skip the outro section")
		f.BoolVar(&flagBullets, "bullets", false, "Use bullet points in the script")
		f.BoolVarP(&flagVerbose, "verbose", "v", false, "Print each step instead of a progress bar")
	}

	generateCmd.Flags().BoolVar(&flagOneShot, "one-shot", false, "Generate the whole script in one call instead of section by section")
	generateCmd.Flags().StringVarP(&flagOutDir, "output", "o", ".", "Directory to write the exported script into")
	generateCmd.Flags().BoolVarP(&flagSave, "save", "s", false, "Also save the result to the library")
	generateCmd.Flags().BoolVar(&flagWizard, "wizard", false, "Interactive setup before generating")
}

func Execute() error {
	return rootCmd.Execute()
}

// dataDir is where the key store, library, and saved ideas live.
func dataDir() string {
	if d := os.Getenv("THAINEWS_DATA_DIR"); d != "" {
		return d
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".thainews"
	}
	return filepath.Join(home, ".thainews")
}

// newSession builds a workflow controller backed by the stored keys and the
// provider/model selected by flags.
func newSession() (*workflow.Controller, *keys.Store, error) {
	store, err := keys.NewStore(dataDir())
	if err != nil {
		return nil, nil, err
	}
	ctrl := workflow.New(provider.NewGateway(store))
	ctrl.UseProvider(script.Provider(flagProvider), flagModel)
	return ctrl, store, nil
}

func paramsFromFlags() script.GenerationParams {
	p := script.DefaultParams()
	p.Title = flagTitle
	p.OutlineContent = flagDetails
	p.Keywords = flagKeywords
	p.WordCount = flagWordCount
	p.StyleOptions.Tone = script.Tone(flagTone)
	p.StyleOptions.Style = script.Style(flagStyle)
	p.StyleOptions.Voice = script.Voice(flagVoice)
	p.ScriptType = script.ScriptType(flagType)
	p.NumberOfSpeakers = script.NumberOfSpeakers(flagSpeakers)
	p.AudienceAge = script.AudienceAge(flagAudience)
	p.ContentFocus = script.ContentFocus(flagFocus)
	p.FormattingOptions.Bullets = flagBullets
	p.FormattingOptions.IncludeIntro = !flagNoIntro
	p.FormattingOptions.IncludeOutro = !flagNoOutro
	return p
}

// gatherRefs pulls the --ref articles and appends them to the details so the
// generation is grounded on real reporting. Failures are warnings.
func gatherRefs(ctx context.Context, p *script.GenerationParams) {
	if len(flagRefs) == 0 {
		return
	}
	block, errs := ingest.GatherReferences(ctx, flagRefs)
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	if block == "" {
		return
	}
	if p.OutlineContent != "" {
		p.OutlineContent += "\n\n"
	}
	p.OutlineContent += block
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if flagWizard {
		if err := runWizard(); err != nil {
			return err
		}
	}
	if flagTitle == "" {
		return fmt.Errorf("--title (-t) is required")
	}

	ctx := cmd.Context()
	params := paramsFromFlags()
	if err := params.Validate(); err != nil {
		return err
	}
	gatherRefs(ctx, &params)

	ctrl, _, err := newSession()
	if err != nil {
		return err
	}
	ctrl.SetParams(params)

	var renderer *progress.BarRenderer
	if !flagVerbose {
		renderer = progress.NewBarRenderer(os.Stdout)
		defer renderer.Finish()
		ctrl.OnProgress(renderer.Handle)
	} else {
		ctrl.OnProgress(func(e progress.Event) {
			fmt.Fprintf(os.Stderr, "%s: %s\n", e.Stage, e.Message)
		})
	}

	if flagOneShot {
		if _, err := ctrl.GenerateFull(ctx); err != nil {
			return err
		}
	} else {
		if _, err := ctrl.GenerateOutline(ctx); err != nil {
			return err
		}
		if _, err := ctrl.BeginExpand(ctx); err != nil {
			return err
		}
		for ctrl.State() == workflow.StateGenerating {
			if _, err := ctrl.ContinuePart(ctx); err != nil {
				return err
			}
		}
	}

	text := ctrl.Script()
	path, err := library.ExportScript(flagOutDir, text)
	if err != nil {
		return err
	}

	if flagSave {
		if err := saveToLibrary(ctx, params, text); err != nil {
			fmt.Fprintf(os.Stderr, "warning: save to library failed: %v\n", err)
		}
	}

	if renderer != nil {
		renderer.Handle(progress.Event{
			Stage:      progress.StageComplete,
			Message:    "Script ready",
			Percent:    1,
			OutputFile: path,
			WordCount:  len(strings.Fields(text)),
		})
	} else {
		fmt.Printf("Script saved to %s\n", path)
	}
	return nil
}

func runOutline(cmd *cobra.Command, args []string) error {
	if flagTitle == "" {
		return fmt.Errorf("--title (-t) is required")
	}

	ctx := cmd.Context()
	params := paramsFromFlags()
	if err := params.Validate(); err != nil {
		return err
	}
	gatherRefs(ctx, &params)

	ctrl, _, err := newSession()
	if err != nil {
		return err
	}
	ctrl.SetParams(params)

	out, err := ctrl.GenerateOutline(ctx)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func saveToLibrary(ctx context.Context, params script.GenerationParams, text string) error {
	lib, err := library.NewFileStore(dataDir())
	if err != nil {
		return err
	}
	return lib.SaveItem(ctx, library.Item{
		Title:          params.Title,
		OutlineContent: params.OutlineContent,
		Script:         text,
		Params:         params,
	})
}

// maskedKey shows only enough of a key to identify it.
func maskedKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + "..." + key[len(key)-4:]
}
