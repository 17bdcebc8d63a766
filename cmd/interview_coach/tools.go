package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/ingestion"
	"github.com/jonathan/interview-coach/internal/metrics"
	"github.com/jonathan/interview-coach/internal/observability"
	"github.com/jonathan/interview-coach/internal/resume"
	"github.com/jonathan/interview-coach/internal/tts"
)

var (
	toolText     string
	toolFile     string
	toolDuration float64
	toolJSON     bool
	toolURL      string
	toolBrowser  bool
	toolTimeout  time.Duration
	toolFormat   string
	toolLanguage string
	toolVoice    string
	toolOut      string
)

var analyzeSpeechCmd = &cobra.Command{
	Use:   "analyze-speech",
	Short: "Compute pace and filler-word metrics for a transcript",
	RunE: func(_ *cobra.Command, _ []string) error {
		text, err := readToolText()
		if err != nil {
			return err
		}
		return runAnalyzeSpeech(os.Stdout, text, toolDuration, toolJSON)
	},
}

var parseResumeCmd = &cobra.Command{
	Use:   "parse-resume",
	Short: "Split a resume into contact, education, experience and skills",
	RunE: func(_ *cobra.Command, _ []string) error {
		text, err := readToolText()
		if err != nil {
			return err
		}
		return runParseResume(os.Stdout, text, toolJSON)
	},
}

var extractSkillsCmd = &cobra.Command{
	Use:   "extract-skills",
	Short: "Match the curated skill vocabulary against text",
	RunE: func(_ *cobra.Command, _ []string) error {
		text, err := readToolText()
		if err != nil {
			return err
		}
		return runExtractSkills(os.Stdout, text, toolJSON)
	},
}

var fetchJobCmd = &cobra.Command{
	Use:   "fetch-job",
	Short: "Fetch a job posting and print its cleaned description",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if toolURL == "" {
			return fmt.Errorf("--url is required")
		}
		env, err := config.LoadFromEnv()
		if err != nil {
			return err
		}
		opts := ingestion.Options{UseBrowser: toolBrowser || env.UseBrowser, BrowserTimeout: toolTimeout}
		posting, err := ingestion.FetchJobDescription(cmd.Context(), toolURL, opts)
		if err != nil {
			return err
		}
		if toolJSON {
			return writeJSON(os.Stdout, posting)
		}
		fmt.Fprintf(os.Stderr, "Fetched %s (platform %s, browser %t, truncated %t)\n",
			posting.URL, posting.Platform, posting.Browser, posting.Truncated)
		fmt.Fprintln(os.Stdout, posting.Text)
		return nil
	},
}

var synthesizeSpeechCmd = &cobra.Command{
	Use:   "synthesize-speech",
	Short: "Read text aloud and write the audio to a file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if toolOut == "" {
			return fmt.Errorf("--out is required")
		}
		text, err := readToolText()
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		speech := newSynthesizer(cmd.Context(), cfg)
		if speech == nil {
			return fmt.Errorf("speech synthesis is not configured")
		}
		req := tts.Request{Text: text, Format: toolFormat, LanguageCode: toolLanguage, Voice: toolVoice}
		return runSynthesizeSpeech(cmd.Context(), speech, req, toolOut, os.Stderr)
	},
}

func init() {
	for _, c := range []*cobra.Command{analyzeSpeechCmd, parseResumeCmd, extractSkillsCmd} {
		c.Flags().StringVar(&toolText, "text", "", "Input text")
		c.Flags().StringVarP(&toolFile, "file", "f", "", "Read input from a file (\"-\" for stdin)")
		c.Flags().BoolVar(&toolJSON, "json", false, "Print JSON instead of a summary box")
		rootCmd.AddCommand(c)
	}
	analyzeSpeechCmd.Flags().Float64Var(&toolDuration, "duration", 0, "Answer length in seconds")
	_ = analyzeSpeechCmd.MarkFlagRequired("duration")

	fetchJobCmd.Flags().StringVarP(&toolURL, "url", "u", "", "Job posting URL")
	fetchJobCmd.Flags().BoolVar(&toolBrowser, "browser", false, "Fall back to headless Chrome for script-rendered pages")
	fetchJobCmd.Flags().DurationVar(&toolTimeout, "browser-timeout", 0, "Headless browser timeout")
	fetchJobCmd.Flags().BoolVar(&toolJSON, "json", false, "Print JSON with metadata")
	rootCmd.AddCommand(fetchJobCmd)

	synthesizeSpeechCmd.Flags().StringVar(&toolText, "text", "", "Text to speak")
	synthesizeSpeechCmd.Flags().StringVarP(&toolFile, "file", "f", "", "Read text from a file (\"-\" for stdin)")
	synthesizeSpeechCmd.Flags().StringVar(&toolFormat, "format", tts.DefaultFormat, "Audio format (mp3, ogg, wav)")
	synthesizeSpeechCmd.Flags().StringVar(&toolLanguage, "language", "", "Language code (default en-US)")
	synthesizeSpeechCmd.Flags().StringVar(&toolVoice, "voice", "", "Voice name (default from TTS_VOICE)")
	synthesizeSpeechCmd.Flags().StringVarP(&toolOut, "out", "o", "", "Output audio file")
	rootCmd.AddCommand(synthesizeSpeechCmd)
}

// readToolText returns --text, or the contents of --file. Files go through document
// extraction so a PDF resume works as input.
func readToolText() (string, error) {
	if toolText != "" && toolFile != "" {
		return "", fmt.Errorf("--text and --file are mutually exclusive; provide only one")
	}
	if toolFile == "" {
		return toolText, nil
	}

	var (
		data []byte
		err  error
	)
	if toolFile == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(toolFile)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return resume.ExtractText(data)
}

func runAnalyzeSpeech(out io.Writer, transcript string, duration float64, asJSON bool) error {
	m, err := metrics.Analyze(transcript, duration)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(out, m)
	}
	observability.NewPrinter(out).PrintMetrics(m)
	return nil
}

func runParseResume(out io.Writer, text string, asJSON bool) error {
	parsed, err := resume.Parse(text)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(out, parsed)
	}
	observability.NewPrinter(out).PrintParsedResume(&parsed)
	return nil
}

func runExtractSkills(out io.Writer, text string, asJSON bool) error {
	skills, err := resume.ExtractSkills(text)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(out, skills)
	}
	observability.NewPrinter(out).PrintSkills(skills)
	return nil
}

// runSynthesizeSpeech writes the clip to path. The backend may answer in a different
// format than requested, so the summary reports the format actually written.
func runSynthesizeSpeech(ctx context.Context, speech tts.Synthesizer, req tts.Request, path string, log io.Writer) error {
	audio, err := speech.Synthesize(ctx, req)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, audio.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}
	fmt.Fprintf(log, "Wrote %d bytes of %s audio to %s\n", len(audio.Data), audio.Format, path)
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
