package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-coach/internal/coach"
)

var invokeFile string

var invokeCmd = &cobra.Command{
	Use:   "invoke",
	Short: "Run one action envelope and print the status code and body",
	Long: `Read a JSON action envelope such as {"action":"get_question","session_id":"..."} from stdin
(or --file) and print {"status_code": ..., "body": ...}. The process exits non-zero for 4xx/5xx.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		in := io.Reader(os.Stdin)
		if invokeFile != "" {
			f, err := os.Open(invokeFile)
			if err != nil {
				return fmt.Errorf("failed to open envelope: %w", err)
			}
			defer f.Close()
			in = f
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		status, err := runInvoke(cmd.Context(), a.coach, in, os.Stdout)
		if err != nil {
			return err
		}
		if status >= 400 {
			return fmt.Errorf("action failed with status %d", status)
		}
		return nil
	},
}

func init() {
	invokeCmd.Flags().StringVarP(&invokeFile, "file", "f", "", "Read the envelope from a file instead of stdin")
	rootCmd.AddCommand(invokeCmd)
}

func runInvoke(ctx context.Context, c *coach.Coach, in io.Reader, out io.Writer) (int, error) {
	raw, err := io.ReadAll(in)
	if err != nil {
		return 0, fmt.Errorf("failed to read envelope: %w", err)
	}

	resp := c.Dispatch(ctx, raw)
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return 0, fmt.Errorf("failed to write response: %w", err)
	}
	return resp.StatusCode, nil
}
