package cli

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FranksOps/scout/internal/pipeline"
)

func newAskCommand(cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer one question and print the JSON result",
		Args:  cobra.MinimumNArgs(1),
	}

	run := withDeps(cfgFile, func(ctx context.Context, d *deps, args []string) error {
		answer, err := d.pipeline.Answer(ctx, strings.Join(args, " "))
		return writeResult(cmd.OutOrStdout(), answer, err)
	})
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), args)
	}
	return cmd
}

// writeResult prints the answer, or the error body the HTTP API would
// return, as indented JSON. A pipeline error is still returned so the
// process exits non-zero.
func writeResult(w io.Writer, answer *pipeline.Answer, err error) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err != nil {
		msg := err.Error()
		if pipeline.KindOf(err) == pipeline.KindInternal {
			msg = "Internal server error: " + msg
		}
		if encErr := enc.Encode(map[string]string{"error": msg}); encErr != nil {
			return encErr
		}
		return err
	}
	return enc.Encode(answer)
}
