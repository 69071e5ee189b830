package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	serrors "github.com/sputnik-dev/sputnik/internal/errors"
)

func errorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "errors [code]",
		Short: "List error codes or explain one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				code := strings.ToUpper(args[0])
				tmpl, ok := serrors.GetTemplate(code)
				if !ok {
					return serrors.New("E403").WithDetailf("unknown error code %q", args[0])
				}
				fmt.Fprintf(out, "%s (%s): %s\n", code, tmpl.Category, tmpl.Message)
				if tmpl.Suggestion != "" {
					fmt.Fprintf(out, "\n  %s\n", tmpl.Suggestion)
				}
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, code := range serrors.Codes() {
				tmpl, _ := serrors.GetTemplate(code)
				fmt.Fprintf(tw, "%s\t%s\t%s\n", code, tmpl.Category, tmpl.Message)
			}
			return tw.Flush()
		},
	}
}
