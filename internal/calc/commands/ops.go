package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/samestrin/llm-calc/internal/calc/config"
	"github.com/samestrin/llm-calc/pkg/output"
	"github.com/spf13/cobra"
)

var (
	opsJSON bool
	opsMin  bool
)

// OpsResult is the output of the ops command
type OpsResult struct {
	Count      int                    `json:"count"`
	Operations []config.OperationInfo `json:"operations"`
}

// newOpsCmd creates the ops command
func newOpsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ops",
		Short: "List registered operations",
		Long:  `List the built-in operations and any formula operations declared in the config file.`,
		Args:  cobra.NoArgs,
		RunE:  runOps,
	}

	cmd.Flags().BoolVar(&opsJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&opsMin, "min", false, "Minimal output - names only")

	return cmd
}

func runOps(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	infos, err := cfg.Catalog()
	if err != nil {
		return err
	}

	result := OpsResult{Count: len(infos), Operations: infos}

	formatter := output.New(opsJSON, opsMin, cmd.OutOrStdout())
	return formatter.Print(result, func(w io.Writer, data interface{}) {
		r := data.(OpsResult)
		if opsMin {
			for _, info := range r.Operations {
				fmt.Fprintln(w, info.Name)
			}
			return
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tSYMBOL\tDEFINITION")
		for _, info := range r.Operations {
			definition := info.Description
			if info.Formula != "" {
				definition = info.Formula
				if info.Description != "" {
					definition += "  (" + info.Description + ")"
				}
			}
			symbol := info.Symbol
			if symbol == "" {
				symbol = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, symbol, definition)
		}
		tw.Flush()
	})
}

func init() {
	rootCmd.AddCommand(newOpsCmd())
}
