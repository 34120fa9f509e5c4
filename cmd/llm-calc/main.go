// Package main is the entry point for the llm-calc CLI tool.
package main

import (
	"os"

	"github.com/samestrin/llm-calc/internal/calc/commands"
	"github.com/samestrin/llm-calc/pkg/output"
)

func main() {
	if err := commands.Execute(); err != nil {
		f := output.New(commands.GlobalJSONOutput, commands.GlobalMinOutput, os.Stdout)
		os.Exit(f.PrintError(err))
	}
}
