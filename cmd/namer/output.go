package main

import (
	"encoding/json"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// wantsJSON --json 或输出不是终端（管道、重定向）时写JSON
func wantsJSON(cmd *cobra.Command, ctx *commandContext) bool {
	if ctx.jsonOutput() {
		return true
	}
	f, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return true
	}
	fd := f.Fd()
	return !(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
}
