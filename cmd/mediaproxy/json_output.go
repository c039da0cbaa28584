package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// writeJSON renders v as indented JSON on the command's stdout, for the
// --json command variants. HTML escaping is off so file paths containing
// & or < survive verbatim.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
