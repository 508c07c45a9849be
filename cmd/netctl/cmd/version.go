package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"netinv.sh/internal/version"
)

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	var (
		short  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeVersion(cmd.OutOrStdout(), version.Get(), short, asJSON)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Show only version number")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output version in JSON format")

	return cmd
}

func writeVersion(w io.Writer, info version.Info, short, asJSON bool) error {
	if short {
		_, err := fmt.Fprintln(w, info.Version)
		return err
	}

	if asJSON {
		return json.NewEncoder(w).Encode(info)
	}

	fmt.Fprintf(w, "%s\n", bold("netctl"))
	fmt.Fprintf(w, "Version:    %s\n", info.Version)
	fmt.Fprintf(w, "Commit:     %s\n", info.Commit)
	fmt.Fprintf(w, "Built:      %s\n", info.Built)
	fmt.Fprintf(w, "Go Version: %s\n", info.Go)
	_, err := fmt.Fprintf(w, "OS/Arch:    %s/%s\n", info.OS, info.Arch)
	return err
}
