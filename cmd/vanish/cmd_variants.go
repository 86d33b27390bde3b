package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/entrhq/vanish/pkg/logging"
	"github.com/entrhq/vanish/pkg/variant"
	"github.com/spf13/cobra"
)

func runVariantsList(cmd *cobra.Command, args []string) error {
	logger := logging.MustLogger("variants")
	defer logger.Close()

	reg, err := loadRegistry(logger)
	if err != nil {
		return err
	}
	pattern := "*"
	if len(args) == 1 {
		pattern = args[0]
	}
	matched, err := reg.Match(pattern)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tOBJECTS\tSTAGES\tSOURCE")
	for _, v := range matched {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", v.Name, len(v.Objects), v.StageCount(), reg.Source(v.Name))
	}
	return w.Flush()
}

func runVariantsShow(cmd *cobra.Command, args []string) error {
	logger := logging.MustLogger("variants")
	defer logger.Close()

	reg, err := loadRegistry(logger)
	if err != nil {
		return err
	}
	v, err := reg.Get(args[0])
	if err != nil {
		return err
	}
	data, err := variant.Render(v)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		_, err = out.Write(data)
		return err
	}
	return quick.Highlight(out, string(data), "yaml", "terminal256", "monokai")
}
