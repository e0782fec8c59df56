package layout

import (
	"fmt"
	"github.com/DamirAinullin/ManagedEsent/cmd/util"
	"github.com/DamirAinullin/ManagedEsent/lib/native"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"io"
	"os"
	"strings"
)

var (
	LayoutCmd = &cobra.Command{
		Use:   "layout [shape...]",
		Short: "Print the native structure layouts",
		Long: `Print the size, alignment and member offsets of every native structure
image the call layer builds. Without --pointer-size both the 32-bit and the
64-bit layouts are printed. Positional arguments restrict the output to the
named shapes (case-insensitive).`,
		PreRunE: processConfig,
		RunE:    run,
	}
	layouts []native.Layout
)

func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	switch ptr := viper.GetInt("pointer-size"); ptr {
	case 0:
		layouts = []native.Layout{{PointerSize: 4}, {PointerSize: 8}}
	default:
		l := native.Layout{PointerSize: ptr}
		if err := l.Validate(); err != nil {
			return err
		}
		layouts = []native.Layout{l}
	}
	return nil
}

func run(_ *cobra.Command, args []string) error {
	filter := make(map[string]bool, len(args))
	for _, a := range args {
		filter[strings.ToLower(a)] = true
	}

	printed := 0
	for _, l := range layouts {
		fmt.Printf("%s layout\n", strings.ToUpper(l.String()))
		for _, s := range l.Catalog().Shapes() {
			if len(filter) > 0 && !filter[strings.ToLower(s.Name)] {
				continue
			}
			printShape(os.Stdout, s)
			printed++
		}
		fmt.Println()
	}
	if len(filter) > 0 && printed == 0 {
		return fmt.Errorf("no shape matches %s", strings.Join(args, ", "))
	}
	return nil
}

func printShape(w io.Writer, s *native.Shape) {
	_, _ = fmt.Fprintf(w, "\n  %s (size %d, align %d)\n", s.Name, s.Size, s.Align)
	for _, f := range s.Fields() {
		_, _ = fmt.Fprintf(w, "    %4d  %-4s %2d  %s\n", f.Offset, f.Kind, f.Size, f.Name)
	}
}
