package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/punchclock/internal/model"
)

var punchCmd = &cobra.Command{
	Use:   "punch <in|break|resume|out>",
	Short: "Record the current time for one of today's punches",
	Long: `Record the current time for one of today's punches.

Accepted names: in (inTime), break (startBreak), resume (endBreak),
out (outTime). Punching the same field again overwrites it.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"in", "break", "resume", "out"},
	RunE:      runPunch,
}

// punchAliases maps short CLI names to store fields.
var punchAliases = map[string]model.Field{
	"in":     model.FieldInTime,
	"break":  model.FieldStartBreak,
	"resume": model.FieldEndBreak,
	"out":    model.FieldOutTime,
}

// resolveField accepts an alias or a canonical field name. Unknown names are
// passed through so the store reports them as invalid.
func resolveField(name string) string {
	if f, ok := punchAliases[name]; ok {
		return string(f)
	}
	return name
}

// parsePunchField resolves an alias and validates the result.
func parsePunchField(name string) (model.Field, error) {
	return model.ParseField(resolveField(name))
}

func runPunch(cmd *cobra.Command, args []string) error {
	field, err := parsePunchField(args[0])
	if err != nil {
		return err
	}

	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	entry, err := e.store.SetField(string(field))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s recorded at %s (%s)\n", field.Label(), *entry.Get(field), entry.Date)
	return nil
}
