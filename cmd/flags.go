package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// validatedValue wraps a flag value so path flags are checked when the
// command line is parsed. The run functions validate again because the
// same values can arrive through configuration instead of flags.
type validatedValue struct {
	pflag.Value
	validate func(string) error
}

func (v *validatedValue) Set(val string) error {
	if err := v.validate(val); err != nil {
		return fmt.Errorf("invalid value %q: %w", val, err)
	}
	return v.Value.Set(val)
}

// addFlagValidation installs a parse-time validator on the named flag.
// Unknown flag names are ignored so commands can share validator setup.
func addFlagValidation(cmd *cobra.Command, name string, validate func(string) error) {
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		flag = cmd.PersistentFlags().Lookup(name)
	}
	if flag == nil {
		return
	}

	flag.Value = &validatedValue{Value: flag.Value, validate: validate}
}
