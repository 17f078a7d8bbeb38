package main

import (
	"os"

	"hy2ctl/internal/logger"
	"hy2ctl/internal/profile"

	"github.com/spf13/cobra"
)

var validateAll bool

var validateCmd = &cobra.Command{
	Use:   "validate [profile]",
	Short: "Check a profile and its routing rules",
	Long:  `Validates the active profile, a named one, or every profile with --all. Exits non-zero when any profile has errors.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, st, closeDB := openStore()

		var targets []profile.Profile
		if validateAll {
			all, err := st.List()
			if err != nil {
				logger.Log.Fatalf("%v", err)
			}
			targets = all
		} else {
			targets = append(targets, loadProfile(st, firstArg(args)))
		}
		// os.Exit below skips deferred calls
		closeDB()

		ok := true
		for _, p := range targets {
			res := profile.Validate(p)
			if !printValidation(p.Name, res.Errors, res.Warnings) {
				ok = false
			}
		}
		if !ok {
			os.Exit(1)
		}
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateAll, "all", false, "Validate every profile")
	rootCmd.AddCommand(validateCmd)
}
