package main

import (
	"fmt"

	"hy2ctl/internal/logger"
	"hy2ctl/internal/profile"
	"hy2ctl/internal/writer"
	"hy2ctl/internal/xray"

	"github.com/spf13/cobra"
)

var (
	renderFormat string
	renderACL    bool
	renderWrite  bool
	renderForce  bool
)

var renderCmd = &cobra.Command{
	Use:   "render [profile]",
	Short: "Print or write the client config",
	Long: `Renders the Hysteria 2 client config for a profile (the active one by default).
--acl prints only the routing ACL. --write stores the config (and the ACL when
output.acl_path is configured) at the paths from config. --format xray emits an
xray client config with equivalent routing rules instead.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, st, closeDB := openStore()
		defer closeDB()

		p := loadProfile(st, firstArg(args))

		// 1. Refuse to emit broken configs unless forced
		res := profile.Validate(p)
		for _, w := range res.Warnings {
			logger.Log.Warn(w)
		}
		if !res.Valid {
			if !renderForce {
				logger.Log.Fatalf("Profile %s is invalid (use --force to render anyway):\n%s", p.Name, res.ErrorMessage())
			}
			logger.Log.Warnf("Rendering invalid profile %s", p.Name)
		}

		// 2. Render
		switch renderFormat {
		case "hysteria", "":
			if renderACL {
				fmt.Print(profile.ACLTo(p, logger.Log))
				return
			}
			if renderWrite {
				out, err := writer.Write(p, cfg.Output, logger.Log)
				if err != nil {
					logger.Log.Fatalf("%v", err)
				}
				logger.Log.Infof("Wrote %s", out.ConfigPath)
				if out.ACLPath != "" {
					logger.Log.Infof("Wrote %s", out.ACLPath)
				}
				return
			}
			if cfg.Output.EmbedACL {
				fmt.Print(profile.RenderWithACL(p, logger.Log))
			} else {
				fmt.Print(profile.RenderTo(p, logger.Log))
			}

		case "xray":
			xcfg, data, err := xray.Export(p, logger.Log)
			if err != nil {
				logger.Log.Fatalf("%v", err)
			}
			if err := xray.Verify(xcfg); err != nil {
				logger.Log.Warnf("%v", err)
			}
			if renderWrite {
				if err := writer.WriteFile(cfg.Output.ConfigPath, append(data, '\n')); err != nil {
					logger.Log.Fatalf("%v", err)
				}
				logger.Log.Infof("Wrote %s", cfg.Output.ConfigPath)
				return
			}
			fmt.Println(string(data))

		default:
			logger.Log.Fatalf("Unknown format %q (use hysteria or xray)", renderFormat)
		}
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "hysteria", "Output format: hysteria or xray")
	renderCmd.Flags().BoolVar(&renderACL, "acl", false, "Print only the routing ACL")
	renderCmd.Flags().BoolVarP(&renderWrite, "write", "w", false, "Write to the configured output paths")
	renderCmd.Flags().BoolVar(&renderForce, "force", false, "Render even if validation fails")
	rootCmd.AddCommand(renderCmd)
}
