package main

import (
	"strconv"

	"hy2ctl/internal/geoip"
	"hy2ctl/internal/logger"
	"hy2ctl/internal/publishers"

	"github.com/spf13/cobra"
)

var publishParams map[string]string

var publishCmd = &cobra.Command{
	Use:   "publish [publisher_names...]",
	Short: "Publish share links of all profiles",
	Long:  `Run all publishers or specific ones. Use --param to override publisher configuration.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, st, closeDB := openStore()
		defer closeDB()

		// 1. Filter Publishers based on args
		if len(args) > 0 {
			cfg.FilterPublishers(args)
		}
		if len(cfg.Publishers) == 0 {
			logger.Log.Warn("No publishers matched.")
			return
		}

		// 2. Apply CLI Params Overrides
		for i := range cfg.Publishers {
			if cfg.Publishers[i].Params == nil {
				cfg.Publishers[i].Params = make(map[string]interface{})
			}
			for k, v := range publishParams {
				if b, err := strconv.ParseBool(v); err == nil {
					cfg.Publishers[i].Params[k] = b
				} else if n, err := strconv.Atoi(v); err == nil {
					cfg.Publishers[i].Params[k] = n
				} else {
					cfg.Publishers[i].Params[k] = v
				}
			}
		}

		// flags in link names need the country database
		if err := geoip.Init(cfg.GeoIP.CountryPath); err != nil {
			logger.Log.Debugf("GeoIP disabled: %v", err)
		}
		defer geoip.Close()

		profiles, err := st.List()
		if err != nil {
			logger.Log.Fatalf("%v", err)
		}

		for _, pubCfg := range cfg.Publishers {
			logger.Log.Infof("📨 Running Publisher: %s (%s)...", pubCfg.Name, pubCfg.Type)

			plugin, err := publishers.Get(pubCfg.Type)
			if err != nil {
				logger.Log.Warnf("Plugin not found: %v", err)
				continue
			}

			if err := plugin.Publish(profiles, pubCfg.Params); err != nil {
				logger.Log.Errorf("Publish failed: %v", err)
			} else {
				logger.Log.Info("✅ Published successfully.")
			}
		}
	},
}

func init() {
	publishCmd.Flags().StringToStringVarP(&publishParams, "param", "p", nil, "Override publisher params (e.g. -p base64=true)")
	rootCmd.AddCommand(publishCmd)
}
