package main

import (
	"os"
	"strings"

	"hy2ctl/internal/collectors"
	"hy2ctl/internal/link"
	"hy2ctl/internal/logger"
	"hy2ctl/internal/profile"
	"hy2ctl/internal/routing"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	importURL        string
	importFile       string
	importCollectors []string
	importPreset     string
)

var importCmd = &cobra.Command{
	Use:   "import [links...]",
	Short: "Create profiles from hysteria2:// share links",
	Long: `Links can be given as arguments, read from a file (plain or base64), fetched
from a subscription URL, or gathered by the collectors defined in config.
Links matching an existing profile (same server and credentials) are skipped.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, st, closeDB := openStore()
		defer closeDB()

		// 1. Gather raw links
		raw := link.ExtractLinks(strings.Join(args, "\n"))

		if importFile != "" {
			data, err := os.ReadFile(importFile)
			if err != nil {
				logger.Log.Fatalf("Error reading %s: %v", importFile, err)
			}
			raw = append(raw, link.ExtractLinks(string(data))...)
		}

		if importURL != "" {
			c, err := collectors.Get("http")
			if err != nil {
				logger.Log.Fatalf("%v", err)
			}
			links, err := c.Collect(map[string]interface{}{"url": importURL})
			if err != nil {
				logger.Log.Fatalf("Error fetching %s: %v", importURL, err)
			}
			raw = append(raw, links...)
		}

		if len(importCollectors) > 0 {
			cfg.FilterCollectors(importCollectors)
			for _, cCfg := range cfg.Collectors {
				logger.Log.Infof("🏃 Running collector: %s (%s)...", cCfg.Name, cCfg.Type)
				c, err := collectors.Get(cCfg.Type)
				if err != nil {
					logger.Log.Warnf("Skipping: %v", err)
					continue
				}
				links, err := c.Collect(cCfg.Params)
				if err != nil {
					logger.Log.Errorf("Error running collector: %v", err)
					continue
				}
				raw = append(raw, links...)
			}
		}

		if len(raw) == 0 {
			logger.Log.Warn("No hysteria2 links found.")
			return
		}

		// 2. Known servers
		existing, err := st.List()
		if err != nil {
			logger.Log.Fatalf("%v", err)
		}
		seen := make(map[string]bool)
		for _, p := range existing {
			seen[profile.ToLink(p).CalculateHash()] = true
		}

		// 3. Convert and save
		bar := progressbar.NewOptions(len(raw),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(15),
			progressbar.OptionSetDescription("[cyan]Importing...[reset]"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)

		var created, skipped, failed int
		for _, r := range raw {
			bar.Add(1)

			p, err := profile.FromLink(r)
			if err != nil {
				logger.Log.Debugf("Dropped link: %v", err)
				failed++
				continue
			}
			hash := profile.ToLink(p).CalculateHash()
			if seen[hash] {
				skipped++
				continue
			}
			seen[hash] = true

			p = withDefaults(cfg, p)
			rs, err := routing.Preset(importPreset, p.ID)
			if err != nil {
				logger.Log.Fatalf("%v", err)
			}
			p = p.WithRules(rs)

			if err := st.Save(p); err != nil {
				logger.Log.Errorf("Error saving %s: %v", p.Name, err)
				failed++
				continue
			}
			created++
		}
		bar.Finish()

		logger.Log.Infof("✅ Imported %d profiles (%d already known, %d invalid).", created, skipped, failed)
	},
}

func init() {
	importCmd.Flags().StringVar(&importURL, "url", "", "Subscription URL to fetch")
	importCmd.Flags().StringVar(&importFile, "file", "", "File containing links")
	importCmd.Flags().StringSliceVar(&importCollectors, "collector", nil, "Run the named collectors from config")
	importCmd.Flags().StringVar(&importPreset, "preset", "default", "Rule preset for imported profiles")
	rootCmd.AddCommand(importCmd)
}
