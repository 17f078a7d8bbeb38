package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"hy2ctl/internal/geoip"
	"hy2ctl/internal/logger"
	"hy2ctl/internal/profile"
	"hy2ctl/internal/routing"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active profile and store statistics",
	Long:  `Displays a dashboard of the store: profile counts, the active profile with its validation state, routing summary and output files.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Config & Store
		cfg, st, closeDB := openStore()
		defer closeDB()

		if err := geoip.Init(cfg.GeoIP.CountryPath); err != nil {
			logger.Log.Debugf("GeoIP disabled: %v", err)
		}
		defer geoip.Close()

		// 2. Gather Stats
		profiles, err := st.List()
		if err != nil {
			logger.Log.Fatalf("%v", err)
		}
		active, err := st.Active()
		if err != nil {
			logger.Log.Fatalf("%v", err)
		}

		var invalid, withRules int
		for _, p := range profiles {
			if !profile.Validate(p).Valid {
				invalid++
			}
			if p.Rules != nil && p.Rules.Enabled {
				withRules++
			}
		}

		// 3. Print Dashboard
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

		fmt.Println("\n📊 \033[1mHY2CTL STATUS\033[0m")
		fmt.Println("────────────────────────────────────────")

		fmt.Fprintln(w, "\033[1;36m[ STORE ]\033[0m\t")
		fmt.Fprintf(w, "  Database Path:\t%s\n", cfg.Database.Path)
		fmt.Fprintf(w, "  DB Size:\t%s\n", formatBytes(getFileSize(cfg.Database.Path)))
		fmt.Fprintf(w, "  Profiles:\t%d (%d invalid, %d with routing)\n", len(profiles), invalid, withRules)
		fmt.Fprintln(w, "\t")

		fmt.Fprintln(w, "\033[1;36m[ ACTIVE PROFILE ]\033[0m\t")
		fmt.Fprintf(w, "  Name:\t%s (%s)\n", active.Name, shortID(active.ID))
		server := active.Server
		if cc := geoip.Country(active.Host()); cc != "" {
			server = fmt.Sprintf("%s %s %s", server, getFlagEmoji(cc), cc)
		}
		fmt.Fprintf(w, "  Server:\t%s\n", server)
		fmt.Fprintf(w, "  Listen:\tsocks5 %s, http %s\n", active.SOCKS5Listen, httpListen(active))
		res := profile.Validate(active)
		if res.Valid {
			fmt.Fprintln(w, "  Valid:\tyes")
		} else {
			fmt.Fprintf(w, "  Valid:\tno (%s)\n", strings.Join(res.Errors, "; "))
		}
		fmt.Fprintln(w, "\t")

		fmt.Fprintln(w, "\033[1;36m[ ROUTING ]\033[0m\t")
		rs := active.RuleSet()
		fmt.Fprintf(w, "  Rules:\t%s\n", rulesSummary(active))
		counts := make(map[routing.Policy]int)
		for _, r := range rs.EnabledRules() {
			counts[r.Policy]++
		}
		for _, pol := range []routing.Policy{routing.PolicyBlock, routing.PolicyDirect, routing.PolicyTunnel} {
			fmt.Fprintf(w, "  %s:\t%d\n", pol, counts[pol])
		}
		fmt.Fprintf(w, "  ACL lines:\t%d\n", len(routing.ACLLines(profile.ACL(active))))
		fmt.Fprintln(w, "\t")

		fmt.Fprintln(w, "\033[1;36m[ OUTPUT ]\033[0m\t")
		fmt.Fprintf(w, "  Config:\t%s\n", describeFile(cfg.Output.ConfigPath))
		if cfg.Output.ACLPath != "" {
			fmt.Fprintf(w, "  ACL:\t%s\n", describeFile(cfg.Output.ACLPath))
		}
		fmt.Fprintf(w, "  Embed ACL:\t%t\n", cfg.Output.EmbedACL)
		fmt.Fprintf(w, "  GeoIP:\t%t\n", geoip.Loaded())

		w.Flush()
		fmt.Println("")
	},
}

// Helpers

func httpListen(p profile.Profile) string {
	if p.DualMode {
		return p.SOCKS5Listen + " (dual)"
	}
	return p.HTTPListen
}

func describeFile(path string) string {
	size := getFileSize(path)
	if size == 0 {
		return path + " (not written)"
	}
	return fmt.Sprintf("%s (%s)", path, formatBytes(size))
}

func getFileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

func getFlagEmoji(countryCode string) string {
	if len(countryCode) != 2 {
		return "🌐"
	}
	countryCode = strings.ToUpper(countryCode)
	return string(rune(countryCode[0])+127397) + string(rune(countryCode[1])+127397)
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
