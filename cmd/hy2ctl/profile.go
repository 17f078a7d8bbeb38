package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"hy2ctl/internal/geoip"
	"hy2ctl/internal/logger"
	"hy2ctl/internal/profile"
	"hy2ctl/internal/routing"
	"hy2ctl/internal/store"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// profileFlags are the editable profile fields shared by "new" and "set".
type profileFlags struct {
	name, server, auth string
	sni, pin           string
	insecure           bool
	obfsPassword       string
	noObfs             bool
	up, down           int
	idle, keepAlive    int
	hopInterval        int
	disablePMTUD       bool
	socks, http        string
	dual, fastOpen     bool
	lazy               bool
}

func (f *profileFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, "name", "", "Profile name")
	fs.StringVar(&f.server, "server", "", "Server host:port or host:portA-portB")
	fs.StringVar(&f.auth, "auth", "", "Password or user:pass")
	fs.StringVar(&f.sni, "sni", "", "TLS server name")
	fs.BoolVar(&f.insecure, "insecure", false, "Skip TLS certificate verification")
	fs.StringVar(&f.pin, "pin-sha256", "", "Pinned certificate SHA-256")
	fs.StringVar(&f.obfsPassword, "obfs-password", "", "Enable salamander obfuscation with this password")
	fs.BoolVar(&f.noObfs, "no-obfs", false, "Disable obfuscation")
	fs.IntVar(&f.up, "up", 0, "Upload bandwidth in Mbps (0 on both sides uses BBR)")
	fs.IntVar(&f.down, "down", 0, "Download bandwidth in Mbps")
	fs.IntVar(&f.idle, "idle-timeout", 0, "QUIC max idle timeout in seconds")
	fs.IntVar(&f.keepAlive, "keep-alive", 0, "QUIC keep-alive period in seconds")
	fs.BoolVar(&f.disablePMTUD, "disable-pmtud", false, "Disable path MTU discovery")
	fs.IntVar(&f.hopInterval, "hop-interval", 0, "Port hopping interval in seconds")
	fs.StringVar(&f.socks, "socks5", "", "SOCKS5 listen address")
	fs.StringVar(&f.http, "http", "", "HTTP listen address")
	fs.BoolVar(&f.dual, "dual", false, "Serve HTTP on the SOCKS5 port")
	fs.BoolVar(&f.fastOpen, "fast-open", true, "Enable fast open")
	fs.BoolVar(&f.lazy, "lazy", false, "Connect only when the first request arrives")
}

// apply copies the flags the user actually set onto p.
func (f *profileFlags) apply(cmd *cobra.Command, p profile.Profile) profile.Profile {
	changed := cmd.Flags().Changed

	if changed("name") {
		p = p.WithName(f.name)
	}
	if changed("server") {
		p = p.WithServer(f.server)
	}
	if changed("auth") {
		p = p.WithAuth(f.auth)
	}
	if changed("sni") || changed("insecure") || changed("pin-sha256") {
		sni, insecure, pin := p.TLSSNI, p.TLSInsecure, p.TLSPinSHA256
		if changed("sni") {
			sni = f.sni
		}
		if changed("insecure") {
			insecure = f.insecure
		}
		if changed("pin-sha256") {
			pin = f.pin
		}
		p = p.WithTLS(sni, insecure, pin)
	}
	if changed("obfs-password") {
		p = p.WithObfs(true, f.obfsPassword)
	}
	if f.noObfs {
		p = p.WithObfs(false, "")
	}
	if changed("up") || changed("down") {
		up, down := p.BandwidthUp, p.BandwidthDown
		if changed("up") {
			up = f.up
		}
		if changed("down") {
			down = f.down
		}
		p = p.WithBandwidth(up, down)
	}
	if changed("idle-timeout") || changed("keep-alive") || changed("disable-pmtud") {
		idle, keepAlive, pmtud := p.MaxIdleTimeout, p.KeepAlivePeriod, p.DisablePathMTUDiscovery
		if changed("idle-timeout") {
			idle = f.idle
		}
		if changed("keep-alive") {
			keepAlive = f.keepAlive
		}
		if changed("disable-pmtud") {
			pmtud = f.disablePMTUD
		}
		p = p.WithQUIC(idle, keepAlive, pmtud)
	}
	if changed("hop-interval") {
		p = p.WithPortHopInterval(f.hopInterval)
	}
	if changed("socks5") || changed("http") || changed("dual") {
		socks, http, dual := p.SOCKS5Listen, p.HTTPListen, p.DualMode
		if changed("socks5") {
			socks = f.socks
		}
		if changed("http") {
			http = f.http
		}
		if changed("dual") {
			dual = f.dual
		}
		p = p.WithListen(socks, http, dual)
	}
	if changed("fast-open") || changed("lazy") {
		fastOpen, lazy := p.FastOpen, p.Lazy
		if changed("fast-open") {
			fastOpen = f.fastOpen
		}
		if changed("lazy") {
			lazy = f.lazy
		}
		p = p.WithPerformance(fastOpen, lazy)
	}
	return p
}

var (
	newFlags  profileFlags
	setFlags  profileFlags
	newUse    bool
	newPreset string
)

var profileCmd = &cobra.Command{
	Use:     "profile",
	Aliases: []string{"profiles"},
	Short:   "Manage connection profiles",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, st, closeDB := openStore()
		defer closeDB()

		if err := geoip.Init(cfg.GeoIP.CountryPath); err != nil {
			logger.Log.Debugf("GeoIP disabled: %v", err)
		}
		defer geoip.Close()

		profiles, err := st.List()
		if err != nil {
			logger.Log.Fatalf("%v", err)
		}
		activeID, _ := st.ActiveID()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "\tID\tNAME\tSERVER\tRULES\tSTATUS")
		for _, p := range profiles {
			marker := ""
			if p.ID == activeID {
				marker = "*"
			}
			server := p.Server
			if cc := geoip.Country(p.Host()); cc != "" {
				server = fmt.Sprintf("%s (%s)", server, cc)
			}
			status := "ok"
			if res := profile.Validate(p); !res.Valid {
				status = fmt.Sprintf("%d error(s)", len(res.Errors))
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", marker, shortID(p.ID), p.Name, server, rulesSummary(p), status)
		}
		w.Flush()
	},
}

var profileNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create a profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, st, closeDB := openStore()
		defer closeDB()

		p := newFlags.apply(cmd, newProfile(cfg))
		if len(args) == 1 {
			p = p.WithName(args[0])
		}

		rs, err := routing.Preset(newPreset, p.ID)
		if err != nil {
			logger.Log.Fatalf("%v", err)
		}
		p = p.WithRules(rs)

		if err := st.Save(p); err != nil {
			logger.Log.Fatalf("Error saving profile: %v", err)
		}
		if newUse {
			if err := st.SetActive(p.ID); err != nil {
				logger.Log.Fatalf("%v", err)
			}
		}
		logger.Log.Infof("Created profile %s (%s)", p.Name, shortID(p.ID))

		if res := profile.Validate(p); !res.Valid {
			logger.Log.Warnf("Profile is not complete yet: %s", res.ErrorMessage())
		}
	},
}

var profileDuplicateCmd = &cobra.Command{
	Use:   "duplicate <profile>",
	Short: "Copy a profile under a new id",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, st, closeDB := openStore()
		defer closeDB()

		src := loadProfile(st, args[0])
		d, err := st.Duplicate(src.ID)
		if err != nil {
			logger.Log.Fatalf("%v", err)
		}
		logger.Log.Infof("Created %s (%s)", d.Name, shortID(d.ID))
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:     "delete <profile>",
	Aliases: []string{"rm"},
	Short:   "Delete a profile",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, st, closeDB := openStore()
		defer closeDB()

		p := loadProfile(st, args[0])
		err := st.Delete(p.ID)
		switch {
		case errors.Is(err, store.ErrActiveProfile):
			logger.Log.Fatalf("%s is the active profile; switch with 'hy2ctl profile use' first", p.Name)
		case err != nil:
			logger.Log.Fatalf("%v", err)
		}
		logger.Log.Infof("Deleted %s", p.Name)
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use <profile>",
	Short: "Make a profile active",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, st, closeDB := openStore()
		defer closeDB()

		p := loadProfile(st, args[0])
		if err := st.SetActive(p.ID); err != nil {
			logger.Log.Fatalf("%v", err)
		}
		logger.Log.Infof("Active profile: %s", p.Name)
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show [profile]",
	Short: "Print a profile as YAML",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, st, closeDB := openStore()
		defer closeDB()

		p := loadProfile(st, firstArg(args))
		out, err := yaml.Marshal(p)
		if err != nil {
			logger.Log.Fatalf("%v", err)
		}
		fmt.Print(string(out))
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set [profile]",
	Short: "Change profile fields",
	Long:  `Only the flags given are changed. Without a profile argument the active profile is edited.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, st, closeDB := openStore()
		defer closeDB()

		p := setFlags.apply(cmd, loadProfile(st, firstArg(args)))
		res := profile.Validate(p)
		if !res.Valid {
			printValidation(p.Name, res.Errors, res.Warnings)
			logger.Log.Fatalf("Not saved")
		}
		if err := st.Save(p); err != nil {
			logger.Log.Fatalf("Error saving profile: %v", err)
		}
		logger.Log.Infof("Updated %s", p.Name)
	},
}

func rulesSummary(p profile.Profile) string {
	if p.Rules == nil {
		return "-"
	}
	state := "off"
	if p.Rules.Enabled {
		state = "on"
	}
	return fmt.Sprintf("%d (%s, default %s)", len(p.Rules.EnabledRules()), state, p.Rules.Default)
}

func init() {
	newFlags.register(profileNewCmd)
	profileNewCmd.Flags().BoolVar(&newUse, "use", false, "Make the new profile active")
	profileNewCmd.Flags().StringVar(&newPreset, "preset", "default", "Rule preset for the new profile")
	setFlags.register(profileSetCmd)

	profileCmd.AddCommand(profileListCmd, profileNewCmd, profileDuplicateCmd, profileDeleteCmd, profileUseCmd, profileShowCmd, profileSetCmd)
	rootCmd.AddCommand(profileCmd)
}
