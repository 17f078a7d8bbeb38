package main

import (
	"fmt"
	"strings"

	"hy2ctl/internal/config"
	"hy2ctl/internal/db"
	"hy2ctl/internal/logger"
	"hy2ctl/internal/profile"
	"hy2ctl/internal/store"
)

// openStore loads the config and opens the profile store, creating the
// default profile on first use. The returned func closes the database.
func openStore() (*config.Config, *store.Store, func()) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		logger.Log.Fatalf("Error loading config: %v", err)
	}

	database, err := db.Connect(cfg.Database.Path)
	if err != nil {
		logger.Log.Fatalf("Error connecting to DB: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		logger.Log.Fatalf("Error migrating DB: %v", err)
	}

	st := store.New(database)
	if _, err := st.EnsureDefault(newProfile(cfg)); err != nil {
		logger.Log.Fatalf("Error creating default profile: %v", err)
	}
	return cfg, st, func() { db.Close(database) }
}

// newProfile returns a fresh profile seeded with the configured defaults.
func newProfile(cfg *config.Config) profile.Profile {
	return withDefaults(cfg, profile.New())
}

// withDefaults applies the configured listeners, bandwidth and fast open.
func withDefaults(cfg *config.Config, p profile.Profile) profile.Profile {
	d := cfg.Defaults
	return p.
		WithListen(d.SOCKS5Listen, d.HTTPListen, false).
		WithBandwidth(d.BandwidthUp, d.BandwidthDown).
		WithPerformance(d.FastOpen, false)
}

// loadProfile resolves ref, or the active profile when ref is empty.
func loadProfile(st *store.Store, ref string) profile.Profile {
	var (
		p   profile.Profile
		err error
	)
	if ref == "" {
		p, err = st.Active()
	} else {
		p, err = st.Resolve(ref)
	}
	if err != nil {
		logger.Log.Fatalf("%v", err)
	}
	return p
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// printValidation prints errors and warnings; it reports whether p is valid.
func printValidation(name string, errs, warns []string) bool {
	for _, w := range warns {
		fmt.Printf("  ⚠️  %s\n", w)
	}
	if len(errs) == 0 {
		fmt.Printf("✅ %s is valid\n", name)
		return true
	}
	fmt.Printf("❌ %s has %d error(s):\n", name, len(errs))
	fmt.Println("  - " + strings.Join(errs, "\n  - "))
	return false
}
