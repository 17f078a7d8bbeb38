package model

import (
	"time"
)

type Profile struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Connection
	Server string
	Auth   string

	TLSSNI       string
	TLSInsecure  bool
	TLSPinSHA256 string

	ObfsEnabled  bool
	ObfsPassword string

	// Transport tuning
	BandwidthUp             int
	BandwidthDown           int
	MaxIdleTimeout          int
	KeepAlivePeriod         int
	DisablePathMTUDiscovery bool
	PortHopInterval         int

	// Local listeners
	SOCKS5Listen string
	HTTPListen   string
	DualMode     bool

	FastOpen bool
	Lazy     bool

	// Rule set header. HasRules distinguishes "no rule set" from an empty one.
	HasRules     bool
	RulesEnabled bool
	RulesDefault string

	// Relationships
	Rules []Rule `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`
}

// Rule ids are only unique within a profile; duplicated profiles keep them.
type Rule struct {
	ProfileID string `gorm:"primaryKey"`
	ID        string `gorm:"primaryKey"`
	Position  int    // order inside the rule set

	Pattern     string
	Policy      string
	Description string
	Enabled     bool
}

// Setting is a small key/value table for store-wide state such as the
// active profile.
type Setting struct {
	Name  string `gorm:"primaryKey"`
	Value string
}
