package store

import (
	"errors"
	"fmt"
	"strings"

	"hy2ctl/internal/model"
	"hy2ctl/internal/profile"
	"hy2ctl/internal/routing"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound      = errors.New("profile not found")
	ErrAmbiguous     = errors.New("profile reference is ambiguous")
	ErrLastProfile   = errors.New("cannot delete the only profile")
	ErrActiveProfile = errors.New("cannot delete the active profile")
)

const activeKey = "active_profile"

// Store persists profiles and their rule sets.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Save inserts or replaces p together with its rules.
func (s *Store) Save(p profile.Profile) error {
	rec := toRecord(p)
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Rules").Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error; err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		if err := tx.Where("profile_id = ?", p.ID).Delete(&model.Rule{}).Error; err != nil {
			return fmt.Errorf("clear rules: %w", err)
		}
		if len(rec.Rules) > 0 {
			if err := tx.Create(&rec.Rules).Error; err != nil {
				return fmt.Errorf("save rules: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) Get(id string) (profile.Profile, error) {
	var rec model.Profile
	err := s.db.Preload("Rules", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return profile.Profile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return profile.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return fromRecord(rec), nil
}

// List returns all profiles in creation order.
func (s *Store) List() ([]profile.Profile, error) {
	var recs []model.Profile
	err := s.db.Preload("Rules", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Order("created_at ASC, name ASC").Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	out := make([]profile.Profile, 0, len(recs))
	for _, r := range recs {
		out = append(out, fromRecord(r))
	}
	return out, nil
}

// Resolve finds a profile by id, then by name (case-insensitive), then by
// unique id prefix.
func (s *Store) Resolve(ref string) (profile.Profile, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return profile.Profile{}, ErrNotFound
	}
	if p, err := s.Get(ref); err == nil {
		return p, nil
	} else if !errors.Is(err, ErrNotFound) {
		return profile.Profile{}, err
	}

	all, err := s.List()
	if err != nil {
		return profile.Profile{}, err
	}

	var byName, byPrefix []profile.Profile
	for _, p := range all {
		if strings.EqualFold(p.Name, ref) {
			byName = append(byName, p)
		}
		if strings.HasPrefix(p.ID, ref) {
			byPrefix = append(byPrefix, p)
		}
	}
	for _, matches := range [][]profile.Profile{byName, byPrefix} {
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], nil
		default:
			return profile.Profile{}, fmt.Errorf("%w: %s", ErrAmbiguous, ref)
		}
	}
	return profile.Profile{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
}

func (s *Store) Count() (int64, error) {
	var n int64
	if err := s.db.Model(&model.Profile{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return n, nil
}

// ActiveID returns the id of the active profile, empty when none is set.
func (s *Store) ActiveID() (string, error) {
	var set model.Setting
	err := s.db.First(&set, "name = ?", activeKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load active profile: %w", err)
	}
	return set.Value, nil
}

func (s *Store) Active() (profile.Profile, error) {
	id, err := s.ActiveID()
	if err != nil {
		return profile.Profile{}, err
	}
	if id == "" {
		return profile.Profile{}, fmt.Errorf("%w: no active profile", ErrNotFound)
	}
	return s.Get(id)
}

func (s *Store) SetActive(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	set := model.Setting{Name: activeKey, Value: id}
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&set).Error; err != nil {
		return fmt.Errorf("set active profile: %w", err)
	}
	return nil
}

// Duplicate stores a copy of the profile under a new id.
func (s *Store) Duplicate(id string) (profile.Profile, error) {
	p, err := s.Get(id)
	if err != nil {
		return profile.Profile{}, err
	}
	d := p.Duplicate()
	if err := s.Save(d); err != nil {
		return profile.Profile{}, err
	}
	return d, nil
}

// Delete removes a profile and its rules. The only profile and the active
// profile cannot be deleted.
func (s *Store) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	n, err := s.Count()
	if err != nil {
		return err
	}
	if n <= 1 {
		return ErrLastProfile
	}

	active, err := s.ActiveID()
	if err != nil {
		return err
	}
	if active == id {
		return ErrActiveProfile
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("profile_id = ?", id).Delete(&model.Rule{}).Error; err != nil {
			return fmt.Errorf("delete rules: %w", err)
		}
		if err := tx.Delete(&model.Profile{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}
		return nil
	})
}

// EnsureDefault makes sure there is an active profile. An empty store gets
// seed, which becomes active; a store without an active profile activates
// its oldest one.
func (s *Store) EnsureDefault(seed profile.Profile) (profile.Profile, error) {
	if p, err := s.Active(); err == nil {
		return p, nil
	} else if !errors.Is(err, ErrNotFound) {
		return profile.Profile{}, err
	}

	all, err := s.List()
	if err != nil {
		return profile.Profile{}, err
	}

	target := seed
	if len(all) > 0 {
		target = all[0]
	} else if err := s.Save(seed); err != nil {
		return profile.Profile{}, err
	}

	if err := s.SetActive(target.ID); err != nil {
		return profile.Profile{}, err
	}
	return target, nil
}

func toRecord(p profile.Profile) model.Profile {
	rec := model.Profile{
		ID:                      p.ID,
		Name:                    p.Name,
		Server:                  p.Server,
		Auth:                    p.Auth,
		TLSSNI:                  p.TLSSNI,
		TLSInsecure:             p.TLSInsecure,
		TLSPinSHA256:            p.TLSPinSHA256,
		ObfsEnabled:             p.ObfsEnabled,
		ObfsPassword:            p.ObfsPassword,
		BandwidthUp:             p.BandwidthUp,
		BandwidthDown:           p.BandwidthDown,
		MaxIdleTimeout:          p.MaxIdleTimeout,
		KeepAlivePeriod:         p.KeepAlivePeriod,
		DisablePathMTUDiscovery: p.DisablePathMTUDiscovery,
		PortHopInterval:         p.PortHopInterval,
		SOCKS5Listen:            p.SOCKS5Listen,
		HTTPListen:              p.HTTPListen,
		DualMode:                p.DualMode,
		FastOpen:                p.FastOpen,
		Lazy:                    p.Lazy,
	}

	if p.Rules == nil {
		return rec
	}
	rec.HasRules = true
	rec.RulesEnabled = p.Rules.Enabled
	rec.RulesDefault = p.Rules.Default.String()
	for i, r := range p.Rules.Rules {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		rec.Rules = append(rec.Rules, model.Rule{
			ID:          r.ID,
			ProfileID:   p.ID,
			Position:    i,
			Pattern:     r.Pattern,
			Policy:      r.Policy.String(),
			Description: r.Description,
			Enabled:     r.Enabled,
		})
	}
	return rec
}

func fromRecord(rec model.Profile) profile.Profile {
	p := profile.Profile{
		ID:                      rec.ID,
		Name:                    rec.Name,
		Server:                  rec.Server,
		Auth:                    rec.Auth,
		TLSSNI:                  rec.TLSSNI,
		TLSInsecure:             rec.TLSInsecure,
		TLSPinSHA256:            rec.TLSPinSHA256,
		ObfsEnabled:             rec.ObfsEnabled,
		ObfsPassword:            rec.ObfsPassword,
		BandwidthUp:             rec.BandwidthUp,
		BandwidthDown:           rec.BandwidthDown,
		MaxIdleTimeout:          rec.MaxIdleTimeout,
		KeepAlivePeriod:         rec.KeepAlivePeriod,
		DisablePathMTUDiscovery: rec.DisablePathMTUDiscovery,
		PortHopInterval:         rec.PortHopInterval,
		SOCKS5Listen:            rec.SOCKS5Listen,
		HTTPListen:              rec.HTTPListen,
		DualMode:                rec.DualMode,
		FastOpen:                rec.FastOpen,
		Lazy:                    rec.Lazy,
	}

	if !rec.HasRules {
		return p
	}
	// unknown values fall back to TUNNEL, the zero policy
	def, _ := routing.ParsePolicy(rec.RulesDefault)
	rs := routing.RuleSet{
		ProfileID: rec.ID,
		Default:   def,
		Enabled:   rec.RulesEnabled,
		Rules:     make([]routing.Rule, 0, len(rec.Rules)),
	}
	for _, r := range rec.Rules {
		policy, _ := routing.ParsePolicy(r.Policy)
		rs.Rules = append(rs.Rules, routing.Rule{
			ID:          r.ID,
			Pattern:     r.Pattern,
			Policy:      policy,
			Description: r.Description,
			Enabled:     r.Enabled,
		})
	}
	p.Rules = &rs
	return p
}
