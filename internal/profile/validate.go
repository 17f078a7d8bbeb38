package profile

import (
	"strconv"
	"strings"
)

const (
	maxBandwidth = 10000

	minIdleTimeout = 5
	maxIdleTimeout = 300
	minKeepAlive   = 5
	maxKeepAlive   = 60
)

type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

func (v ValidationResult) ErrorMessage() string {
	return strings.Join(v.Errors, "\n")
}

// Validate runs every check and collects all failures. An enabled rule set
// contributes its own errors and warnings, prefixed with "routing: ".
func Validate(p Profile) ValidationResult {
	var errs, warns []string

	if strings.TrimSpace(p.Server) == "" {
		errs = append(errs, "server address must not be empty")
	}
	if strings.TrimSpace(p.Auth) == "" {
		errs = append(errs, "auth must not be empty")
	}

	if strings.Contains(p.Server, ":") {
		if msg := checkPorts(p.Server[strings.LastIndex(p.Server, ":")+1:]); msg != "" {
			errs = append(errs, msg)
		}
	}

	if p.BandwidthUp < 0 || p.BandwidthDown < 0 {
		errs = append(errs, "bandwidth must not be negative")
	}
	if p.BandwidthUp > maxBandwidth || p.BandwidthDown > maxBandwidth {
		errs = append(errs, "bandwidth is too large (at most 10000 Mbps)")
	}

	if p.MaxIdleTimeout < minIdleTimeout || p.MaxIdleTimeout > maxIdleTimeout {
		errs = append(errs, "max idle timeout must be between 5 and 300 seconds")
	}
	if p.KeepAlivePeriod < minKeepAlive || p.KeepAlivePeriod > maxKeepAlive {
		errs = append(errs, "keep-alive period must be between 5 and 60 seconds")
	}

	if p.ObfsEnabled && strings.TrimSpace(p.ObfsPassword) == "" {
		errs = append(errs, "obfuscation password is required when obfuscation is enabled")
	}

	if p.PortHopInterval < 0 {
		errs = append(errs, "port hop interval must not be negative")
	}

	if p.Rules != nil && p.Rules.Enabled {
		rv := p.Rules.Validate()
		for _, e := range rv.Errors {
			errs = append(errs, "routing: "+e)
		}
		for _, w := range rv.Warnings {
			warns = append(warns, "routing: "+w)
		}
	}

	return ValidationResult{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: warns,
	}
}

// checkPorts validates a single port or a hopping range such as 20000-50000.
func checkPorts(ports string) string {
	if !strings.Contains(ports, "-") {
		port, err := strconv.Atoi(ports)
		if err != nil || !validPort(port) {
			return "invalid server port, must be in range 1-65535"
		}
		return ""
	}

	parts := strings.Split(ports, "-")
	if len(parts) != 2 {
		return "port range must be in the form port1-port2"
	}
	start, err1 := strconv.Atoi(parts[0])
	end, err2 := strconv.Atoi(parts[1])
	switch {
	case err1 != nil || err2 != nil:
		return "port range must be numeric"
	case !validPort(start) || !validPort(end):
		return "port range values must be in range 1-65535"
	case start >= end:
		return "port range start must be less than end"
	}
	return ""
}

func validPort(p int) bool {
	return p >= 1 && p <= 65535
}
