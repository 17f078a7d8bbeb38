package link

// Link is a decoded hysteria2:// share link.
type Link struct {
	RawURI string
	Name   string // fragment

	Host string
	// Ports is a single port, a range such as 20000-50000, or a list the
	// server advertises for hopping.
	Ports string
	Auth  string

	SNI       string
	Insecure  bool
	PinSHA256 string

	Obfs         string // "salamander"
	ObfsPassword string
}

// Server joins host and ports the way the client config expects.
func (l *Link) Server() string {
	host := l.Host
	if needsBrackets(host) {
		host = "[" + host + "]"
	}
	if l.Ports == "" {
		return host
	}
	return host + ":" + l.Ports
}
