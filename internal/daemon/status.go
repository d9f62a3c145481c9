package daemon

// Status is the reachability of the local node daemon.
type Status string

const (
	StatusDown Status = "down"
	StatusUp   Status = "up"
)

// ConnectionStatus mirrors the daemon's VPN connection state.
type ConnectionStatus string

const (
	NotConnected  ConnectionStatus = "NotConnected"
	Connecting    ConnectionStatus = "Connecting"
	Connected     ConnectionStatus = "Connected"
	Disconnecting ConnectionStatus = "Disconnecting"
	OnHold        ConnectionStatus = "OnHold"
	Unknown       ConnectionStatus = "Unknown"
)

// ParseConnectionStatus maps the daemon's status string. Anything
// unrecognised is Unknown.
func ParseConnectionStatus(s string) ConnectionStatus {
	switch cs := ConnectionStatus(s); cs {
	case NotConnected, Connecting, Connected, Disconnecting, OnHold:
		return cs
	default:
		return Unknown
	}
}
