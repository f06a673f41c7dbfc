// Package profile declares the node's static capability table and the
// derived views (caps, commands, permissions) sent to the gateway during
// registration.
package profile

// ClientID is the fixed client identifier sent in connect params.
const ClientID = "node-host"

// ClientVersion is the compiled-in semver client version.
const ClientVersion = "1.0.0"

// ProtocolMin and ProtocolMax bound the single supported protocol version.
const (
	ProtocolMin = 3
	ProtocolMax = 3
)

// declaration is one entry of the static capability table: a concrete
// command under a category, with its default permission grant.
type declaration struct {
	category string
	command  string
	granted  bool
}

// declarations is the canonical, declaration-ordered capability table. The
// richer variant from the source tree is authoritative: file I/O covers
// read/list/rg and write/move/delete, plus process exec, screenshot, and
// system info.
var declarations = []declaration{
	{category: "file", command: "file.read", granted: true},
	{category: "file", command: "file.write", granted: false},
	{category: "process", command: "process.exec", granted: true},
	{category: "system", command: "system.screenshot", granted: true},
	{category: "system", command: "system.info", granted: true},
}

// Profile exposes the three derived registration views over the static
// declaration table.
type Profile struct{}

// New returns the single static node profile.
func New() Profile {
	return Profile{}
}

// Caps returns the ordered, unique list of category names in
// first-occurrence order.
func (Profile) Caps() []string {
	seen := make(map[string]bool, len(declarations))
	caps := make([]string, 0, len(declarations))
	for _, d := range declarations {
		if seen[d.category] {
			continue
		}
		seen[d.category] = true
		caps = append(caps, d.category)
	}
	return caps
}

// Commands returns the concrete command list in declaration order.
func (Profile) Commands() []string {
	commands := make([]string, 0, len(declarations))
	for _, d := range declarations {
		commands = append(commands, d.command)
	}
	return commands
}

// Permissions returns the command → default-grant map.
func (Profile) Permissions() map[string]bool {
	permissions := make(map[string]bool, len(declarations))
	for _, d := range declarations {
		permissions[d.command] = d.granted
	}
	return permissions
}
