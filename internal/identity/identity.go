// Package identity derives a stable identifier for the logger instance so
// capture sessions recorded from the same edge device can be correlated
// across restarts and reimaged filesystems.
package identity

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Instance is the resolved identity of this logger process's host. The
// resolver is best-effort: fields it cannot populate stay empty and never
// abort startup.
type Instance struct {
	HardwareID  string
	MachineID   string
	MACAddress  string
	GeneratedID string

	// ID is the composite digest used to tag capture sessions.
	ID string

	// Source names the strongest identifier that was found.
	Source string
}

var cached Instance
var once sync.Once

// resolverEnv isolates filesystem and network lookups so tests can swap
// them out.
type resolverEnv struct {
	readFile    func(path string) ([]byte, error)
	interfaces  func() ([]net.Interface, error)
	userHomeDir func() (string, error)
	mkdirAll    func(path string, perm os.FileMode) error
	writeFile   func(name string, data []byte, perm os.FileMode) error
}

func defaultEnv() resolverEnv {
	return resolverEnv{
		readFile:    os.ReadFile,
		interfaces:  net.Interfaces,
		userHomeDir: os.UserHomeDir,
		mkdirAll:    os.MkdirAll,
		writeFile:   os.WriteFile,
	}
}

// Resolve computes the instance identity once per process. It tries a
// hardware serial first (device-tree, then cpuinfo on Pi-class boards), then
// the OS machine-id, then the first usable MAC address, and finally a
// persisted random identifier.
func Resolve() Instance {
	once.Do(func() {
		cached = resolveWithEnv(defaultEnv())
	})
	return cached
}

func resolveWithEnv(env resolverEnv) Instance {
	hw := resolveHardwareID(env)
	machine := cleanID(readFileID(env, "/etc/machine-id"))
	mac := resolveMAC(env)

	var generated string
	if hw == "" && machine == "" {
		generated = resolveGeneratedID(env)
	}

	return Instance{
		HardwareID:  hw,
		MachineID:   machine,
		MACAddress:  mac,
		GeneratedID: generated,
		ID:          digest(hw, machine, mac, generated),
		Source:      source(hw, machine, generated),
	}
}

func resolveHardwareID(env resolverEnv) string {
	// Device-tree serials carry NUL padding on ARM boards.
	for _, path := range []string{
		"/proc/device-tree/serial-number",
		"/sys/firmware/devicetree/base/serial-number",
	} {
		if data, err := env.readFile(path); err == nil {
			data = bytes.ReplaceAll(data, []byte{0x00}, nil)
			if id := cleanID(string(data)); id != "" {
				return id
			}
		}
	}

	if id := cpuinfoSerial(env); id != "" {
		return id
	}

	return cleanID(readFileID(env, "/sys/class/dmi/id/product_uuid"))
}

// cpuinfoSerial parses the "Serial : ..." line Raspberry Pi kernels expose.
func cpuinfoSerial(env resolverEnv) string {
	data, err := env.readFile("/proc/cpuinfo")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "Serial") {
			continue
		}
		_, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		if id := cleanID(value); id != "" {
			return id
		}
	}
	return ""
}

func resolveMAC(env resolverEnv) string {
	ifaces, err := env.interfaces()
	if err != nil {
		return ""
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || len(iface.HardwareAddr) == 0 {
			continue
		}
		return iface.HardwareAddr.String()
	}
	return ""
}

// resolveGeneratedID loads or creates the random fallback identifier at
// ~/.serialmail-logger/instance-id. All failures degrade to an empty string.
func resolveGeneratedID(env resolverEnv) string {
	home, err := env.userHomeDir()
	if err != nil || home == "" {
		return ""
	}
	path := filepath.Join(home, ".serialmail-logger", "instance-id")

	if data, err := env.readFile(path); err == nil {
		if id := cleanID(string(data)); id != "" {
			return id
		}
	}

	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ""
	}
	id := hex.EncodeToString(b[:])

	_ = env.mkdirAll(filepath.Dir(path), 0o700)
	_ = env.writeFile(path, []byte(id), 0o600)
	return id
}

func readFileID(env resolverEnv, path string) string {
	data, err := env.readFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

func cleanID(s string) string {
	s = strings.Trim(s, "\x00")
	return strings.TrimSpace(s)
}

// digest hashes the discovered identifiers into one stable hex string.
func digest(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprint(h, p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func source(hw, machine, generated string) string {
	switch {
	case hw != "":
		return "hardware"
	case machine != "":
		return "machine-id"
	case generated != "":
		return "generated"
	default:
		return ""
	}
}
