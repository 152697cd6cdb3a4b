package identity

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newFileEnv builds a resolverEnv serving only the given file contents.
func newFileEnv(files map[string]string) resolverEnv {
	return resolverEnv{
		readFile: func(path string) ([]byte, error) {
			if v, ok := files[path]; ok {
				return []byte(v), nil
			}
			return nil, os.ErrNotExist
		},
		interfaces: func() ([]net.Interface, error) {
			return nil, nil
		},
		userHomeDir: func() (string, error) {
			return "", os.ErrNotExist
		},
		mkdirAll: func(path string, perm os.FileMode) error {
			return nil
		},
		writeFile: func(name string, data []byte, perm os.FileMode) error {
			return nil
		},
	}
}

func TestDeviceTreeSerialStripsNullsAndWhitespace(t *testing.T) {
	env := newFileEnv(map[string]string{
		"/proc/device-tree/serial-number": "ABC123\x00\x00\n",
	})

	inst := resolveWithEnv(env)
	if inst.HardwareID != "ABC123" {
		t.Fatalf("HardwareID = %q, want ABC123", inst.HardwareID)
	}
	if inst.Source != "hardware" {
		t.Fatalf("Source = %q, want hardware", inst.Source)
	}
}

func TestCpuinfoSerialParsing(t *testing.T) {
	const cpuinfo = `
processor	: 0
model name	: ARMv7 Processor rev 4 (v7l)
Serial		: 00000000deadbeef
`
	env := newFileEnv(map[string]string{
		"/proc/cpuinfo": cpuinfo,
	})

	if id := cpuinfoSerial(env); id != "00000000deadbeef" {
		t.Fatalf("cpuinfoSerial = %q, want 00000000deadbeef", id)
	}
}

func TestHardwareIDFallbackOrder(t *testing.T) {
	env := newFileEnv(map[string]string{
		"/sys/firmware/devicetree/base/serial-number": "DTREE123",
		"/sys/class/dmi/id/product_uuid":              "DMI-UUID",
	})

	if id := resolveHardwareID(env); id != "DTREE123" {
		t.Fatalf("resolveHardwareID = %q, want device-tree value", id)
	}
}

func TestMachineIDFallback(t *testing.T) {
	env := newFileEnv(map[string]string{
		"/etc/machine-id": "  machine-xyz \n",
	})

	inst := resolveWithEnv(env)
	if inst.MachineID != "machine-xyz" {
		t.Fatalf("MachineID = %q, want machine-xyz", inst.MachineID)
	}
	if inst.Source != "machine-id" {
		t.Fatalf("Source = %q, want machine-id", inst.Source)
	}
	if inst.GeneratedID != "" {
		t.Fatal("generated fallback should not run when machine-id exists")
	}
}

func TestGeneratedIDPersisted(t *testing.T) {
	home := t.TempDir()
	env := newFileEnv(nil)
	env.userHomeDir = func() (string, error) { return home, nil }
	env.mkdirAll = os.MkdirAll
	env.writeFile = os.WriteFile
	env.readFile = os.ReadFile

	inst := resolveWithEnv(env)
	if inst.GeneratedID == "" {
		t.Fatal("expected a generated identifier")
	}
	if inst.Source != "generated" {
		t.Fatalf("Source = %q, want generated", inst.Source)
	}

	data, err := os.ReadFile(filepath.Join(home, ".serialmail-logger", "instance-id"))
	if err != nil {
		t.Fatalf("generated id not persisted: %v", err)
	}
	if strings.TrimSpace(string(data)) != inst.GeneratedID {
		t.Fatal("persisted id does not match resolved id")
	}

	// A second resolution reuses the persisted value.
	again := resolveWithEnv(env)
	if again.GeneratedID != inst.GeneratedID {
		t.Fatalf("expected stable generated id, got %q then %q", inst.GeneratedID, again.GeneratedID)
	}
	if again.ID != inst.ID {
		t.Fatal("composite ID changed between resolutions")
	}
}

func TestCompositeIDStable(t *testing.T) {
	env := newFileEnv(map[string]string{
		"/proc/device-tree/serial-number": "SER42",
		"/etc/machine-id":                 "m-1",
	})

	a := resolveWithEnv(env)
	b := resolveWithEnv(env)
	if a.ID == "" {
		t.Fatal("expected a non-empty composite ID")
	}
	if a.ID != b.ID {
		t.Fatalf("composite ID not deterministic: %q vs %q", a.ID, b.ID)
	}
	if len(a.ID) != 64 {
		t.Fatalf("expected hex sha256 digest, got %d chars", len(a.ID))
	}
}

func TestEmptyEnvironmentDoesNotPanic(t *testing.T) {
	inst := resolveWithEnv(newFileEnv(nil))
	if inst.Source != "" {
		t.Fatalf("Source = %q, want empty for a bare environment", inst.Source)
	}
	if inst.ID == "" {
		t.Fatal("composite ID should still be derivable (digest of empty parts)")
	}
}
