package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// targetIDLength is the number of hex characters in a dedicated target
// suffix. Six characters keep names short while avoiding collisions
// between files with the same base name.
const targetIDLength = 6

// DedicatedTarget derives a deterministic per-source target identity.
// The same source path always maps to the same target.
func DedicatedTarget(sourcePath string) TargetID {
	if sourcePath == "" {
		return TargetDefault
	}
	abs := sourcePath
	if resolved, err := filepath.Abs(sourcePath); err == nil {
		abs = resolved
	}
	base := filepath.Base(abs)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		base = "source"
	}
	h := sha256.Sum256([]byte(abs))
	return TargetID("py/" + base + "-" + hex.EncodeToString(h[:])[:targetIDLength])
}

// TargetFor resolves the effective target for a send: the dedicated
// per-source target when requested, the shared target otherwise.
func TargetFor(sourcePath string, dedicated bool) TargetID {
	if dedicated {
		return DedicatedTarget(sourcePath)
	}
	return TargetDefault
}
