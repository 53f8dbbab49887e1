package terminus

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// batchSignature computes a deterministic signature for a command batch
// (hash of the ordered keystrokes).
func batchSignature(commands []Command) string {
	keys := make([]string, len(commands))
	for i, c := range commands {
		keys[i] = c.Keystrokes
	}
	raw, _ := json.Marshal(keys)
	h := sha256.Sum256(raw)
	return fmt.Sprintf("%x", h[:8])
}

// DetectRepeatedBatch checks whether the most recent windowSize batch
// signatures follow a repeating pattern of length 1, 2, or 3. A model that
// keeps emitting the same commands against an unchanging terminal is stuck.
func DetectRepeatedBatch(signatures []string, windowSize int) bool {
	if len(signatures) < windowSize {
		return false
	}
	window := signatures[len(signatures)-windowSize:]

	for patternLen := 1; patternLen <= 3; patternLen++ {
		if windowSize%patternLen != 0 {
			continue
		}
		pattern := window[:patternLen]
		allMatch := true
		for i := patternLen; i < windowSize && allMatch; i += patternLen {
			for j := 0; j < patternLen; j++ {
				if window[i+j] != pattern[j] {
					allMatch = false
					break
				}
			}
		}
		if allMatch {
			return true
		}
	}

	return false
}
