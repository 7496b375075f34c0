package replay

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/magefree/battle-sim-go/internal/battle/events"
)

// Checksum returns a sha256 over a canonical rendering of the journal.
// Payload keys are sorted, so the digest does not depend on map order.
// The battle ID and timestamps are left out: two runs of the same battle
// from the same seed produce the same checksum.
func (j *Journal) Checksum() (string, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "JOURNAL:%d|%d\n", j.Seed, len(j.Entries))
	for _, entry := range j.Entries {
		buf.WriteString(entry.canonical())
	}

	hash := sha256.New()
	if _, err := hash.Write(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to compute hash: %w", err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

func (e *Entry) canonical() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "ENTRY:%d|%d|%s|%x|%s\n", e.Seq, e.Depth, e.Kind, e.RNGState, e.Err)
	buf.WriteString("IN:" + canonicalPayload(e.Input) + "\n")
	buf.WriteString("OUT:" + canonicalPayload(e.Output) + "\n")
	return buf.String()
}

func canonicalPayload(p events.Payload) string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		fmt.Fprintf(&buf, "%s=%T:%v;", k, p[k], p[k])
	}
	return buf.String()
}
