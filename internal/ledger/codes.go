package ledger

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const (
	// Self-service claims and admin-originated claims carry distinct prefixes so
	// venue staff can tell them apart at the counter.
	codePrefixSelf  = "RDM"
	codePrefixAdmin = "ADM"

	codeRandomBytes = 4
)

// NewRedemptionCode generates a human-presentable claim ticket: prefix,
// unix-millis timestamp, and a random hex suffix.
func NewRedemptionCode(adminClaim bool) string {
	prefix := codePrefixSelf
	if adminClaim {
		prefix = codePrefixAdmin
	}

	suffix := make([]byte, codeRandomBytes)
	if _, err := rand.Read(suffix); err != nil {
		// crypto/rand failing is effectively unreachable; fall back to the clock.
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}

	return fmt.Sprintf("%s-%d-%s",
		prefix,
		time.Now().UnixMilli(),
		strings.ToUpper(hex.EncodeToString(suffix)),
	)
}
