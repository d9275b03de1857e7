// Package proof implements wallet ownership proofs: a signable challenge
// message bound to a user and a timestamp, and a verifier that checks the
// detached ed25519 signature, enforces a freshness window and rejects replays.
package proof

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/common"
)

// challengeTag identifies this application's challenges. Changing it
// invalidates every outstanding link attempt.
const challengeTag = "GovernanceBot Wallet Link"

// BuildChallenge formats the message a wallet signs to prove ownership.
// The timestamp rides inside the message so the verifier can bound freshness
// without any server-side state besides the replay cache.
func BuildChallenge(userID string, ts time.Time) string {
	return fmt.Sprintf("%s | user=%s | ts=%d", challengeTag, userID, ts.UnixMilli())
}

// ParseChallenge extracts the user id and timestamp from a challenge message.
// Messages not produced by BuildChallenge fail with ErrInvalidInput.
func ParseChallenge(message string) (userID string, ts time.Time, err error) {
	parts := strings.Split(message, " | ")
	if len(parts) != 3 || parts[0] != challengeTag {
		return "", time.Time{}, fmt.Errorf("%w: malformed challenge", common.ErrInvalidInput)
	}

	userPart, ok := strings.CutPrefix(parts[1], "user=")
	if !ok || userPart == "" {
		return "", time.Time{}, fmt.Errorf("%w: malformed challenge user", common.ErrInvalidInput)
	}

	tsPart, ok := strings.CutPrefix(parts[2], "ts=")
	if !ok {
		return "", time.Time{}, fmt.Errorf("%w: malformed challenge timestamp", common.ErrInvalidInput)
	}
	millis, err := strconv.ParseInt(tsPart, 10, 64)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: malformed challenge timestamp", common.ErrInvalidInput)
	}

	return userPart, time.UnixMilli(millis), nil
}
