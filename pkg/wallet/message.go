package wallet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const challengeIntro = "Sign this message to authenticate with the Registry Console."

// ChallengeMessage builds the human-readable text a wallet is asked to sign.
func ChallengeMessage(address, nonce string, timestamp int64) string {
	return fmt.Sprintf("%s\n\nAddress: %s\nNonce: %s\nTimestamp: %d", challengeIntro, address, nonce, timestamp)
}

// Challenge is the parsed content of a challenge message.
type Challenge struct {
	Address   string
	Nonce     string
	Timestamp int64
}

// ParseChallenge extracts the fields of a message built by ChallengeMessage.
func ParseChallenge(message string) (Challenge, error) {
	if !strings.HasPrefix(message, challengeIntro) {
		return Challenge{}, errors.New("not a challenge message")
	}
	var c Challenge
	for _, line := range strings.Split(message, "\n") {
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		switch key {
		case "Address":
			c.Address = value
		case "Nonce":
			c.Nonce = value
		case "Timestamp":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return Challenge{}, fmt.Errorf("invalid challenge timestamp: %w", err)
			}
			c.Timestamp = ts
		}
	}
	if c.Address == "" || c.Nonce == "" {
		return Challenge{}, errors.New("challenge message is missing address or nonce")
	}
	return c, nil
}
