package license

import (
	"encoding/json"

	"github.com/coder4567/nwf-provider-license-api-1/internal/config"
)

// KeyPayload is the user key sent to the issuer so it can encrypt the
// license it mints.
type KeyPayload struct {
	HexValue string
	TextHint string
}

// DefaultKeyPayload is the shared key used for every fallback fetch. It is
// not derived per reader.
var DefaultKeyPayload = KeyPayload{
	HexValue: config.DefaultUserKeyHex,
	TextHint: config.DefaultUserKeyHint,
}

// KeyPayloadFromConfig returns the configured key payload
func KeyPayloadFromConfig(cfg config.IssuerConfig) KeyPayload {
	return KeyPayload{
		HexValue: cfg.UserKeyHex,
		TextHint: cfg.UserKeyHint,
	}
}

type userKey struct {
	TextHint string `json:"text_hint"`
	HexValue string `json:"hex_value"`
}

type encryption struct {
	UserKey userKey `json:"user_key"`
}

type keyRequest struct {
	Encryption encryption `json:"encryption"`
}

// MarshalJSON encodes the payload in the issuer's request shape:
// {"encryption":{"user_key":{"text_hint":...,"hex_value":...}}}
func (p KeyPayload) MarshalJSON() ([]byte, error) {
	return json.Marshal(keyRequest{
		Encryption: encryption{
			UserKey: userKey{
				TextHint: p.TextHint,
				HexValue: p.HexValue,
			},
		},
	})
}
