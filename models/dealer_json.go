// ABOUTME: JSON encoding for DealerRecord with an extension map
// ABOUTME: Unknown keys are captured in Extra on decode and written back on encode
package models

import (
	"encoding/json"
)

var dealerKnownKeys = map[string]struct{}{
	"id":            {},
	"name":          {},
	"address":       {},
	"phone":         {},
	"email":         {},
	"website":       {},
	"contactPerson": {},
	"status":        {},
	"lastContact":   {},
	"notes":         {},
	"createdAt":     {},
	"updatedAt":     {},
}

// dealerAlias has DealerRecord's fields without its methods.
type dealerAlias DealerRecord

// MarshalJSON writes the modeled fields followed by any Extra keys that do
// not collide with them.
func (d DealerRecord) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(dealerAlias(d))
	if err != nil {
		return nil, err
	}
	if len(d.Extra) == 0 {
		return known, nil
	}

	merged := make(map[string]json.RawMessage, len(dealerKnownKeys)+len(d.Extra))
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	for k, v := range d.Extra {
		if _, isKnown := dealerKnownKeys[k]; isKnown {
			continue
		}
		merged[k] = v
	}
	return json.Marshal(merged)
}

// UnmarshalJSON decodes the modeled fields and keeps everything else in Extra.
func (d *DealerRecord) UnmarshalJSON(data []byte) error {
	var alias dealerAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k := range dealerKnownKeys {
		delete(raw, k)
	}

	*d = DealerRecord(alias)
	if len(raw) > 0 {
		d.Extra = raw
	} else {
		d.Extra = nil
	}
	return nil
}
