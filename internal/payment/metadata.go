package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"
)

// MetadataSchemaVersion is written under the "schema" key of every session
// this service creates. Sessions without it predate versioning.
const MetadataSchemaVersion = "1"

const (
	metaSchema         = "schema"
	metaUserID         = "userId"
	metaDeliveryMethod = "deliveryMethod"
	metaRelayID        = "relayId"
	metaRelayName      = "relayName"
	metaRelayAddress   = "relayAddress"
	metaProductSlugs   = "productSlugs"
)

// MaxMetadataValue is the longest metadata value, in bytes, the provider
// accepts.
const MaxMetadataValue = 500

// SessionMetadata makes a checkout session self-describing: the webhook
// reads delivery intent from here, never from the buyer's cart.
type SessionMetadata struct {
	Version        string
	UserID         string
	DeliveryMethod string
	RelayID        string
	RelayName      string
	RelayAddress   string
	ProductSlugs   []string
}

func (m SessionMetadata) HasRelay() bool {
	return m.RelayID != ""
}

func (m SessionMetadata) Encode() map[string]string {
	out := map[string]string{
		metaSchema:         MetadataSchemaVersion,
		metaUserID:         m.UserID,
		metaDeliveryMethod: m.DeliveryMethod,
		metaProductSlugs:   encodeSlugs(m.ProductSlugs),
	}
	if m.HasRelay() {
		out[metaRelayID] = truncate(m.RelayID)
		out[metaRelayName] = truncate(m.RelayName)
		out[metaRelayAddress] = truncate(m.RelayAddress)
	}
	return out
}

// DecodeSessionMetadata reads metadata written by any schema version this
// build knows about.
func DecodeSessionMetadata(raw map[string]string) (SessionMetadata, error) {
	version := raw[metaSchema]
	switch version {
	case "", MetadataSchemaVersion:
	default:
		return SessionMetadata{}, fmt.Errorf("unsupported metadata schema %q", version)
	}

	m := SessionMetadata{
		Version:        version,
		UserID:         strings.TrimSpace(raw[metaUserID]),
		DeliveryMethod: strings.TrimSpace(raw[metaDeliveryMethod]),
		RelayID:        strings.TrimSpace(raw[metaRelayID]),
		RelayName:      raw[metaRelayName],
		RelayAddress:   raw[metaRelayAddress],
	}
	if m.UserID == "" {
		return SessionMetadata{}, errors.New("metadata has no userId")
	}

	if slugs := raw[metaProductSlugs]; slugs != "" {
		if err := json.Unmarshal([]byte(slugs), &m.ProductSlugs); err != nil {
			// Unversioned sessions wrote a comma separated list.
			if version != "" {
				return SessionMetadata{}, fmt.Errorf("productSlugs: %w", err)
			}
			m.ProductSlugs = strings.Split(slugs, ",")
		}
	}
	return m, nil
}

// encodeSlugs drops trailing slugs until the JSON fits in one value. The
// slugs are informational; the order snapshot comes from charged line items.
func encodeSlugs(slugs []string) string {
	for n := len(slugs); n >= 0; n-- {
		data, _ := json.Marshal(slugs[:n])
		if len(data) <= MaxMetadataValue {
			if n < len(slugs) {
				log.Printf("[PAYMENT] [WARN] productSlugs metadata truncated: kept %d of %d slugs", n, len(slugs))
			}
			return string(data)
		}
	}
	return "[]"
}

// truncate cuts s to MaxMetadataValue bytes without splitting a rune.
func truncate(s string) string {
	if len(s) <= MaxMetadataValue {
		return s
	}
	cut := MaxMetadataValue
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
