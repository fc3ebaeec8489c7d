package payment

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionMetadataEncodeDecode(t *testing.T) {
	in := SessionMetadata{
		UserID:         "u1",
		DeliveryMethod: "relay",
		RelayID:        "R-42",
		RelayName:      "Tabac du Port",
		RelayAddress:   "1 quai Est, 13002 Marseille",
		ProductSlugs:   []string{"bag-a", "bag-b"},
	}
	raw := in.Encode()
	assert.Equal(t, MetadataSchemaVersion, raw["schema"])
	assert.Equal(t, `["bag-a","bag-b"]`, raw["productSlugs"])

	out, err := DecodeSessionMetadata(raw)
	require.NoError(t, err)
	in.Version = MetadataSchemaVersion
	assert.Equal(t, in, out)
}

func TestSessionMetadataWithoutRelayOmitsRelayKeys(t *testing.T) {
	raw := SessionMetadata{UserID: "u1", DeliveryMethod: "home"}.Encode()
	_, ok := raw["relayId"]
	assert.False(t, ok)
}

func TestDecodeLegacyMetadata(t *testing.T) {
	out, err := DecodeSessionMetadata(map[string]string{
		"userId":         "u1",
		"deliveryMethod": "home",
		"productSlugs":   "bag-a,bag-b",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"bag-a", "bag-b"}, out.ProductSlugs)
}

func TestDecodeMetadataRejects(t *testing.T) {
	_, err := DecodeSessionMetadata(map[string]string{"schema": "9", "userId": "u1"})
	assert.Error(t, err)

	_, err = DecodeSessionMetadata(map[string]string{"schema": "1"})
	assert.Error(t, err)

	_, err = DecodeSessionMetadata(map[string]string{"schema": "1", "userId": "u1", "productSlugs": "a,b"})
	assert.Error(t, err)
}

func TestEncodeSlugsFitsProviderLimit(t *testing.T) {
	slugs := make([]string, 100)
	for i := range slugs {
		slugs[i] = strings.Repeat("x", 20)
	}
	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	raw := SessionMetadata{UserID: "u1", ProductSlugs: slugs}.Encode()
	assert.Contains(t, logs.String(), "[PAYMENT] [WARN] productSlugs metadata truncated")
	assert.LessOrEqual(t, len(raw["productSlugs"]), MaxMetadataValue)

	out, err := DecodeSessionMetadata(raw)
	require.NoError(t, err)
	assert.NotEmpty(t, out.ProductSlugs)
	assert.Less(t, len(out.ProductSlugs), len(slugs))
}

func TestEncodeSlugsKeepsShortListsQuietly(t *testing.T) {
	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	raw := SessionMetadata{UserID: "u1", ProductSlugs: []string{"bag-a", "bag-b"}}.Encode()
	assert.Equal(t, `["bag-a","bag-b"]`, raw["productSlugs"])
	assert.Empty(t, logs.String())
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	// One ASCII byte shifts every two-byte rune so the limit falls mid-rune.
	long := "a" + strings.Repeat("é", 300)
	raw := SessionMetadata{UserID: "u1", RelayID: "R1", RelayName: long, RelayAddress: "x"}.Encode()

	name := raw["relayName"]
	assert.True(t, utf8.ValidString(name))
	assert.LessOrEqual(t, len(name), MaxMetadataValue)
	assert.Equal(t, MaxMetadataValue-1, len(name))
	assert.True(t, strings.HasPrefix(long, name))
}
