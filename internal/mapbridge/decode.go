package mapbridge

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// handshakeTypes are the readiness tags emitted by the embed versions in the
// field. Older builds use snake case.
var handshakeTypes = map[string]bool{
	"mapReady":   true,
	"map_ready":  true,
	"ready":      true,
	"mapLoaded":  true,
	"map_loaded": true,
}

// selectionTypes are the tags a bin-click may carry. The set is permissive;
// the identifier fields below are what actually qualify a selection.
var selectionTypes = map[string]bool{
	"wasteBinClick":  true,
	"binClick":       true,
	"binSelected":    true,
	"markerClick":    true,
	"markerSelected": true,
}

// idFields is the ordered list of field names an identifier may hide under.
// The embed has drifted across versions; the first non-empty match wins.
var idFields = []string{"binId", "bin_id", "binID", "markerId", "marker_id", "id"}

// Message is the decoded shape of an inbound embed message.
type Message struct {
	Type      string
	Handshake bool
	BinID     string
}

// decodeMessage interprets a raw embed payload. The embed tolerates several
// field-name variants for the same concept, so decoding is an ordered list
// of extraction rules rather than a fixed schema.
func decodeMessage(payload []byte) (Message, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return Message{}, err
	}

	msg := Message{}
	if t, ok := fields["type"].(string); ok {
		msg.Type = t
	}

	if handshakeTypes[msg.Type] {
		msg.Handshake = true
		return msg, nil
	}

	if msg.Type != "" && !selectionTypes[msg.Type] {
		return msg, nil
	}

	for _, field := range idFields {
		if id := stringValue(fields[field]); id != "" {
			msg.BinID = id
			break
		}
	}

	return msg, nil
}

func stringValue(value interface{}) string {
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case json.Number:
		return typed.String()
	}
	return ""
}

// originAllowed checks an inbound origin against the fixed allow-list plus a
// suffix match for the trusted hosting domain family. Anything else is
// dropped by the caller.
func originAllowed(origin string, allowed []string, trustedSuffix string) bool {
	for _, candidate := range allowed {
		if origin == candidate {
			return true
		}
	}

	if trustedSuffix == "" {
		return false
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Hostname() == "" {
		return false
	}

	host := parsed.Hostname()
	suffix := strings.TrimPrefix(trustedSuffix, ".")
	return host == suffix || strings.HasSuffix(host, "."+suffix)
}
