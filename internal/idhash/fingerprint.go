package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"wallet-feature-lab/internal/domain"
)

// VectorFingerprint computes a deterministic fingerprint of a feature vector.
// Formula: SHA256(address|kind|schema_version|name=value|...)
// Values use the shortest exact float encoding, so equal vectors hash
// equally and any value change alters the result.
// Returns hex-encoded hash (64 characters).
func VectorFingerprint(v *domain.FeatureVector) string {
	var sb strings.Builder
	sb.WriteString(v.Address)
	sb.WriteByte('|')
	sb.WriteString(string(v.Kind))
	sb.WriteByte('|')
	sb.WriteString(v.SchemaVersion)

	for _, f := range v.Features {
		sb.WriteByte('|')
		sb.WriteString(f.Name)
		sb.WriteByte('=')
		sb.WriteString(strconv.FormatFloat(f.Value, 'g', -1, 64))
	}

	hash := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(hash[:])
}
