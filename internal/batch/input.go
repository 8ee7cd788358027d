package batch

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// DefaultRecordsPath is where the address list export keeps its records.
const DefaultRecordsPath = "data.trades"

// NormalizeAddress validates a 20-byte hex account address and returns it lowercased.
func NormalizeAddress(address string) (string, bool) {
	address = strings.TrimSpace(address)
	if !common.IsHexAddress(address) {
		return "", false
	}
	return strings.ToLower(common.HexToAddress(address).Hex()), true
}

// ParseRecords extracts account addresses from a JSON document. Records are read from the
// array at path (the whole document when path is empty); each record is either an object
// with an "address" field or a bare address string. Records without a valid address are
// skipped with a warning. Duplicates keep their first position.
func ParseRecords(data []byte, path string, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !gjson.ValidBytes(data) {
		return nil, errors.New("parse records: invalid JSON")
	}

	records := gjson.ParseBytes(data)
	if path != "" {
		records = records.Get(path)
	}
	if !records.IsArray() {
		return nil, fmt.Errorf("parse records: no array at path %q", path)
	}

	var (
		accounts []string
		seen     = make(map[string]bool)
		index    = -1
	)

	records.ForEach(func(_, record gjson.Result) bool {
		index++

		raw := record
		if record.IsObject() {
			raw = record.Get("address")
		}

		if !raw.Exists() || raw.Type != gjson.String || strings.TrimSpace(raw.String()) == "" {
			logger.Warn("record-missing-address",
				zap.Int("index", index),
				zap.String("record", truncate(record.Raw, 200)))
			return true
		}

		account, ok := NormalizeAddress(raw.String())
		if !ok {
			logger.Warn("record-invalid-address",
				zap.Int("index", index),
				zap.String("address", raw.String()))
			return true
		}

		if seen[account] {
			logger.Debug("record-duplicate-address", zap.String("address", account))
			return true
		}
		seen[account] = true
		accounts = append(accounts, account)
		return true
	})

	logger.Info("records-parsed",
		zap.Int("records", index+1),
		zap.Int("accounts", len(accounts)))

	return accounts, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
