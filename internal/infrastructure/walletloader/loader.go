package walletloader

import (
	"fmt"
	"os"
	"strings"

	"balance_watcher/internal/app/port"
	"balance_watcher/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
)

// RawWalletEntry is one wallet record before normalization. Entries come from
// the line-oriented text format or a JSON array; the same address may appear
// multiple times with different attributes.
type RawWalletEntry struct {
	Address string `json:"address"`
	Label   string `json:"label,omitempty"`
	User    string `json:"user,omitempty"`
	Email   string `json:"email,omitempty"`
}

// WalletFileLoader implements the port.WalletProvider interface by loading
// wallets from a text or JSON file.
type WalletFileLoader struct {
	filePath string
	logger   port.Logger
}

// NewWalletFileLoader creates a new WalletFileLoader.
func NewWalletFileLoader(filePath string, logger port.Logger) port.WalletProvider {
	return &WalletFileLoader{filePath: filePath, logger: logger}
}

// GetWallets reads and normalizes wallet entries from the configured file.
// Malformed entries are skipped with a warning; they never abort the load.
func (l *WalletFileLoader) GetWallets() ([]entity.Wallet, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet file %s: %w", l.filePath, err)
	}

	var raw []RawWalletEntry
	if strings.HasPrefix(strings.TrimSpace(string(data)), "[") {
		if err := jsoniter.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to unmarshal wallet file %s: %w", l.filePath, err)
		}
	} else {
		raw = parseLines(string(data))
	}

	wallets := Normalize(raw, l.logger.Warn)
	l.logger.Info("Wallets loaded", "count", len(wallets), "path", l.filePath)
	return wallets, nil
}

// parseLines parses the text format: one wallet per line,
// "address [label] [owner] [email]", '#' starts a comment. The email field is
// recognized anywhere after the address by the presence of '@'; the first two
// remaining tokens become label and owner.
func parseLines(data string) []RawWalletEntry {
	var entries []RawWalletEntry
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		entry := RawWalletEntry{Address: fields[0]}
		var rest []string
		for _, f := range fields[1:] {
			if entry.Email == "" && strings.Contains(f, "@") {
				entry.Email = f
				continue
			}
			rest = append(rest, f)
		}
		if len(rest) > 0 {
			entry.Label = rest[0]
		}
		if len(rest) > 1 {
			entry.User = rest[1]
		}
		entries = append(entries, entry)
	}
	return entries
}
