package walletloader

import (
	"github.com/ethereum/go-ethereum/common"

	"balance_watcher/internal/domain/entity"
)

// Normalize turns raw entries into the canonical wallet list. Addresses are
// canonicalized to their EIP-55 form and deduplicated; when the same address
// appears more than once, the first non-empty value wins per field — later
// entries may fill blanks but never erase already-set attributes. Entries with
// malformed addresses are reported through warn and skipped individually.
func Normalize(raw []RawWalletEntry, warn func(msg string, args ...any)) []entity.Wallet {
	byAddress := make(map[string]*entity.Wallet, len(raw))
	order := make([]string, 0, len(raw))

	for _, entry := range raw {
		if !common.IsHexAddress(entry.Address) {
			if warn != nil {
				warn("Skipping malformed wallet address", "address", entry.Address)
			}
			continue
		}
		canonical := common.HexToAddress(entry.Address).Hex()

		w, seen := byAddress[canonical]
		if !seen {
			w = &entity.Wallet{Address: canonical}
			byAddress[canonical] = w
			order = append(order, canonical)
		}
		if w.Label == "" {
			w.Label = entry.Label
		}
		if w.User == "" {
			w.User = entry.User
		}
		if w.Email == "" {
			w.Email = entry.Email
		}
	}

	wallets := make([]entity.Wallet, 0, len(order))
	for _, addr := range order {
		wallets = append(wallets, *byAddress[addr])
	}
	return wallets
}
