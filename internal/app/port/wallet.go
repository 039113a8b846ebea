package port

import "balance_watcher/internal/domain/entity"

// WalletProvider defines the interface for fetching the watched wallet list.
type WalletProvider interface {
	GetWallets() ([]entity.Wallet, error)
}
