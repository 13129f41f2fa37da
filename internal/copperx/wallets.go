package copperx

import (
	"context"
	"net/http"
)

// ListWallets returns the caller's wallets.
func (c *Client) ListWallets(ctx context.Context, token string) ([]Wallet, error) {
	raw, err := c.getList(ctx, "/api/wallets", token, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Wallet](raw)
}

// GetBalances returns per-wallet balances.
func (c *Client) GetBalances(ctx context.Context, token string) ([]WalletBalance, error) {
	raw, err := c.getList(ctx, "/api/wallets/balances", token, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[WalletBalance](raw)
}

// GetDefaultWallet returns the wallet transfers are paid from.
func (c *Client) GetDefaultWallet(ctx context.Context, token string) (*Wallet, error) {
	var w Wallet
	if err := c.do(ctx, http.MethodGet, "/api/wallets/default", token, nil, nil, &w); err != nil {
		return nil, err
	}
	if w.ID == "" {
		return nil, ErrNotFound
	}
	return &w, nil
}

// SetDefaultWallet makes walletID the default wallet.
func (c *Client) SetDefaultWallet(ctx context.Context, token, walletID string) error {
	body := map[string]string{"walletId": walletID}
	return c.do(ctx, http.MethodPut, "/api/wallets/default", token, nil, body, nil)
}
