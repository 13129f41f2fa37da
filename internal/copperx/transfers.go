package copperx

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// SendToEmail transfers amount USDC to the Copperx user with email. An empty message is sent as "".
func (c *Client) SendToEmail(ctx context.Context, token, email, amount, message string) (*Transfer, error) {
	body := map[string]string{"email": email, "amount": amount, "message": message}
	var t Transfer
	if err := c.do(ctx, http.MethodPost, "/api/transfers/send", token, nil, body, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// SendToWallet withdraws amount USDC to an external wallet address on network.
func (c *Client) SendToWallet(ctx context.Context, token, address, amount, network string) (*Transfer, error) {
	body := map[string]string{"walletAddress": address, "amount": amount, "network": network}
	var t Transfer
	if err := c.do(ctx, http.MethodPost, "/api/transfers/wallet-withdraw", token, nil, body, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// WithdrawToBank off-ramps amount USDC to the caller's bank account.
func (c *Client) WithdrawToBank(ctx context.Context, token, amount string) (*Transfer, error) {
	body := map[string]string{"amount": amount}
	var t Transfer
	if err := c.do(ctx, http.MethodPost, "/api/transfers/offramp", token, nil, body, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTransactions returns one page of the caller's transfer history.
func (c *Client) ListTransactions(ctx context.Context, token string, page, limit int) ([]Transaction, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	raw, err := c.getList(ctx, "/api/transfers", token, q)
	if err != nil {
		return nil, err
	}
	return decodeList[Transaction](raw)
}
