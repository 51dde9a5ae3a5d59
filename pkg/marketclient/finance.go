/**
 * @description
 * Finance endpoints: the partner wallet transaction history.
 */

package marketclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/flipcashindia/fieldops/internal/domain"
)

// TransactionListOptions narrows a wallet history listing.
type TransactionListOptions struct {
	Type   domain.TransactionType
	Limit  int
	Offset int
}

func (o TransactionListOptions) query() url.Values {
	q := url.Values{}
	if o.Type != "" {
		q.Set("type", string(o.Type))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	return q
}

// Transactions lists the partner wallet history, newest first.
func (c *Client) Transactions(ctx context.Context, opts TransactionListOptions) ([]domain.WalletTransaction, error) {
	var out []domain.WalletTransaction
	if err := c.private(ctx, http.MethodGet, queryPath("/finance/transactions", opts.query()), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
