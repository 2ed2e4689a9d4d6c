package payment

import (
	"context"

	"acquiring-gateway/internal/acquiring"
)

// Gateway is the part of *acquiring.Client the payment service drives.
type Gateway interface {
	RegisterOrder(ctx context.Context, orderNumber string, amount uint64, returnURL string, params acquiring.Params, opts ...acquiring.CallOption) (acquiring.Result, error)
	RegisterOrderPreAuth(ctx context.Context, orderNumber string, amount uint64, returnURL string, params acquiring.Params, opts ...acquiring.CallOption) (acquiring.Result, error)
	Deposit(ctx context.Context, orderID string, amount uint64, params acquiring.Params, opts ...acquiring.CallOption) (acquiring.Result, error)
	ReverseOrder(ctx context.Context, orderID string, params acquiring.Params, opts ...acquiring.CallOption) (acquiring.Result, error)
	RefundOrder(ctx context.Context, orderID string, amount uint64, params acquiring.Params, opts ...acquiring.CallOption) (acquiring.Result, error)
	GetOrderStatusExtended(ctx context.Context, params acquiring.Params, opts ...acquiring.CallOption) (acquiring.Result, error)
	PayWithApplePay(ctx context.Context, orderNumber, merchant, paymentToken string, params acquiring.Params, opts ...acquiring.CallOption) (acquiring.Result, error)
	PayWithSamsungPay(ctx context.Context, orderNumber, merchant, paymentToken string, params acquiring.Params, opts ...acquiring.CallOption) (acquiring.Result, error)
	PayWithGooglePay(ctx context.Context, orderNumber, merchant, paymentToken string, amount uint64, returnURL string, params acquiring.Params, opts ...acquiring.CallOption) (acquiring.Result, error)
}

var _ Gateway = (*acquiring.Client)(nil)
