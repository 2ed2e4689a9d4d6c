package acquiring

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

var (
	opRegister              = operation{name: "register", path: "/payment/rest/register.do", auth: true}
	opRegisterPreAuth       = operation{name: "register_pre_auth", path: "/payment/rest/registerPreAuth.do", auth: true}
	opDeposit               = operation{name: "deposit", path: "/payment/rest/deposit.do", auth: true}
	opReverse               = operation{name: "reverse", path: "/payment/rest/reverse.do", auth: true}
	opRefund                = operation{name: "refund", path: "/payment/rest/refund.do", auth: true}
	opDecline               = operation{name: "decline", path: "/payment/rest/decline.do", auth: true}
	opOrderStatusExtended   = operation{name: "order_status_extended", path: "/payment/rest/getOrderStatusExtended.do", auth: true}
	opReceiptStatus         = operation{name: "receipt_status", path: "/payment/rest/getReceiptStatus.do", auth: true}
	opVerifyEnrollment      = operation{name: "verify_enrollment", path: "/payment/rest/verifyEnrollment.do", auth: true}
	opPaymentOrderBinding   = operation{name: "payment_order_binding", path: "/payment/rest/paymentOrderBinding.do", auth: true}
	opBindCard              = operation{name: "bind_card", path: "/payment/rest/bindCard.do", auth: true}
	opUnBindCard            = operation{name: "unbind_card", path: "/payment/rest/unBindCard.do", auth: true}
	opExtendBinding         = operation{name: "extend_binding", path: "/payment/rest/extendBinding.do", auth: true}
	opGetBindings           = operation{name: "get_bindings", path: "/payment/rest/getBindings.do", auth: true}
	opGetBindingsByCardOrID = operation{name: "get_bindings_by_card_or_id", path: "/payment/rest/getBindingsByCardOrId.do", auth: true}
	opApplePay              = operation{name: "apple_pay", path: "/payment/applepay/payment.do"}
	opSamsungPay            = operation{name: "samsung_pay", path: "/payment/samsung/payment.do"}
	opGooglePay             = operation{name: "google_pay", path: "/payment/google/payment.do"}
)

func requireString(name, value string) error {
	if value == "" {
		return invalidArgument("%s must not be empty", name)
	}
	return nil
}

func requireAbsoluteURL(name, value string) error {
	u, err := url.Parse(value)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return invalidArgument("%s must be an absolute URL, got %q", name, value)
	}
	return nil
}

func amountString(amount uint64) string {
	return strconv.FormatUint(amount, 10)
}

// RegisterOrder registers a one-stage order. amount is in minor currency units.
func (c *Client) RegisterOrder(ctx context.Context, orderNumber string, amount uint64, returnURL string, params Params, opts ...CallOption) (Result, error) {
	return c.register(ctx, opRegister, orderNumber, amount, returnURL, params, opts)
}

// RegisterOrderPreAuth registers a two-stage order whose funds are held until Deposit.
func (c *Client) RegisterOrderPreAuth(ctx context.Context, orderNumber string, amount uint64, returnURL string, params Params, opts ...CallOption) (Result, error) {
	return c.register(ctx, opRegisterPreAuth, orderNumber, amount, returnURL, params, opts)
}

func (c *Client) register(ctx context.Context, op operation, orderNumber string, amount uint64, returnURL string, params Params, opts []CallOption) (Result, error) {
	if err := requireString("orderNumber", orderNumber); err != nil {
		return nil, err
	}
	if err := requireAbsoluteURL("returnUrl", returnURL); err != nil {
		return nil, err
	}

	p := params.clone()
	if err := jsonField(p, "jsonParams", true); err != nil {
		return nil, err
	}
	if err := jsonField(p, "orderBundle", false); err != nil {
		return nil, err
	}
	p["orderNumber"] = orderNumber
	p["amount"] = amountString(amount)
	p["returnUrl"] = returnURL

	return c.execute(ctx, op, p, opts)
}

// Deposit captures a pre-authorized order.
func (c *Client) Deposit(ctx context.Context, orderID string, amount uint64, params Params, opts ...CallOption) (Result, error) {
	if err := requireString("orderId", orderID); err != nil {
		return nil, err
	}
	p := params.clone()
	p["orderId"] = orderID
	p["amount"] = amountString(amount)
	return c.execute(ctx, opDeposit, p, opts)
}

func (c *Client) ReverseOrder(ctx context.Context, orderID string, params Params, opts ...CallOption) (Result, error) {
	if err := requireString("orderId", orderID); err != nil {
		return nil, err
	}
	p := params.clone()
	p["orderId"] = orderID
	return c.execute(ctx, opReverse, p, opts)
}

func (c *Client) RefundOrder(ctx context.Context, orderID string, amount uint64, params Params, opts ...CallOption) (Result, error) {
	if err := requireString("orderId", orderID); err != nil {
		return nil, err
	}
	p := params.clone()
	p["orderId"] = orderID
	p["amount"] = amountString(amount)
	return c.execute(ctx, opRefund, p, opts)
}

// DeclineOrder cancels an unpaid order. params must hold orderId or orderNumber.
func (c *Client) DeclineOrder(ctx context.Context, merchantLogin string, params Params, opts ...CallOption) (Result, error) {
	if err := requireString("merchantLogin", merchantLogin); err != nil {
		return nil, err
	}
	if !params.hasAny("orderId", "orderNumber") {
		return nil, invalidArgument("orderId or orderNumber is required")
	}
	p := params.clone()
	p["merchantLogin"] = merchantLogin
	return c.execute(ctx, opDecline, p, opts)
}

// GetOrderStatusExtended queries an order. params must hold orderId or orderNumber.
func (c *Client) GetOrderStatusExtended(ctx context.Context, params Params, opts ...CallOption) (Result, error) {
	if !params.hasAny("orderId", "orderNumber") {
		return nil, invalidArgument("orderId or orderNumber is required")
	}
	return c.execute(ctx, opOrderStatusExtended, params.clone(), opts)
}

// GetReceiptStatus queries fiscal receipts. params must hold orderId, orderNumber or uuid.
func (c *Client) GetReceiptStatus(ctx context.Context, params Params, opts ...CallOption) (Result, error) {
	if !params.hasAny("orderId", "orderNumber", "uuid") {
		return nil, invalidArgument("orderId, orderNumber or uuid is required")
	}
	return c.execute(ctx, opReceiptStatus, params.clone(), opts)
}

// VerifyEnrollment checks whether a card is enrolled in 3-D Secure.
func (c *Client) VerifyEnrollment(ctx context.Context, pan string, params Params, opts ...CallOption) (Result, error) {
	if err := requireString("pan", pan); err != nil {
		return nil, err
	}
	p := params.clone()
	p["pan"] = pan
	return c.execute(ctx, opVerifyEnrollment, p, opts)
}

// PaymentOrderBinding pays a registered order with a stored binding.
func (c *Client) PaymentOrderBinding(ctx context.Context, mdOrder, bindingID string, params Params, opts ...CallOption) (Result, error) {
	if err := requireString("mdOrder", mdOrder); err != nil {
		return nil, err
	}
	if err := requireString("bindingId", bindingID); err != nil {
		return nil, err
	}
	p := params.clone()
	p["mdOrder"] = mdOrder
	p["bindingId"] = bindingID
	return c.execute(ctx, opPaymentOrderBinding, p, opts)
}

func (c *Client) BindCard(ctx context.Context, bindingID string, params Params, opts ...CallOption) (Result, error) {
	if err := requireString("bindingId", bindingID); err != nil {
		return nil, err
	}
	p := params.clone()
	p["bindingId"] = bindingID
	return c.execute(ctx, opBindCard, p, opts)
}

func (c *Client) UnBindCard(ctx context.Context, bindingID string, params Params, opts ...CallOption) (Result, error) {
	if err := requireString("bindingId", bindingID); err != nil {
		return nil, err
	}
	p := params.clone()
	p["bindingId"] = bindingID
	return c.execute(ctx, opUnBindCard, p, opts)
}

// ExtendBinding moves a binding's expiry to the month of newExpiry.
func (c *Client) ExtendBinding(ctx context.Context, bindingID string, newExpiry time.Time, params Params, opts ...CallOption) (Result, error) {
	if err := requireString("bindingId", bindingID); err != nil {
		return nil, err
	}
	if newExpiry.IsZero() {
		return nil, invalidArgument("newExpiry must be set")
	}
	p := params.clone()
	p["bindingId"] = bindingID
	p["newExpiry"] = newExpiry.Format("200601")
	return c.execute(ctx, opExtendBinding, p, opts)
}

func (c *Client) GetBindings(ctx context.Context, clientID string, params Params, opts ...CallOption) (Result, error) {
	if err := requireString("clientId", clientID); err != nil {
		return nil, err
	}
	p := params.clone()
	p["clientId"] = clientID
	return c.execute(ctx, opGetBindings, p, opts)
}

// GetBindingsByCardOrID lists bindings. params must hold pan or bindingId.
func (c *Client) GetBindingsByCardOrID(ctx context.Context, params Params, opts ...CallOption) (Result, error) {
	if !params.hasAny("pan", "bindingId") {
		return nil, invalidArgument("pan or bindingId is required")
	}
	return c.execute(ctx, opGetBindingsByCardOrID, params.clone(), opts)
}

func walletParams(orderNumber, merchant, paymentToken string, params Params) (Params, error) {
	if err := requireString("orderNumber", orderNumber); err != nil {
		return nil, err
	}
	if err := requireString("merchant", merchant); err != nil {
		return nil, err
	}
	if err := requireString("paymentToken", paymentToken); err != nil {
		return nil, err
	}
	p := params.clone()
	p["orderNumber"] = orderNumber
	p["merchant"] = merchant
	p["paymentToken"] = paymentToken
	return p, nil
}

// PayWithApplePay pays with an Apple Pay token. No gateway credentials are sent.
func (c *Client) PayWithApplePay(ctx context.Context, orderNumber, merchant, paymentToken string, params Params, opts ...CallOption) (Result, error) {
	p, err := walletParams(orderNumber, merchant, paymentToken, params)
	if err != nil {
		return nil, err
	}
	return c.execute(ctx, opApplePay, p, opts)
}

// PayWithSamsungPay pays with a Samsung Pay token. No gateway credentials are sent.
func (c *Client) PayWithSamsungPay(ctx context.Context, orderNumber, merchant, paymentToken string, params Params, opts ...CallOption) (Result, error) {
	p, err := walletParams(orderNumber, merchant, paymentToken, params)
	if err != nil {
		return nil, err
	}
	return c.execute(ctx, opSamsungPay, p, opts)
}

// PayWithGooglePay pays with a Google Pay token. No gateway credentials are sent.
func (c *Client) PayWithGooglePay(ctx context.Context, orderNumber, merchant, paymentToken string, amount uint64, returnURL string, params Params, opts ...CallOption) (Result, error) {
	if err := requireAbsoluteURL("returnUrl", returnURL); err != nil {
		return nil, err
	}
	p, err := walletParams(orderNumber, merchant, paymentToken, params)
	if err != nil {
		return nil, err
	}
	p["amount"] = amountString(amount)
	p["returnUrl"] = returnURL
	return c.execute(ctx, opGooglePay, p, opts)
}
