package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"acquiring-gateway/internal/acquiring"
	"acquiring-gateway/internal/logger"

	"go.uber.org/zap"
)

var (
	ErrMissingBankOrderID  = errors.New("payment has no bank order id")
	ErrMissingReturnURL    = errors.New("returnUrl is not configured")
	ErrMissingMerchant     = errors.New("merchant login is not configured")
	ErrUnknownOrderStatus  = errors.New("gateway returned an unknown order status")
	ErrMissingOrderStatus  = errors.New("gateway response has no orderStatus")
	ErrPaymentNotRefreshed = errors.New("payment has neither bank order id nor order number")
)

type Service interface {
	Register(ctx context.Context, orderNumber string, amount uint64, params acquiring.Params) (*Payment, error)
	RegisterPreAuth(ctx context.Context, orderNumber string, amount uint64, params acquiring.Params) (*Payment, error)
	Deposit(ctx context.Context, paymentID int64, amount uint64) (*Payment, error)
	Reverse(ctx context.Context, paymentID int64) (*Payment, error)
	Refund(ctx context.Context, paymentID int64, amount uint64) (*Payment, error)
	PayWithApplePay(ctx context.Context, orderNumber, paymentToken string, amount uint64, params acquiring.Params) (*Payment, error)
	PayWithSamsungPay(ctx context.Context, orderNumber, paymentToken string, amount uint64, params acquiring.Params) (*Payment, error)
	PayWithGooglePay(ctx context.Context, orderNumber, paymentToken string, amount uint64, params acquiring.Params) (*Payment, error)
	RefreshStatus(ctx context.Context, p *Payment) error
}

type Options struct {
	// Default redirect targets used when the caller's params omit returnUrl / failUrl.
	ReturnURL     string
	FailURL       string
	MerchantLogin string
}

type service struct {
	gateway Gateway
	repo    Repository
	opts    Options
}

func NewService(gateway Gateway, repo Repository, opts Options) Service {
	return &service{gateway: gateway, repo: repo, opts: opts}
}

func (s *service) Register(ctx context.Context, orderNumber string, amount uint64, params acquiring.Params) (*Payment, error) {
	return s.register(ctx, OperationRegister, s.gateway.RegisterOrder, orderNumber, amount, params)
}

func (s *service) RegisterPreAuth(ctx context.Context, orderNumber string, amount uint64, params acquiring.Params) (*Payment, error) {
	return s.register(ctx, OperationRegisterPreAuth, s.gateway.RegisterOrderPreAuth, orderNumber, amount, params)
}

type registerFunc func(ctx context.Context, orderNumber string, amount uint64, returnURL string, params acquiring.Params, opts ...acquiring.CallOption) (acquiring.Result, error)

func (s *service) register(ctx context.Context, opType OperationType, call registerFunc, orderNumber string, amount uint64, params acquiring.Params) (*Payment, error) {
	p := make(acquiring.Params, len(params)+2)
	for k, v := range params {
		p[k] = v
	}

	returnURL, _ := p["returnUrl"].(string)
	delete(p, "returnUrl")
	if returnURL == "" {
		returnURL = s.opts.ReturnURL
	}
	if returnURL == "" {
		return nil, ErrMissingReturnURL
	}
	if _, ok := p["failUrl"]; !ok && s.opts.FailURL != "" {
		p["failUrl"] = s.opts.FailURL
	}

	payment := &Payment{
		OrderNumber: orderNumber,
		Amount:      amount,
		System:      SystemCard,
		StatusID:    StatusNew,
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	request := requestLog(p, "orderNumber", orderNumber, "amount", amount, "returnUrl", returnURL)
	res, err := s.record(ctx, payment, opType, request, func() (acquiring.Result, error) {
		return call(ctx, orderNumber, amount, returnURL, p)
	})
	if err != nil {
		return payment, s.fail(ctx, payment, err)
	}

	payment.BankOrderID = res.String("orderId")
	payment.FormURL = res.String("formUrl")
	payment.StatusID = StatusRegistered
	return payment, s.repo.UpdatePayment(ctx, payment)
}

func (s *service) Deposit(ctx context.Context, paymentID int64, amount uint64) (*Payment, error) {
	return s.transition(ctx, paymentID, OperationDeposit, StatusConfirmed, map[string]any{"amount": amount},
		func(orderID string) (acquiring.Result, error) {
			return s.gateway.Deposit(ctx, orderID, amount, nil)
		})
}

func (s *service) Reverse(ctx context.Context, paymentID int64) (*Payment, error) {
	return s.transition(ctx, paymentID, OperationReverse, StatusReversed, map[string]any{},
		func(orderID string) (acquiring.Result, error) {
			return s.gateway.ReverseOrder(ctx, orderID, nil)
		})
}

func (s *service) Refund(ctx context.Context, paymentID int64, amount uint64) (*Payment, error) {
	return s.transition(ctx, paymentID, OperationRefund, StatusRefunded, map[string]any{"amount": amount},
		func(orderID string) (acquiring.Result, error) {
			return s.gateway.RefundOrder(ctx, orderID, amount, nil)
		})
}

// transition runs a call against an existing bank order and moves the payment
// to next on success. A failed call leaves the stored status untouched.
func (s *service) transition(ctx context.Context, paymentID int64, opType OperationType, next Status, request map[string]any, call func(orderID string) (acquiring.Result, error)) (*Payment, error) {
	payment, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.BankOrderID == "" {
		return payment, ErrMissingBankOrderID
	}

	request["orderId"] = payment.BankOrderID
	if _, err := s.record(ctx, payment, opType, request, func() (acquiring.Result, error) {
		return call(payment.BankOrderID)
	}); err != nil {
		return payment, err
	}

	payment.StatusID = next
	return payment, s.repo.UpdatePayment(ctx, payment)
}

func (s *service) PayWithApplePay(ctx context.Context, orderNumber, paymentToken string, amount uint64, params acquiring.Params) (*Payment, error) {
	return s.payWithWallet(ctx, SystemApplePay, OperationApplePay, orderNumber, amount, params,
		func(merchant string) (acquiring.Result, error) {
			return s.gateway.PayWithApplePay(ctx, orderNumber, merchant, paymentToken, params)
		})
}

func (s *service) PayWithSamsungPay(ctx context.Context, orderNumber, paymentToken string, amount uint64, params acquiring.Params) (*Payment, error) {
	return s.payWithWallet(ctx, SystemSamsungPay, OperationSamsungPay, orderNumber, amount, params,
		func(merchant string) (acquiring.Result, error) {
			return s.gateway.PayWithSamsungPay(ctx, orderNumber, merchant, paymentToken, params)
		})
}

func (s *service) PayWithGooglePay(ctx context.Context, orderNumber, paymentToken string, amount uint64, params acquiring.Params) (*Payment, error) {
	if s.opts.ReturnURL == "" {
		return nil, ErrMissingReturnURL
	}
	return s.payWithWallet(ctx, SystemGooglePay, OperationGooglePay, orderNumber, amount, params,
		func(merchant string) (acquiring.Result, error) {
			return s.gateway.PayWithGooglePay(ctx, orderNumber, merchant, paymentToken, amount, s.opts.ReturnURL, params)
		})
}

func (s *service) payWithWallet(ctx context.Context, system System, opType OperationType, orderNumber string, amount uint64, params acquiring.Params, call func(merchant string) (acquiring.Result, error)) (*Payment, error) {
	if s.opts.MerchantLogin == "" {
		return nil, ErrMissingMerchant
	}

	payment := &Payment{
		OrderNumber: orderNumber,
		Amount:      amount,
		System:      system,
		StatusID:    StatusNew,
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	request := requestLog(params, "orderNumber", orderNumber, "merchant", s.opts.MerchantLogin, "amount", amount)
	res, err := s.record(ctx, payment, opType, request, func() (acquiring.Result, error) {
		return call(s.opts.MerchantLogin)
	})
	if err != nil {
		return payment, s.fail(ctx, payment, err)
	}

	if data, ok := res["data"].(map[string]any); ok {
		payment.BankOrderID = acquiring.Result(data).String("orderId")
	}
	if payment.BankOrderID == "" {
		payment.BankOrderID = res.String("orderId")
	}
	payment.StatusID = StatusRegistered
	return payment, s.repo.UpdatePayment(ctx, payment)
}

// RefreshStatus asks the gateway for the order state and stores it when it changed.
func (s *service) RefreshStatus(ctx context.Context, payment *Payment) error {
	params := acquiring.Params{}
	switch {
	case payment.BankOrderID != "":
		params["orderId"] = payment.BankOrderID
	case payment.OrderNumber != "":
		params["orderNumber"] = payment.OrderNumber
	default:
		return fmt.Errorf("payment %d: %w", payment.ID, ErrPaymentNotRefreshed)
	}

	res, err := s.record(ctx, payment, OperationGetStatus, requestLog(params), func() (acquiring.Result, error) {
		return s.gateway.GetOrderStatusExtended(ctx, params)
	})
	if err != nil {
		return fmt.Errorf("payment %d: %w", payment.ID, err)
	}

	orderStatus, ok := res.Int("orderStatus")
	if !ok {
		return fmt.Errorf("payment %d: %w", payment.ID, ErrMissingOrderStatus)
	}
	status, ok := StatusFromOrderStatus(orderStatus)
	if !ok {
		return fmt.Errorf("payment %d: %w: %d", payment.ID, ErrUnknownOrderStatus, orderStatus)
	}

	if status == payment.StatusID {
		return nil
	}

	logger.FromCtx(ctx).Info("payment status changed",
		zap.Int64("payment_id", payment.ID),
		zap.Stringer("from", payment.StatusID),
		zap.Stringer("to", status),
	)
	payment.StatusID = status
	if err := s.repo.UpdatePayment(ctx, payment); err != nil {
		return fmt.Errorf("payment %d: %w", payment.ID, err)
	}
	return nil
}

// record runs call and stores it as an operation of payment. A failed write is
// logged, never returned: the gateway side effect has already happened.
func (s *service) record(ctx context.Context, payment *Payment, opType OperationType, request map[string]any, call func() (acquiring.Result, error)) (acquiring.Result, error) {
	res, callErr := call()
	log := logger.FromCtx(ctx).With(
		zap.Int64("payment_id", payment.ID),
		zap.Int("operation_type", int(opType)),
	)

	op := &Operation{PaymentID: payment.ID, TypeID: opType}
	var err error
	if op.Request, err = json.Marshal(request); err != nil {
		log.Error("failed to encode operation request", zap.Error(err))
	}
	if callErr != nil {
		op.Response, err = json.Marshal(map[string]string{"error": callErr.Error()})
	} else {
		op.Response, err = json.Marshal(res)
	}
	if err != nil {
		log.Error("failed to encode operation response", zap.Error(err))
	}

	if err := s.repo.SaveOperation(ctx, op); err != nil {
		log.Error("failed to record payment operation", zap.Error(err))
	}
	return res, callErr
}

// fail marks payment as errored and returns cause.
func (s *service) fail(ctx context.Context, payment *Payment, cause error) error {
	payment.StatusID = StatusError
	if err := s.repo.UpdatePayment(ctx, payment); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

// secretKeys never reach the operations table.
var secretKeys = []string{"userName", "password", "token", "paymentToken"}

// requestLog builds the stored request: params overlaid with kv pairs, secrets removed.
func requestLog(params acquiring.Params, kv ...any) map[string]any {
	out := make(map[string]any, len(params)+len(kv)/2)
	for k, v := range params {
		out[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i].(string)] = kv[i+1]
	}
	for _, k := range secretKeys {
		delete(out, k)
	}
	return out
}
