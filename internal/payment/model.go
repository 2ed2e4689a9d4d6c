package payment

import (
	"encoding/json"
	"time"
)

// Status is the local lifecycle state of a payment.
type Status int

const (
	StatusNew Status = iota + 1
	StatusRegistered
	StatusHeld
	StatusConfirmed
	StatusReversed
	StatusRefunded
	StatusACSAuth
	StatusRejected
	StatusError
)

var statusNames = map[Status]string{
	StatusNew:        "new",
	StatusRegistered: "registered",
	StatusHeld:       "held",
	StatusConfirmed:  "confirmed",
	StatusReversed:   "reversed",
	StatusRefunded:   "refunded",
	StatusACSAuth:    "acs_auth",
	StatusRejected:   "rejected",
	StatusError:      "error",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// RefreshableStatuses are the states a bank-side change can still move.
var RefreshableStatuses = []Status{StatusNew, StatusRegistered, StatusHeld, StatusACSAuth}

// StatusFromOrderStatus maps the gateway orderStatus field to a local status.
func StatusFromOrderStatus(orderStatus int) (Status, bool) {
	switch orderStatus {
	case 0:
		return StatusRegistered, true
	case 1:
		return StatusHeld, true
	case 2:
		return StatusConfirmed, true
	case 3:
		return StatusReversed, true
	case 4:
		return StatusRefunded, true
	case 5:
		return StatusACSAuth, true
	case 6:
		return StatusRejected, true
	}
	return 0, false
}

// OperationType names a recorded gateway call.
type OperationType int

const (
	OperationRegister OperationType = iota + 1
	OperationRegisterPreAuth
	OperationDeposit
	OperationReverse
	OperationRefund
	OperationGetStatus
	OperationApplePay
	OperationSamsungPay
	OperationGooglePay
)

// System is the channel a payment was started through.
type System string

const (
	SystemCard       System = "card"
	SystemApplePay   System = "apple_pay"
	SystemSamsungPay System = "samsung_pay"
	SystemGooglePay  System = "google_pay"
)

type Payment struct {
	ID          int64
	BankOrderID string
	OrderNumber string
	Amount      uint64
	FormURL     string
	System      System
	StatusID    Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Operation struct {
	ID        int64
	PaymentID int64
	TypeID    OperationType
	Request   json.RawMessage
	Response  json.RawMessage
	CreatedAt time.Time
}
