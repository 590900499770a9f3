package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod represents a payment method chosen at confirmation time.
type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodPix        PaymentMethod = "pix"
)

// String returns the string representation of the method.
func (m PaymentMethod) String() string {
	return string(m)
}

// IsValid checks if the method is supported.
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCreditCard || m == PaymentMethodPix
}

// PaymentMethodFromCardFlag maps the use_card flag of the public API to a method.
func PaymentMethodFromCardFlag(useCard bool) PaymentMethod {
	if useCard {
		return PaymentMethodCreditCard
	}
	return PaymentMethodPix
}

// PaymentRecordStatus represents the status of a payment record.
type PaymentRecordStatus string

const (
	PaymentRecordPending    PaymentRecordStatus = "pending"
	PaymentRecordSettled    PaymentRecordStatus = "settled"
	PaymentRecordSuperseded PaymentRecordStatus = "superseded"
)

// PaymentRecord relates an order to a payment method and an opaque payment code.
// A settled record is never mutated again.
type PaymentRecord struct {
	ID                uuid.UUID           `gorm:"type:uuid;primaryKey"`
	OrderCode         int64               `gorm:"not null;index"`
	Method            PaymentMethod       `gorm:"not null"`
	Code              string              `gorm:"uniqueIndex;not null"`
	ProviderReference string              `gorm:"index"`
	Status            PaymentRecordStatus `gorm:"not null;default:pending"`
	Amount            int64
	Currency          string
	PayerName         string
	PayerDocument     string
	PayerEmail        string
	CreatedAt         time.Time
	SettledAt         *time.Time
	SupersededAt      *time.Time
}

// TableName returns the database table name.
func (PaymentRecord) TableName() string {
	return "order_payments"
}

// IsPending returns true if the record awaits settlement.
func (p *PaymentRecord) IsPending() bool {
	return p.Status == PaymentRecordPending
}

// IsSettled returns true if the record has been settled.
func (p *PaymentRecord) IsSettled() bool {
	return p.Status == PaymentRecordSettled
}

// PaymentDetails carries payer data supplied with a confirmation request.
type PaymentDetails struct {
	PayerName     string `json:"payer_name"`
	PayerDocument string `json:"payer_document"`
	PayerEmail    string `json:"payer_email" binding:"omitempty,email"`
}

// GeneratedPaymentCode is the outcome of payment code generation.
type GeneratedPaymentCode struct {
	Code              string
	Method            PaymentMethod
	ProviderReference string
	QRCode            string
	ClientSecret      string
	Amount            int64
	Currency          string
}

// ProviderPayment is what an acquirer returns when a charge is initiated.
type ProviderPayment struct {
	Reference    string
	QRCode       string
	ClientSecret string
}

// PaymentReceipt is returned to the caller that requested confirmation.
type PaymentReceipt struct {
	OrderCode    int64         `json:"order_code"`
	Status       OrderStatus   `json:"status"`
	Method       PaymentMethod `json:"method"`
	PaymentCode  string        `json:"payment_code"`
	QRCode       string        `json:"qr_code,omitempty"`
	ClientSecret string        `json:"client_secret,omitempty"`
	Amount       int64         `json:"amount"`
	Currency     string        `json:"currency"`
	CreatedAt    time.Time     `json:"created_at"`
}

// WebhookSettlementResponse is returned by the payment webhook.
type WebhookSettlementResponse struct {
	OrderCode int64 `json:"order_code"`
}
