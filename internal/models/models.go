package models

import (
	"time"

	"remittance/internal/money"
)

// JSONText is a jsonb column rendered verbatim in responses.
type JSONText string

func (j JSONText) MarshalJSON() ([]byte, error) {
	if j == "" {
		return []byte("null"), nil
	}
	return []byte(j), nil
}

type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

type Guarantor struct {
	ID         string    `db:"id" json:"id"`
	FullName   string    `db:"full_name" json:"fullName"`
	Phone      string    `db:"phone" json:"phone"`
	Address    string    `db:"address" json:"address"`
	NationalID string    `db:"national_id" json:"nationalId"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

type Client struct {
	ID             string      `db:"id" json:"id"`
	FullName       string      `db:"full_name" json:"fullName"`
	Phone          string      `db:"phone" json:"phone"`
	Address        string      `db:"address" json:"address"`
	NationalID     string      `db:"national_id" json:"nationalId"`
	EducationLevel string      `db:"education_level" json:"educationLevel"`
	GuarantorID    *string     `db:"guarantor_id" json:"guarantorId,omitempty"`
	GuarantorName  *string     `db:"guarantor_name" json:"guarantorName,omitempty"`
	Balance        money.Minor `db:"balance" json:"balance"`
	CreatedAt      time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updatedAt"`
}

const (
	LedgerOpening     = "opening"
	LedgerAdjustment  = "adjustment"
	LedgerTransaction = "transaction"
	LedgerWithdraw    = "withdraw"
)

type LedgerEntry struct {
	ID           string      `db:"id" json:"id"`
	ClientID     string      `db:"client_id" json:"clientId"`
	SourceType   string      `db:"source_type" json:"sourceType"`
	SourceID     *string     `db:"source_id" json:"sourceId,omitempty"`
	Amount       money.Minor `db:"amount" json:"amount"`
	BalanceAfter money.Minor `db:"balance_after" json:"balanceAfter"`
	Description  string      `db:"description" json:"description"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
}

type ClientReconciliation struct {
	ClientID          string      `db:"client_id" json:"clientId"`
	FullName          string      `db:"full_name" json:"fullName"`
	StoredBalance     money.Minor `db:"stored_balance" json:"storedBalance"`
	CalculatedBalance money.Minor `db:"calculated_balance" json:"calculatedBalance"`
	Difference        money.Minor `db:"difference" json:"difference"`
}

const (
	TransactionCredit = "credit"
	TransactionDebit  = "debit"

	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusRefunded  = "refunded"
	StatusFailed    = "failed"
)

type Transaction struct {
	ID               string      `db:"id" json:"id"`
	Type             string      `db:"type" json:"type"`
	Amount           money.Minor `db:"amount" json:"amount"`
	TaxRate          string      `db:"tax_rate" json:"taxRate"`
	TaxAmount        money.Minor `db:"tax_amount" json:"taxAmount"`
	TotalAmount      money.Minor `db:"total_amount" json:"totalAmount"`
	SenderClientID   *string     `db:"sender_client_id" json:"senderClient,omitempty"`
	SenderName       *string     `db:"sender_name" json:"senderName,omitempty"`
	ReceiverClientID *string     `db:"receiver_client_id" json:"receiverClient,omitempty"`
	ReceiverName     *string     `db:"receiver_name" json:"receiverName,omitempty"`
	ExternalName     string      `db:"external_name" json:"externalName,omitempty"`
	ReceiptNumber    string      `db:"receipt_number" json:"receiptNumber"`
	Status           string      `db:"status" json:"status"`
	Notes            string      `db:"notes" json:"notes"`
	CreatedBy        *string     `db:"created_by" json:"createdBy,omitempty"`
	Date             time.Time   `db:"date" json:"date"`
	CreatedAt        time.Time   `db:"created_at" json:"createdAt"`
}

type Withdraw struct {
	ID            string      `db:"id" json:"id"`
	ClientID      string      `db:"client_id" json:"clientId"`
	ClientName    *string     `db:"client_name" json:"clientName,omitempty"`
	Amount        money.Minor `db:"amount" json:"amount"`
	TaxRate       string      `db:"tax_rate" json:"taxRate"`
	TaxAmount     money.Minor `db:"tax_amount" json:"taxAmount"`
	TotalReceived money.Minor `db:"total_received" json:"totalReceived"`
	Notes         string      `db:"notes" json:"notes"`
	Status        string      `db:"status" json:"status"`
	CreatedBy     *string     `db:"created_by" json:"createdBy,omitempty"`
	Date          time.Time   `db:"date" json:"date"`
	CreatedAt     time.Time   `db:"created_at" json:"createdAt"`
}

type WithdrawStats struct {
	TotalAmount   money.Minor `db:"total_amount" json:"totalAmount"`
	TotalTax      money.Minor `db:"total_tax" json:"totalTax"`
	TotalReceived money.Minor `db:"total_received" json:"totalReceived"`
	Count         int64       `db:"count" json:"count"`
}

const (
	MethodSend    = "Send"
	MethodReceive = "Receive"

	ProfitTransferFee  = "Transfer Fee"
	ProfitExchangeRate = "Exchange Rate"
	ProfitCommission   = "Commission"
)

type TaxLog struct {
	ID               string      `db:"id" json:"id"`
	SenderClientID   *string     `db:"sender_client_id" json:"senderClient,omitempty"`
	SenderName       *string     `db:"sender_name" json:"senderName,omitempty"`
	ReceiverClientID *string     `db:"receiver_client_id" json:"receiverClient,omitempty"`
	ReceiverName     *string     `db:"receiver_name" json:"receiverName,omitempty"`
	TransactionID    string      `db:"transaction_id" json:"transactionId"`
	ReceiptNumber    *string     `db:"receipt_number" json:"receiptNumber,omitempty"`
	AmountSent       money.Minor `db:"amount_sent" json:"amountSent"`
	AmountReceived   money.Minor `db:"amount_received" json:"amountReceived"`
	Profit           money.Minor `db:"profit" json:"profit"`
	Method           string      `db:"method" json:"method"`
	ProfitSource     string      `db:"profit_source" json:"profitSource"`
	Description      string      `db:"description" json:"description"`
	Date             time.Time   `db:"date" json:"date"`
}

type Setting struct {
	Key       string    `db:"key" json:"key"`
	Value     JSONText  `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type AuditLog struct {
	ID               string    `db:"id" json:"id"`
	ActorUserID      *string   `db:"actor_user_id" json:"actor,omitempty"`
	ActorName        *string   `db:"actor_name" json:"actorName,omitempty"`
	Action           string    `db:"action" json:"action"`
	TargetCollection string    `db:"target_collection" json:"targetCollection"`
	TargetID         string    `db:"target_id" json:"targetId"`
	IP               string    `db:"ip" json:"ip"`
	Details          JSONText  `db:"details" json:"details"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
}

type TypeTotal struct {
	Type        string      `db:"type" json:"type"`
	TotalAmount money.Minor `db:"total_amount" json:"totalAmount"`
	Count       int64       `db:"count" json:"count"`
}

type Dashboard struct {
	TotalClients    int64       `db:"total_clients" json:"totalClients"`
	TotalGuarantors int64       `db:"total_guarantors" json:"totalGuarantors"`
	TotalBalance    money.Minor `db:"total_balance" json:"totalBalance"`
	TotalProfit     money.Minor `db:"total_profit" json:"totalProfit"`
}
