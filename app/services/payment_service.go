package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/foodmate/app/models"
	"github.com/shashiranjanraj/foodmate/app/repositories"
	"github.com/shashiranjanraj/foodmate/pkg/logger"
	"github.com/shashiranjanraj/foodmate/pkg/metrics"
	"github.com/shashiranjanraj/foodmate/pkg/payment"
)

// PaymentService mints payment intents and records completed payments.
type PaymentService struct {
	payments repositories.PaymentRepository
	orders   repositories.OrderRepository
	tx       repositories.Transactor
	gateway  payment.Gateway
	auth     *AuthService
	currency string
	now      func() time.Time
}

func NewPaymentService(store *repositories.Store, gateway payment.Gateway, auth *AuthService, currency string) *PaymentService {
	if currency == "" {
		currency = "usd"
	}
	tx := store.Tx
	if tx == nil {
		tx = repositories.NoTx{}
	}
	return &PaymentService{
		payments: store.Payments,
		orders:   store.Orders,
		tx:       tx,
		gateway:  gateway,
		auth:     auth,
		currency: currency,
		now:      time.Now,
	}
}

// IntentInput carries the client's price. It is not checked against any
// order total.
type IntentInput struct {
	Price    models.Price `json:"price"`
	Currency string       `json:"currency"`
}

// CreateIntent asks the gateway for a client secret covering price,
// converted to minor units (12.5 -> 1250).
func (s *PaymentService) CreateIntent(ctx context.Context, in IntentInput) (string, error) {
	amount, err := payment.MinorUnits(float64(in.Price))
	if err != nil {
		return "", invalid("price must be a positive amount")
	}
	currency := strings.ToLower(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = s.currency
	}

	secret, err := s.gateway.CreateIntent(ctx, amount, currency)
	if err != nil {
		metrics.PaymentIntents.WithLabelValues("error").Inc()
		logger.WithCtx(ctx).Error("payment intent failed", "amount", amount, "currency", currency, "error", err)
		return "", fmt.Errorf("create payment intent: %w", err)
	}
	metrics.PaymentIntents.WithLabelValues("ok").Inc()
	return secret, nil
}

// PaymentInput is the completed checkout. Members not listed here, gateway
// fields included, are kept in Extra and stored with the payment.
type PaymentInput struct {
	OrderID       string       `json:"orderId" validate:"required"`
	Email         string       `json:"email"`
	Amount        models.Price `json:"amount"`
	Price         models.Price `json:"price"`
	TransactionID string       `json:"transactionId"`
	Date          time.Time    `json:"date"`
	Extra         bson.M       `json:"-" validate:"-"`
}

func (in *PaymentInput) UnmarshalJSON(b []byte) error {
	type fields PaymentInput
	var f fields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	extra, err := models.PaymentExtra(b)
	if err != nil {
		return err
	}
	*in = PaymentInput(f)
	in.Extra = extra
	return nil
}

// RecordResult mirrors the two writes Record performs.
type RecordResult struct {
	PaymentResult InsertResult              `json:"paymentResult"`
	OrderResult   repositories.UpdateResult `json:"orderResult"`
}

// Record stores the payment, then marks the order paid whatever its prior
// status. Without a transactional store the two writes are a best-effort
// sequence; a failure between them leaves the payment without a paid order.
func (s *PaymentService) Record(ctx context.Context, caller string, in PaymentInput) (RecordResult, error) {
	orderID, err := primitive.ObjectIDFromHex(in.OrderID)
	if err != nil {
		return RecordResult{}, invalid("malformed order id %q", in.OrderID)
	}
	email := in.Email
	if email == "" {
		email = caller
	}
	if err := s.auth.RequireSelf(email, caller); err != nil {
		return RecordResult{}, err
	}

	p := &models.Payment{
		OrderID:       orderID.Hex(),
		Email:         email,
		Amount:        in.Amount,
		TransactionID: in.TransactionID,
		Date:          in.Date,
	}
	p.SetExtra(in.Extra)
	if p.Amount == 0 {
		p.Amount = in.Price
	}
	if p.Date.IsZero() {
		p.Date = s.now().UTC()
	}

	var out RecordResult
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		id, err := s.payments.Insert(ctx, p)
		if err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		out.PaymentResult = InsertResult{InsertedID: id.Hex()}

		out.OrderResult, err = s.orders.MarkPaid(ctx, orderID)
		if err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.WithCtx(ctx).Error("record payment failed", "order_id", in.OrderID, "error", err)
		return RecordResult{}, fmt.Errorf("record payment: %w", err)
	}

	metrics.PaymentsRecorded.Inc()
	log := logger.WithCtx(ctx)
	log.Info("payment recorded", "order_id", in.OrderID, "payment_id", out.PaymentResult.InsertedID)
	if out.OrderResult.MatchedCount == 0 {
		log.Warn("payment recorded for unknown order", "order_id", in.OrderID)
	}
	return out, nil
}

// ListForUser returns the caller's own payments.
func (s *PaymentService) ListForUser(ctx context.Context, caller, email string) ([]models.Payment, error) {
	if err := s.auth.RequireSelf(email, caller); err != nil {
		return nil, err
	}
	payments, err := s.payments.ByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// ListAll returns every payment. Admin-only; the route guard enforces it.
func (s *PaymentService) ListAll(ctx context.Context) ([]models.Payment, error) {
	payments, err := s.payments.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}
