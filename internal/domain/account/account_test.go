package account

import (
	"strings"
	"testing"
	"time"

	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validUserParams() NewUserParams {
	return NewUserParams{
		FirstName: "Ana",
		LastName:  "Pech",
		Email:     "  Ana.Pech@Example.MX ",
		Password:  "s3cret-pass",
	}
}

func TestNewUser(t *testing.T) {
	u, err := NewUser(validUserParams())
	require.NoError(t, err)
	assert.Equal(t, "ana.pech@example.mx", u.Email)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)
	assert.True(t, u.VerifyPassword("s3cret-pass"))
	assert.False(t, u.VerifyPassword("wrong"))
	assert.Equal(t, "Ana Pech", u.FullName())
}

func TestNewUser_Invalid(t *testing.T) {
	cases := map[string]func(*NewUserParams){
		"missing first name": func(p *NewUserParams) { p.FirstName = "" },
		"bad email":          func(p *NewUserParams) { p.Email = "nope" },
		"short password":     func(p *NewUserParams) { p.Password = "short" },
		"long password":      func(p *NewUserParams) { p.Password = strings.Repeat("x", 73) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := validUserParams()
			mutate(&p)
			_, err := NewUser(p)
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
		})
	}
}

func TestUser_ChangePassword(t *testing.T) {
	u, err := NewUser(validUserParams())
	require.NoError(t, err)

	assert.Error(t, u.ChangePassword("wrong", "another-pass"))
	require.NoError(t, u.ChangePassword("s3cret-pass", "another-pass"))
	assert.True(t, u.VerifyPassword("another-pass"))
}

func TestPaymentPlan(t *testing.T) {
	p, err := NewPaymentPlan("Básico", 10, decimal.RequireFromString("99.999"))
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("100")))
	assert.True(t, p.PricePerCredit().Equal(decimal.RequireFromString("10")))

	_, err = NewPaymentPlan("", 10, decimal.Zero)
	assert.Error(t, err)
	_, err = NewPaymentPlan("x", 0, decimal.Zero)
	assert.Error(t, err)
	_, err = NewPaymentPlan("x", 1, decimal.NewFromInt(-1))
	assert.Error(t, err)
}

func TestCredits(t *testing.T) {
	userID := uuid.New()
	plan, err := NewPaymentPlan("Pro", 25, decimal.NewFromInt(200))
	require.NoError(t, err)

	purchase := NewPurchaseCredit(userID, plan)
	assert.Equal(t, 25, purchase.Amount)
	assert.Equal(t, plan.ID, *purchase.PlanID)
	assert.Error(t, purchase.SetAmount(5))

	manual, err := NewManualCredit(userID, 3)
	require.NoError(t, err)
	require.NoError(t, manual.SetAmount(4))
	assert.Error(t, manual.SetAmount(0))

	_, err = NewManualCredit(userID, -2)
	assert.Error(t, err)

	consumption := NewConsumption(userID, nil)
	assert.Equal(t, -1, consumption.Amount)
	assert.Equal(t, CreditSourceConsumption, consumption.Source)
	assert.Nil(t, consumption.InvoiceID)

	invoiceID := uuid.New()
	consumption.AttachInvoice(invoiceID)
	require.NotNil(t, consumption.InvoiceID)
	assert.Equal(t, invoiceID, *consumption.InvoiceID)
	assert.Error(t, consumption.SetAmount(2))

	refund := NewRefund(consumption)
	assert.Equal(t, 1, refund.Amount)
	assert.Equal(t, CreditSourceRefund, refund.Source)
	assert.Equal(t, userID, refund.UserID)
	assert.Nil(t, refund.InvoiceID)
	assert.NotEqual(t, consumption.ID, refund.ID)
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	s := NewSession(uuid.New(), "jti", now.Add(time.Hour), "ua", "127.0.0.1")
	assert.False(t, s.Expired(now))
	assert.True(t, s.Expired(now.Add(time.Hour)))
}
