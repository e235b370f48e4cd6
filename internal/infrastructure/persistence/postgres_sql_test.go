package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockPostgres opens gorm on the postgres dialector over a sqlmock connection
func newMockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return gormDB, mock, mockDB
}

func TestPostgres_FindCustomerByID(t *testing.T) {
	db, mock, mockDB := newMockPostgres(t)
	defer mockDB.Close()

	id := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "name", "email", "phone", "type"}).
		AddRow(id, now, now, "Acme", "billing@acme.test", nil, "customer")

	mock.ExpectQuery(`SELECT \* FROM "customers" WHERE id = \$1 ORDER BY .* LIMIT .*`).
		WithArgs(id, 1).
		WillReturnRows(rows)

	customer, err := NewGormCustomerRepository(db).FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Acme", customer.Name)
	assert.Nil(t, customer.Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_FindMissingInvoice(t *testing.T) {
	db, mock, mockDB := newMockPostgres(t)
	defer mockDB.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE id = \$1 ORDER BY .* LIMIT .*`).
		WithArgs(id, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	inv, err := NewGormInvoiceRepository(db).FindByID(context.Background(), id)
	assert.Nil(t, inv)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_DeletePaymentNoRows(t *testing.T) {
	db, mock, mockDB := newMockPostgres(t)
	defer mockDB.Close()

	id := uuid.New()
	mock.ExpectExec(`DELETE FROM "payments" WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewGormPaymentRepository(db).Delete(context.Background(), id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SumCompletedByInvoice(t *testing.T) {
	db, mock, mockDB := newMockPostgres(t)
	defer mockDB.Close()

	invoiceID := uuid.New()
	mock.ExpectQuery(`SELECT SUM\(amount\) FROM "payments" WHERE invoice_id = \$1 AND status = \$2`).
		WithArgs(invoiceID, invoicing.PaymentStatusCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("275.5000"))

	sum, err := NewGormPaymentRepository(db).SumCompletedByInvoice(context.Background(), invoiceID)
	require.NoError(t, err)
	assert.Equal(t, "275.5", sum.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CountByCustomer(t *testing.T) {
	db, mock, mockDB := newMockPostgres(t)
	defer mockDB.Close()

	customerID := uuid.New()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices" WHERE customer_id = \$1`).
		WithArgs(customerID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := NewGormInvoiceRepository(db).CountByCustomer(context.Background(), customerID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.ErrorIs(t, translateError(gorm.ErrRecordNotFound), shared.ErrNotFound)
	assert.ErrorIs(t, translateError(gorm.ErrDuplicatedKey), shared.ErrAlreadyExists)
	assert.ErrorIs(t, translateError(assert.AnError), assert.AnError)
}
