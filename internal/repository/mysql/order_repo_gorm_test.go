package mysql

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"orders-service/internal/domain"
	"orders-service/internal/repository"
)

func newMockRepo(t *testing.T) (repository.OrderRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewOrderRepository(db), mock
}

var (
	updateFieldsSQL = regexp.QuoteMeta("UPDATE `orders` SET `notes`=?,`shipping_address`=?,`status`=?,`updated_at`=? WHERE id = ? AND status = ?")
	cancelSQL       = regexp.QuoteMeta("UPDATE `orders` SET `deleted_at`=?,`status`=?,`updated_at`=? WHERE id = ? AND status = ?")
)

func TestOrderRepo_UpdateFields(t *testing.T) {
	tests := []struct {
		name         string
		rowsAffected int64
		wantErr      error
	}{
		{name: "status still matches", rowsAffected: 1},
		{name: "status moved underneath", rowsAffected: 0, wantErr: domain.ErrConcurrentUpdate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			order := &domain.Order{ID: 3, Status: domain.StatusProcessing, ShippingAddress: "Calle 1"}

			mock.ExpectExec(updateFieldsSQL).
				WithArgs(nil, "Calle 1", "processing", sqlmock.AnyArg(), 3, "pending").
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))

			err := repo.UpdateFields(context.Background(), order, domain.StatusPending)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, order.UpdatedAt.IsZero())
			} else {
				require.NoError(t, err)
				assert.False(t, order.UpdatedAt.IsZero())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestOrderRepo_CancelIsOneGuardedStatement(t *testing.T) {
	tests := []struct {
		name         string
		rowsAffected int64
		wantErr      error
	}{
		{name: "cancelled", rowsAffected: 1},
		{name: "lost race", rowsAffected: 0, wantErr: domain.ErrConcurrentUpdate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
			order := &domain.Order{ID: 8, Status: domain.StatusPending}
			require.NoError(t, order.Cancel(now))

			mock.ExpectExec(cancelSQL).
				WithArgs(now, "cancelled", now, 8, "pending").
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))

			err := repo.Cancel(context.Background(), order, domain.StatusPending)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestOrderRepo_CancelRequiresTimestamp(t *testing.T) {
	repo, mock := newMockRepo(t)

	err := repo.Cancel(context.Background(), &domain.Order{ID: 1, Status: domain.StatusCancelled}, domain.StatusPending)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_Stats(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) AS count FROM `orders` GROUP BY")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("pending", 2).
			AddRow("shipped", 3).
			AddRow("delivered", 1).
			AddRow("cancelled", 4))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(total), 0) AS revenue FROM `orders` WHERE status IN (?,?)")).
		WithArgs("shipped", "delivered").
		WillReturnRows(sqlmock.NewRows([]string{"revenue"}).AddRow("120.455"))

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(10), stats.TotalOrders)
	assert.Equal(t, int64(2), stats.Pending)
	assert.Equal(t, int64(0), stats.Processing)
	assert.Equal(t, int64(3), stats.Shipped)
	assert.Equal(t, int64(1), stats.Delivered)
	assert.Equal(t, int64(4), stats.Cancelled)
	assert.Equal(t, "120.46", stats.TotalRevenue.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_FindByIDMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `orders` WHERE `orders`.`id` = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	o, err := repo.FindByID(context.Background(), 99)
	assert.NoError(t, err)
	assert.Nil(t, o)
	assert.NoError(t, mock.ExpectationsWereMet())
}
