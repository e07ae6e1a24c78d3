package postgres_test

import (
	"context"
	"testing"
	"time"

	"cluster-ledger-backend/internal/domain"
	"cluster-ledger-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

var userCols = []string{"id", "full_name", "phone_number", "password_hash", "role", "birthdate", "spouse_name", "profile_picture", "created_on"}

func TestUserRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewUserRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		birthdate := "1990-04-01"
		u := &domain.User{
			FullName:     "Juan Dela Cruz",
			PhoneNumber:  "09170000001",
			PasswordHash: "hash",
			Role:         domain.RoleMember,
			Birthdate:    &birthdate,
		}

		mock.ExpectQuery("INSERT INTO users").
			WithArgs(u.FullName, u.PhoneNumber, u.PasswordHash, u.Role, u.Birthdate, nil, nil, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

		assert.NoError(t, repo.Create(ctx, u))
		assert.Equal(t, int32(5), u.ID)
	})
}

func TestUserRepository_GetByPhone(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewUserRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		birth := time.Date(1990, 4, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery("SELECT (.+) FROM users WHERE phone_number = \\$1").
			WithArgs("09170000001").
			WillReturnRows(sqlmock.NewRows(userCols).AddRow(5, "Juan", "09170000001", "hash", "member", birth, "Ana", nil, time.Now()))

		u, err := repo.GetByPhone(ctx, "09170000001")
		assert.NoError(t, err)
		assert.Equal(t, int32(5), u.ID)
		assert.Equal(t, domain.RoleMember, u.Role)
		assert.Equal(t, "1990-04-01", *u.Birthdate)
		assert.Equal(t, "Ana", *u.SpouseName)
		assert.Nil(t, u.ProfilePicture)
	})

	t.Run("Unknown phone", func(t *testing.T) {
		mock.ExpectQuery("FROM users WHERE phone_number").
			WithArgs("000").
			WillReturnRows(sqlmock.NewRows(userCols))

		_, err := repo.GetByPhone(ctx, "000")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestUserRepository_ListMembers(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewUserRepository(db)
	ctx := context.Background()

	t.Run("With and without loans", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "full_name", "phone_number", "profile_picture", "loan_name", "total_amount", "current_balance", "late_count"}).
			AddRow(5, "Ana", "0917", "profiles/a.png", "Home", "1000.00", "600.00", 2).
			AddRow(6, "Ben", "0918", nil, nil, nil, nil, 0)
		mock.ExpectQuery("FROM users u\\s+LEFT JOIN loans l ON u.id = l.user_id AND l.status = 'active'").
			WillReturnRows(rows)

		members, err := repo.ListMembers(ctx)
		assert.NoError(t, err)
		assert.Len(t, members, 2)
		assert.Equal(t, "Home", *members[0].LoanName)
		assert.Equal(t, "600", members[0].CurrentBalance.String())
		assert.Equal(t, int32(2), members[0].LateCount)
		assert.Nil(t, members[1].LoanName)
		assert.Nil(t, members[1].TotalAmount)
	})
}

func TestUserRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewUserRepository(db)
	ctx := context.Background()

	t.Run("Missing", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM users WHERE id = \\$1").
			WithArgs(int32(9)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(ctx, 9), domain.ErrNotFound)
	})
}

func TestUserRepository_UpdatePhone(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewUserRepository(db)
	ctx := context.Background()

	t.Run("Taken", func(t *testing.T) {
		mock.ExpectExec("UPDATE users SET phone_number = \\$1 WHERE id = \\$2").
			WithArgs("0918", int32(5)).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_phone_number_key"})

		err := repo.UpdatePhone(ctx, 5, "0918")
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.EqualError(t, err, "phone number already registered")
	})

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE users SET phone_number").
			WithArgs("0919", int32(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdatePhone(ctx, 5, "0919"))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
