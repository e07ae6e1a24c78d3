package postgres

import (
	"context"
	"database/sql"
	"time"

	"cluster-ledger-backend/internal/domain"
	"cluster-ledger-backend/internal/logger"
	"cluster-ledger-backend/internal/repository"

	"github.com/shopspring/decimal"
)

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, full_name, phone_number, password_hash, role, birthdate, spouse_name, profile_picture, created_on`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	u := &domain.User{}
	var (
		birthdate      sql.NullTime
		spouseName     sql.NullString
		profilePicture sql.NullString
		createdOn      time.Time
	)
	if err := row.Scan(&u.ID, &u.FullName, &u.PhoneNumber, &u.PasswordHash, &u.Role, &birthdate, &spouseName, &profilePicture, &createdOn); err != nil {
		return nil, err
	}
	if birthdate.Valid {
		s := birthdate.Time.Format("2006-01-02")
		u.Birthdate = &s
	}
	if spouseName.Valid {
		u.SpouseName = &spouseName.String
	}
	if profilePicture.Valid {
		u.ProfilePicture = &profilePicture.String
	}
	u.CreatedOn = createdOn.Format("2006-01-02")
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	logger.EnterMethod("userRepository.Create", "phone", u.PhoneNumber, "role", u.Role)

	query := `INSERT INTO users (full_name, phone_number, password_hash, role, birthdate, spouse_name, profile_picture, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	now := time.Now()
	logger.DatabaseCall("INSERT", "users", "phone", u.PhoneNumber)
	err := r.db.QueryRowContext(ctx, query, u.FullName, u.PhoneNumber, u.PasswordHash, u.Role, u.Birthdate, u.SpouseName, u.ProfilePicture, now).Scan(&u.ID)
	logger.DatabaseResult("INSERT", 1, err, "userID", u.ID)
	if err != nil {
		logger.ExitMethodWithError("userRepository.Create", err)
		return wrapErr("create user", "user", 0, err)
	}
	u.CreatedOn = now.Format("2006-01-02")

	logger.ExitMethod("userRepository.Create", "userID", u.ID)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	logger.DatabaseCall("SELECT", "users", "userID", id)
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapErr("get user", "user", id, err)
	}
	return u, nil
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone_number = $1`
	logger.DatabaseCall("SELECT", "users", "phone", phone)
	u, err := scanUser(r.db.QueryRowContext(ctx, query, phone))
	if err != nil {
		return nil, wrapErr("get user by phone", "user", 0, err)
	}
	return u, nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET full_name = $1, phone_number = $2, birthdate = $3, spouse_name = $4, profile_picture = $5 WHERE id = $6`
	logger.DatabaseCall("UPDATE", "users", "userID", u.ID)
	res, err := r.db.ExecContext(ctx, query, u.FullName, u.PhoneNumber, u.Birthdate, u.SpouseName, u.ProfilePicture, u.ID)
	if err != nil {
		return wrapErr("update user", "user", u.ID, err)
	}
	return requireAffected("update user", "user", u.ID, res)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int32, passwordHash string) error {
	logger.DatabaseCall("UPDATE", "users", "userID", id, "field", "password_hash")
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return domain.NewStoreError("update password", err)
	}
	return requireAffected("update password", "user", id, res)
}

func (r *userRepository) UpdatePhone(ctx context.Context, id int32, phone string) error {
	logger.DatabaseCall("UPDATE", "users", "userID", id, "field", "phone_number")
	res, err := r.db.ExecContext(ctx, `UPDATE users SET phone_number = $1 WHERE id = $2`, phone, id)
	if err != nil {
		return wrapErr("update phone", "user", id, err)
	}
	return requireAffected("update phone", "user", id, res)
}

func (r *userRepository) Delete(ctx context.Context, id int32) error {
	logger.DatabaseCall("DELETE", "users", "userID", id)
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return domain.NewStoreError("delete user", err)
	}
	return requireAffected("delete user", "user", id, res)
}

func (r *userRepository) ListMembers(ctx context.Context) ([]domain.MemberSummary, error) {
	query := `
		SELECT u.id, u.full_name, u.phone_number, u.profile_picture,
		       l.loan_name, l.total_amount, l.current_balance,
		       (SELECT COUNT(*) FROM financial_records fr WHERE fr.user_id = u.id AND fr.status = 'late') AS late_count
		FROM users u
		LEFT JOIN loans l ON u.id = l.user_id AND l.status = 'active'
		WHERE u.role = 'member'
		ORDER BY u.full_name, u.id`
	logger.DatabaseCall("SELECT", "users", "role", domain.RoleMember)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, domain.NewStoreError("list members", err)
	}
	defer rows.Close()

	var members []domain.MemberSummary
	for rows.Next() {
		var (
			m              domain.MemberSummary
			picture        sql.NullString
			loanName       sql.NullString
			totalAmount    decimal.NullDecimal
			currentBalance decimal.NullDecimal
		)
		if err := rows.Scan(&m.ID, &m.FullName, &m.PhoneNumber, &picture, &loanName, &totalAmount, &currentBalance, &m.LateCount); err != nil {
			return nil, domain.NewStoreError("list members", err)
		}
		if picture.Valid {
			m.ProfilePicture = &picture.String
		}
		if loanName.Valid {
			m.LoanName = &loanName.String
		}
		if totalAmount.Valid {
			m.TotalAmount = &totalAmount.Decimal
		}
		if currentBalance.Valid {
			m.CurrentBalance = &currentBalance.Decimal
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("list members", err)
	}
	return members, nil
}
