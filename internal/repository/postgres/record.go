package postgres

import (
	"context"
	"database/sql"
	"time"

	"cluster-ledger-backend/internal/domain"
	"cluster-ledger-backend/internal/logger"
	"cluster-ledger-backend/internal/repository"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type recordRepository struct {
	db DBTX
}

func NewRecordRepository(db DBTX) repository.RecordRepository {
	return &recordRepository{db: db}
}

const recordColumns = `fr.id, fr.user_id, fr.type, fr.amount, fr.due_date, fr.status, fr.loan_id, l.loan_name, COALESCE(fr.note, ''), fr.date_recorded`

const recordFrom = ` FROM financial_records fr LEFT JOIN loans l ON fr.loan_id = l.id`

func scanRecord(row interface{ Scan(...any) error }) (*domain.FinancialRecord, error) {
	rec := &domain.FinancialRecord{}
	var (
		loanID       sql.NullInt32
		loanName     sql.NullString
		dateRecorded sql.NullTime
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Type, &rec.Amount, &rec.DueDate, &rec.Status, &loanID, &loanName, &rec.Note, &dateRecorded); err != nil {
		return nil, err
	}
	if loanID.Valid {
		id := loanID.Int32
		rec.LoanID = &id
	}
	if loanName.Valid {
		name := loanName.String
		rec.LoanName = &name
	}
	if dateRecorded.Valid {
		t := dateRecorded.Time
		rec.DateRecorded = &t
	}
	return rec, nil
}

func scanRecords(rows *sql.Rows) ([]domain.FinancialRecord, error) {
	defer rows.Close()
	var recs []domain.FinancialRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

func statusStrings(statuses []domain.RecordStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (r *recordRepository) Create(ctx context.Context, rec *domain.FinancialRecord) error {
	logger.EnterMethod("recordRepository.Create", "userID", rec.UserID, "type", rec.Type, "amount", rec.Amount)

	query := `INSERT INTO financial_records (user_id, type, amount, due_date, status, loan_id, note)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	logger.DatabaseCall("INSERT", "financial_records", "userID", rec.UserID)

	err := r.db.QueryRowContext(ctx, query, rec.UserID, rec.Type, rec.Amount, rec.DueDate, rec.Status, rec.LoanID, rec.Note).Scan(&rec.ID)
	logger.DatabaseResult("INSERT", 1, err, "recordID", rec.ID)
	if err != nil {
		logger.ExitMethodWithError("recordRepository.Create", err)
		return domain.NewStoreError("create record", err)
	}

	logger.ExitMethod("recordRepository.Create", "recordID", rec.ID)
	return nil
}

func (r *recordRepository) GetByID(ctx context.Context, id int32) (*domain.FinancialRecord, error) {
	query := `SELECT ` + recordColumns + recordFrom + ` WHERE fr.id = $1`
	logger.DatabaseCall("SELECT", "financial_records", "recordID", id)
	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapErr("get record", "record", id, err)
	}
	return rec, nil
}

func (r *recordRepository) ListByUser(ctx context.Context, userID int32) ([]domain.FinancialRecord, error) {
	query := `SELECT ` + recordColumns + recordFrom + ` WHERE fr.user_id = $1 ORDER BY fr.due_date DESC, fr.id DESC`
	logger.DatabaseCall("SELECT", "financial_records", "userID", userID)
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, domain.NewStoreError("list records", err)
	}
	recs, err := scanRecords(rows)
	if err != nil {
		return nil, domain.NewStoreError("list records", err)
	}
	return recs, nil
}

func (r *recordRepository) ListPendingDueBetween(ctx context.Context, from, to time.Time) ([]domain.FinancialRecord, error) {
	query := `SELECT ` + recordColumns + recordFrom + `
	          WHERE fr.status = 'pending' AND fr.due_date >= $1 AND fr.due_date <= $2
	          ORDER BY fr.due_date, fr.id`
	logger.DatabaseCall("SELECT", "financial_records", "from", from, "to", to)
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, domain.NewStoreError("list pending records", err)
	}
	recs, err := scanRecords(rows)
	if err != nil {
		return nil, domain.NewStoreError("list pending records", err)
	}
	return recs, nil
}

func (r *recordRepository) UpdateStatus(ctx context.Context, id int32, status domain.RecordStatus, recordedAt *time.Time) error {
	query := `UPDATE financial_records SET status = $1, date_recorded = $2 WHERE id = $3`
	logger.DatabaseCall("UPDATE", "financial_records", "recordID", id, "status", status)
	res, err := r.db.ExecContext(ctx, query, status, recordedAt, id)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "recordID", id)
		return domain.NewStoreError("update record status", err)
	}
	return requireAffected("update record status", "record", id, res)
}

func (r *recordRepository) Delete(ctx context.Context, id int32) error {
	logger.DatabaseCall("DELETE", "financial_records", "recordID", id)
	res, err := r.db.ExecContext(ctx, `DELETE FROM financial_records WHERE id = $1`, id)
	if err != nil {
		return domain.NewStoreError("delete record", err)
	}
	return requireAffected("delete record", "record", id, res)
}

func (r *recordRepository) DeleteByLoan(ctx context.Context, loanID int32) (int64, error) {
	logger.DatabaseCall("DELETE", "financial_records", "loanID", loanID)
	res, err := r.db.ExecContext(ctx, `DELETE FROM financial_records WHERE loan_id = $1`, loanID)
	if err != nil {
		return 0, domain.NewStoreError("delete loan records", err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("DELETE", n, err, "loanID", loanID)
	if err != nil {
		return 0, domain.NewStoreError("delete loan records", err)
	}
	return n, nil
}

func (r *recordRepository) TransitionAll(ctx context.Context, userID int32, recordType domain.RecordType, from []domain.RecordStatus, to domain.RecordStatus) (int64, error) {
	query := `UPDATE financial_records SET status = $1 WHERE user_id = $2 AND type = $3 AND status = ANY($4)`
	logger.DatabaseCall("UPDATE", "financial_records", "userID", userID, "type", recordType, "to", to)
	res, err := r.db.ExecContext(ctx, query, to, userID, recordType, pq.Array(statusStrings(from)))
	if err != nil {
		return 0, domain.NewStoreError("transition records", err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, err, "userID", userID)
	if err != nil {
		return 0, domain.NewStoreError("transition records", err)
	}
	return n, nil
}

func (r *recordRepository) SumAmount(ctx context.Context, userID int32, recordType domain.RecordType, statuses []domain.RecordStatus) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM financial_records WHERE user_id = $1 AND type = $2 AND status = ANY($3)`
	logger.DatabaseCall("SELECT", "financial_records", "userID", userID, "type", recordType)
	var total decimal.NullDecimal
	if err := r.db.QueryRowContext(ctx, query, userID, recordType, pq.Array(statusStrings(statuses))).Scan(&total); err != nil {
		return decimal.Zero, domain.NewStoreError("sum records", err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
