// Package memory is an in-process implementation of the ledger store. It backs
// tests and local tooling; transactions are simulated with a snapshot that is
// restored when the transaction function fails.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"cluster-ledger-backend/internal/domain"
	"cluster-ledger-backend/internal/repository"

	"github.com/shopspring/decimal"
)

type state struct {
	users    map[int32]domain.User
	loans    map[int32]domain.Loan
	records  map[int32]domain.FinancialRecord
	notes    map[int32]domain.Notification
	nextUser int32
	nextLoan int32
	nextRec  int32
	nextNote int32
}

func newState() *state {
	return &state{
		users:   make(map[int32]domain.User),
		loans:   make(map[int32]domain.Loan),
		records: make(map[int32]domain.FinancialRecord),
		notes:   make(map[int32]domain.Notification),
	}
}

func (s *state) clone() *state {
	c := *s
	c.users = make(map[int32]domain.User, len(s.users))
	for k, v := range s.users {
		c.users[k] = v
	}
	c.loans = make(map[int32]domain.Loan, len(s.loans))
	for k, v := range s.loans {
		c.loans[k] = v
	}
	c.records = make(map[int32]domain.FinancialRecord, len(s.records))
	for k, v := range s.records {
		c.records[k] = v
	}
	c.notes = make(map[int32]domain.Notification, len(s.notes))
	for k, v := range s.notes {
		c.notes[k] = v
	}
	return &c
}

// Store is the transactional memory store.
type Store struct {
	mu   sync.Mutex
	data *state
}

func NewStore() *Store {
	return &Store{data: newState()}
}

// view gives repositories access to the shared state. Views created inside
// WithTx run under the lock already held by the transaction.
type view struct {
	s    *Store
	inTx bool
}

func (v view) with(fn func(st *state) error) error {
	if !v.inTx {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	return fn(v.s.data)
}

func (s *Store) repos(inTx bool) repository.Repositories {
	v := view{s: s, inTx: inTx}
	return repository.Repositories{
		Users:         &userRepo{v},
		Loans:         &loanRepo{v},
		Records:       &recordRepo{v},
		Notifications: &noteRepo{v},
	}
}

func (s *Store) Repos() repository.Repositories {
	return s.repos(false)
}

// WithTx executes fn within a transaction.
func (s *Store) WithTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(s.repos(true)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// --- users ---

type userRepo struct{ v view }

func (r *userRepo) Create(_ context.Context, u *domain.User) error {
	return r.v.with(func(st *state) error {
		if err := st.phoneTaken(u.PhoneNumber, 0); err != nil {
			return err
		}
		st.nextUser++
		u.ID = st.nextUser
		u.CreatedOn = time.Now().Format("2006-01-02")
		st.users[u.ID] = *u
		return nil
	})
}

func (r *userRepo) GetByID(_ context.Context, id int32) (*domain.User, error) {
	var out *domain.User
	err := r.v.with(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return domain.NewNotFoundError("user", id)
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepo) GetByPhone(_ context.Context, phone string) (*domain.User, error) {
	var out *domain.User
	err := r.v.with(func(st *state) error {
		for _, u := range st.users {
			if u.PhoneNumber == phone {
				found := u
				out = &found
				return nil
			}
		}
		return domain.NewNotFoundError("user", 0)
	})
	return out, err
}

func (r *userRepo) Update(_ context.Context, u *domain.User) error {
	return r.v.with(func(st *state) error {
		cur, ok := st.users[u.ID]
		if !ok {
			return domain.NewNotFoundError("user", u.ID)
		}
		if err := st.phoneTaken(u.PhoneNumber, u.ID); err != nil {
			return err
		}
		cur.FullName = u.FullName
		cur.PhoneNumber = u.PhoneNumber
		cur.Birthdate = u.Birthdate
		cur.SpouseName = u.SpouseName
		cur.ProfilePicture = u.ProfilePicture
		st.users[u.ID] = cur
		return nil
	})
}

func (r *userRepo) UpdatePassword(_ context.Context, id int32, hash string) error {
	return r.v.with(func(st *state) error {
		cur, ok := st.users[id]
		if !ok {
			return domain.NewNotFoundError("user", id)
		}
		cur.PasswordHash = hash
		st.users[id] = cur
		return nil
	})
}

func (r *userRepo) UpdatePhone(_ context.Context, id int32, phone string) error {
	return r.v.with(func(st *state) error {
		cur, ok := st.users[id]
		if !ok {
			return domain.NewNotFoundError("user", id)
		}
		if err := st.phoneTaken(phone, id); err != nil {
			return err
		}
		cur.PhoneNumber = phone
		st.users[id] = cur
		return nil
	})
}

// phoneTaken mirrors the unique constraint on users.phone_number.
func (st *state) phoneTaken(phone string, self int32) error {
	for _, existing := range st.users {
		if existing.PhoneNumber == phone && existing.ID != self {
			return &domain.ConflictError{Reason: "phone number already registered"}
		}
	}
	return nil
}

// Delete removes the user and cascades like the SQL schema does.
func (r *userRepo) Delete(_ context.Context, id int32) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.users[id]; !ok {
			return domain.NewNotFoundError("user", id)
		}
		delete(st.users, id)
		for k, l := range st.loans {
			if l.UserID == id {
				delete(st.loans, k)
			}
		}
		for k, rec := range st.records {
			if rec.UserID == id {
				delete(st.records, k)
			}
		}
		for k, n := range st.notes {
			if n.UserID == id {
				delete(st.notes, k)
			}
		}
		return nil
	})
}

func (r *userRepo) ListMembers(_ context.Context) ([]domain.MemberSummary, error) {
	var out []domain.MemberSummary
	err := r.v.with(func(st *state) error {
		for _, u := range st.users {
			if u.Role != domain.RoleMember {
				continue
			}
			m := domain.MemberSummary{ID: u.ID, FullName: u.FullName, PhoneNumber: u.PhoneNumber, ProfilePicture: u.ProfilePicture}
			for _, l := range st.loans {
				if l.UserID == u.ID && l.IsActive() {
					name, total, bal := l.LoanName, l.TotalAmount, l.CurrentBalance
					m.LoanName, m.TotalAmount, m.CurrentBalance = &name, &total, &bal
					break
				}
			}
			for _, rec := range st.records {
				if rec.UserID == u.ID && rec.Status == domain.RecordStatusLate {
					m.LateCount++
				}
			}
			out = append(out, m)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

// --- loans ---

// hasOtherActiveLoan mirrors the loans_one_active_per_user partial index.
func (st *state) hasOtherActiveLoan(userID, self int32) bool {
	for _, existing := range st.loans {
		if existing.UserID == userID && existing.ID != self && existing.IsActive() {
			return true
		}
	}
	return false
}

type loanRepo struct{ v view }

func (r *loanRepo) Create(_ context.Context, l *domain.Loan) error {
	return r.v.with(func(st *state) error {
		if l.Status == domain.LoanStatusActive && st.hasOtherActiveLoan(l.UserID, 0) {
			return &domain.ConflictError{Reason: "user already has an active loan"}
		}
		st.nextLoan++
		l.ID = st.nextLoan
		l.CreatedOn = time.Now().Format("2006-01-02")
		st.loans[l.ID] = *l
		return nil
	})
}

func (r *loanRepo) GetByID(_ context.Context, id int32) (*domain.Loan, error) {
	var out *domain.Loan
	err := r.v.with(func(st *state) error {
		l, ok := st.loans[id]
		if !ok {
			return domain.NewNotFoundError("loan", id)
		}
		out = &l
		return nil
	})
	return out, err
}

func (r *loanRepo) FindActiveByUser(_ context.Context, userID int32) (*domain.Loan, error) {
	var out *domain.Loan
	err := r.v.with(func(st *state) error {
		for _, l := range st.loans {
			if l.UserID == userID && l.IsActive() && (out == nil || l.ID < out.ID) {
				found := l
				out = &found
			}
		}
		return nil
	})
	return out, err
}

func (r *loanRepo) AdjustBalance(_ context.Context, id int32, amount decimal.Decimal, direction domain.BalanceDirection) error {
	return r.v.with(func(st *state) error {
		l, ok := st.loans[id]
		if !ok {
			return domain.NewNotFoundError("loan", id)
		}
		if direction == domain.Credit {
			l.CurrentBalance = l.CurrentBalance.Add(amount)
		} else {
			l.CurrentBalance = l.CurrentBalance.Sub(amount)
		}
		st.loans[id] = l
		return nil
	})
}

func (r *loanRepo) CloseIfSettled(_ context.Context, id int32) error {
	return r.v.with(func(st *state) error {
		l, ok := st.loans[id]
		if ok && l.CurrentBalance.LessThanOrEqual(decimal.Zero) {
			l.Status = domain.LoanStatusCompleted
			st.loans[id] = l
		}
		return nil
	})
}

func (r *loanRepo) ReactivateIfNeeded(_ context.Context, id int32) error {
	return r.v.with(func(st *state) error {
		l, ok := st.loans[id]
		if !ok {
			return nil
		}
		if l.CurrentBalance.GreaterThan(decimal.Zero) {
			if !l.IsActive() && st.hasOtherActiveLoan(l.UserID, id) {
				return &domain.ConflictError{Reason: "user already has an active loan"}
			}
			l.Status = domain.LoanStatusActive
		} else {
			l.Status = domain.LoanStatusCompleted
		}
		st.loans[id] = l
		return nil
	})
}

func (r *loanRepo) Delete(_ context.Context, id int32) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.loans[id]; !ok {
			return domain.NewNotFoundError("loan", id)
		}
		delete(st.loans, id)
		for k, rec := range st.records {
			if rec.LoanID != nil && *rec.LoanID == id {
				rec.LoanID = nil
				st.records[k] = rec
			}
		}
		return nil
	})
}

// --- records ---

type recordRepo struct{ v view }

func withLoanName(st *state, rec domain.FinancialRecord) domain.FinancialRecord {
	rec.LoanName = nil
	if rec.LoanID != nil {
		if l, ok := st.loans[*rec.LoanID]; ok {
			name := l.LoanName
			rec.LoanName = &name
		}
	}
	return rec
}

func (r *recordRepo) Create(_ context.Context, rec *domain.FinancialRecord) error {
	return r.v.with(func(st *state) error {
		st.nextRec++
		rec.ID = st.nextRec
		st.records[rec.ID] = *rec
		return nil
	})
}

func (r *recordRepo) GetByID(_ context.Context, id int32) (*domain.FinancialRecord, error) {
	var out *domain.FinancialRecord
	err := r.v.with(func(st *state) error {
		rec, ok := st.records[id]
		if !ok {
			return domain.NewNotFoundError("record", id)
		}
		rec = withLoanName(st, rec)
		out = &rec
		return nil
	})
	return out, err
}

func (r *recordRepo) ListByUser(_ context.Context, userID int32) ([]domain.FinancialRecord, error) {
	var out []domain.FinancialRecord
	err := r.v.with(func(st *state) error {
		for _, rec := range st.records {
			if rec.UserID == userID {
				out = append(out, withLoanName(st, rec))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.After(out[j].DueDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, err
}

func (r *recordRepo) ListPendingDueBetween(_ context.Context, from, to time.Time) ([]domain.FinancialRecord, error) {
	var out []domain.FinancialRecord
	err := r.v.with(func(st *state) error {
		for _, rec := range st.records {
			if rec.Status != domain.RecordStatusPending {
				continue
			}
			if rec.DueDate.Before(from) || rec.DueDate.After(to) {
				continue
			}
			out = append(out, withLoanName(st, rec))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *recordRepo) UpdateStatus(_ context.Context, id int32, status domain.RecordStatus, recordedAt *time.Time) error {
	return r.v.with(func(st *state) error {
		rec, ok := st.records[id]
		if !ok {
			return domain.NewNotFoundError("record", id)
		}
		rec.Status = status
		rec.DateRecorded = recordedAt
		st.records[id] = rec
		return nil
	})
}

func (r *recordRepo) Delete(_ context.Context, id int32) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.records[id]; !ok {
			return domain.NewNotFoundError("record", id)
		}
		delete(st.records, id)
		return nil
	})
}

func (r *recordRepo) DeleteByLoan(_ context.Context, loanID int32) (int64, error) {
	var n int64
	err := r.v.with(func(st *state) error {
		for k, rec := range st.records {
			if rec.LoanID != nil && *rec.LoanID == loanID {
				delete(st.records, k)
				n++
			}
		}
		return nil
	})
	return n, err
}

func hasStatus(set []domain.RecordStatus, s domain.RecordStatus) bool {
	for _, x := range set {
		if x == s {
			return true
		}
	}
	return false
}

func (r *recordRepo) TransitionAll(_ context.Context, userID int32, recordType domain.RecordType, from []domain.RecordStatus, to domain.RecordStatus) (int64, error) {
	var n int64
	err := r.v.with(func(st *state) error {
		for k, rec := range st.records {
			if rec.UserID == userID && rec.Type == recordType && hasStatus(from, rec.Status) {
				rec.Status = to
				st.records[k] = rec
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *recordRepo) SumAmount(_ context.Context, userID int32, recordType domain.RecordType, statuses []domain.RecordStatus) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.v.with(func(st *state) error {
		for _, rec := range st.records {
			if rec.UserID == userID && rec.Type == recordType && hasStatus(statuses, rec.Status) {
				total = total.Add(rec.Amount)
			}
		}
		return nil
	})
	return total, err
}

// --- notifications ---

type noteRepo struct{ v view }

func (r *noteRepo) Create(_ context.Context, n *domain.Notification) error {
	return r.v.with(func(st *state) error {
		st.nextNote++
		n.ID = st.nextNote
		n.CreatedOn = time.Now().Format(time.RFC3339)
		st.notes[n.ID] = *n
		return nil
	})
}

func (r *noteRepo) ListByUser(_ context.Context, userID int32) ([]domain.Notification, error) {
	var out []domain.Notification
	err := r.v.with(func(st *state) error {
		for _, n := range st.notes {
			if n.UserID == userID {
				out = append(out, n)
			}
		}
		return nil
	})
	// ids are assigned in creation order
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, err
}

func (r *noteRepo) MarkAsRead(_ context.Context, id, userID int32) error {
	return r.v.with(func(st *state) error {
		n, ok := st.notes[id]
		if !ok || n.UserID != userID {
			return domain.NewNotFoundError("notification", id)
		}
		n.IsRead = true
		st.notes[id] = n
		return nil
	})
}
