package service_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cluster-ledger-backend/internal/domain"
	"cluster-ledger-backend/internal/repository/memory"
	"cluster-ledger-backend/internal/service"
	"cluster-ledger-backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMemberService returns the ledger fixture, the service and the upload root.
func newMemberService(t *testing.T) (*ledger, service.MemberService, string) {
	t.Helper()
	store := memory.NewStore()
	l := newLedgerWith(t, store, store)
	root := t.TempDir()
	files, err := storage.NewLocalStorage("http://localhost:8080", root)
	require.NoError(t, err)
	policy := storage.Policy{MaxBytes: 1 << 20, AllowedTypes: []string{"image/png", "image/jpeg"}}
	return l, service.NewMemberService(store, files, policy), root
}

func TestMemberService_AddMember(t *testing.T) {
	ctx := context.Background()
	birthdate := "1990-04-01"

	t.Run("Success with picture", func(t *testing.T) {
		l, svc, root := newMemberService(t)
		image := &service.ImageUpload{Filename: "face.png", ContentType: "image/png", Size: 4, Content: strings.NewReader("png!")}

		user, err := svc.AddMember(ctx, l.leader, service.MemberInput{
			FullName:    " Pedro Reyes ",
			PhoneNumber: "09171111111",
			Password:    "secret1",
			Birthdate:   &birthdate,
		}, image)
		require.NoError(t, err)
		assert.Equal(t, "Pedro Reyes", user.FullName)
		assert.Equal(t, domain.RoleMember, user.Role)
		require.NotNil(t, user.ProfilePicture)

		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(*user.ProfilePicture)))
		require.NoError(t, err)
		assert.Equal(t, int64(4), info.Size())

		stored, err := l.store.Repos().Users.GetByPhone(ctx, "09171111111")
		require.NoError(t, err)
		assert.NotEqual(t, "secret1", stored.PasswordHash)
	})

	t.Run("Duplicate phone removes the picture", func(t *testing.T) {
		l, svc, root := newMemberService(t)
		image := &service.ImageUpload{Filename: "face.png", ContentType: "image/png", Size: 4, Content: strings.NewReader("png!")}

		_, err := svc.AddMember(ctx, l.leader, service.MemberInput{
			FullName:    "Copy",
			PhoneNumber: "09170000001",
			Password:    "secret1",
		}, image)
		assert.ErrorIs(t, err, domain.ErrConflict)

		members, err := l.store.Repos().Users.ListMembers(ctx)
		require.NoError(t, err)
		assert.Len(t, members, 1)

		left, err := os.ReadDir(filepath.Join(root, "profiles"))
		require.NoError(t, err)
		assert.Empty(t, left)
	})

	t.Run("Rejected image type", func(t *testing.T) {
		l, svc, _ := newMemberService(t)
		image := &service.ImageUpload{Filename: "notes.txt", ContentType: "text/plain", Size: 4, Content: strings.NewReader("text")}

		_, err := svc.AddMember(ctx, l.leader, service.MemberInput{FullName: "A", PhoneNumber: "1", Password: "secret1"}, image)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Validation", func(t *testing.T) {
		l, svc, _ := newMemberService(t)
		bad := "01/04/1990"
		cases := []service.MemberInput{
			{PhoneNumber: "1", Password: "secret1"},
			{FullName: "A", Password: "secret1"},
			{FullName: "A", PhoneNumber: "1", Password: "short"},
			{FullName: "A", PhoneNumber: "1", Password: "secret1", Birthdate: &bad},
		}
		for _, in := range cases {
			_, err := svc.AddMember(ctx, l.leader, in, nil)
			assert.ErrorIs(t, err, domain.ErrValidation)
		}
	})

	t.Run("Member denied", func(t *testing.T) {
		l, svc, _ := newMemberService(t)
		_, err := svc.AddMember(ctx, l.member, service.MemberInput{FullName: "A", PhoneNumber: "1", Password: "secret1"}, nil)
		assert.ErrorIs(t, err, domain.ErrAccessDenied)
	})
}

func TestMemberService_Profiles(t *testing.T) {
	ctx := context.Background()
	l, svc, _ := newMemberService(t)
	spouse := "Jose"
	_, err := svc.UpdateMember(ctx, l.leader, l.leader.UserID, service.MemberUpdate{SpouseName: &spouse})
	require.NoError(t, err)

	t.Run("Leader details are redacted", func(t *testing.T) {
		user, err := svc.GetProfile(ctx, l.member, l.member.UserID)
		require.NoError(t, err)
		assert.Equal(t, "Maria Santos", user.FullName)

		leader, err := svc.GetProfile(ctx, l.leader, l.leader.UserID)
		require.NoError(t, err)
		assert.Nil(t, leader.SpouseName)
	})

	t.Run("Member cannot view others", func(t *testing.T) {
		_, err := svc.GetProfile(ctx, l.member, l.leader.UserID)
		assert.ErrorIs(t, err, domain.ErrAccessDenied)
		_, err = svc.GetMemberDetails(ctx, l.member, l.leader.UserID)
		assert.ErrorIs(t, err, domain.ErrAccessDenied)
		_, err = svc.ListMembers(ctx, l.member)
		assert.ErrorIs(t, err, domain.ErrAccessDenied)
	})

	t.Run("Update", func(t *testing.T) {
		name := "Maria S. Cruz"
		blank := ""
		user, err := svc.UpdateMember(ctx, l.leader, l.member.UserID, service.MemberUpdate{FullName: &name, SpouseName: &blank})
		require.NoError(t, err)
		assert.Equal(t, name, user.FullName)
		assert.Nil(t, user.SpouseName)

		taken := "09170000000"
		_, err = svc.UpdateMember(ctx, l.leader, l.member.UserID, service.MemberUpdate{PhoneNumber: &taken})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestMemberService_GetMemberDetails(t *testing.T) {
	ctx := context.Background()
	l, svc, _ := newMemberService(t)
	loan := l.createLoan(t, 1000)
	pay := l.assign(t, domain.RecordTypeLoanPayment, 400, "2026-11-01")
	savings := l.assign(t, domain.RecordTypeSavings, 250, "2020-01-01")
	for _, id := range []int32{pay.ID, savings.ID} {
		_, err := l.records.Settle(ctx, l.leader, id)
		require.NoError(t, err)
	}

	details, err := svc.GetMemberDetails(ctx, l.member, l.member.UserID)
	require.NoError(t, err)
	require.NotNil(t, details.ActiveLoan)
	assert.Equal(t, loan.ID, details.ActiveLoan.ID)
	assert.Equal(t, "600", details.ActiveLoan.CurrentBalance.String())
	assert.Len(t, details.Records, 2)
	assert.Equal(t, pay.ID, details.Records[0].ID)
	assert.NotEmpty(t, details.Notifications)
	assert.Equal(t, "250", details.SavingsTotal.String())
	assert.True(t, details.InsuranceTotal.IsZero())

	members, err := svc.ListMembers(ctx, l.leader)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Home Repair", *members[0].LoanName)
	assert.Equal(t, int32(1), members[0].LateCount)
}

func TestMemberService_DeleteMember(t *testing.T) {
	ctx := context.Background()

	t.Run("Cascades", func(t *testing.T) {
		l, svc, _ := newMemberService(t)
		l.createLoan(t, 1000)
		l.assign(t, domain.RecordTypeSavings, 100, "2026-11-01")

		require.NoError(t, svc.DeleteMember(ctx, l.leader, l.member.UserID))

		_, err := l.store.Repos().Users.GetByID(ctx, l.member.UserID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		recs, err := l.store.Repos().Records.ListByUser(ctx, l.member.UserID)
		require.NoError(t, err)
		assert.Empty(t, recs)
	})

	t.Run("Leaders cannot be deleted", func(t *testing.T) {
		l, svc, _ := newMemberService(t)
		assert.ErrorIs(t, svc.DeleteMember(ctx, l.leader, l.leader.UserID), domain.ErrConflict)
	})

	t.Run("Missing", func(t *testing.T) {
		l, svc, _ := newMemberService(t)
		assert.ErrorIs(t, svc.DeleteMember(ctx, l.leader, 999), domain.ErrNotFound)
	})
}
