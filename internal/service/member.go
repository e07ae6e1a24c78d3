package service

import (
	"context"
	"strings"

	"cluster-ledger-backend/internal/domain"
	"cluster-ledger-backend/internal/logger"
	"cluster-ledger-backend/internal/repository"
	"cluster-ledger-backend/internal/storage"
	"cluster-ledger-backend/internal/utils"
)

type memberService struct {
	store  repository.TxStore
	files  storage.FileStorage
	policy storage.Policy
}

func NewMemberService(store repository.TxStore, files storage.FileStorage, policy storage.Policy) MemberService {
	return &memberService{
		store:  store,
		files:  files,
		policy: policy,
	}
}

func (s *memberService) AddMember(ctx context.Context, actor domain.Actor, input MemberInput, image *ImageUpload) (*domain.User, error) {
	logger.EnterMethod("memberService.AddMember", "actorID", actor.UserID, "phone", input.PhoneNumber)

	if err := actor.RequireLeader("add member"); err != nil {
		logger.ExitMethodWithError("memberService.AddMember", err)
		return nil, err
	}
	user, err := newMember(input)
	if err != nil {
		logger.ExitMethodWithError("memberService.AddMember", err)
		return nil, err
	}

	if image != nil {
		key, err := s.saveImage(ctx, image)
		if err != nil {
			logger.ExitMethodWithError("memberService.AddMember", err)
			return nil, err
		}
		user.ProfilePicture = &key
	}

	if err := s.store.Repos().Users.Create(ctx, user); err != nil {
		if user.ProfilePicture != nil {
			s.removeImage(ctx, *user.ProfilePicture)
		}
		logger.ExitMethodWithError("memberService.AddMember", err, "phone", input.PhoneNumber)
		return nil, err
	}

	logger.ExitMethod("memberService.AddMember", "userID", user.ID)
	return user.Redacted(), nil
}

func newMember(input MemberInput) (*domain.User, error) {
	name := strings.TrimSpace(input.FullName)
	if name == "" {
		return nil, &domain.ValidationError{Field: "full_name", Reason: "is required"}
	}
	phone := strings.TrimSpace(input.PhoneNumber)
	if phone == "" {
		return nil, &domain.ValidationError{Field: "phone_number", Reason: "is required"}
	}
	if len(input.Password) < minPasswordLength {
		return nil, &domain.ValidationError{Field: "password", Reason: "must be at least 6 characters"}
	}
	if err := validateBirthdate(input.Birthdate); err != nil {
		return nil, err
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		FullName:     name,
		PhoneNumber:  phone,
		PasswordHash: hash,
		Role:         domain.RoleMember,
		Birthdate:    blankToNil(input.Birthdate),
		SpouseName:   blankToNil(input.SpouseName),
	}, nil
}

func validateBirthdate(birthdate *string) error {
	if birthdate == nil || strings.TrimSpace(*birthdate) == "" {
		return nil
	}
	if _, err := utils.ParseDate(*birthdate); err != nil {
		return &domain.ValidationError{Field: "birthdate", Reason: err.Error()}
	}
	return nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (s *memberService) saveImage(ctx context.Context, image *ImageUpload) (string, error) {
	if err := s.policy.Check(image.ContentType, image.Size); err != nil {
		return "", err
	}
	key := storage.NewProfileKey(image.Filename)
	if err := s.files.SaveFile(ctx, key, image.Content); err != nil {
		return "", err
	}
	logger.Info("Profile picture stored", "key", key, "size", image.Size)
	return key, nil
}

func (s *memberService) removeImage(ctx context.Context, key string) {
	if err := s.files.DeleteFile(ctx, key); err != nil {
		logger.Warn("Failed to delete profile picture", "key", key, "error", err)
	}
}

func (s *memberService) GetProfile(ctx context.Context, actor domain.Actor, userID int32) (*domain.User, error) {
	if err := actor.RequireViewer("view profile", userID); err != nil {
		return nil, err
	}
	user, err := s.store.Repos().Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Redacted(), nil
}

func (s *memberService) ListMembers(ctx context.Context, actor domain.Actor) ([]domain.MemberSummary, error) {
	if err := actor.RequireLeader("list members"); err != nil {
		return nil, err
	}
	return s.store.Repos().Users.ListMembers(ctx)
}

func (s *memberService) UpdateMember(ctx context.Context, actor domain.Actor, userID int32, update MemberUpdate) (*domain.User, error) {
	logger.EnterMethod("memberService.UpdateMember", "actorID", actor.UserID, "userID", userID)

	if err := actor.RequireLeader("update member"); err != nil {
		logger.ExitMethodWithError("memberService.UpdateMember", err)
		return nil, err
	}
	if err := validateBirthdate(update.Birthdate); err != nil {
		logger.ExitMethodWithError("memberService.UpdateMember", err)
		return nil, err
	}

	users := s.store.Repos().Users
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		logger.ExitMethodWithError("memberService.UpdateMember", err, "userID", userID)
		return nil, err
	}

	if update.FullName != nil {
		name := strings.TrimSpace(*update.FullName)
		if name == "" {
			return nil, &domain.ValidationError{Field: "full_name", Reason: "is required"}
		}
		user.FullName = name
	}
	if update.PhoneNumber != nil {
		phone := strings.TrimSpace(*update.PhoneNumber)
		if phone == "" {
			return nil, &domain.ValidationError{Field: "phone_number", Reason: "is required"}
		}
		user.PhoneNumber = phone
	}
	if update.Birthdate != nil {
		user.Birthdate = blankToNil(update.Birthdate)
	}
	if update.SpouseName != nil {
		user.SpouseName = blankToNil(update.SpouseName)
	}

	if err := users.Update(ctx, user); err != nil {
		logger.ExitMethodWithError("memberService.UpdateMember", err, "userID", userID)
		return nil, err
	}

	logger.ExitMethod("memberService.UpdateMember", "userID", userID)
	return user.Redacted(), nil
}

func (s *memberService) DeleteMember(ctx context.Context, actor domain.Actor, userID int32) error {
	logger.EnterMethod("memberService.DeleteMember", "actorID", actor.UserID, "userID", userID)

	if err := actor.RequireLeader("delete member"); err != nil {
		logger.ExitMethodWithError("memberService.DeleteMember", err)
		return err
	}

	var picture *string
	err := s.store.WithTx(ctx, func(tx repository.Repositories) error {
		user, err := tx.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user.Role == domain.RoleLeader {
			return &domain.ConflictError{Reason: "leaders cannot be deleted"}
		}
		picture = user.ProfilePicture
		return tx.Users.Delete(ctx, userID)
	})
	if err != nil {
		logger.ExitMethodWithError("memberService.DeleteMember", err, "userID", userID)
		return err
	}

	if picture != nil {
		s.removeImage(ctx, *picture)
	}
	logger.ExitMethod("memberService.DeleteMember", "userID", userID)
	return nil
}

func (s *memberService) GetMemberDetails(ctx context.Context, actor domain.Actor, userID int32) (*domain.MemberDetails, error) {
	logger.EnterMethod("memberService.GetMemberDetails", "actorID", actor.UserID, "userID", userID)

	if err := actor.RequireViewer("view member details", userID); err != nil {
		logger.ExitMethodWithError("memberService.GetMemberDetails", err)
		return nil, err
	}

	repos := s.store.Repos()
	user, err := repos.Users.GetByID(ctx, userID)
	if err != nil {
		logger.ExitMethodWithError("memberService.GetMemberDetails", err, "userID", userID)
		return nil, err
	}
	loan, err := repos.Loans.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	records, err := repos.Records.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	notes, err := repos.Notifications.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	totals, err := computeTotals(ctx, repos.Records, userID)
	if err != nil {
		return nil, err
	}

	logger.ExitMethod("memberService.GetMemberDetails", "userID", userID, "records", len(records))
	return &domain.MemberDetails{
		User:           user.Redacted(),
		ActiveLoan:     loan,
		Records:        records,
		Notifications:  notes,
		SavingsTotal:   totals.Savings,
		InsuranceTotal: totals.Insurance,
	}, nil
}
