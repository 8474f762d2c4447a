// Package account owns the identity lifecycle: registration, login,
// profile reads and edits, password changes, and soft deletion.
package account

import (
	"context"
	"errors"

	userstore "github.com/dalemusser/taskplanner/internal/app/store/users"
	"github.com/dalemusser/taskplanner/internal/app/system/apperr"
	"github.com/dalemusser/taskplanner/internal/app/system/authutil"
	"github.com/dalemusser/taskplanner/internal/app/system/htmlsanitize"
	"github.com/dalemusser/taskplanner/internal/app/system/inputval"
	"github.com/dalemusser/taskplanner/internal/app/system/normalize"
	"github.com/dalemusser/taskplanner/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Client-facing messages.
const (
	MsgEmailInUse     = "Email already in use"
	MsgBadCredentials = "Invalid email or password"
	MsgWrongPassword  = "The password is incorrect"
)

// Causes attached to Unauthenticated login errors so callers can tell the
// two apart without exposing the difference to clients.
var (
	ErrUnknownEmail  = errors.New("no live user with that email")
	ErrWrongPassword = errors.New("password does not match")
)

// UserStore is the persistence the account service needs. Lookups ignore
// soft-deleted users and report mongo.ErrNoDocuments.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u models.User) (models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, firstName, lastName string) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
}

// TokenIssuer signs a bearer token for an email subject.
type TokenIssuer interface {
	Issue(email string) (string, error)
}

// Service implements the account operations.
type Service struct {
	users  UserStore
	tokens TokenIssuer
	cost   int
	log    *zap.Logger
}

// New builds a Service. cost is the bcrypt cost for new hashes; out of
// range values fall back to authutil.DefaultCost.
func New(users UserStore, tokens TokenIssuer, cost int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{users: users, tokens: tokens, cost: cost, log: logger}
}

// NewMongo builds a Service over the users collection.
func NewMongo(db *mongo.Database, tokens TokenIssuer, cost int, logger *zap.Logger) *Service {
	return New(userstore.New(db), tokens, cost, logger)
}

// Session is the result of a successful register or login.
type Session struct {
	Token string
	User  models.User
}

// UserView is the client shape of a user.
type UserView struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func UserViewOf(u models.User) UserView {
	return UserView{FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

// RegisterInput is the body of POST /auth/register.
type RegisterInput struct {
	FirstName string `json:"firstName" validate:"required,max=100" label:"First name"`
	LastName  string `json:"lastName" validate:"required,max=100" label:"Last name"`
	Email     string `json:"email" validate:"required,email,max=254" label:"Email"`
	Password  string `json:"password" validate:"required,password" label:"Password"`
}

// LoginInput is the body of POST /auth/login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email" label:"Email"`
	Password string `json:"password" validate:"required" label:"Password"`
}

// ProfileInput is the body of PATCH /user/me. Blank fields keep their
// current value.
type ProfileInput struct {
	FirstName string `json:"firstName" validate:"max=100" label:"First name"`
	LastName  string `json:"lastName" validate:"max=100" label:"Last name"`
}

// PasswordInput is the body of PATCH /user/me/password.
type PasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required" label:"Current password"`
	NewPassword string `json:"newPassword" validate:"required,password" label:"New password"`
}

func validate(v any) error {
	if res := inputval.Validate(v); res.HasErrors() {
		return apperr.InvalidFields(res.Map())
	}
	return nil
}

func cleanName(s string) string {
	return normalize.Name(htmlsanitize.StripTags(s))
}

func internal(err error) error {
	return apperr.Wrap(apperr.Internal, apperr.MsgInternal, err)
}

// Register creates an account and signs a token for it. Emails of deleted
// accounts stay taken.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	if err := validate(in); err != nil {
		return Session{}, err
	}
	first, last := cleanName(in.FirstName), cleanName(in.LastName)
	if first == "" || last == "" {
		fields := map[string]string{}
		if first == "" {
			fields["firstName"] = "First name is required."
		}
		if last == "" {
			fields["lastName"] = "Last name is required."
		}
		return Session{}, apperr.InvalidFields(fields)
	}
	email := normalize.Email(in.Email)

	taken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return Session{}, internal(err)
	}
	if taken {
		return Session{}, apperr.New(apperr.InvalidArgument, MsgEmailInUse)
	}

	hash, err := authutil.HashPasswordCost(in.Password, s.cost)
	if err != nil {
		return Session{}, internal(err)
	}
	u, err := s.users.Create(ctx, models.User{
		FirstName:    first,
		LastName:     last,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			return Session{}, apperr.New(apperr.InvalidArgument, MsgEmailInUse)
		}
		return Session{}, internal(err)
	}

	token, err := s.tokens.Issue(u.Email)
	if err != nil {
		return Session{}, internal(err)
	}
	s.log.Info("user registered", zap.String("user_id", u.ID.Hex()))
	return Session{Token: token, User: u}, nil
}

// Login checks credentials against a live account and signs a token.
// Unknown emails and wrong passwords return the same client message; on a
// wrong password the returned Session still carries the user.
func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	if err := validate(in); err != nil {
		return Session{}, err
	}
	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Session{}, apperr.Wrap(apperr.Unauthenticated, MsgBadCredentials, ErrUnknownEmail)
		}
		return Session{}, internal(err)
	}
	if !authutil.CheckPassword(in.Password, u.PasswordHash) {
		return Session{User: *u}, apperr.Wrap(apperr.Unauthenticated, MsgBadCredentials, ErrWrongPassword)
	}
	token, err := s.tokens.Issue(u.Email)
	if err != nil {
		return Session{}, internal(err)
	}
	return Session{Token: token, User: *u}, nil
}

// current loads the live user behind the caller identity.
func (s *Service) current(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, apperr.NotFoundUser()
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFoundUser()
		}
		return nil, internal(err)
	}
	return u, nil
}

// Profile returns the caller's account.
func (s *Service) Profile(ctx context.Context, email string) (*models.User, error) {
	return s.current(ctx, email)
}

// UpdateProfile changes the caller's names. Email cannot be changed.
func (s *Service) UpdateProfile(ctx context.Context, email string, in ProfileInput) (*models.User, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	u, err := s.current(ctx, email)
	if err != nil {
		return nil, err
	}
	if first := cleanName(in.FirstName); first != "" {
		u.FirstName = first
	}
	if last := cleanName(in.LastName); last != "" {
		u.LastName = last
	}
	if err := s.users.UpdateProfile(ctx, u.ID, u.FirstName, u.LastName); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFoundUser()
		}
		return nil, internal(err)
	}
	return u, nil
}

// ChangePassword replaces the caller's password after checking the old one.
func (s *Service) ChangePassword(ctx context.Context, email string, in PasswordInput) (*models.User, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	u, err := s.current(ctx, email)
	if err != nil {
		return nil, err
	}
	if !authutil.CheckPassword(in.OldPassword, u.PasswordHash) {
		return nil, apperr.New(apperr.InvalidArgument, MsgWrongPassword)
	}
	hash, err := authutil.HashPasswordCost(in.NewPassword, s.cost)
	if err != nil {
		return nil, internal(err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFoundUser()
		}
		return nil, internal(err)
	}
	u.PasswordHash = hash
	return u, nil
}

// DeleteAccount soft-deletes the caller. Existing tokens stop working on
// the next request because every operation resolves the caller afresh.
func (s *Service) DeleteAccount(ctx context.Context, email string) (*models.User, error) {
	u, err := s.current(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.users.SoftDelete(ctx, u.ID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFoundUser()
		}
		return nil, internal(err)
	}
	return u, nil
}
