package user

import (
	"context"
	"fmt"
	"net/mail"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/berkanmatematik/platform/core"
)

var (
	// errors
	ErrNotFound           = errors.New("Kullanıcı bulunamadı.")
	ErrEmailExists        = errors.New("Bu e-posta adresi zaten kullanılıyor.")
	ErrInvalidCredentials = errors.New("E-posta veya şifre hatalı.")
	ErrInvalidRole        = errors.New("Geçersiz rol.")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		// CreateUser fails with ErrEmailExists when the email is taken.
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	// Service is the identity service: accounts, credentials and the session-changed stream.
	Service interface {
		Register(ctx context.Context, nu NewUser) (User, error)
		SignIn(ctx context.Context, creds Credentials) (User, error)
		SignOut(ctx context.Context, userID string) error
		SetDisplayName(ctx context.Context, userID, name string) (User, error)
		SetRole(ctx context.Context, email, role string) (User, error)
		ResetPassword(ctx context.Context, email, pwd string) error
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		// Subscribe registers fn for every Event; calling the returned func removes it.
		Subscribe(fn func(Event)) (unsubscribe func())
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config

		mu          sync.RWMutex
		subscribers map[int]func(Event)
		nextSubID   int
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:        repo,
		mailSvc:     mailSvc,
		conf:        conf,
		subscribers: make(map[int]func(Event)),
	}
}

// Register creates an account with the `user` role, signs it in and sends the welcome email.
func (svc *service) Register(ctx context.Context, nu NewUser) (User, error) {
	now := nowFunc().UTC()
	usr := User{
		ID:        uuid.NewString(),
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
		LastLogin: now,
	}
	if usr.Name == "" {
		usr.Name = DefaultDisplayName
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}

	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return User{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
		}
		return User{}, errors.Wrap(err, "creating user")
	}

	svc.sendWelcomeMail(usr)
	svc.publish(EventSignedIn, usr)
	return usr, nil
}

// SignIn checks the credentials. Unknown emails and wrong passwords both give ErrInvalidCredentials.
func (svc *service) SignIn(ctx context.Context, creds Credentials) (User, error) {
	usr, err := svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(creds.Email, true /* lower */)})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(creds.Password); err != nil {
		return User{}, ErrInvalidCredentials
	}

	usr.LastLogin = nowFunc().UTC()
	if usr, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return User{}, errors.Wrap(err, "setting lastLogin")
	}
	svc.publish(EventSignedIn, usr)
	return usr, nil
}

// SignOut revokes every token issued to the user so far.
func (svc *service) SignOut(ctx context.Context, userID string) error {
	usr, err := svc.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	usr.TokenVersion++
	if usr, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return errors.Wrap(err, "revoking tokens")
	}
	svc.publish(EventSignedOut, usr)
	return nil
}

func (svc *service) SetDisplayName(ctx context.Context, userID, name string) (User, error) {
	usr, err := svc.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	usr.Name = core.CleanString(name)
	usr.UpdatedAt = nowFunc().UTC()
	if usr, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return User{}, errors.Wrap(err, "updating user")
	}
	svc.publish(EventProfileUpdated, usr)
	return usr, nil
}

func (svc *service) SetRole(ctx context.Context, email, role string) (User, error) {
	if !ValidRole(role) {
		return User{}, ErrInvalidRole
	}
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	usr.Role = role
	usr.UpdatedAt = nowFunc().UTC()
	if usr, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return User{}, errors.Wrap(err, "updating user")
	}
	svc.publish(EventRoleChanged, usr)
	return usr, nil
}

// ResetPassword sets a new password and signs the user out everywhere.
func (svc *service) ResetPassword(ctx context.Context, email, pwd string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	usr.TokenVersion++
	usr.UpdatedAt = nowFunc().UTC()
	if usr, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return errors.Wrap(err, "updating user")
	}
	svc.publish(EventSignedOut, usr)
	return nil
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *service) Subscribe(fn func(Event)) func() {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	id := svc.nextSubID
	svc.nextSubID++
	svc.subscribers[id] = fn
	return func() {
		svc.mu.Lock()
		delete(svc.subscribers, id)
		svc.mu.Unlock()
	}
}

// publish calls the subscribers synchronously, in no particular order.
func (svc *service) publish(kind EventKind, usr User) {
	svc.mu.RLock()
	subs := make([]func(Event), 0, len(svc.subscribers))
	for _, fn := range svc.subscribers {
		subs = append(subs, fn)
	}
	svc.mu.RUnlock()

	evt := Event{Kind: kind, User: usr, At: nowFunc().UTC()}
	for _, fn := range subs {
		fn(evt)
	}
}

func (svc *service) sendWelcomeMail(usr User) {
	if svc.mailSvc == nil {
		return
	}
	msg := core.NewTemplatedMessage(
		svc.conf,
		"welcome",
		fmt.Sprintf("%s'e hoş geldin!", svc.conf.AppName),
		struct{ Name string }{Name: usr.DisplayName()},
		mail.Address{Name: usr.DisplayName(), Address: usr.Email},
	)
	svc.mailSvc.SendMessages(msg)
}
