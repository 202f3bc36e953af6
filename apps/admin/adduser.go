package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/berkanmatematik/platform/core"
	"github.com/berkanmatematik/platform/core/user"
)

// addUser creates a user.User, or resets the password (and role) of an existing one.
func (cli *commandLine) addUser(name, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	role := user.RoleUser
	if isAdmin {
		role = user.RoleAdmin
	}

	if _, err := cli.usrSvc.GetByEmail(ctx, email); err == nil {
		if err = cli.usrSvc.ResetPassword(ctx, email, pwd); err != nil {
			return errors.Wrap(err, "resetting password")
		}
		if isAdmin {
			_, err = cli.usrSvc.SetRole(ctx, email, role)
		}
		return err
	} else if errors.Cause(err) != user.ErrNotFound {
		return err
	}

	now := time.Now().UTC()
	usr := user.User{
		ID:        uuid.NewString(),
		Name:      core.CleanString(name),
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if usr.Name == "" {
		usr.Name = user.DefaultDisplayName
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.CreateUser(ctx, usr); err != nil {
		return errors.Wrap(err, "creating user")
	}
	return nil
}
