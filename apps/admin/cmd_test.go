package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkanmatematik/platform/core/course"
	"github.com/berkanmatematik/platform/core/user"
	emailsvc "github.com/berkanmatematik/platform/services/email"
	inmemdb "github.com/berkanmatematik/platform/storage/database/inmem"
	"github.com/berkanmatematik/platform/tests"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	conf := testutil.NewConfig()
	logger := testutil.NewLogger(conf)

	// set up DB & repos
	db := inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(db)

	// start CLI
	return &commandLine{
		db:        &sql.DB{}, // never used: gooseRunFunc is mocked
		usrRepo:   usrRepo,
		usrSvc:    user.NewService(usrRepo, emailsvc.NewConsoleServiceMock(conf, logger), conf),
		courseSvc: course.NewService(inmemdb.NewCourseRepository(db)),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}

	t.Run("memory driver", func(t *testing.T) {
		cli.db = nil
		assert.Equal(t, errNoSQLDB, cli.run([]string{"admin", "migrate", "up"}))
	})
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"adduser", "-email", "a@test.com"}, wantErr: errHelp},
		{name: "create", args: []string{"adduser", "-email", "Admin@Test.com", "-name", "Berkan", "-admin"}, extra: extra{pwd: "s3cr3tpw"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		pwd := ""
		if e, ok := tt.extra.(extra); ok {
			pwd = e.pwd
		}

		t.Run(tt.name, func(t *testing.T) {
			mockPassword(pwd)
			err := cli.run(args)
			assert.Equal(t, tt.wantErr, err)
		})
	}

	t.Run("created user", func(t *testing.T) {
		usr, err := usrRepo.GetUser(ctx, user.GetFilter{Email: "admin@test.com"})
		require.NoError(t, err)
		assert.Equal(t, "Berkan", usr.Name)
		assert.True(t, usr.IsAdmin())
		assert.NoError(t, usr.CheckPassword("s3cr3tpw"))
	})

	t.Run("existing user gets a new password", func(t *testing.T) {
		before, err := usrRepo.GetUser(ctx, user.GetFilter{Email: "admin@test.com"})
		require.NoError(t, err)

		mockPassword("n3wp4ssw0rd")
		require.NoError(t, cli.run([]string{"admin", "adduser", "-email", "admin@test.com"}))

		after, err := usrRepo.GetUser(ctx, user.GetFilter{Email: "admin@test.com"})
		require.NoError(t, err)
		assert.Equal(t, before.ID, after.ID)
		assert.NoError(t, after.CheckPassword("n3wp4ssw0rd"))
		assert.Equal(t, before.TokenVersion+1, after.TokenVersion)
		assert.True(t, after.IsAdmin(), "role is kept")
	})
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe@test.com", "mdr-mdr", user.RoleUser)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.com"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.com"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, extra: extra{pwd: "lol"}},
		{name: "reset with upper-cased email", args: []string{"resetpassword", "-email", "AWE@test.com"}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		pwd := ""
		if e, ok := tt.extra.(extra); ok {
			pwd = e.pwd
		}

		t.Run(tt.name, func(t *testing.T) {
			mockPassword(pwd)
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
				if err != nil {
					t.Fatalf("GetUser() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
				assert.NoError(t, refreshedUsr.CheckPassword(pwd))
			} else if errors.Cause(err) != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_setRole(t *testing.T) {
	cli := setup(t)
	usr := testutil.CreateUser(t, usrRepo, "User", "awe@test.com", "mdr-mdr", user.RoleUser)

	tests := []cliTest{
		{name: "no args", args: []string{"setrole"}, wantErr: errHelp},
		{name: "no role", args: []string{"setrole", "-email", usr.Email}, wantErr: errHelp},
		{name: "invalid role", args: []string{"setrole", "-email", usr.Email, "-role", "root"}, wantErr: user.ErrInvalidRole},
		{name: "user not found", args: []string{"setrole", "-email", "lol@test.com", "-role", "admin"}, wantErr: user.ErrNotFound},
		{name: "promote", args: []string{"setrole", "-email", usr.Email, "-role", "admin"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			assert.Equal(t, tt.wantErr, errors.Cause(err))
		})
	}

	refreshed, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
	require.NoError(t, err)
	assert.True(t, refreshed.IsAdmin())
}

func Test_commandLine_seed(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	require.NoError(t, cli.run([]string{"admin", "seed"}))
	c, err := cli.courseSvc.Get(ctx, sampleCourseID)
	require.NoError(t, err)
	assert.Equal(t, course.CategoryGrade5, c.Category)
	assert.Equal(t, 4, c.TotalLessons())
	assert.Equal(t, 80, c.TotalDuration())
	require.Len(t, c.Content, 1)
	assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ", c.Content[0].EmbedURL)

	// idempotent
	require.NoError(t, cli.run([]string{"admin", "seed"}))
	c, err = cli.courseSvc.Get(ctx, sampleCourseID)
	require.NoError(t, err)
	assert.Len(t, c.Content, 1)
}
