package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/adapt/core"
	"github.com/trezcool/adapt/core/user"
	inmemdb "github.com/trezcool/adapt/storage/database/inmem"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()

	usrRepo = inmemdb.NewUserRepository(inmemdb.NewDB())
	return &commandLine{
		conf:    &core.Config{Debug: true, TestMode: true},
		usrRepo: usrRepo,
	}
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
	extra   interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var created, migrated bool
	createDBFunc = func(conf *core.Config) error {
		created = true
		return nil
	}
	migrateFunc = func(db *sqlx.DB) error {
		migrated = true
		return nil
	}

	if err := cli.run([]string{"admin", "migrate"}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}
	if !created || !migrated {
		t.Errorf("failed! created = %v, migrated = %v; want both", created, migrated)
	}
}

func Test_commandLine_addAdmin(t *testing.T) {
	cli := setup(t)

	existing, err := func() (user.User, error) {
		now := time.Now().UTC()
		usr := user.User{Name: "Jane", Email: "jane@test.cd", Role: user.RoleUser, CreatedAt: now, UpdatedAt: now}
		if err := usr.SetPassword("passwd"); err != nil {
			return user.User{}, err
		}
		return usrRepo.CreateUser(context.Background(), usr)
	}()
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"addadmin"}, wantErr: errHelp},
		{name: "name but no email", args: []string{"addadmin", "-name", "Boss"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"addadmin", "-name", "Boss", "-email", "boss@test.cd"}, wantErr: errHelp},
		{name: "new admin created", args: []string{"addadmin", "-name", "Boss", "-email", "boss@test.cd"}, extra: extra{pwd: "passwd"}},
		{name: "existing user promoted", args: []string{"addadmin", "-name", "Jane", "-email", "JANE@test.cd"}, extra: extra{pwd: "n3wpasswd"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			email := core.CleanString(args[len(args)-1], true /* lower */)
			usr, err := usrRepo.GetUserByEmail(context.Background(), email)
			if err != nil {
				t.Fatalf("GetUserByEmail(): %v", err)
			}
			if !usr.IsAdmin() {
				t.Errorf("failed! role = %q; want %q", usr.Role, user.RoleAdmin)
			}
			if extra, ok := tt.extra.(extra); ok {
				if err := usr.CheckPassword(extra.pwd); err != nil {
					t.Error("failed! new password does not check out")
				}
			}
			if usr.CreatedAt.IsZero() || usr.UpdatedAt.IsZero() {
				t.Errorf("failed! timestamps not set: created_at = %v, updated_at = %v", usr.CreatedAt, usr.UpdatedAt)
			}
		})
	}

	// promotion keeps the account, swaps the credentials
	promoted, err := usrRepo.GetUserByEmail(context.Background(), existing.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail(): %v", err)
	}
	if promoted.ID != existing.ID {
		t.Errorf("failed! ID changed on promotion: %q != %q", promoted.ID, existing.ID)
	}
	if bytes.Equal(promoted.PasswordHash, existing.PasswordHash) {
		t.Error("failed to update the password")
	}
}
