package main

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crescendoapp/crescendo/core/user"
	inmemdb "github.com/crescendoapp/crescendo/storage/database/inmem"
)

func newTestCLI(t *testing.T) *commandLine {
	t.Helper()
	db, err := inmemdb.Open()
	require.NoError(t, err)
	return &commandLine{usrRepo: inmemdb.NewUserRepository(db)}
}

func mockPassword(t *testing.T, pwd string) {
	t.Helper()
	orig := readPasswordFunc
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = orig })
}

func Test_commandLine_run(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		pwd     string
		wantErr error
	}{
		{name: "no command", args: []string{"admin"}, wantErr: errHelp},
		{name: "unknown command", args: []string{"admin", "bogus"}, wantErr: errHelp},
		{name: "adduser without flags", args: []string{"admin", "adduser"}, wantErr: errHelp},
		{name: "adduser without password", pwd: "",
			args: []string{"admin", "adduser", "-username", "awa", "-email", "awa@test.cd"}, wantErr: errHelp},
		{name: "migrate without command", args: []string{"admin", "migrate"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli := newTestCLI(t)
			mockPassword(t, tt.pwd)

			err := cli.run(tt.args)
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := newTestCLI(t)
	mockPassword(t, "secret-pwd")

	t.Run("creates a staff user by default", func(t *testing.T) {
		err := cli.run([]string{"admin", "adduser", "-username", "Awa ", "-email", "AWA@test.cd"})
		require.NoError(t, err)

		usr, err := cli.usrRepo.GetUserByUsernameOrEmail("awa")
		require.NoError(t, err)
		assert.Equal(t, "awa", usr.Username)
		assert.Equal(t, "awa@test.cd", usr.Email)
		assert.Equal(t, user.RoleStaff, usr.Role)
		assert.True(t, usr.IsActive)
		assert.NoError(t, usr.CheckPassword("secret-pwd"))
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		err := cli.run([]string{"admin", "adduser", "-username", "bob", "-email", "bob@test.cd", "-role", "teacher"})
		assert.EqualError(t, err, `unknown role "teacher"`)
	})

	t.Run("rejects duplicate usernames", func(t *testing.T) {
		err := cli.run([]string{"admin", "adduser", "-username", "awa", "-email", "other@test.cd"})
		assert.Equal(t, user.ErrUsernameExists, err)
	})
}

func Test_commandLine_migrate(t *testing.T) {
	cli := newTestCLI(t)

	var gotCommand string
	var gotArgs []string
	orig := gooseRunFunc
	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		gotCommand = command
		gotArgs = args
		return nil
	}
	t.Cleanup(func() { gooseRunFunc = orig })

	require.NoError(t, cli.run([]string{"admin", "migrate", "up-to", "2"}))
	assert.Equal(t, "up-to", gotCommand)
	assert.Equal(t, []string{"2"}, gotArgs)
}
