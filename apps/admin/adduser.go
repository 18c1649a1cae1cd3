package main

import (
	"fmt"
	"time"

	"github.com/crescendoapp/crescendo/core"
	"github.com/crescendoapp/crescendo/core/user"
)

// addUser creates a user.User with the given role.
func (cli *commandLine) addUser(uname, email, pwd, role string) error {
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	role = core.CleanString(role, true /* lower */)

	var valid bool
	for _, r := range user.AllRoles {
		if r == role {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown role %q", role)
	}

	if err := cli.usrRepo.CheckUsernameUniqueness(uname, email); err != nil {
		return err
	}

	now := time.Now().UTC()
	usr := user.User{
		Username:  uname,
		Email:     email,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err := cli.usrRepo.CreateUser(usr)
	return err
}
