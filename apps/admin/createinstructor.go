package main

import (
	"context"
	"fmt"

	"github.com/ChukwumaKingsley/smart-school-forked/core/user"
)

// createInstructor registers nu as an instructor; any registration number is dropped.
func (cli *commandLine) createInstructor(ctx context.Context, nu user.NewUser) error {
	nu.ID = ""
	if err := nu.Validate(cli.validate); err != nil {
		return translateErr(err, cli.translator)
	}
	usr, err := cli.usrSvc.Create(ctx, nu)
	if err != nil {
		return err
	}
	cli.logger.Info("instructor created", map[string]interface{}{"id": usr.ID})
	fmt.Fprintf(cli.out, "instructor %s created with ID %s\n", usr.Email, usr.ID)
	return nil
}
