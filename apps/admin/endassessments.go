package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) endAssessments(ctx context.Context) error {
	n, err := cli.asmSvc.EndDue(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d assessment(s) ended\n", n)
	return nil
}
