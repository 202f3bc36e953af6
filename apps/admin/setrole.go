package main

import "context"

func (cli *commandLine) setRole(email, role string) error {
	_, err := cli.usrSvc.SetRole(context.Background(), email, role)
	return err
}
