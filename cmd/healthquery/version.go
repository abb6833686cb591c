package main

import (
	"context"
	"fmt"

	"github.com/a-h/healthquery"
)

type VersionCommand struct {
}

func (c VersionCommand) Run(ctx context.Context) (err error) {
	fmt.Println(healthquery.Version)
	return nil
}
