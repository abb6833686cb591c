package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/a-h/healthquery/client"
	"github.com/a-h/healthquery/format"
	"github.com/a-h/healthquery/query"
)

type QueryCommand struct {
	URL      string        `help:"The base URL of the backend." env:"HEALTH_URL" default:"http://127.0.0.1:8000"`
	Query    string        `help:"The query text. It is read but not sent." env:"QUERY" default:""`
	Format   string        `help:"The output format." enum:"json,yaml" default:"json"`
	Timeout  time.Duration `help:"Give up after this long, 0 waits forever." env:"TIMEOUT" default:"0"`
	LogLevel string        `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c QueryCommand) Run(ctx context.Context) (err error) {
	return c.run(ctx, os.Stdout, getLogger(c.LogLevel))
}

type stringInput string

func (s stringInput) Value() string {
	return string(s)
}

// bufferOutput holds the rendered body until the command knows it succeeded.
type bufferOutput struct {
	text string
}

func (o *bufferOutput) SetText(text string) {
	o.text = text
}

func (c QueryCommand) run(ctx context.Context, stdout io.Writer, log *slog.Logger) (err error) {
	out := new(bufferOutput)
	h := query.New(log, client.New(c.URL), stringInput(c.Query), out, query.WithTimeout(c.Timeout))
	res := h.Ask(ctx)
	if !res.OK() {
		return res.Err
	}
	text := out.text
	if c.Format == "yaml" {
		if text, err = format.YAML(res.Body); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(stdout, text)
	return err
}
