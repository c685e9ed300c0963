package cmd

import (
	"fmt"
	"strings"

	"github.com/df07/go-principled/pkg/log"
	"github.com/urfave/cli"
)

var logger = log.New("bsdftool")

// setupLogging applies -v/-vv to every module and then the per-module
// --log module=level overrides
func setupLogging(ctx *cli.Context) error {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}

	for _, entry := range ctx.GlobalStringSlice("log") {
		module, name, ok := strings.Cut(entry, "=")
		if !ok || module == "" {
			return fmt.Errorf("invalid --log value %q, expected module=level", entry)
		}
		level, err := log.ParseLevel(name)
		if err != nil {
			return err
		}
		log.SetModuleLevel(module, level)
	}
	return nil
}
