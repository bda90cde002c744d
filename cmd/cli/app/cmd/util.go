package cmd

import (
	"fmt"
	"io"

	"ccpatch/internal/core"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

func currentConfigPath() core.ConfigPath {
	return core.ConfigPath(configPath)
}

func newLogger(w io.Writer, verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(w, args)
	}, funcr.Options{Verbosity: verbosity})
}
