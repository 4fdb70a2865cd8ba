package main

import (
	"os"
	"runtime"
	"strings"

	"github.com/fedsetup/fedsetup/analytics"
	"github.com/fedsetup/fedsetup/cmd"
	log "github.com/sirupsen/logrus"
)

// backtrace returns the current stack trace with the runtime plumbing rows
// stripped out
func backtrace() string {
	buf := make([]byte, 1<<16)
	ss := runtime.Stack(buf, true)
	var rows []string
	for _, row := range strings.Split(string(buf[:ss]), "\n") {
		if !strings.HasPrefix(row, "\t") {
			continue
		}
		if strings.Contains(row, "main.") || strings.Contains(row, "panic") {
			continue
		}
		rows = append(rows, strings.TrimSpace(row))
	}
	return strings.Join(rows, "\n")
}

func handlepanic() {
	if err := recover(); err != nil {
		_ = analytics.Client.Publish("panic", map[string]interface{}{"backtrace": backtrace()})
		log.Fatalf("PANIC: %v\n", err)
	}
}

func main() {
	defer handlepanic()
	if err := cmd.App.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
