package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Upload(ctx context.Context, args []string) error
	Replace(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Latest(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
}

const helpText = `Available commands:
  upload  <entityType> <entityId> <category> <path> [documentType]
  replace <entityType> <entityId> <category> <path> <oldFileId> [documentType]
  list    <entityType> <entityId> [category]
  latest  <entityType> <entityId> <category>
  delete  <fileId>
  help
  exit | quit`

// runREPL starts a simple read–eval–print loop for the upload CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a' with the remaining tokens. Errors returned by
// handlers are printed and the loop goes on. The loop exits on EOF, on
// "exit"/"quit", or once ctx is done.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("rk %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			printlnFn(helpText)

		case "upload":
			cmdErr = a.Upload(ctx, args)

		case "replace":
			cmdErr = a.Replace(ctx, args)

		case "l", "list":
			cmdErr = a.List(ctx, args)

		case "latest":
			cmdErr = a.Latest(ctx, args)

		case "delete":
			cmdErr = a.Delete(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", describeError(cmdErr))
		}
	}
}
