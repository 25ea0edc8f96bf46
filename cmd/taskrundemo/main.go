// Command taskrundemo wires a small executor graph together and runs it to
// completion, to give a working example of what a caller of this module
// actually has to write.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/grindlemire/graft"

	"go.trai.ch/ergo/executor"
	_ "go.trai.ch/ergo/internal/wiring"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	exec, _, err := graft.ExecuteFor[*executor.Executor](ctx)
	if err != nil {
		return err
	}

	fetch := executor.New(func(context.Context) error {
		fmt.Println("fetch: downloaded input")
		return nil
	})

	build := executor.New(func(context.Context) error {
		fmt.Println("build: compiled artifact")
		return nil
	})
	build.AddDependency(fetch)

	staleCleanup := executor.New(func(context.Context) error {
		fmt.Println("cleanup: removed stale artifact")
		return errors.New("stale artifact was already gone")
	})
	staleCleanup.SetTimeTrigger(time.Now().Add(50 * time.Millisecond))

	publish := executor.New(func(context.Context) error {
		fmt.Println("publish: shipped artifact")
		return nil
	})
	publish.AddTrigger(build)
	publish.AddTrigger(staleCleanup)

	exec.Submit(fetch)
	exec.Submit(build)
	exec.Submit(staleCleanup)
	exec.Submit(publish)

	publish.Wait()
	staleCleanup.Wait()

	return exec.Close()
}
