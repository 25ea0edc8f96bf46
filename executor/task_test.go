package executor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.trai.ch/ergo/executor"
)

func TestTask_StartsIdle(t *testing.T) {
	task := executor.New(func(context.Context) error { return nil })
	require.Equal(t, executor.StateIdle, task.State())
	require.False(t, task.IsFinished())
}

func TestTask_Cancel_MovesIdleToCanceled(t *testing.T) {
	task := executor.New(func(context.Context) error { return nil })
	task.Cancel()

	require.True(t, task.IsCanceled())
	require.True(t, task.IsFinished())
}

func TestTask_Cancel_IsIdempotent(t *testing.T) {
	task := executor.New(func(context.Context) error { return nil })
	task.Cancel()
	task.Cancel()

	require.Equal(t, executor.StateCanceled, task.State())
}

func TestTask_Wait_ReturnsAfterTerminalTransition(t *testing.T) {
	task := executor.New(func(context.Context) error { return nil })

	done := make(chan struct{})
	go func() {
		task.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait returned before the task finished")
	case <-time.After(20 * time.Millisecond):
	}

	task.Cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after cancellation")
	}
}

func TestTask_AddDependency_NotifiesWhenDependencyFinishes(t *testing.T) {
	dep := executor.New(func(context.Context) error { return nil })
	target := executor.New(func(context.Context) error { return nil })
	target.AddDependency(dep)

	notified := make(chan struct{}, 1)
	target.SetNotificationHandler(func(*executor.Task) {
		notified <- struct{}{}
	})

	dep.Cancel()

	select {
	case <-notified:
	case <-time.After(time.Second):
		t.Fatal("dependency finishing did not notify the subscriber")
	}
}

func TestTask_Err_ReportsFailure(t *testing.T) {
	boom := errors.New("boom")
	task := executor.New(func(context.Context) error { return boom })

	exec := executor.New()
	exec.Submit(task)
	task.Wait()
	require.NoError(t, exec.Close())

	require.True(t, task.IsFailed())
	require.ErrorIs(t, task.Err(), boom)
}
