package main

import (
	"context"
	"errors"

	"github.com/vmunix/distill/internal/download"
	"github.com/vmunix/distill/internal/job"
)

const (
	exitFailure     = 1
	exitEmptyBatch  = 2
	exitInterrupted = 130
)

// exitError carries an explicit process exit code.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func exitCode(err error) int {
	var ee *exitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ee):
		return ee.code
	case errors.Is(err, download.ErrInterrupted), errors.Is(err, context.Canceled):
		return exitInterrupted
	case errors.Is(err, job.ErrEmptyBatch):
		return exitEmptyBatch
	default:
		return exitFailure
	}
}
