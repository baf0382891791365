package utils

import (
	"bytes"
	"fmt"
	"strings"
)

func ConvertPanicValueToError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}

	return fmt.Errorf("%#v", v)
}

// CombineErrors combines errors into a single error with a multiline message, nil errors are ignored.
// The combined errors can be matched with errors.Is and errors.As.
func CombineErrors(errs ...error) error {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}

	if len(nonNil) == 0 {
		return nil
	}
	return &combinedError{errs: nonNil}
}

type combinedError struct {
	errs []error
}

func (e *combinedError) Error() string {
	finalErrBuff := bytes.NewBuffer(nil)

	for _, err := range e.errs {
		finalErrBuff.WriteString(err.Error())
		finalErrBuff.WriteRune('\n')
	}

	return strings.TrimRight(finalErrBuff.String(), "\n")
}

func (e *combinedError) Unwrap() []error {
	return e.errs
}

// CombineErrorsWithPrefixMessage combines errors into a single error with a multiline message.
func CombineErrorsWithPrefixMessage(prefixMsg string, errs ...error) error {
	err := CombineErrors(errs...)
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", prefixMsg, err)
}
