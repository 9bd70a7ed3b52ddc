/*
Copyright Medcl (m AT medcl.net)

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

   http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code classifies an error into a well-known failure category, the category
// decides how callers report the failure, none of them is retried automatically.
type Code int

const (
	Default Code = iota
	JSONIsEmpty
	BodyEmpty
	URLRedirected

	HostUnreachable
	SourceNotFound
	SchemaParseError
	DestinationConflict
	SchemaRejected
	CopyIncomplete
	AliasUpdateFailed
	UsageError
)

func (c Code) String() string {
	switch c {
	case JSONIsEmpty:
		return "json_is_empty"
	case BodyEmpty:
		return "body_empty"
	case URLRedirected:
		return "url_redirected"
	case HostUnreachable:
		return "host_unreachable"
	case SourceNotFound:
		return "source_not_found"
	case SchemaParseError:
		return "schema_parse_error"
	case DestinationConflict:
		return "destination_conflict"
	case SchemaRejected:
		return "schema_rejected"
	case CopyIncomplete:
		return "copy_incomplete"
	case AliasUpdateFailed:
		return "alias_update_failed"
	case UsageError:
		return "usage_error"
	}
	return "error"
}

// CodedError attaches a Code and an optional payload to an underlying error,
// the payload carries structured detail, eg. the redirect location or the
// failure entries of a partially completed copy.
type CodedError struct {
	Code    Code
	Message string
	Payload interface{}
	cause   error
}

func (e *CodedError) Error() string {
	if e.cause != nil {
		if e.Message != "" {
			return fmt.Sprintf("%s, %s: %v", e.Code.String(), e.Message, e.cause)
		}
		return fmt.Sprintf("%s: %v", e.Code.String(), e.cause)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s, %s", e.Code.String(), e.Message)
	}
	return e.Code.String()
}

func (e *CodedError) Cause() error { return e.cause }

func (e *CodedError) Unwrap() error { return e.cause }

func New(message string) error {
	return errors.New(message)
}

func Errorf(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}

// Error builds an error out of arbitrary values, handy for quick messages.
func Error(v ...interface{}) error {
	return errors.New(fmt.Sprint(v...))
}

func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

func Cause(err error) error {
	return errors.Cause(err)
}

func NewWithCode(err error, code Code, message string) error {
	return &CodedError{Code: code, Message: message, cause: err}
}

func NewWithPayload(err error, code Code, payload interface{}, message string) error {
	return &CodedError{Code: code, Message: message, Payload: payload, cause: err}
}

// CodeOf walks the cause chain and returns the first code it finds,
// or Default when no CodedError is present.
func CodeOf(err error) Code {
	for err != nil {
		if coded, ok := err.(*CodedError); ok {
			return coded.Code
		}
		wrapped, ok := err.(interface{ Cause() error })
		if !ok {
			break
		}
		err = wrapped.Cause()
	}
	return Default
}

// PayloadOf walks the cause chain and returns the first attached payload.
func PayloadOf(err error) interface{} {
	for err != nil {
		if coded, ok := err.(*CodedError); ok && coded.Payload != nil {
			return coded.Payload
		}
		wrapped, ok := err.(interface{ Cause() error })
		if !ok {
			break
		}
		err = wrapped.Cause()
	}
	return nil
}
