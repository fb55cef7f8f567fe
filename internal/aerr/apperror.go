package aerr

//
// apperror.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"errors"
	"fmt"
	"maps"
	"runtime"
	"slices"

	"github.com/rs/zerolog"
)

// AppError is the application error carrier: message, source location,
// classification tags, optional user-facing message and metadata.
type AppError struct {
	location string
	err      error
	tags     []string
	msg      string
	userMsg  string
	meta     map[string]any
}

func New(msg string) *AppError {
	return &AppError{
		location: getLocation(),
		msg:      msg,
	}
}

// NewSimple create AppError without location; for package-level sentinels.
func NewSimple(msg string) *AppError {
	return &AppError{msg: msg}
}

func Newf(msg string, args ...any) *AppError {
	return &AppError{
		location: getLocation(),
		msg:      fmt.Sprintf(msg, args...),
	}
}

func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}

	return &AppError{
		location: getLocation(),
		err:      err,
	}
}

func Wrapf(err error, msg string, args ...any) *AppError {
	if err == nil {
		return nil
	}

	return &AppError{
		location: getLocation(),
		err:      err,
		msg:      fmt.Sprintf(msg, args...),
	}
}

func (a *AppError) WithTag(tag string) *AppError {
	if a == nil {
		return nil
	}

	if slices.Contains(a.tags, tag) {
		return a
	}

	a.tags = append(a.tags, tag)

	return a
}

func (a *AppError) WithUserMsg(msg string, args ...any) *AppError {
	if a == nil {
		return nil
	}

	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	a.userMsg = msg

	return a
}

func (a *AppError) WithMsg(msg string, args ...any) *AppError {
	if a == nil {
		return nil
	}

	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	a.msg = msg

	return a
}

func (a *AppError) WithMeta(key string, value any) *AppError {
	if a == nil {
		return nil
	}

	if a.meta == nil {
		a.meta = make(map[string]any)
	}

	a.meta[key] = value

	return a
}

func (a *AppError) Error() string {
	if a == nil {
		return ""
	}

	if a.msg != "" {
		return a.msg
	}

	return a.err.Error()
}

func (a *AppError) Unwrap() error {
	if a == nil {
		return nil
	}

	return a.err
}

//-------------------------------------------------------------

// ApplyFor create copy of template AppError with replaced cause and updated
// location. Used to attach low-level errors to package sentinels. Optional
// msg arguments override the message and the user message.
func ApplyFor(template *AppError, err error, msg ...string) *AppError {
	if err == nil {
		return nil
	}

	nerr := &AppError{
		location: getLocation(),
		msg:      template.msg,
		tags:     slices.Clone(template.tags),
		userMsg:  template.userMsg,
		meta:     maps.Clone(template.meta),
		err:      err,
	}

	if len(msg) > 0 && msg[0] != "" {
		nerr.msg = msg[0]
	}

	if len(msg) > 1 && msg[1] != "" {
		nerr.userMsg = msg[1]
	}

	return nerr
}

//-------------------------------------------------------------

func HasTag(err error, tag string) bool {
	for _, ae := range flatten(err) {
		if slices.Contains(ae.tags, tag) {
			return true
		}
	}

	return false
}

func GetUserMessage(err error) string {
	for _, ae := range flatten(err) {
		if ae.userMsg != "" {
			return ae.userMsg
		}
	}

	return ""
}

func flatten(err error) []*AppError {
	errs := []*AppError{}

	for ; err != nil; err = errors.Unwrap(err) {
		if ae, ok := err.(*AppError); ok { //nolint:errorlint
			errs = append(errs, ae)
		}
	}

	slices.Reverse(errs)

	return errs
}

//-------------------------------------------------------------

type zerologErrorMarshaller struct {
	err error
}

func (m zerologErrorMarshaller) MarshalZerologObject(event *zerolog.Event) {
	var usermsg, stack, errs, tags []string

	var meta map[string]any

	for err := m.err; err != nil; err = errors.Unwrap(err) {
		apperr, ok := err.(*AppError) //nolint:errorlint
		if !ok {
			errs = append(errs, err.Error())

			continue
		}

		if apperr.userMsg != "" {
			usermsg = append(usermsg, apperr.userMsg)
		}

		if apperr.location != "" {
			stack = append(stack, apperr.location)
		}

		if apperr.msg != "" {
			errs = append(errs, apperr.msg)
		}

		tags = append(tags, apperr.tags...)

		if apperr.meta != nil {
			if meta == nil {
				meta = make(map[string]any)
			}

			maps.Copy(meta, apperr.meta)
		}
	}

	if usermsg != nil {
		slices.Reverse(usermsg)
		event.Strs("user_msg", usermsg)
	}

	if stack != nil {
		slices.Reverse(stack)
		event.Strs("stack", stack)
	}

	if errs != nil {
		slices.Reverse(errs)
		event.Strs("errors", errs)
	}

	if tags != nil {
		event.Strs("tags", tags)
	}

	if meta != nil {
		event.Any("meta", meta)
	}
}

// ErrorMarshalFunc is plugged into zerolog.ErrorMarshalFunc to log the whole
// AppError chain as structured fields.
func ErrorMarshalFunc(err error) any {
	if err != nil {
		return zerologErrorMarshaller{err}
	}

	return err
}

//-------------------------------------------------------------

func getLocation() string {
	_, file, line, ok := runtime.Caller(2) //nolint:mnd
	if ok {
		return fmt.Sprintf("%s:%d", file, line)
	}

	return ""
}
